package postgres

import (
	"context"
	"database/sql"
	"errors"

	"teamspace-backend/internal/domain"
	"teamspace-backend/internal/repository"
)

// projectDirectory is the read-only lookup onto the projects table owned
// by the project metadata collaborator.
type projectDirectory struct {
	db *sql.DB
}

func NewProjectDirectory(db *sql.DB) repository.ProjectDirectory {
	return &projectDirectory{db: db}
}

func (r *projectDirectory) GetProject(ctx context.Context, id int32) (*domain.Project, error) {
	p := &domain.Project{}
	query := `SELECT id, name FROM projects WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
