package postgres

import (
	"database/sql"

	"teamspace-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.MembershipRepository
	repository.InvitationRepository
	repository.AuditRepository
	repository.ProjectDirectory
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                   db,
		MembershipRepository: NewMembershipRepository(db),
		InvitationRepository: NewInvitationRepository(db),
		AuditRepository:      NewAuditRepository(db),
		ProjectDirectory:     NewProjectDirectory(db),
	}
}
