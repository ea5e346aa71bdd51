package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"teamspace-backend/internal/domain"
	"teamspace-backend/internal/logger"
	"teamspace-backend/internal/repository"

	"github.com/lib/pq"
)

type membershipRepository struct {
	db *sql.DB
}

func NewMembershipRepository(db *sql.DB) repository.MembershipRepository {
	return &membershipRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (r *membershipRepository) Create(ctx context.Context, m *domain.Membership, rec *domain.JoinRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	m.JoinedOn = now
	m.UpdatedOn = now

	query := `INSERT INTO memberships (project_id, user_id, role, joined_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5)`
	logger.DatabaseCall("CreateMembership", query, "project_id", m.ProjectID, "user_id", m.UserID)
	if _, err := tx.ExecContext(ctx, query, m.ProjectID, m.UserID, m.Role, m.JoinedOn, m.UpdatedOn); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyMember
		}
		return err
	}

	rec.ProjectID = m.ProjectID
	rec.UserID = m.UserID
	rec.Role = m.Role
	rec.CreatedOn = now
	if err := appendJoinRecord(ctx, tx, rec); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *membershipRepository) Get(ctx context.Context, projectID, userID int32) (*domain.Membership, error) {
	m := &domain.Membership{}
	query := `SELECT project_id, user_id, role, joined_on, updated_on FROM memberships WHERE project_id = $1 AND user_id = $2`
	err := r.db.QueryRowContext(ctx, query, projectID, userID).Scan(&m.ProjectID, &m.UserID, &m.Role, &m.JoinedOn, &m.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *membershipRepository) ListByProject(ctx context.Context, projectID int32) ([]domain.Membership, error) {
	query := `SELECT project_id, user_id, role, joined_on, updated_on FROM memberships WHERE project_id = $1 ORDER BY joined_on, user_id`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Membership
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(&m.ProjectID, &m.UserID, &m.Role, &m.JoinedOn, &m.UpdatedOn); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// UpdateRole re-validates every guard under the row lock. A permission
// check made before this call may be stale by the time the transaction
// runs, so the requester's current role is read again here.
func (r *membershipRepository) UpdateRole(ctx context.Context, rec *domain.RoleChangeRecord) (*domain.Membership, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	target, err := lockMembership(ctx, tx, rec.ProjectID, rec.UserID)
	if err != nil {
		return nil, err
	}
	if target.Role == domain.RoleOwner {
		return nil, domain.ErrCannotModifyOwner
	}

	requesterRole, err := memberRole(ctx, tx, rec.ProjectID, rec.ChangedBy)
	if err != nil {
		return nil, err
	}
	if requesterRole.Rank() <= target.Role.Rank() || requesterRole.Rank() <= rec.NewRole.Rank() {
		return nil, domain.ErrInsufficientPermissions
	}

	now := time.Now().UTC()
	query := `UPDATE memberships SET role = $1, updated_on = $2 WHERE project_id = $3 AND user_id = $4`
	logger.DatabaseCall("UpdateMembershipRole", query, "project_id", rec.ProjectID, "user_id", rec.UserID, "new_role", rec.NewRole)
	if _, err := tx.ExecContext(ctx, query, rec.NewRole, now, rec.ProjectID, rec.UserID); err != nil {
		return nil, err
	}

	rec.OldRole = target.Role
	rec.CreatedOn = now
	if err := appendRoleChangeRecord(ctx, tx, rec); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	target.Role = rec.NewRole
	target.UpdatedOn = now
	return target, nil
}

func (r *membershipRepository) Delete(ctx context.Context, projectID, targetUserID, requestedBy int32) (*domain.Membership, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	target, err := lockMembership(ctx, tx, projectID, targetUserID)
	if err != nil {
		return nil, err
	}
	if target.Role == domain.RoleOwner {
		return nil, domain.ErrCannotRemoveOwner
	}

	requesterRole, err := memberRole(ctx, tx, projectID, requestedBy)
	if err != nil {
		return nil, err
	}
	if requesterRole.Rank() <= target.Role.Rank() {
		return nil, domain.ErrInsufficientPermissions
	}

	query := `DELETE FROM memberships WHERE project_id = $1 AND user_id = $2`
	logger.DatabaseCall("DeleteMembership", query, "project_id", projectID, "user_id", targetUserID)
	if _, err := tx.ExecContext(ctx, query, projectID, targetUserID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return target, nil
}

// lockMembership reads the target row FOR UPDATE so that a concurrent
// role change and removal on the same membership serialize.
func lockMembership(ctx context.Context, tx *sql.Tx, projectID, userID int32) (*domain.Membership, error) {
	m := &domain.Membership{}
	query := `SELECT project_id, user_id, role, joined_on, updated_on FROM memberships WHERE project_id = $1 AND user_id = $2 FOR UPDATE`
	err := tx.QueryRowContext(ctx, query, projectID, userID).Scan(&m.ProjectID, &m.UserID, &m.Role, &m.JoinedOn, &m.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotAMember
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func memberRole(ctx context.Context, tx *sql.Tx, projectID, userID int32) (domain.Role, error) {
	var role domain.Role
	query := `SELECT role FROM memberships WHERE project_id = $1 AND user_id = $2`
	err := tx.QueryRowContext(ctx, query, projectID, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrInsufficientPermissions
	}
	if err != nil {
		return "", err
	}
	return role, nil
}
