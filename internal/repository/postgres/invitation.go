package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"teamspace-backend/internal/domain"
	"teamspace-backend/internal/logger"
	"teamspace-backend/internal/repository"
)

type invitationRepository struct {
	db *sql.DB
}

func NewInvitationRepository(db *sql.DB) repository.InvitationRepository {
	return &invitationRepository{db: db}
}

const invitationColumns = `id, project_id, token, created_by, role, max_uses, use_count, expires_on, active, created_on`

func (r *invitationRepository) CreateActive(ctx context.Context, link *domain.InvitationLink) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Single active slot per project: opening admissions closes the
	// previous link.
	deactivate := `UPDATE invitation_links SET active = false WHERE project_id = $1 AND active`
	logger.DatabaseCall("DeactivatePriorLink", deactivate, "project_id", link.ProjectID)
	if _, err := tx.ExecContext(ctx, deactivate, link.ProjectID); err != nil {
		return err
	}

	link.UseCount = 0
	link.Active = true
	link.CreatedOn = time.Now().UTC()
	insert := `INSERT INTO invitation_links (project_id, token, created_by, role, max_uses, use_count, expires_on, active, created_on)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	err = tx.QueryRowContext(ctx, insert,
		link.ProjectID, link.Token, link.CreatedBy, link.Role,
		link.MaxUses, link.UseCount, link.ExpiresOn, link.Active, link.CreatedOn,
	).Scan(&link.ID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *invitationRepository) GetByToken(ctx context.Context, token string) (*domain.InvitationLink, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitation_links WHERE token = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, token))
}

func (r *invitationRepository) GetActiveByProject(ctx context.Context, projectID int32) (*domain.InvitationLink, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitation_links WHERE project_id = $1 AND active`
	return r.scanOne(r.db.QueryRowContext(ctx, query, projectID))
}

func (r *invitationRepository) DeactivateActive(ctx context.Context, projectID int32) error {
	query := `UPDATE invitation_links SET active = false WHERE project_id = $1 AND active`
	logger.DatabaseCall("DeactivateActiveLink", query, "project_id", projectID)
	_, err := r.db.ExecContext(ctx, query, projectID)
	return err
}

func (r *invitationRepository) ListByProject(ctx context.Context, projectID int32) ([]domain.InvitationLink, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitation_links WHERE project_id = $1 ORDER BY created_on DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []domain.InvitationLink
	for rows.Next() {
		link, err := scanInvitation(rows.Scan)
		if err != nil {
			return nil, err
		}
		links = append(links, *link)
	}
	return links, rows.Err()
}

// Redeem runs one acceptance as a single transaction. The use-count
// increment is a compare-and-swap against the count the caller validated:
// if another acceptance got there first the update matches no row and the
// caller must re-validate before retrying, so a link with one remaining
// use admits exactly one of two concurrent joiners.
func (r *invitationRepository) Redeem(ctx context.Context, link *domain.InvitationLink, m *domain.Membership, rec *domain.JoinRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	cas := `UPDATE invitation_links SET use_count = use_count + 1
	        WHERE id = $1 AND active AND use_count = $2
	          AND (max_uses IS NULL OR use_count < max_uses)
	          AND (expires_on IS NULL OR expires_on > $3)`
	logger.DatabaseCall("RedeemInvitation", cas, "invitation_id", link.ID, "expected_uses", link.UseCount)
	res, err := tx.ExecContext(ctx, cas, link.ID, link.UseCount, now)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrConflict
	}

	m.Role = link.Role
	m.JoinedOn = now
	m.UpdatedOn = now
	insert := `INSERT INTO memberships (project_id, user_id, role, joined_on, updated_on) VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.ExecContext(ctx, insert, m.ProjectID, m.UserID, m.Role, m.JoinedOn, m.UpdatedOn); err != nil {
		if isUniqueViolation(err) {
			// Same user raced two acceptances; the aborted transaction
			// also rolls back the use-count increment.
			return domain.ErrAlreadyMember
		}
		return err
	}

	rec.ProjectID = m.ProjectID
	rec.UserID = m.UserID
	rec.Role = m.Role
	rec.Method = domain.JoinMethodInvitation
	rec.InvitationID = &link.ID
	rec.CreatedOn = now
	if err := appendJoinRecord(ctx, tx, rec); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	link.UseCount++
	return nil
}

func (r *invitationRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE invitation_links SET active = false WHERE active AND expires_on IS NOT NULL AND expires_on <= $1`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *invitationRepository) scanOne(row *sql.Row) (*domain.InvitationLink, error) {
	link, err := scanInvitation(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return link, nil
}

func scanInvitation(scan func(...any) error) (*domain.InvitationLink, error) {
	link := &domain.InvitationLink{}
	var maxUses sql.NullInt32
	var expiresOn sql.NullTime
	err := scan(&link.ID, &link.ProjectID, &link.Token, &link.CreatedBy, &link.Role,
		&maxUses, &link.UseCount, &expiresOn, &link.Active, &link.CreatedOn)
	if err != nil {
		return nil, err
	}
	if maxUses.Valid {
		link.MaxUses = &maxUses.Int32
	}
	if expiresOn.Valid {
		t := expiresOn.Time
		link.ExpiresOn = &t
	}
	return link, nil
}
