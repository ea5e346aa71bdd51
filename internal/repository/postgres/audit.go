package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"teamspace-backend/internal/domain"
	"teamspace-backend/internal/repository"
)

type auditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

// appendJoinRecord writes a join record inside the caller's transaction.
// A failed append aborts the enclosing mutation: no membership may commit
// without its audit record.
func appendJoinRecord(ctx context.Context, tx *sql.Tx, rec *domain.JoinRecord) error {
	query := `INSERT INTO join_records (project_id, user_id, role, method, invitation_id, ip_address, user_agent, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := tx.QueryRowContext(ctx, query,
		rec.ProjectID, rec.UserID, rec.Role, rec.Method,
		rec.InvitationID, rec.IPAddress, rec.UserAgent, rec.CreatedOn,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrAuditWriteFailed, err)
	}
	return nil
}

// appendRoleChangeRecord writes a role-change record inside the caller's
// transaction, with the same all-or-nothing contract as appendJoinRecord.
func appendRoleChangeRecord(ctx context.Context, tx *sql.Tx, rec *domain.RoleChangeRecord) error {
	query := `INSERT INTO role_change_records (project_id, user_id, old_role, new_role, changed_by, reason, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := tx.QueryRowContext(ctx, query,
		rec.ProjectID, rec.UserID, rec.OldRole, rec.NewRole,
		rec.ChangedBy, rec.Reason, rec.CreatedOn,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrAuditWriteFailed, err)
	}
	return nil
}

func (r *auditRepository) ListJoins(ctx context.Context, projectID int32, limit, offset int32) ([]domain.JoinRecord, error) {
	query := `SELECT id, project_id, user_id, role, method, invitation_id, COALESCE(ip_address, ''), COALESCE(user_agent, ''), created_on
	          FROM join_records WHERE project_id = $1 ORDER BY created_on DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, projectID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.JoinRecord
	for rows.Next() {
		var rec domain.JoinRecord
		var invitationID sql.NullInt32
		if err := rows.Scan(&rec.ID, &rec.ProjectID, &rec.UserID, &rec.Role, &rec.Method,
			&invitationID, &rec.IPAddress, &rec.UserAgent, &rec.CreatedOn); err != nil {
			return nil, err
		}
		if invitationID.Valid {
			rec.InvitationID = &invitationID.Int32
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *auditRepository) ListRoleChanges(ctx context.Context, projectID int32, limit, offset int32) ([]domain.RoleChangeRecord, error) {
	query := `SELECT id, project_id, user_id, old_role, new_role, changed_by, COALESCE(reason, ''), created_on
	          FROM role_change_records WHERE project_id = $1 ORDER BY created_on DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, projectID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.RoleChangeRecord
	for rows.Next() {
		var rec domain.RoleChangeRecord
		if err := rows.Scan(&rec.ID, &rec.ProjectID, &rec.UserID, &rec.OldRole, &rec.NewRole,
			&rec.ChangedBy, &rec.Reason, &rec.CreatedOn); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListTrail merges both record kinds in the database so that limit and
// offset apply to the combined, timestamp-descending sequence.
func (r *auditRepository) ListTrail(ctx context.Context, projectID int32, limit, offset int32) ([]domain.AuditEntry, error) {
	query := `SELECT kind, id, project_id, user_id, role, method, invitation_id, ip_address, user_agent, old_role, new_role, changed_by, reason, created_on FROM (
	            SELECT 'JOIN' AS kind, id, project_id, user_id, role, method, invitation_id,
	                   COALESCE(ip_address, '') AS ip_address, COALESCE(user_agent, '') AS user_agent,
	                   NULL AS old_role, NULL AS new_role, NULL::integer AS changed_by, NULL AS reason, created_on
	            FROM join_records WHERE project_id = $1
	            UNION ALL
	            SELECT 'ROLE_CHANGE', id, project_id, user_id, NULL, NULL, NULL, '', '',
	                   old_role, new_role, changed_by, COALESCE(reason, ''), created_on
	            FROM role_change_records WHERE project_id = $1
	          ) trail ORDER BY created_on DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, projectID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var (
			kind         string
			id           int32
			projID       int32
			userID       int32
			role, method sql.NullString
			invitationID sql.NullInt32
			ip, ua       string
			oldRole      sql.NullString
			newRole      sql.NullString
			changedBy    sql.NullInt32
			reason       sql.NullString
			createdOn    sql.NullTime
		)
		if err := rows.Scan(&kind, &id, &projID, &userID, &role, &method, &invitationID,
			&ip, &ua, &oldRole, &newRole, &changedBy, &reason, &createdOn); err != nil {
			return nil, err
		}

		entry := domain.AuditEntry{Kind: domain.AuditEntryKind(kind), CreatedOn: createdOn.Time}
		switch entry.Kind {
		case domain.AuditEntryJoin:
			rec := &domain.JoinRecord{
				ID:        id,
				ProjectID: projID,
				UserID:    userID,
				Role:      domain.Role(role.String),
				Method:    domain.JoinMethod(method.String),
				IPAddress: ip,
				UserAgent: ua,
				CreatedOn: createdOn.Time,
			}
			if invitationID.Valid {
				rec.InvitationID = &invitationID.Int32
			}
			entry.Join = rec
		case domain.AuditEntryRoleChange:
			entry.RoleChange = &domain.RoleChangeRecord{
				ID:        id,
				ProjectID: projID,
				UserID:    userID,
				OldRole:   domain.Role(oldRole.String),
				NewRole:   domain.Role(newRole.String),
				ChangedBy: changedBy.Int32,
				Reason:    reason.String,
				CreatedOn: createdOn.Time,
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *auditRepository) JoinStatsByInvitation(ctx context.Context, projectID int32) (map[int32]repository.JoinAggregate, error) {
	query := `SELECT invitation_id, COUNT(*), COUNT(DISTINCT user_id)
	          FROM join_records WHERE project_id = $1 AND invitation_id IS NOT NULL GROUP BY invitation_id`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(map[int32]repository.JoinAggregate)
	for rows.Next() {
		var invitationID int32
		var agg repository.JoinAggregate
		if err := rows.Scan(&invitationID, &agg.JoinCount, &agg.UniqueJoiners); err != nil {
			return nil, err
		}
		stats[invitationID] = agg
	}
	return stats, rows.Err()
}
