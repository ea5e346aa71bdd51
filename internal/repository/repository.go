package repository

import (
	"context"
	"errors"
	"time"

	"teamspace-backend/internal/domain"
)

// ErrConflict is returned by InvitationRepository.Redeem when the
// compare-and-swap on the link's use count lost a race. Callers re-read
// the link, re-validate usability, and retry; they must not blindly
// repeat the increment.
var ErrConflict = errors.New("concurrent update conflict")

// MembershipRepository owns the (project, user, role) records. Mutations
// that the core requires to be atomic with their audit record run in a
// single transaction inside the implementation; permission guards are
// re-validated there under the row lock rather than trusted from a prior
// read (role can change between check and use).
type MembershipRepository interface {
	// Create inserts the membership and its DIRECT_ADD join record in one
	// transaction. Returns domain.ErrAlreadyMember when a membership for
	// the (project, user) pair exists.
	Create(ctx context.Context, m *domain.Membership, rec *domain.JoinRecord) error

	// Get returns the membership, or (nil, nil) when the user has none.
	// Absence is the normal "no access" result, not an error.
	Get(ctx context.Context, projectID, userID int32) (*domain.Membership, error)

	ListByProject(ctx context.Context, projectID int32) ([]domain.Membership, error)

	// UpdateRole locks the target membership, re-validates the owner and
	// outrank guards against current state, applies the new role, and
	// appends the role-change record, all in one transaction. rec.OldRole
	// is filled from the locked row.
	UpdateRole(ctx context.Context, rec *domain.RoleChangeRecord) (*domain.Membership, error)

	// Delete locks and removes the target membership, re-validating the
	// owner and outrank guards. Returns the removed record. Removal
	// appends no audit record.
	Delete(ctx context.Context, projectID, targetUserID, requestedBy int32) (*domain.Membership, error)
}

// InvitationRepository owns invitation links. Links are never deleted,
// only deactivated.
type InvitationRepository interface {
	// CreateActive deactivates any currently active link for the project
	// and inserts the new one as the single active slot, in one
	// transaction.
	CreateActive(ctx context.Context, link *domain.InvitationLink) error

	// GetByToken returns the link matching the bearer token, or (nil, nil)
	// when no link matches.
	GetByToken(ctx context.Context, token string) (*domain.InvitationLink, error)

	// GetActiveByProject returns the project's active link, or (nil, nil).
	GetActiveByProject(ctx context.Context, projectID int32) (*domain.InvitationLink, error)

	// DeactivateActive deactivates the project's active link if one
	// exists. Deactivating an already-closed project is a no-op.
	DeactivateActive(ctx context.Context, projectID int32) error

	ListByProject(ctx context.Context, projectID int32) ([]domain.InvitationLink, error)

	// Redeem performs one acceptance as a single transaction: a
	// compare-and-swap increment of the use count (expected value taken
	// from link.UseCount), the membership insert, and the join record
	// append. Returns ErrConflict when the CAS lost a race and
	// domain.ErrAlreadyMember when the user joined concurrently.
	Redeem(ctx context.Context, link *domain.InvitationLink, m *domain.Membership, rec *domain.JoinRecord) error

	// DeactivateExpired flips active links past their expiration to
	// inactive and reports how many were closed. Maintenance only:
	// usability is always re-evaluated at validation time.
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

// JoinAggregate is the per-link rollup of join records used for
// invitation statistics.
type JoinAggregate struct {
	JoinCount     int32
	UniqueJoiners int32
}

// AuditRepository reads the append-only audit tables. Appends happen only
// inside membership and invitation transactions; nothing mutates a record
// after it is written.
type AuditRepository interface {
	ListJoins(ctx context.Context, projectID int32, limit, offset int32) ([]domain.JoinRecord, error)
	ListRoleChanges(ctx context.Context, projectID int32, limit, offset int32) ([]domain.RoleChangeRecord, error)

	// ListTrail merges both record kinds into a single timestamp-descending
	// sequence tagged by kind.
	ListTrail(ctx context.Context, projectID int32, limit, offset int32) ([]domain.AuditEntry, error)

	JoinStatsByInvitation(ctx context.Context, projectID int32) (map[int32]JoinAggregate, error)
}

// ProjectDirectory is the read-only view onto the project metadata
// collaborator. Project CRUD lives outside this core.
type ProjectDirectory interface {
	// GetProject returns the project, or (nil, nil) when it does not
	// exist. The transport layer uses this to distinguish 404 from 403.
	GetProject(ctx context.Context, id int32) (*domain.Project, error)
}
