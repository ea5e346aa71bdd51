package service

import (
	"context"
	"time"

	"teamspace-backend/internal/domain"
)

// PermissionService answers allow/deny questions for protected project
// operations. Every check re-reads the current membership; decisions are
// never cached across calls because roles can change between them.
type PermissionService interface {
	CheckPermission(ctx context.Context, projectID, userID int32, required domain.Role) (bool, error)
	GetUserRole(ctx context.Context, projectID, userID int32) (domain.Role, bool, error)
	GetPermissionSummary(ctx context.Context, projectID, userID int32) (domain.PermissionSummary, error)
}

type MembershipService interface {
	AddMember(ctx context.Context, projectID, userID int32, role domain.Role, meta domain.RequestMeta) (*domain.Membership, error)
	ChangeRole(ctx context.Context, projectID, targetUserID int32, newRole domain.Role, requestedBy int32, reason string) (*domain.Membership, error)
	RemoveMember(ctx context.Context, projectID, targetUserID, requestedBy int32, reason string) (*domain.Membership, error)
	ListMembers(ctx context.Context, projectID int32) ([]domain.Membership, error)
}

// OpenAdmissionsOptions configures a new invitation link. The zero value
// yields an unbounded, non-expiring MEMBER link.
type OpenAdmissionsOptions struct {
	Role      domain.Role
	MaxUses   *int32
	ExpiresOn *time.Time
}

// AcceptResult reports the outcome of an invitation acceptance.
// IsExistingMember is true when the user already belonged to the project;
// in that case the use count and audit trail are untouched.
type AcceptResult struct {
	Membership       *domain.Membership `json:"membership"`
	IsExistingMember bool               `json:"is_existing_member"`
}

type AdmissionService interface {
	OpenAdmissions(ctx context.Context, projectID, requestedBy int32, opts OpenAdmissionsOptions) (*domain.InvitationLink, error)
	CloseAdmissions(ctx context.Context, projectID, requestedBy int32) error
	ValidateToken(ctx context.Context, token string) (*domain.InvitationLink, error)
	AcceptInvitation(ctx context.Context, token string, userID int32, meta domain.RequestMeta) (*AcceptResult, error)
	GetActiveInvitationLink(ctx context.Context, projectID int32) (*domain.InvitationLink, error)
	GetInvitationStats(ctx context.Context, projectID int32) ([]domain.InvitationStats, error)
	ShareInvitation(ctx context.Context, projectID, requestedBy int32, email string) error
}

type AuditService interface {
	GetJoinHistory(ctx context.Context, projectID int32, limit, offset int32) ([]domain.JoinRecord, error)
	GetRoleChangeHistory(ctx context.Context, projectID int32, limit, offset int32) ([]domain.RoleChangeRecord, error)
	GetAuditTrail(ctx context.Context, projectID int32, limit, offset int32) ([]domain.AuditEntry, error)
}

type EmailService interface {
	SendInvitationLink(ctx context.Context, email, projectName, inviteURL string) error
}
