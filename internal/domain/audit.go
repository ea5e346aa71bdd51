package domain

import "time"

// JoinMethod records how a membership came to exist.
type JoinMethod string

const (
	JoinMethodDirectAdd  JoinMethod = "DIRECT_ADD"
	JoinMethodInvitation JoinMethod = "INVITATION"
)

// JoinRecord is the immutable audit entry for a membership creation. It is
// appended in the same transaction as the membership row.
type JoinRecord struct {
	ID           int32      `json:"id"`
	ProjectID    int32      `json:"project_id"`
	UserID       int32      `json:"user_id"`
	Role         Role       `json:"role"`
	Method       JoinMethod `json:"method"`
	InvitationID *int32     `json:"invitation_id,omitempty"`
	IPAddress    string     `json:"ip_address,omitempty"`
	UserAgent    string     `json:"user_agent,omitempty"`
	CreatedOn    time.Time  `json:"created_on"`
}

// RoleChangeRecord is the immutable audit entry for a role change.
type RoleChangeRecord struct {
	ID        int32     `json:"id"`
	ProjectID int32     `json:"project_id"`
	UserID    int32     `json:"user_id"`
	OldRole   Role      `json:"old_role"`
	NewRole   Role      `json:"new_role"`
	ChangedBy int32     `json:"changed_by"`
	Reason    string    `json:"reason,omitempty"`
	CreatedOn time.Time `json:"created_on"`
}

// AuditEntryKind discriminates entries in a merged audit trail.
type AuditEntryKind string

const (
	AuditEntryJoin       AuditEntryKind = "JOIN"
	AuditEntryRoleChange AuditEntryKind = "ROLE_CHANGE"
)

// AuditEntry is one element of the merged, timestamp-descending audit
// trail. Exactly one of Join or RoleChange is set, matching Kind.
type AuditEntry struct {
	Kind       AuditEntryKind    `json:"kind"`
	CreatedOn  time.Time         `json:"created_on"`
	Join       *JoinRecord       `json:"join,omitempty"`
	RoleChange *RoleChangeRecord `json:"role_change,omitempty"`
}
