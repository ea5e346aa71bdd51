package domain

import "fmt"

// Role is a member's standing within a single project. Roles are totally
// ordered by privilege: OWNER > ADMIN > MEMBER > VIEWER.
type Role string

const (
	RoleViewer Role = "VIEWER"
	RoleMember Role = "MEMBER"
	RoleAdmin  Role = "ADMIN"
	RoleOwner  Role = "OWNER"
)

var roleRanks = map[Role]int{
	RoleViewer: 0,
	RoleMember: 1,
	RoleAdmin:  2,
	RoleOwner:  3,
}

// Rank returns the privilege rank of the role, strictly increasing with
// privilege. Unknown roles rank below VIEWER.
func (r Role) Rank() int {
	rank, ok := roleRanks[r]
	if !ok {
		return -1
	}
	return rank
}

// AtLeast reports whether r grants at least the privilege of required.
func (r Role) AtLeast(required Role) bool {
	return r.Rank() >= required.Rank()
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// ParseRole converts a wire-level role string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// PermissionSummary is the capability set derived from a single role.
// A caller with no membership gets the zero value (all false).
type PermissionSummary struct {
	CanViewProject   bool `json:"can_view_project"`
	CanUploadFiles   bool `json:"can_upload_files"`
	CanSendMessages  bool `json:"can_send_messages"`
	CanInviteMembers bool `json:"can_invite_members"`
	CanManageRoles   bool `json:"can_manage_roles"`
	CanRemoveMembers bool `json:"can_remove_members"`
	CanDeleteProject bool `json:"can_delete_project"`
}

var roleCapabilities = map[Role]PermissionSummary{
	RoleViewer: {
		CanViewProject: true,
	},
	RoleMember: {
		CanViewProject:  true,
		CanUploadFiles:  true,
		CanSendMessages: true,
	},
	RoleAdmin: {
		CanViewProject:   true,
		CanUploadFiles:   true,
		CanSendMessages:  true,
		CanManageRoles:   true,
		CanRemoveMembers: true,
	},
	RoleOwner: {
		CanViewProject:   true,
		CanUploadFiles:   true,
		CanSendMessages:  true,
		CanInviteMembers: true,
		CanManageRoles:   true,
		CanRemoveMembers: true,
		CanDeleteProject: true,
	},
}

// Capabilities returns the fixed capability table for the role. The table
// is a pure function of the role; callers must not cache it across
// requests since the underlying role can change between calls.
func (r Role) Capabilities() PermissionSummary {
	return roleCapabilities[r]
}
