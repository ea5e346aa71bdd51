package domain

import "time"

// Membership grants a user a role within a project. At most one membership
// exists per (project, user) pair; the role is mutated only through the
// role-change operation.
type Membership struct {
	ProjectID int32     `json:"project_id"`
	UserID    int32     `json:"user_id"`
	Role      Role      `json:"role"`
	JoinedOn  time.Time `json:"joined_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// Project is the slice of project metadata this core reads. The full
// project record lives with the project metadata collaborator; only
// existence and name matter here (404 discrimination, invite previews).
type Project struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

// RequestMeta carries best-effort network metadata from the transport
// layer into join audit records. Both fields are opaque strings.
type RequestMeta struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
}
