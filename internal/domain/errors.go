package domain

import "errors"

// Closed error taxonomy for membership and admission operations. Callers
// discriminate with errors.Is; the API layer maps these to status codes.
var (
	// ErrNotAMember is returned when the target of a membership mutation
	// has no membership in the project.
	ErrNotAMember = errors.New("user is not a member of this project")

	// ErrAlreadyMember is returned when adding a membership that already
	// exists for the (project, user) pair.
	ErrAlreadyMember = errors.New("user is already a member of this project")

	// ErrInsufficientPermissions is returned when the requester's role does
	// not permit the attempted operation.
	ErrInsufficientPermissions = errors.New("insufficient permissions")

	// ErrCannotModifyOwner is returned by role changes targeting the
	// project owner.
	ErrCannotModifyOwner = errors.New("cannot change the role of the project owner")

	// ErrCannotRemoveOwner is returned by removals targeting the project
	// owner.
	ErrCannotRemoveOwner = errors.New("cannot remove the project owner")

	// ErrInvalidToken is returned when no invitation link matches a token.
	ErrInvalidToken = errors.New("invalid invitation token")

	// ErrInvitationDeactivated is returned when the matched link has been
	// deactivated.
	ErrInvitationDeactivated = errors.New("invitation link has been deactivated")

	// ErrInvitationExpired is returned when the matched link is past its
	// expiration.
	ErrInvitationExpired = errors.New("invitation link has expired")

	// ErrInvitationExhausted is returned when the matched link has no
	// remaining use budget.
	ErrInvitationExhausted = errors.New("invitation link has reached its use limit")

	// ErrAuditWriteFailed is returned when an audit record could not be
	// committed together with the mutation it describes. The enclosing
	// mutation is rolled back.
	ErrAuditWriteFailed = errors.New("failed to write audit record")

	// ErrInvalidRole is returned for role values outside the defined set,
	// or when an invitation is opened with the OWNER role.
	ErrInvalidRole = errors.New("invalid role")
)
