package domain

import "time"

// InvitationLink is a bearer-token capability that admits new members into
// a project. The token is the only lookup key for redemption and must be
// unguessable. Links are never deleted, only deactivated, so historical
// statistics survive.
type InvitationLink struct {
	ID        int32      `json:"id"`
	ProjectID int32      `json:"project_id"`
	Token     string     `json:"token"`
	CreatedBy int32      `json:"created_by"`
	Role      Role       `json:"role"`
	MaxUses   *int32     `json:"max_uses,omitempty"`
	UseCount  int32      `json:"use_count"`
	ExpiresOn *time.Time `json:"expires_on,omitempty"`
	Active    bool       `json:"active"`
	CreatedOn time.Time  `json:"created_on"`
}

// UsableAt reports whether the link can admit a member at the given
// instant. It returns nil when usable, otherwise the taxonomy error that
// describes the first failing condition: deactivation, then expiration,
// then exhaustion.
func (l *InvitationLink) UsableAt(now time.Time) error {
	if !l.Active {
		return ErrInvitationDeactivated
	}
	if l.ExpiresOn != nil && !l.ExpiresOn.After(now) {
		return ErrInvitationExpired
	}
	if l.MaxUses != nil && l.UseCount >= *l.MaxUses {
		return ErrInvitationExhausted
	}
	return nil
}

// RemainingUses returns the remaining use budget, or nil when unbounded.
func (l *InvitationLink) RemainingUses() *int32 {
	if l.MaxUses == nil {
		return nil
	}
	left := *l.MaxUses - l.UseCount
	if left < 0 {
		left = 0
	}
	return &left
}

// InvitationStats aggregates one historical link with the join records it
// produced.
type InvitationStats struct {
	Link           InvitationLink `json:"link"`
	JoinCount      int32          `json:"join_count"`
	UniqueJoiners  int32          `json:"unique_joiners"`
	AvgJoinsPerDay float64        `json:"avg_joins_per_day"`
}
