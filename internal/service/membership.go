package service

import (
	"context"
	"fmt"

	"teamspace-backend/internal/domain"
	"teamspace-backend/internal/logger"
	"teamspace-backend/internal/repository"
)

type membershipService struct {
	memberRepo repository.MembershipRepository
}

func NewMembershipService(memberRepo repository.MembershipRepository) MembershipService {
	return &membershipService{memberRepo: memberRepo}
}

// AddMember creates a membership directly, outside the invitation flow.
// The project metadata collaborator uses this to seed the OWNER when a
// project is created.
func (s *membershipService) AddMember(ctx context.Context, projectID, userID int32, role domain.Role, meta domain.RequestMeta) (*domain.Membership, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRole, role)
	}

	m := &domain.Membership{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
	}
	rec := &domain.JoinRecord{
		Method:    domain.JoinMethodDirectAdd,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}
	if err := s.memberRepo.Create(ctx, m, rec); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "member added", "project_id", projectID, "user_id", userID, "role", role)
	return m, nil
}

// ChangeRole applies the guard order: missing target, owner target, then
// requester rank. The requester must outrank both the target's current
// role and the role being assigned, so an ADMIN can neither promote
// anyone to ADMIN nor touch another ADMIN. The repository re-validates
// all of this inside the transaction that writes the change and its
// audit record.
func (s *membershipService) ChangeRole(ctx context.Context, projectID, targetUserID int32, newRole domain.Role, requestedBy int32, reason string) (*domain.Membership, error) {
	if !newRole.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRole, newRole)
	}

	target, err := s.memberRepo.Get(ctx, projectID, targetUserID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, domain.ErrNotAMember
	}
	if target.Role == domain.RoleOwner {
		return nil, domain.ErrCannotModifyOwner
	}

	requester, err := s.memberRepo.Get(ctx, projectID, requestedBy)
	if err != nil {
		return nil, err
	}
	if requester == nil || requester.Role.Rank() <= target.Role.Rank() || requester.Role.Rank() <= newRole.Rank() {
		return nil, domain.ErrInsufficientPermissions
	}

	rec := &domain.RoleChangeRecord{
		ProjectID: projectID,
		UserID:    targetUserID,
		NewRole:   newRole,
		ChangedBy: requestedBy,
		Reason:    reason,
	}
	updated, err := s.memberRepo.UpdateRole(ctx, rec)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "member role changed",
		"project_id", projectID, "user_id", targetUserID,
		"old_role", rec.OldRole, "new_role", newRole, "changed_by", requestedBy)
	return updated, nil
}

// RemoveMember deletes a membership under the same outrank guard as
// ChangeRole. Removal appends no audit record; the reason only reaches
// the log.
func (s *membershipService) RemoveMember(ctx context.Context, projectID, targetUserID, requestedBy int32, reason string) (*domain.Membership, error) {
	target, err := s.memberRepo.Get(ctx, projectID, targetUserID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, domain.ErrNotAMember
	}
	if target.Role == domain.RoleOwner {
		return nil, domain.ErrCannotRemoveOwner
	}

	requester, err := s.memberRepo.Get(ctx, projectID, requestedBy)
	if err != nil {
		return nil, err
	}
	if requester == nil || requester.Role.Rank() <= target.Role.Rank() {
		return nil, domain.ErrInsufficientPermissions
	}

	removed, err := s.memberRepo.Delete(ctx, projectID, targetUserID, requestedBy)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "member removed",
		"project_id", projectID, "user_id", targetUserID,
		"removed_by", requestedBy, "reason", reason)
	return removed, nil
}

func (s *membershipService) ListMembers(ctx context.Context, projectID int32) ([]domain.Membership, error) {
	return s.memberRepo.ListByProject(ctx, projectID)
}
