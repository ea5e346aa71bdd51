package service

import (
	"context"

	"teamspace-backend/internal/domain"
	"teamspace-backend/internal/repository"
)

type permissionService struct {
	memberRepo repository.MembershipRepository
}

func NewPermissionService(memberRepo repository.MembershipRepository) PermissionService {
	return &permissionService{memberRepo: memberRepo}
}

// CheckPermission resolves the caller's current membership and compares
// ranks. An absent membership is the normal "no access" answer, not an
// error; distinguishing 404 from 403 is the caller's job.
func (s *permissionService) CheckPermission(ctx context.Context, projectID, userID int32, required domain.Role) (bool, error) {
	m, err := s.memberRepo.Get(ctx, projectID, userID)
	if err != nil {
		return false, err
	}
	if m == nil {
		return false, nil
	}
	return m.Role.AtLeast(required), nil
}

func (s *permissionService) GetUserRole(ctx context.Context, projectID, userID int32) (domain.Role, bool, error) {
	m, err := s.memberRepo.Get(ctx, projectID, userID)
	if err != nil {
		return "", false, err
	}
	if m == nil {
		return "", false, nil
	}
	return m.Role, true, nil
}

// GetPermissionSummary derives the capability set from the single role
// lookup. No membership yields the zero summary (all capabilities false).
func (s *permissionService) GetPermissionSummary(ctx context.Context, projectID, userID int32) (domain.PermissionSummary, error) {
	m, err := s.memberRepo.Get(ctx, projectID, userID)
	if err != nil {
		return domain.PermissionSummary{}, err
	}
	if m == nil {
		return domain.PermissionSummary{}, nil
	}
	return m.Role.Capabilities(), nil
}
