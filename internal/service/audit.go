package service

import (
	"context"

	"teamspace-backend/internal/domain"
	"teamspace-backend/internal/repository"
)

const (
	defaultAuditPageSize = 50
	maxAuditPageSize     = 200
)

type auditService struct {
	auditRepo repository.AuditRepository
}

func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

func (s *auditService) GetJoinHistory(ctx context.Context, projectID int32, limit, offset int32) ([]domain.JoinRecord, error) {
	limit, offset = normalizePage(limit, offset)
	return s.auditRepo.ListJoins(ctx, projectID, limit, offset)
}

func (s *auditService) GetRoleChangeHistory(ctx context.Context, projectID int32, limit, offset int32) ([]domain.RoleChangeRecord, error) {
	limit, offset = normalizePage(limit, offset)
	return s.auditRepo.ListRoleChanges(ctx, projectID, limit, offset)
}

func (s *auditService) GetAuditTrail(ctx context.Context, projectID int32, limit, offset int32) ([]domain.AuditEntry, error) {
	limit, offset = normalizePage(limit, offset)
	return s.auditRepo.ListTrail(ctx, projectID, limit, offset)
}

func normalizePage(limit, offset int32) (int32, int32) {
	if limit <= 0 {
		limit = defaultAuditPageSize
	}
	if limit > maxAuditPageSize {
		limit = maxAuditPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
