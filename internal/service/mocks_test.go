package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"teamspace-backend/internal/domain"
	"teamspace-backend/internal/repository"
)

// MockMembershipRepo
type MockMembershipRepo struct {
	mock.Mock
}

func (m *MockMembershipRepo) Create(ctx context.Context, membership *domain.Membership, rec *domain.JoinRecord) error {
	args := m.Called(ctx, membership, rec)
	return args.Error(0)
}
func (m *MockMembershipRepo) Get(ctx context.Context, projectID, userID int32) (*domain.Membership, error) {
	args := m.Called(ctx, projectID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Membership), args.Error(1)
}
func (m *MockMembershipRepo) ListByProject(ctx context.Context, projectID int32) ([]domain.Membership, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]domain.Membership), args.Error(1)
}
func (m *MockMembershipRepo) UpdateRole(ctx context.Context, rec *domain.RoleChangeRecord) (*domain.Membership, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Membership), args.Error(1)
}
func (m *MockMembershipRepo) Delete(ctx context.Context, projectID, targetUserID, requestedBy int32) (*domain.Membership, error) {
	args := m.Called(ctx, projectID, targetUserID, requestedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Membership), args.Error(1)
}

// MockInvitationRepo
type MockInvitationRepo struct {
	mock.Mock
}

func (m *MockInvitationRepo) CreateActive(ctx context.Context, link *domain.InvitationLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}
func (m *MockInvitationRepo) GetByToken(ctx context.Context, token string) (*domain.InvitationLink, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InvitationLink), args.Error(1)
}
func (m *MockInvitationRepo) GetActiveByProject(ctx context.Context, projectID int32) (*domain.InvitationLink, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InvitationLink), args.Error(1)
}
func (m *MockInvitationRepo) DeactivateActive(ctx context.Context, projectID int32) error {
	args := m.Called(ctx, projectID)
	return args.Error(0)
}
func (m *MockInvitationRepo) ListByProject(ctx context.Context, projectID int32) ([]domain.InvitationLink, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]domain.InvitationLink), args.Error(1)
}
func (m *MockInvitationRepo) Redeem(ctx context.Context, link *domain.InvitationLink, membership *domain.Membership, rec *domain.JoinRecord) error {
	args := m.Called(ctx, link, membership, rec)
	return args.Error(0)
}
func (m *MockInvitationRepo) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuditRepo
type MockAuditRepo struct {
	mock.Mock
}

func (m *MockAuditRepo) ListJoins(ctx context.Context, projectID int32, limit, offset int32) ([]domain.JoinRecord, error) {
	args := m.Called(ctx, projectID, limit, offset)
	return args.Get(0).([]domain.JoinRecord), args.Error(1)
}
func (m *MockAuditRepo) ListRoleChanges(ctx context.Context, projectID int32, limit, offset int32) ([]domain.RoleChangeRecord, error) {
	args := m.Called(ctx, projectID, limit, offset)
	return args.Get(0).([]domain.RoleChangeRecord), args.Error(1)
}
func (m *MockAuditRepo) ListTrail(ctx context.Context, projectID int32, limit, offset int32) ([]domain.AuditEntry, error) {
	args := m.Called(ctx, projectID, limit, offset)
	return args.Get(0).([]domain.AuditEntry), args.Error(1)
}
func (m *MockAuditRepo) JoinStatsByInvitation(ctx context.Context, projectID int32) (map[int32]repository.JoinAggregate, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(map[int32]repository.JoinAggregate), args.Error(1)
}

// MockProjectDirectory
type MockProjectDirectory struct {
	mock.Mock
}

func (m *MockProjectDirectory) GetProject(ctx context.Context, id int32) (*domain.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

// MockPermissionService
type MockPermissionService struct {
	mock.Mock
}

func (m *MockPermissionService) CheckPermission(ctx context.Context, projectID, userID int32, required domain.Role) (bool, error) {
	args := m.Called(ctx, projectID, userID, required)
	return args.Bool(0), args.Error(1)
}
func (m *MockPermissionService) GetUserRole(ctx context.Context, projectID, userID int32) (domain.Role, bool, error) {
	args := m.Called(ctx, projectID, userID)
	return args.Get(0).(domain.Role), args.Bool(1), args.Error(2)
}
func (m *MockPermissionService) GetPermissionSummary(ctx context.Context, projectID, userID int32) (domain.PermissionSummary, error) {
	args := m.Called(ctx, projectID, userID)
	return args.Get(0).(domain.PermissionSummary), args.Error(1)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendInvitationLink(ctx context.Context, email, projectName, inviteURL string) error {
	args := m.Called(ctx, email, projectName, inviteURL)
	return args.Error(0)
}
