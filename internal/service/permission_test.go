package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"teamspace-backend/internal/domain"
)

func TestCheckPermission_RankMatrix(t *testing.T) {
	roles := []domain.Role{domain.RoleViewer, domain.RoleMember, domain.RoleAdmin, domain.RoleOwner}

	for _, held := range roles {
		for _, required := range roles {
			repo := new(MockMembershipRepo)
			repo.On("Get", mock.Anything, int32(1), int32(10)).
				Return(&domain.Membership{ProjectID: 1, UserID: 10, Role: held}, nil)

			svc := NewPermissionService(repo)
			ok, err := svc.CheckPermission(context.Background(), 1, 10, required)

			assert.NoError(t, err)
			assert.Equal(t, held.Rank() >= required.Rank(), ok,
				"%s checking for %s", held, required)
		}
	}
}

func TestCheckPermission_NonMemberDeniedWithoutError(t *testing.T) {
	repo := new(MockMembershipRepo)
	repo.On("Get", mock.Anything, int32(1), int32(99)).Return(nil, nil)

	svc := NewPermissionService(repo)
	ok, err := svc.CheckPermission(context.Background(), 1, 99, domain.RoleViewer)

	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckPermission_RepoError(t *testing.T) {
	repo := new(MockMembershipRepo)
	repo.On("Get", mock.Anything, int32(1), int32(10)).Return(nil, errors.New("db down"))

	svc := NewPermissionService(repo)
	_, err := svc.CheckPermission(context.Background(), 1, 10, domain.RoleViewer)

	assert.Error(t, err)
}

func TestGetUserRole(t *testing.T) {
	repo := new(MockMembershipRepo)
	repo.On("Get", mock.Anything, int32(1), int32(10)).
		Return(&domain.Membership{ProjectID: 1, UserID: 10, Role: domain.RoleAdmin}, nil)
	repo.On("Get", mock.Anything, int32(1), int32(99)).Return(nil, nil)

	svc := NewPermissionService(repo)

	role, isMember, err := svc.GetUserRole(context.Background(), 1, 10)
	assert.NoError(t, err)
	assert.True(t, isMember)
	assert.Equal(t, domain.RoleAdmin, role)

	role, isMember, err = svc.GetUserRole(context.Background(), 1, 99)
	assert.NoError(t, err)
	assert.False(t, isMember)
	assert.Equal(t, domain.Role(""), role)
}

func TestGetPermissionSummary(t *testing.T) {
	repo := new(MockMembershipRepo)
	repo.On("Get", mock.Anything, int32(1), int32(10)).
		Return(&domain.Membership{ProjectID: 1, UserID: 10, Role: domain.RoleMember}, nil)
	repo.On("Get", mock.Anything, int32(1), int32(99)).Return(nil, nil)

	svc := NewPermissionService(repo)

	summary, err := svc.GetPermissionSummary(context.Background(), 1, 10)
	assert.NoError(t, err)
	assert.True(t, summary.CanUploadFiles)
	assert.False(t, summary.CanManageRoles)

	summary, err = svc.GetPermissionSummary(context.Background(), 1, 99)
	assert.NoError(t, err)
	assert.Equal(t, domain.PermissionSummary{}, summary)
}
