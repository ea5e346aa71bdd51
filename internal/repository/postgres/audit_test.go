package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"teamspace-backend/internal/domain"
	"teamspace-backend/internal/repository"
)

func TestAuditListJoins(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAuditRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery("FROM join_records").
		WithArgs(int32(1), int32(50), int32(0)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "project_id", "user_id", "role", "method", "invitation_id", "ip_address", "user_agent", "created_on",
		}).
			AddRow(int32(2), int32(1), int32(42), "MEMBER", "INVITATION", int32(4), "10.0.0.9", "agent", now).
			AddRow(int32(1), int32(1), int32(10), "OWNER", "DIRECT_ADD", nil, "", "", now.Add(-time.Hour)))

	records, err := repo.ListJoins(context.Background(), 1, 50, 0)

	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, domain.JoinMethodInvitation, records[0].Method)
	assert.Equal(t, int32(4), *records[0].InvitationID)
	assert.Equal(t, domain.JoinMethodDirectAdd, records[1].Method)
	assert.Nil(t, records[1].InvitationID)
}

func TestAuditListTrail_MergesBothKinds(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAuditRepository(db)

	now := time.Now().UTC()
	cols := []string{
		"kind", "id", "project_id", "user_id", "role", "method", "invitation_id",
		"ip_address", "user_agent", "old_role", "new_role", "changed_by", "reason", "created_on",
	}
	mock.ExpectQuery("UNION ALL").
		WithArgs(int32(1), int32(50), int32(0)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("ROLE_CHANGE", int32(3), int32(1), int32(42), nil, nil, nil,
				"", "", "MEMBER", "ADMIN", int32(5), "promotion", now).
			AddRow("JOIN", int32(2), int32(1), int32(42), "MEMBER", "INVITATION", int32(4),
				"10.0.0.9", "agent", nil, nil, nil, nil, now.Add(-time.Hour)))

	entries, err := repo.ListTrail(context.Background(), 1, 50, 0)

	assert.NoError(t, err)
	assert.Len(t, entries, 2)

	assert.Equal(t, domain.AuditEntryRoleChange, entries[0].Kind)
	assert.Nil(t, entries[0].Join)
	assert.Equal(t, domain.RoleMember, entries[0].RoleChange.OldRole)
	assert.Equal(t, domain.RoleAdmin, entries[0].RoleChange.NewRole)
	assert.Equal(t, int32(5), entries[0].RoleChange.ChangedBy)

	assert.Equal(t, domain.AuditEntryJoin, entries[1].Kind)
	assert.Nil(t, entries[1].RoleChange)
	assert.Equal(t, domain.JoinMethodInvitation, entries[1].Join.Method)
	assert.Equal(t, int32(4), *entries[1].Join.InvitationID)
}

func TestAuditJoinStatsByInvitation(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAuditRepository(db)

	mock.ExpectQuery("GROUP BY invitation_id").
		WithArgs(int32(1)).
		WillReturnRows(sqlmock.NewRows([]string{"invitation_id", "count", "count"}).
			AddRow(int32(4), int32(6), int32(5)).
			AddRow(int32(7), int32(1), int32(1)))

	stats, err := repo.JoinStatsByInvitation(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, repository.JoinAggregate{JoinCount: 6, UniqueJoiners: 5}, stats[4])
	assert.Equal(t, repository.JoinAggregate{JoinCount: 1, UniqueJoiners: 1}, stats[7])
}
