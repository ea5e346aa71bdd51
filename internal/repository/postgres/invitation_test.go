package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"teamspace-backend/internal/domain"
	"teamspace-backend/internal/repository"
)

var invitationTestColumns = []string{
	"id", "project_id", "token", "created_by", "role",
	"max_uses", "use_count", "expires_on", "active", "created_on",
}

func TestInvitationCreateActive_ClosesPriorLinkFirst(t *testing.T) {
	db, mock := newMock(t)
	repo := NewInvitationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE invitation_links SET active = false").
		WithArgs(int32(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO invitation_links").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int32(4)))
	mock.ExpectCommit()

	link := &domain.InvitationLink{ProjectID: 1, Token: "tok-abc", CreatedBy: 5, Role: domain.RoleMember}
	err := repo.CreateActive(context.Background(), link)

	assert.NoError(t, err)
	assert.Equal(t, int32(4), link.ID)
	assert.True(t, link.Active)
	assert.Equal(t, int32(0), link.UseCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationGetByToken_AbsentIsNilNil(t *testing.T) {
	db, mock := newMock(t)
	repo := NewInvitationRepository(db)

	mock.ExpectQuery("FROM invitation_links WHERE token").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(invitationTestColumns))

	link, err := repo.GetByToken(context.Background(), "nope")

	assert.NoError(t, err)
	assert.Nil(t, link)
}

func TestInvitationGetByToken_NullColumnsMapToNilFields(t *testing.T) {
	db, mock := newMock(t)
	repo := NewInvitationRepository(db)

	created := time.Now().UTC()
	mock.ExpectQuery("FROM invitation_links WHERE token").
		WithArgs("tok-abc").
		WillReturnRows(sqlmock.NewRows(invitationTestColumns).
			AddRow(int32(4), int32(1), "tok-abc", int32(5), string(domain.RoleMember),
				nil, int32(2), nil, true, created))

	link, err := repo.GetByToken(context.Background(), "tok-abc")

	assert.NoError(t, err)
	assert.Nil(t, link.MaxUses)
	assert.Nil(t, link.ExpiresOn)
	assert.Equal(t, int32(2), link.UseCount)
}

func TestInvitationRedeem_IncrementsAndAppendsJoinRecord(t *testing.T) {
	db, mock := newMock(t)
	repo := NewInvitationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE invitation_links SET use_count").
		WithArgs(int32(4), int32(2), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO memberships").
		WithArgs(int32(1), int32(42), domain.RoleMember, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO join_records").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int32(9)))
	mock.ExpectCommit()

	link := &domain.InvitationLink{ID: 4, ProjectID: 1, Role: domain.RoleMember, UseCount: 2, Active: true}
	m := &domain.Membership{ProjectID: 1, UserID: 42}
	rec := &domain.JoinRecord{IPAddress: "10.0.0.9"}
	err := repo.Redeem(context.Background(), link, m, rec)

	assert.NoError(t, err)
	assert.Equal(t, int32(3), link.UseCount)
	assert.Equal(t, domain.RoleMember, m.Role)
	assert.Equal(t, domain.JoinMethodInvitation, rec.Method)
	assert.Equal(t, int32(4), *rec.InvitationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Zero rows from the compare-and-swap means another acceptance got there
// first; the transaction aborts and nothing else runs.
func TestInvitationRedeem_LostRaceIsConflict(t *testing.T) {
	db, mock := newMock(t)
	repo := NewInvitationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE invitation_links SET use_count").
		WithArgs(int32(4), int32(2), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	link := &domain.InvitationLink{ID: 4, ProjectID: 1, Role: domain.RoleMember, UseCount: 2, Active: true}
	err := repo.Redeem(context.Background(), link, &domain.Membership{ProjectID: 1, UserID: 42}, &domain.JoinRecord{})

	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.Equal(t, int32(2), link.UseCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A duplicate membership inside the transaction rolls the use-count
// increment back with it.
func TestInvitationRedeem_DuplicateMemberRollsBackIncrement(t *testing.T) {
	db, mock := newMock(t)
	repo := NewInvitationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE invitation_links SET use_count").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO memberships").
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	link := &domain.InvitationLink{ID: 4, ProjectID: 1, Role: domain.RoleMember, UseCount: 2, Active: true}
	err := repo.Redeem(context.Background(), link, &domain.Membership{ProjectID: 1, UserID: 42}, &domain.JoinRecord{})

	assert.ErrorIs(t, err, domain.ErrAlreadyMember)
	assert.Equal(t, int32(2), link.UseCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationRedeem_AuditFailureAbortsAdmission(t *testing.T) {
	db, mock := newMock(t)
	repo := NewInvitationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE invitation_links SET use_count").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO memberships").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO join_records").
		WillReturnError(&pq.Error{Code: "53100"})
	mock.ExpectRollback()

	link := &domain.InvitationLink{ID: 4, ProjectID: 1, Role: domain.RoleMember, Active: true}
	err := repo.Redeem(context.Background(), link, &domain.Membership{ProjectID: 1, UserID: 42}, &domain.JoinRecord{})

	assert.ErrorIs(t, err, domain.ErrAuditWriteFailed)
	assert.Equal(t, int32(0), link.UseCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationDeactivateActive_NoActiveLinkIsNoOp(t *testing.T) {
	db, mock := newMock(t)
	repo := NewInvitationRepository(db)

	mock.ExpectExec("UPDATE invitation_links SET active = false").
		WithArgs(int32(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.DeactivateActive(context.Background(), 1))
}

func TestInvitationDeactivateExpired_ReportsCount(t *testing.T) {
	db, mock := newMock(t)
	repo := NewInvitationRepository(db)

	now := time.Now().UTC()
	mock.ExpectExec("UPDATE invitation_links SET active = false WHERE active AND expires_on").
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	closed, err := repo.DeactivateExpired(context.Background(), now)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), closed)
}
