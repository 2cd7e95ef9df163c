package member

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var memberColumns = []string{"id", "group_id", "name", "phone_number", "role", "joined_at", "group_name"}

func newMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func testInput() *Input {
	return &Input{GroupID: 1, Name: "Asha", PhoneNumber: "+254700000001", Role: RoleTreasurer}
}

func TestPostgresRepository_ListOrdering(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY g.name, m.name, m.id")).
		WillReturnRows(sqlmock.NewRows(memberColumns).
			AddRow(2, 2, "Baraka", "+254700000002", "member", now, "Amani").
			AddRow(1, 1, "Asha", "+254700000001", "treasurer", now, "Umoja"))

	members, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "Amani", members[0].GroupName)
	assert.Equal(t, RoleTreasurer, members[1].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Create(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO members").
		WithArgs(int64(1), "Asha", "+254700000001", "treasurer").
		WillReturnRows(sqlmock.NewRows(memberColumns).
			AddRow(10, 1, "Asha", "+254700000001", "treasurer", now, "Umoja"))

	member, err := repo.Create(context.Background(), testInput())

	require.NoError(t, err)
	assert.Equal(t, int64(10), member.ID)
	assert.Equal(t, "Umoja", member.GroupName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_CreateConstraintErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"duplicate phone", &pq.Error{Code: "23505", Constraint: "members_phone_number_key"}, ErrPhoneNumberInUse},
		{"missing group", &pq.Error{Code: "23503", Constraint: "members_group_id_fkey"}, ErrReferencedGroupNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMock(t)
			mock.ExpectQuery("INSERT INTO members").WillReturnError(tt.err)

			member, err := repo.Create(context.Background(), testInput())

			assert.Nil(t, member)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPostgresRepository_UpdateMissing(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("UPDATE members").
		WithArgs(int64(4), int64(1), "Asha", "+254700000001", "treasurer").
		WillReturnRows(sqlmock.NewRows(memberColumns))

	member, err := repo.Update(context.Background(), 4, testInput())

	assert.NoError(t, err)
	assert.Nil(t, member)
}

func TestPostgresRepository_DeleteCascades(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM members WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM contributions WHERE member_id = $1")).
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM members WHERE id = $1")).
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 10))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_DeleteMissing(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM members").
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.Delete(context.Background(), 10), ErrMemberNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
