package group

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/chama/pkg/calendar"
)

func newMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

var groupColumns = []string{"id", "name", "cycle_start_date", "created_at"}

func TestPostgresRepository_List(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY name, id")).
		WillReturnRows(sqlmock.NewRows(groupColumns).
			AddRow(2, "Amani", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), now).
			AddRow(1, "Umoja", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), now))

	groups, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Amani", groups[0].Name)
	assert.Equal(t, "2024-01-01", groups[1].CycleStartDate.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListEmpty(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("SELECT (.+) FROM groups").WillReturnRows(sqlmock.NewRows(groupColumns))

	groups, err := repo.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestPostgresRepository_GetByIDMissing(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("SELECT (.+) FROM groups WHERE id").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(groupColumns))

	group, err := repo.GetByID(context.Background(), 99)

	assert.NoError(t, err)
	assert.Nil(t, group)
}

func TestPostgresRepository_Create(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO groups").
		WithArgs("Umoja", "2024-01-01").
		WillReturnRows(sqlmock.NewRows(groupColumns).
			AddRow(1, "Umoja", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), now))

	group, err := repo.Create(context.Background(), &Input{
		Name:           "Umoja",
		CycleStartDate: calendar.New(2024, time.January, 1),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), group.ID)
	assert.Equal(t, now, group.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_UpdateMissing(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("UPDATE groups").
		WithArgs(int64(5), "Umoja", "2024-01-01").
		WillReturnRows(sqlmock.NewRows(groupColumns))

	group, err := repo.Update(context.Background(), 5, &Input{
		Name:           "Umoja",
		CycleStartDate: calendar.New(2024, time.January, 1),
	})

	assert.NoError(t, err)
	assert.Nil(t, group)
}

func TestPostgresRepository_DeleteCascadesInOneTransaction(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM groups WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec("DELETE FROM contributions").WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM members").WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM groups").WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), 1)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_DeleteMissingRollsBack(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM groups").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 9)

	assert.ErrorIs(t, err, ErrGroupNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_DeleteFailureRollsBack(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM groups").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec("DELETE FROM contributions").WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM members").WithArgs(int64(1)).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 1)

	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
