package learning

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlite3"), mock
}

func TestUserRepository_FindByUsername_queryError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM users WHERE username = \\?").
		WithArgs("alice").
		WillReturnError(errors.New("disk I/O error"))

	_, err := NewUserRepository(db).FindByUsername(context.Background(), "alice")
	assert.ErrorContains(t, err, "db.GetContext(user) > disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogRepository_UserStatistics_queryError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("FROM learning_logs").
		WithArgs(int64(1)).
		WillReturnError(errors.New("database is locked"))

	_, err := NewLogRepository(db).UserStatistics(context.Background(), 1)
	assert.ErrorContains(t, err, "db.QueryRowContext(basic stats) > database is locked")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogRepository_UserStatistics_groupedStatsError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("FROM learning_logs").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"total", "correct", "sessions"}).AddRow(2, 1, 1))
	mock.ExpectQuery("GROUP BY q.cefr").
		WithArgs(int64(1)).
		WillReturnError(errors.New("no such table: questions"))

	_, err := NewLogRepository(db).UserStatistics(context.Background(), 1)
	assert.ErrorContains(t, err, "grouped stats by q.cefr")
	assert.NoError(t, mock.ExpectationsWereMet())
}
