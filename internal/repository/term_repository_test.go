package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTermRepositoryListByOwner(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTermRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "owner_id", "name", "description", "start_date", "end_date", "created_at", "updated_at"}).
		AddRow("term-1", "owner-1", "Fall 2025", "", now, now.AddDate(0, 3, 0), now, now).
		AddRow("term-2", "owner-1", "Spring 2026", "", now.AddDate(0, 5, 0), now.AddDate(0, 8, 0), now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, owner_id, name, description, start_date, end_date, created_at, updated_at FROM terms WHERE owner_id = $1 ORDER BY start_date ASC")).
		WithArgs("owner-1").
		WillReturnRows(rows)

	terms, err := repo.ListByOwner(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, terms, 2)
	require.Equal(t, "Fall 2025", terms[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTermRepositoryDeleteCascades(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTermRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM assessments WHERE course_id IN (SELECT id FROM courses WHERE term_id = $1)")).
		WithArgs("term-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM courses WHERE term_id = $1")).
		WithArgs("term-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM terms WHERE id = $1")).
		WithArgs("term-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "term-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
