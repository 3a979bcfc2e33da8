package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

const insertRows = `INSERT INTO t (id, name) VALUES (:id, :name)`

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestChunkRows(t *testing.T) {
	assert.Equal(t, 13107, ChunkRows(5))
	assert.Equal(t, 7281, ChunkRows(9))
	assert.LessOrEqual(t, ChunkRows(9)*9, MaxBindParams)
	assert.Equal(t, MaxBindParams, ChunkRows(0))
}

func TestNamedExecChunkedSplitsInsideTransaction(t *testing.T) {
	db, mock := newMock(t)
	rows := []row{{"1", "a"}, {"2", "b"}, {"3", "c"}, {"4", "d"}, {"5", "e"}}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO t`)).
		WithArgs("1", "a", "2", "b").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO t`)).
		WithArgs("3", "c", "4", "d").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO t`)).
		WithArgs("5", "e").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NamedExecChunked(context.Background(), db, insertRows, rows, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNamedExecChunkedRollsBack(t *testing.T) {
	db, mock := newMock(t)
	rows := []row{{"1", "a"}, {"2", "b"}, {"3", "c"}}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO t`)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO t`)).WillReturnError(errors.New("not null violation"))
	mock.ExpectRollback()

	err := NamedExecChunked(context.Background(), db, insertRows, rows, 2)
	assert.EqualError(t, err, "not null violation")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNamedExecChunkedEmpty(t *testing.T) {
	db, mock := newMock(t)

	require.NoError(t, NamedExecChunked[row](context.Background(), db, insertRows, nil, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}
