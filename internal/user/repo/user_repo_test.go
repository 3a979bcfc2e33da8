package repo

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-veracity/internal/user/entity"
)

func newMockRepo(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepo(sqlx.NewDb(db, "postgres")), mock
}

func testUser() *entity.User {
	return &entity.User{
		ID:           "1001",
		FirstName:    "Иван",
		LastName:     "Петров",
		BusinessID:   "61234567",
		Subdivision:  entity.SubdivisionCommerce,
		Department:   4,
		PasswordHash: "hash",
		CreatedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestCreate(t *testing.T) {
	r, mock := newMockRepo(t)
	u := testUser()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs(u.ID, u.FirstName, u.LastName, u.BusinessID, u.Subdivision, u.Department, u.PasswordHash, nil, u.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, r.Create(context.Background(), u))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicate(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})

	err := r.Create(context.Background(), testUser())
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestGetByBusinessID(t *testing.T) {
	r, mock := newMockRepo(t)
	u := testUser()
	token := "tok"

	rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "business_id", "subdivision", "department", "password_hash", "token", "created_at"}).
		AddRow(u.ID, u.FirstName, u.LastName, u.BusinessID, u.Subdivision, u.Department, u.PasswordHash, token, u.CreatedAt)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE business_id=$1`)).
		WithArgs("61234567").
		WillReturnRows(rows)

	got, err := r.GetByBusinessID(context.Background(), "61234567")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, 4, got.Department)
	require.NotNil(t, got.Token)
	assert.Equal(t, token, *got.Token)
}

func TestGetByIDNotFound(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id=$1`)).
		WithArgs("404").
		WillReturnError(sql.ErrNoRows)

	_, err := r.GetByID(context.Background(), "404")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSetToken(t *testing.T) {
	r, mock := newMockRepo(t)
	token := "tok"

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET token=$2 WHERE id=$1`)).
		WithArgs("1001", &token).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET token=$2 WHERE id=$1`)).
		WithArgs("missing", nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, r.SetToken(context.Background(), "1001", &token))
	assert.Error(t, r.SetToken(context.Background(), "missing", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
