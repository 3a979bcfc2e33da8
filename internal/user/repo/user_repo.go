package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-veracity/internal/user/entity"
)

// ErrDuplicate is returned by Create when the business id is already registered.
var ErrDuplicate = errors.New("business id already registered")

// uniqueViolation is the Postgres SQLSTATE for unique index violations.
const uniqueViolation = "23505"

const userColumns = `id, first_name, last_name, business_id, subdivision, department, password_hash, token, created_at`

// UserRepo provides data access for the users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new user row. ID and CreatedAt must be set by the caller.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	const q = `INSERT INTO users (` + userColumns + `)
		VALUES (:id, :first_name, :last_name, :business_id, :subdivision, :department, :password_hash, :token, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, q, u); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID fetches a user by storage key or returns sql.ErrNoRows.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var u entity.User
	if err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id=$1`, id); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByBusinessID fetches a user by business id or returns sql.ErrNoRows.
func (r *UserRepo) GetByBusinessID(ctx context.Context, businessID string) (*entity.User, error) {
	var u entity.User
	if err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE business_id=$1`, businessID); err != nil {
		return nil, err
	}
	return &u, nil
}

// SetToken replaces the stored session token; nil clears it.
func (r *UserRepo) SetToken(ctx context.Context, id string, token *string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET token=$2 WHERE id=$1`, id, token)
	if err != nil {
		return fmt.Errorf("update user token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user token: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update user token: no user %s", id)
	}
	return nil
}
