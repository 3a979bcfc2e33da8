package user

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-veracity/internal/session"
	"github.com/ovaphlow/pitchfork/service-veracity/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-veracity/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-veracity/internal/validation"
	"github.com/ovaphlow/pitchfork/service-veracity/pkg/utilities"
)

// PasswordHasher defines minimal hashing interface.
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Store is the credential store used by the service; *repo.UserRepo implements it.
type Store interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByBusinessID(ctx context.Context, businessID string) (*entity.User, error)
	SetToken(ctx context.Context, id string, token *string) error
}

// TokenIssuer signs session tokens; *session.TokenService implements it.
type TokenIssuer interface {
	Issue(userID, businessID string) (string, time.Time, error)
}

var (
	ErrDuplicate      = errors.New("user already registered")
	ErrBadCredentials = errors.New("invalid credentials")
)

// UserService orchestrates registration, login and session checks.
type UserService struct {
	store  Store
	hasher PasswordHasher
	tokens TokenIssuer
	now    func() time.Time
}

func NewUserService(store Store, hasher PasswordHasher, tokens TokenIssuer) *UserService {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 10}
	}
	return &UserService{store: store, hasher: hasher, tokens: tokens, now: time.Now}
}

// Register validates the input, creates the user and opens its first session.
func (s *UserService) Register(ctx context.Context, in validation.Registration) (*entity.User, string, error) {
	if err := validation.ValidateRegistration(in); err != nil {
		return nil, "", err
	}

	existing, err := s.store.GetByBusinessID(ctx, in.BusinessID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("lookup business id: %w", err)
	}
	if existing != nil {
		return nil, "", ErrDuplicate
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{
		ID:           utilities.NewSnowflakeID(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		BusinessID:   in.BusinessID,
		Subdivision:  in.Subdivision,
		Department:   *in.Department,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if u.IsLogistics() {
		u.Department = entity.LogisticsDepartment
	}
	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, userrepo.ErrDuplicate) {
			return nil, "", ErrDuplicate
		}
		return nil, "", err
	}

	token, err := s.startSession(ctx, u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login checks the password and replaces the user's session token.
func (s *UserService) Login(ctx context.Context, businessID, password string) (*entity.User, string, error) {
	if err := validation.ValidateLogin(businessID, password); err != nil {
		return nil, "", err
	}
	u, err := s.store.GetByBusinessID(ctx, businessID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrBadCredentials
		}
		return nil, "", fmt.Errorf("lookup business id: %w", err)
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, "", ErrBadCredentials
	}
	token, err := s.startSession(ctx, u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// startSession issues a token and persists it as the only live session of the user.
func (s *UserService) startSession(ctx context.Context, u *entity.User) (string, error) {
	token, _, err := s.tokens.Issue(u.ID, u.BusinessID)
	if err != nil {
		return "", err
	}
	if err := s.store.SetToken(ctx, u.ID, &token); err != nil {
		return "", err
	}
	u.Token = &token
	return token, nil
}

// ResolveSession implements session.IdentityResolver.
func (s *UserService) ResolveSession(ctx context.Context, userID, token string) (*session.Identity, error) {
	u, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, session.ErrStaleSession
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u.Token == nil || !ConstantTimeCompare(*u.Token, token) {
		return nil, session.ErrStaleSession
	}
	return session.IdentityFromUser(u), nil
}

// Logout drops the stored session token.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	return s.store.SetToken(ctx, userID, nil)
}

// ConstantTimeCompare compares secrets without leaking timing.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
