package session

import (
	"context"

	"github.com/ovaphlow/pitchfork/service-veracity/internal/user/entity"
)

// Identity is the authenticated caller attached to a request by the gate.
type Identity struct {
	UserID      string
	BusinessID  string
	FirstName   string
	LastName    string
	Subdivision string
	Department  int
}

// IsLogistics reports whether the caller may start and close items.
func (i *Identity) IsLogistics() bool {
	return i != nil && i.Subdivision == entity.SubdivisionLogistics
}

// SeesAllDepartments reports whether listings should skip the department filter.
func (i *Identity) SeesAllDepartments() bool {
	return i != nil && i.Department == entity.LogisticsDepartment
}

// Summary projects the identity for API responses.
func (i *Identity) Summary() entity.Summary {
	return entity.Summary{
		FirstName:   i.FirstName,
		LastName:    i.LastName,
		BusinessID:  i.BusinessID,
		Subdivision: i.Subdivision,
		Department:  i.Department,
	}
}

// IdentityFromUser builds the identity for a stored user.
func IdentityFromUser(u *entity.User) *Identity {
	return &Identity{
		UserID:      u.ID,
		BusinessID:  u.BusinessID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Subdivision: u.Subdivision,
		Department:  u.Department,
	}
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext returns the identity attached by the gate, or nil.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}
