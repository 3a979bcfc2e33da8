package entity

import "time"

// Subdivisions a user may belong to. Logistics users see every department and are the
// only ones allowed to start and close items.
const (
	SubdivisionCommerce  = "Коммерция"
	SubdivisionLogistics = "Логистика"
)

// LogisticsDepartment is the department sentinel meaning "all departments".
const LogisticsDepartment = 0

// User represents an account row in the `users` table.
type User struct {
	ID           string    `db:"id"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	BusinessID   string    `db:"business_id"`
	Subdivision  string    `db:"subdivision"`
	Department   int       `db:"department"`
	PasswordHash string    `db:"password_hash"`
	Token        *string   `db:"token"`
	CreatedAt    time.Time `db:"created_at"`
}

// IsLogistics reports whether the user belongs to the logistics subdivision.
func (u *User) IsLogistics() bool {
	return u.Subdivision == SubdivisionLogistics
}

// Summary is the public projection returned by register, login and auth.
type Summary struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	BusinessID  string `json:"businessId"`
	Subdivision string `json:"subdivision"`
	Department  int    `json:"department"`
}

// Summary projects the user for API responses.
func (u *User) Summary() Summary {
	return Summary{
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		BusinessID:  u.BusinessID,
		Subdivision: u.Subdivision,
		Department:  u.Department,
	}
}
