package entity

import (
	"time"

	product "github.com/ovaphlow/pitchfork/service-veracity/internal/product/entity"
)

// Item statuses. Created and in-progress items are active.
const (
	StatusCreated    = "created"
	StatusInProgress = "in-progress"
	StatusClosed     = "closed"
)

// Item is a discrepancy report against one product.
type Item struct {
	ID              string     `db:"id" json:"id"`
	ProductID       string     `db:"product_id" json:"-"`
	ProgramQuantity float64    `db:"program_quantity" json:"programQuantity"`
	FactQuantity    float64    `db:"fact_quantity" json:"factQuantity"`
	Comment         *string    `db:"comment" json:"comment,omitempty"`
	Status          string     `db:"status" json:"status"`
	CreatedBy       string     `db:"created_by" json:"-"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	ExpiresAt       time.Time  `db:"expires_at" json:"expiresAt"`
	StartedAt       *time.Time `db:"started_at" json:"startedAt,omitempty"`
	ClosedAt        *time.Time `db:"closed_at" json:"closedAt,omitempty"`
	CloseComment    *string    `db:"close_comment" json:"closeComment,omitempty"`
}

// Creator is the only part of the creating user exposed in listings.
type Creator struct {
	FirstName string `db:"first_name" json:"firstName"`
	LastName  string `db:"last_name" json:"lastName"`
}

// ListedItem is an item joined with its product and creator.
type ListedItem struct {
	Item
	ProductInfo product.Product `db:"product" json:"productInfo"`
	WhoCreated  Creator         `db:"creator" json:"whoCreated"`
}
