package item

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ovaphlow/pitchfork/service-veracity/internal/item/entity"
	"github.com/ovaphlow/pitchfork/service-veracity/internal/session"
	"github.com/ovaphlow/pitchfork/service-veracity/internal/validation"
	"github.com/ovaphlow/pitchfork/service-veracity/pkg/utilities"
)

const (
	// CreateTTL is how long a new item stays listed.
	CreateTTL = 96 * time.Hour
	// StartTTL replaces the remaining lifetime once logistics starts working on an item.
	StartTTL = 24 * time.Hour
)

var (
	ErrNoIdentity      = errors.New("no authenticated identity")
	ErrForbidden       = errors.New("only logistics can change item status")
	ErrProductNotFound = errors.New("product not found")
	ErrNotUpdated      = errors.New("item not found or already closed")
)

// Store is implemented by *repo.ItemRepo.
type Store interface {
	InsertMany(ctx context.Context, items []entity.Item) error
	MarkStarted(ctx context.Context, id string, startedAt, expiresAt time.Time) (int64, error)
	MarkClosed(ctx context.Context, id string, closedAt time.Time, comment string) (int64, error)
	ListActive(ctx context.Context, now time.Time, department *int) ([]entity.ListedItem, error)
}

// ProductChecker is implemented by the product repository.
type ProductChecker interface {
	ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error)
}

// NewItem is one element of a create batch.
type NewItem struct {
	ProductDBID     string
	ProgramQuantity *float64
	FactQuantity    *float64
	Comment         string
}

type Service struct {
	store    Store
	products ProductChecker
	Now      func() time.Time
}

func NewService(store Store, products ProductChecker) *Service {
	return &Service{store: store, products: products, Now: time.Now}
}

// Create stores the batch if every element references a known product and reports a
// discrepancy. The first failing element rejects the whole batch.
func (s *Service) Create(ctx context.Context, id *session.Identity, batch []NewItem) (int, error) {
	if id == nil {
		return 0, ErrNoIdentity
	}
	if len(batch) == 0 {
		return 0, &validation.Error{Message: validation.MsgEmptyBatch}
	}
	refs := make([]string, 0, len(batch))
	for _, in := range batch {
		if !utilities.IsSnowflakeID(in.ProductDBID) {
			return 0, &validation.Error{Message: validation.MsgProductReference}
		}
		refs = append(refs, in.ProductDBID)
	}
	known, err := s.products.ExistingIDs(ctx, refs)
	if err != nil {
		return 0, fmt.Errorf("check products: %w", err)
	}

	now := s.Now().UTC()
	items := make([]entity.Item, 0, len(batch))
	for _, in := range batch {
		if !known[in.ProductDBID] {
			return 0, ErrProductNotFound
		}
		if err := validation.ValidateItem(validation.Item{
			ProgramQuantity: in.ProgramQuantity,
			FactQuantity:    in.FactQuantity,
			Comment:         in.Comment,
		}); err != nil {
			return 0, err
		}
		it := entity.Item{
			ID:              utilities.NewKSUID(),
			ProductID:       in.ProductDBID,
			ProgramQuantity: *in.ProgramQuantity,
			FactQuantity:    *in.FactQuantity,
			Status:          entity.StatusCreated,
			CreatedBy:       id.UserID,
			CreatedAt:       now,
			ExpiresAt:       now.Add(CreateTTL),
		}
		if in.Comment != "" {
			c := in.Comment
			it.Comment = &c
		}
		items = append(items, it)
	}
	if err := s.store.InsertMany(ctx, items); err != nil {
		return 0, err
	}
	return len(items), nil
}

// Start moves an active item to in-progress and gives it StartTTL from now.
func (s *Service) Start(ctx context.Context, id *session.Identity, itemID string) error {
	if !id.IsLogistics() {
		return ErrForbidden
	}
	if !utilities.IsKSUID(itemID) {
		return &validation.Error{Message: validation.MsgItemID}
	}
	now := s.Now().UTC()
	n, err := s.store.MarkStarted(ctx, itemID, now, now.Add(StartTTL))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotUpdated
	}
	return nil
}

// Close closes an active item with a mandatory comment. The expiration is left as is.
func (s *Service) Close(ctx context.Context, id *session.Identity, itemID, comment string) error {
	if !id.IsLogistics() {
		return ErrForbidden
	}
	if !utilities.IsKSUID(itemID) {
		return &validation.Error{Message: validation.MsgItemID}
	}
	if comment == "" {
		return &validation.Error{Message: validation.MsgCloseComment}
	}
	if err := validation.Comment(comment); err != nil {
		return err
	}
	n, err := s.store.MarkClosed(ctx, itemID, s.Now().UTC(), comment)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotUpdated
	}
	return nil
}

// List returns the unexpired items visible to the caller.
func (s *Service) List(ctx context.Context, id *session.Identity) ([]entity.ListedItem, error) {
	if id == nil {
		return nil, ErrNoIdentity
	}
	var department *int
	if !id.SeesAllDepartments() {
		d := id.Department
		department = &d
	}
	items, err := s.store.ListActive(ctx, s.Now().UTC(), department)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []entity.ListedItem{}
	}
	return items, nil
}
