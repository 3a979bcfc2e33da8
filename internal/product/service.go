package product

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/ovaphlow/pitchfork/service-veracity/internal/product/entity"
	"github.com/ovaphlow/pitchfork/service-veracity/internal/validation"
	"github.com/ovaphlow/pitchfork/service-veracity/pkg/utilities"
)

// Store is implemented by *repo.Repo.
type Store interface {
	InsertMany(ctx context.Context, rows []entity.NewProduct) error
	GetByBusinessID(ctx context.Context, businessID string) (*entity.Product, error)
}

// ErrNotFound is returned when no product has the requested article.
var ErrNotFound = errors.New("product not found")

// Messages for rejected uploads.
const (
	MsgEmptyUpload = "no products provided"
	MsgBadRow      = "product rows must be JSON objects"
	MsgProductID   = "product id is required"
)

// Service encapsulates catalog upload and lookup.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Upload stores every row as-is. Rows are only checked for being JSON objects; missing
// article or department values are left to the table constraints.
func (s *Service) Upload(ctx context.Context, rows []json.RawMessage) (int, error) {
	if len(rows) == 0 {
		return 0, &validation.Error{Message: MsgEmptyUpload}
	}
	now := s.now().UTC()
	out := make([]entity.NewProduct, 0, len(rows))
	for _, raw := range rows {
		var doc map[string]json.RawMessage
		if err := json.Unmarshal(raw, &doc); err != nil || doc == nil {
			return 0, &validation.Error{Message: MsgBadRow}
		}
		out = append(out, entity.NewProduct{
			DBID:       utilities.NewSnowflakeID(),
			BusinessID: scalarString(doc["id"]),
			Department: integer(doc["department"]),
			Data:       string(raw),
			CreatedAt:  now,
		})
	}
	if err := s.store.InsertMany(ctx, out); err != nil {
		return 0, err
	}
	return len(out), nil
}

// Get looks a product up by its article, not by storage key.
func (s *Service) Get(ctx context.Context, businessID string) (*entity.Product, error) {
	if businessID == "" {
		return nil, &validation.Error{Message: MsgProductID}
	}
	p, err := s.store.GetByBusinessID(ctx, businessID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// scalarString accepts a JSON string or number and returns its text.
func scalarString(raw json.RawMessage) *string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return nil
		}
		return &s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		s = n.String()
		return &s
	}
	return nil
}

// integer accepts a whole JSON number or a numeric string.
func integer(raw json.RawMessage) *int {
	text := scalarString(raw)
	if text == nil {
		return nil
	}
	f, err := strconv.ParseFloat(*text, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil
	}
	v := int(f)
	return &v
}
