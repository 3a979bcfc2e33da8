package product

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-veracity/internal/product/entity"
	"github.com/ovaphlow/pitchfork/service-veracity/internal/validation"
)

type stubStore struct {
	inserted []entity.NewProduct
	product  *entity.Product
}

func (s *stubStore) InsertMany(ctx context.Context, rows []entity.NewProduct) error {
	s.inserted = append(s.inserted, rows...)
	return nil
}

func (s *stubStore) GetByBusinessID(ctx context.Context, businessID string) (*entity.Product, error) {
	if s.product == nil || s.product.BusinessID != businessID {
		return nil, sql.ErrNoRows
	}
	return s.product, nil
}

func rawRows(rows ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(rows))
	for i, r := range rows {
		out[i] = json.RawMessage(r)
	}
	return out
}

func TestUploadExtractsIndexedFields(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store)

	n, err := svc.Upload(context.Background(), rawRows(
		`{"id": "18093311", "department": 7, "name": "Ламинат"}`,
		`{"id": 18093312, "department": "3"}`,
		`{"name": "без артикула"}`,
	))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, store.inserted, 3)

	first := store.inserted[0]
	assert.NotEmpty(t, first.DBID)
	require.NotNil(t, first.BusinessID)
	assert.Equal(t, "18093311", *first.BusinessID)
	require.NotNil(t, first.Department)
	assert.Equal(t, 7, *first.Department)
	assert.JSONEq(t, `{"id": "18093311", "department": 7, "name": "Ламинат"}`, first.Data)

	second := store.inserted[1]
	assert.Equal(t, "18093312", *second.BusinessID)
	assert.Equal(t, 3, *second.Department)

	third := store.inserted[2]
	assert.Nil(t, third.BusinessID)
	assert.Nil(t, third.Department)
	assert.NotEqual(t, first.DBID, second.DBID)
}

func TestUploadRejectsMalformed(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store)

	_, err := svc.Upload(context.Background(), nil)
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, MsgEmptyUpload, verr.Message)

	_, err = svc.Upload(context.Background(), rawRows(`{"id": "1"}`, `[1, 2]`))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, MsgBadRow, verr.Message)
	assert.Empty(t, store.inserted)
}

func TestGet(t *testing.T) {
	store := &stubStore{product: &entity.Product{DBID: "42", BusinessID: "18093311", Department: 7, Data: `{"id":"18093311"}`}}
	svc := NewService(store)

	p, err := svc.Get(context.Background(), "18093311")
	require.NoError(t, err)
	assert.Equal(t, "42", p.DBID)

	_, err = svc.Get(context.Background(), "00000000")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(context.Background(), "")
	var verr *validation.Error
	assert.ErrorAs(t, err, &verr)
}

func TestIntegerParsing(t *testing.T) {
	assert.Nil(t, integer(json.RawMessage(`2.5`)))
	assert.Nil(t, integer(json.RawMessage(`"abc"`)))
	assert.Nil(t, integer(nil))
	require.NotNil(t, integer(json.RawMessage(`4.0`)))
	assert.Equal(t, 4, *integer(json.RawMessage(`4.0`)))
}

func TestProductJSON(t *testing.T) {
	p := entity.Product{DBID: "42", BusinessID: "18093311", Department: 7, Data: `{"id": 18093311, "name": "Ламинат"}`}

	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"dbId": "42", "id": "18093311", "department": 7, "name": "Ламинат"}`, string(b))
}
