package product

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-veracity/internal/product/entity"
)

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestGetOneHandler(t *testing.T) {
	store := &stubStore{product: &entity.Product{DBID: "42", BusinessID: "18093311", Department: 7, Data: `{"name":"Ламинат"}`}}
	h := NewHandler(NewService(store), zap.NewNop().Sugar())

	rec := post(h.GetOne, `{"productId": 18093311}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"dbId":"42","id":"18093311","department":7,"name":"Ламинат"}`, rec.Body.String())

	rec = post(h.GetOne, `{"productId": "11111111"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = post(h.GetOne, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadHandler(t *testing.T) {
	store := &stubStore{}
	h := NewHandler(NewService(store), zap.NewNop().Sugar())

	rec := post(h.Upload, `{"data":[{"id":"1","department":2},{"id":"3","department":4}]}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"ok","count":2}`, rec.Body.String())

	rec = post(h.Upload, `{"data":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"no products provided"}`, rec.Body.String())
}
