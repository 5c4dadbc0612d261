package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fsanano/catalog/internal/handler"
	"fsanano/catalog/internal/logger"
	"fsanano/catalog/internal/repository"
	"fsanano/catalog/internal/service"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*handler.Handler, *repository.MemoryRepository) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	log := logger.NewNop()
	h := handler.NewHandler(
		service.NewCatalogService(repo, nil, log),
		service.NewAccountService(repo),
		log,
	)
	return h, repo
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestGetItem_NotFoundOnEmptyStore(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(h, http.MethodGet, "/items/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Item not found"}`, w.Body.String())
}

func TestGetItem_NonIntegerID(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(h, http.MethodGet, "/items/abc", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(h, http.MethodGet, "/users/abc", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, w.Body.String())
}

func TestCreateItem_InvalidDataNotPersisted(t *testing.T) {
	h, repo := newTestHandler(t)

	for _, body := range []string{
		`{"name":"","price":0}`,
		`{"name":"Widget","price":0}`,
		`{"name":"Widget"}`,
		`{"price":9.99}`,
		`{"name":"Widget","price":"cheap"}`,
		`{"name":"Widget","price":"NaN"}`,
		`not json`,
		``,
	} {
		w := do(h, http.MethodPost, "/items", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.JSONEq(t, `{"error":"Invalid data"}`, w.Body.String(), body)
	}

	items, err := repo.ListItems(t.Context())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestItemLifecycle(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(h, http.MethodPost, "/items", `{"name":"Widget","price":9.99}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"message":"Item created successfully","id":1}`, w.Body.String())

	w = do(h, http.MethodGet, "/items/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":1,"name":"Widget","price":9.99}`, w.Body.String())

	w = do(h, http.MethodPut, "/items/1", `{"name":"Widget","price":"12.50"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Item updated successfully","id":1}`, w.Body.String())

	w = do(h, http.MethodGet, "/items", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"name":"Widget","price":12.5}]`, w.Body.String())

	w = do(h, http.MethodDelete, "/items/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Item deleted successfully"}`, w.Body.String())

	w = do(h, http.MethodGet, "/items/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(h, http.MethodDelete, "/items/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Item not found"}`, w.Body.String())
}

func TestUpdateItem_Failures(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(h, http.MethodPut, "/items/5", `{"name":"Widget","price":1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Item not found"}`, w.Body.String())

	w = do(h, http.MethodPut, "/items/5", `{"name":"","price":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid data"}`, w.Body.String())
}

func TestListEndpoints_EmptyArrays(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(h, http.MethodGet, "/items", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(h, http.MethodGet, "/users", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCreateUser(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(h, http.MethodPost, "/users", `{"name":"Ann"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid data"}`, w.Body.String())

	w = do(h, http.MethodPost, "/users", `{"name":"Ann","email":"ann@x.com"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"message":"User created successfully","id":1}`, w.Body.String())

	w = do(h, http.MethodGet, "/users/1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":1,"name":"Ann","email":"ann@x.com","orders":[]}`, w.Body.String())
}

func TestAnnBuysWidgets(t *testing.T) {
	h, _ := newTestHandler(t)

	require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/users", `{"name":"Ann","email":"ann@x.com"}`).Code)
	require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/items", `{"name":"Widget","price":9.99}`).Code)

	w := do(h, http.MethodPost, "/users/1", `{"item_id":1,"quantity":3}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"message":"Order created successfully","id":1}`, w.Body.String())

	w = do(h, http.MethodGet, "/users/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":1,"name":"Ann","email":"ann@x.com","orders":[{"item":"Widget","price":9.99,"quantity":3}]}`, w.Body.String())

	w = do(h, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"name":"Ann","email":"ann@x.com","orders":[{"item":"Widget","price":9.99,"quantity":3}]}]`, w.Body.String())
}

func TestCreateOrder_Failures(t *testing.T) {
	h, _ := newTestHandler(t)
	require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/users", `{"name":"Ann","email":"ann@x.com"}`).Code)
	require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/items", `{"name":"Widget","price":9.99}`).Code)

	cases := []struct {
		path string
		body string
		code int
		resp string
	}{
		{"/users/2", `{"item_id":1,"quantity":1}`, http.StatusNotFound, `{"error":"User not found"}`},
		{"/users/1", `{"item_id":9,"quantity":1}`, http.StatusNotFound, `{"error":"Item not found"}`},
		{"/users/1", `{"item_id":1}`, http.StatusBadRequest, `{"error":"Invalid data"}`},
		{"/users/1", `{"item_id":1,"quantity":"three"}`, http.StatusBadRequest, `{"error":"Invalid data"}`},
		{"/users/1", `{"item_id":1,"quantity":2.5}`, http.StatusBadRequest, `{"error":"Invalid data"}`},
		{"/users/1", `{"quantity":1}`, http.StatusBadRequest, `{"error":"Invalid data"}`},
	}
	for _, tc := range cases {
		w := do(h, http.MethodPost, tc.path, tc.body)
		assert.Equal(t, tc.code, w.Code, tc.body)
		assert.JSONEq(t, tc.resp, w.Body.String(), tc.body)
	}

	// Numeric strings parse as integers.
	w := do(h, http.MethodPost, "/users/1", `{"item_id":"1","quantity":"2"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestGetUser_DanglingItemIsServerError(t *testing.T) {
	h, _ := newTestHandler(t)
	require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/users", `{"name":"Ann","email":"ann@x.com"}`).Code)
	require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/items", `{"name":"Widget","price":9.99}`).Code)
	require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/users/1", `{"item_id":1,"quantity":1}`).Code)
	require.Equal(t, http.StatusOK, do(h, http.MethodDelete, "/items/1", "").Code)

	w := do(h, http.MethodGet, "/users/1", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "missing item 1")
}

func TestBrotliCompression(t *testing.T) {
	h, _ := newTestHandler(t)
	require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/items", `{"name":"Widget","price":9.99}`).Code)

	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	req.Header.Set("Accept-Encoding", "br")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "br", w.Header().Get("Content-Encoding"))

	body, err := io.ReadAll(brotli.NewReader(w.Body))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"name":"Widget","price":9.99}]`, strings.TrimSpace(string(body)))
}

func TestOutOfRangeIDs(t *testing.T) {
	h, repo := newTestHandler(t)
	require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/users", `{"name":"Ann","email":"ann@x.com"}`).Code)
	require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/items", `{"name":"Widget","price":9.99}`).Code)

	w := do(h, http.MethodGet, "/items/3000000000", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Item not found"}`, w.Body.String())

	w = do(h, http.MethodGet, "/users/3000000000", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, do(h, http.MethodPut, "/items/3000000000", `{"name":"Widget","price":1}`).Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodDelete, "/items/3000000000", "").Code)

	for _, body := range []string{
		`{"item_id":1,"quantity":3000000000}`,
		`{"item_id":3000000000,"quantity":1}`,
		`{"item_id":1,"quantity":"3000000000"}`,
	} {
		w = do(h, http.MethodPost, "/users/1", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.JSONEq(t, `{"error":"Invalid data"}`, w.Body.String(), body)
	}

	orders, err := repo.ListOrdersForUser(t.Context(), 1)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrder_MissingUserBeforeInvalidBody(t *testing.T) {
	h, _ := newTestHandler(t)

	for _, body := range []string{`{"quantity":"three"}`, `not json`, ``} {
		w := do(h, http.MethodPost, "/users/999", body)
		assert.Equal(t, http.StatusNotFound, w.Code, body)
		assert.JSONEq(t, `{"error":"User not found"}`, w.Body.String(), body)
	}
}

func TestOverlongNamesRejected(t *testing.T) {
	h, repo := newTestHandler(t)
	long := strings.Repeat("a", service.MaxTextLen+1)

	w := do(h, http.MethodPost, "/items", `{"name":"`+long+`","price":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid data"}`, w.Body.String())

	w = do(h, http.MethodPost, "/users", `{"name":"Ann","email":"`+long+`@x.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(h, http.MethodPost, "/users", `{"name":"`+strings.Repeat("é", service.MaxTextLen)+`","email":"ann@x.com"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	items, err := repo.ListItems(t.Context())
	require.NoError(t, err)
	assert.Empty(t, items)
}
