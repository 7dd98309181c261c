package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/orderdesk/orderdesk-backend/api/responses"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]string{}}
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", goredis.Nil
}

func (m *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value.(string)
	return true, nil
}

func (m *memoryStore) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func idempotencyHandler(store *memoryStore, hits *int) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		responses.WriteSuccess(w, map[string]any{"hits": *hits})
	})
	return Idempotency(store, nil)(next)
}

func postOrder(handler http.Handler, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewBufferString(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	hits := 0
	handler := idempotencyHandler(newMemoryStore(), &hits)

	first := postOrder(handler, "key-1", `{"customer_id":1}`)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, 1, hits)

	second := postOrder(handler, "key-1", `{"customer_id":1}`)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 1, hits, "second call must replay, not re-execute")
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestIdempotencyRequiresKeyOnCoveredRoutes(t *testing.T) {
	hits := 0
	handler := idempotencyHandler(newMemoryStore(), &hits)

	rec := postOrder(handler, "", `{"customer_id":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, hits)
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	hits := 0
	handler := idempotencyHandler(newMemoryStore(), &hits)

	postOrder(handler, "key-2", `{"customer_id":1}`)
	rec := postOrder(handler, "key-2", `{"customer_id":2}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 1, hits)
}

func TestIdempotencySkipsUncoveredRoutes(t *testing.T) {
	hits := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	})
	handler := Idempotency(newMemoryStore(), nil)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/1/balance", nil)
	req.Header.Set("Idempotency-Key", "ignored")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, hits)
}
