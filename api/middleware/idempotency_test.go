package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/shopoverlay/pkg/logger"
)

type memoryIdempotencyStore struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryIdempotencyStore) Reserve(_ context.Context, scope, id, placeholder string, ttl time.Duration) (bool, error) {
	key := scope + "|" + id
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = placeholder
	m.ttls[key] = ttl
	return true, nil
}

func (m *memoryIdempotencyStore) Load(_ context.Context, scope, id string) (string, bool, error) {
	v, ok := m.data[scope+"|"+id]
	return v, ok, nil
}

func (m *memoryIdempotencyStore) Save(_ context.Context, scope, id, value string, ttl time.Duration) error {
	m.data[scope+"|"+id] = value
	m.ttls[scope+"|"+id] = ttl
	return nil
}

func (m *memoryIdempotencyStore) Release(_ context.Context, scope, id string) error {
	delete(m.data, scope+"|"+id)
	return nil
}

func countingHandler(calls *int, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"data":{"call":` + string(rune('0'+*calls)) + `}}`))
	})
}

func checkoutRequest(key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/purchase", strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0
	handler := Idempotency(store, time.Minute, logger.Nop())(countingHandler(&calls, http.StatusOK))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, checkoutRequest("k1", `{"method":"cash"}`))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, checkoutRequest("k1", `{"method":"cash"}`))

	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
	if second.Code != http.StatusOK || second.Body.String() != first.Body.String() {
		t.Fatalf("expected replayed response, got %d %s", second.Code, second.Body.String())
	}
	if second.Header().Get("Idempotent-Replay") != "true" {
		t.Fatal("expected replay marker header")
	}
	for _, ttl := range store.ttls {
		if ttl != time.Minute {
			t.Fatalf("expected configured ttl, got %v", ttl)
		}
	}
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0
	handler := Idempotency(store, time.Minute, logger.Nop())(countingHandler(&calls, http.StatusOK))

	handler.ServeHTTP(httptest.NewRecorder(), checkoutRequest("k1", `{"method":"cash"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, checkoutRequest("k1", `{"method":"bank"}`))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
}

func TestIdempotencyRequiresKeyOnSettlementRoutes(t *testing.T) {
	calls := 0
	handler := Idempotency(newMemoryIdempotencyStore(), 0, logger.Nop())(countingHandler(&calls, http.StatusOK))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, checkoutRequest("", `{}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{}`)))
	if rec.Code != http.StatusOK || calls != 1 {
		t.Fatalf("expected other routes to pass through, got %d calls=%d", rec.Code, calls)
	}
}

func TestIdempotencySkipsServerErrors(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0
	handler := Idempotency(store, time.Minute, logger.Nop())(countingHandler(&calls, http.StatusServiceUnavailable))

	handler.ServeHTTP(httptest.NewRecorder(), checkoutRequest("k1", `{}`))
	handler.ServeHTTP(httptest.NewRecorder(), checkoutRequest("k1", `{}`))

	if calls != 2 {
		t.Fatalf("expected failed settlements to be retryable, ran %d times", calls)
	}
	if len(store.data) != 0 {
		t.Fatalf("expected nothing stored, got %v", store.data)
	}
}

func TestIdempotencyPassesThroughWithoutStore(t *testing.T) {
	calls := 0
	handler := Idempotency(nil, time.Minute, logger.Nop())(countingHandler(&calls, http.StatusOK))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, checkoutRequest("", `{}`))
	if rec.Code != http.StatusOK || calls != 1 {
		t.Fatalf("expected pass-through, got %d calls=%d", rec.Code, calls)
	}
}

func TestIdempotencyRejectsConcurrentRetry(t *testing.T) {
	store := newMemoryIdempotencyStore()
	var (
		handler http.Handler
		inner   *httptest.ResponseRecorder
	)
	calls := 0
	handler = Idempotency(store, time.Minute, logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			inner = httptest.NewRecorder()
			handler.ServeHTTP(inner, checkoutRequest("k1", `{"method":"cash"}`))
		}
		w.WriteHeader(http.StatusOK)
	}))

	outer := httptest.NewRecorder()
	handler.ServeHTTP(outer, checkoutRequest("k1", `{"method":"cash"}`))

	if calls != 1 {
		t.Fatalf("expected retry to be held back, ran %d times", calls)
	}
	if inner == nil || inner.Code != http.StatusConflict {
		t.Fatalf("expected in-progress retry to get 409, got %+v", inner)
	}
	if outer.Code != http.StatusOK {
		t.Fatalf("expected original request to succeed, got %d", outer.Code)
	}
}
