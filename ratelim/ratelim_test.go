package ratelim

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLimitPerIP(t *testing.T) {
	// Zero refill rate with burst 2: exactly two requests pass per IP.
	rl := NewRateLimiter(0, 2)
	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := do("10.0.0.1:1234"); code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, code)
		}
	}
	if code := do("10.0.0.1:1234"); code != http.StatusTooManyRequests {
		t.Fatalf("exhausted bucket: status = %d, want 429", code)
	}
	// A different client gets its own bucket.
	if code := do("10.0.0.2:1234"); code != http.StatusOK {
		t.Fatalf("fresh client: status = %d, want 200", code)
	}
}
