package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	post := func(h http.Handler, addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/validate-user", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	t.Run("refuses after burst per IP", func(t *testing.T) {
		limited := 0
		rl := NewRateLimiter(1, 2, WithOnLimited(func(*http.Request) { limited++ }))
		h := rl.Limit(ok)

		assert.Equal(t, http.StatusOK, post(h, "203.0.113.1:1"))
		assert.Equal(t, http.StatusOK, post(h, "203.0.113.1:2"))
		assert.Equal(t, http.StatusTooManyRequests, post(h, "203.0.113.1:3"))
		assert.Equal(t, http.StatusOK, post(h, "203.0.113.2:1"), "other clients are unaffected")
		assert.Equal(t, 1, limited)
	})

	t.Run("GET is never limited", func(t *testing.T) {
		h := NewRateLimiter(1, 1).Limit(ok)
		for range 5 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/validate-user", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("zero rate disables limiting", func(t *testing.T) {
		h := NewRateLimiter(0, 0).Limit(ok)
		for range 20 {
			assert.Equal(t, http.StatusOK, post(h, "203.0.113.1:1"))
		}
	})

	t.Run("sweep drops idle limiters", func(t *testing.T) {
		now := time.Now()
		rl := NewRateLimiter(60, 1)
		rl.now = func() time.Time { return now }
		rl.allow("203.0.113.9")

		now = now.Add(limiterIdleTTL + time.Second)
		rl.sweep()

		assert.Empty(t, rl.limiters)
	})
}
