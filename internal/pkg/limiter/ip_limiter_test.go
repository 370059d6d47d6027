package limiter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestMiddlewareRejectsOverBurst(t *testing.T) {
	req := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewIPRateLimiter(ctx, "test", rate.Every(time.Hour), 2)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for range 3 {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "203.0.113.5:4000"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		codes = append(codes, w.Code)
	}

	req.Equal([]int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	// other addresses have their own bucket
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.6:4000"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	req.Equal(http.StatusNoContent, w.Code)
}

func TestSweepDropsIdleVisitors(t *testing.T) {
	req := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewIPRateLimiter(ctx, "test", rate.Every(time.Second), 1)
	req.True(l.Allow("a"))
	l.GetLimiter("b")

	removed, remaining := l.sweep(time.Now())
	req.Equal(1, removed)
	req.Equal(1, remaining)

	removed, remaining = l.sweep(time.Now().Add(time.Minute))
	req.Equal(1, removed)
	req.Equal(0, remaining)
}
