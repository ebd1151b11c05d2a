package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/auth"
	"github.com/YisakTolla/VolunteerSync-sub001/pkg/util"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMemoryStore_Allow(t *testing.T) {
	store := NewMemoryStore(3, 60)
	defer store.Close()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, remaining, _, err := store.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 2-i, remaining)
	}

	allowed, remaining, reset, err := store.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
	assert.True(t, reset.After(time.Now()))

	allowed, _, _, err = store.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, allowed, "other clients have their own window")
}

func TestMemoryStore_WindowSlides(t *testing.T) {
	store := NewMemoryStore(2, 60)
	defer store.Close()
	ctx := context.Background()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Allow(ctx, "k")
	store.Allow(ctx, "k")
	allowed, _, _, _ := store.Allow(ctx, "k")
	assert.False(t, allowed)

	now = now.Add(61 * time.Second)
	allowed, remaining, _, _ := store.Allow(ctx, "k")
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining)
}

func TestMemoryStore_Defaults(t *testing.T) {
	store := NewMemoryStore(0, 0)
	defer store.Close()
	assert.Equal(t, 100, store.Limit())
	assert.Equal(t, time.Minute, store.window)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := NewMemoryStore(50, 60)
	defer store.Close()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _, _, _ := store.Allow(context.Background(), "shared")
			if ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}

func TestRateLimit_Headers(t *testing.T) {
	store := NewMemoryStore(1, 60)
	defer store.Close()
	handler := RateLimit(store, util.DiscardLogger())(okHandler())

	req := httptest.NewRequest("GET", "/api/events", nil)
	req.RemoteAddr = "10.0.0.1:5000"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "Rate limit exceeded")
}

func TestRateLimitByUser(t *testing.T) {
	store := NewMemoryStore(1, 60)
	defer store.Close()
	handler := RateLimitByUser(store, util.DiscardLogger())(okHandler())

	send := func(userID uuid.UUID) int {
		req := httptest.NewRequest("GET", "/api/events", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		req = req.WithContext(WithClaims(req.Context(), &auth.Claims{UserID: userID}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	alice, bob := uuid.New(), uuid.New()
	assert.Equal(t, http.StatusOK, send(alice))
	assert.Equal(t, http.StatusTooManyRequests, send(alice))
	assert.Equal(t, http.StatusOK, send(bob), "same IP, different user")
}

func TestRateLimit_StoreFailureAllows(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	handler := RateLimit(NewRedisStore(client, 1, 60), util.DiscardLogger())(okHandler())

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/events", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{"forwarded list", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.2:80", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "203.0.113.8"}, "10.0.0.2:80", "203.0.113.8"},
		{"remote addr", nil, "192.0.2.1:1234", "192.0.2.1"},
		{"no port", nil, "192.0.2.1", "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, getClientIP(req))
		})
	}
}
