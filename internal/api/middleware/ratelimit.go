package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// LimitStore counts requests per key. Allow reports whether the request is
// within the limit, how many remain and when the window resets.
type LimitStore interface {
	Allow(ctx context.Context, key string) (bool, int, time.Time, error)
	Limit() int
}

// MemoryStore is a per-process sliding window limiter.
type MemoryStore struct {
	requests int
	window   time.Duration
	clients  map[string]*clientWindow
	mu       sync.RWMutex
	done     chan struct{}
	now      func() time.Time
}

type clientWindow struct {
	timestamps []time.Time
	mu         sync.Mutex
}

func NewMemoryStore(requests int, windowSeconds int) *MemoryStore {
	requests, window := normalizeLimit(requests, windowSeconds)
	s := &MemoryStore{
		requests: requests,
		window:   window,
		clients:  make(map[string]*clientWindow),
		done:     make(chan struct{}),
		now:      time.Now,
	}
	go s.cleanup(time.Minute)
	return s
}

func normalizeLimit(requests, windowSeconds int) (int, time.Duration) {
	if requests <= 0 {
		requests = 100
	}
	if windowSeconds <= 0 {
		windowSeconds = 60
	}
	return requests, time.Duration(windowSeconds) * time.Second
}

func (s *MemoryStore) Limit() int { return s.requests }

// Close stops the cleanup goroutine.
func (s *MemoryStore) Close() {
	close(s.done)
}

// cleanup drops clients with no activity in the last two windows.
func (s *MemoryStore) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
		}
		s.mu.Lock()
		now := s.now()
		for key, client := range s.clients {
			client.mu.Lock()
			if len(client.timestamps) == 0 || now.Sub(client.timestamps[len(client.timestamps)-1]) > s.window*2 {
				delete(s.clients, key)
			}
			client.mu.Unlock()
		}
		s.mu.Unlock()
	}
}

func (s *MemoryStore) Allow(_ context.Context, key string) (bool, int, time.Time, error) {
	s.mu.RLock()
	client, exists := s.clients[key]
	s.mu.RUnlock()

	if !exists {
		s.mu.Lock()
		if client, exists = s.clients[key]; !exists {
			client = &clientWindow{timestamps: make([]time.Time, 0, s.requests)}
			s.clients[key] = client
		}
		s.mu.Unlock()
	}

	client.mu.Lock()
	defer client.mu.Unlock()

	now := s.now()
	windowStart := now.Add(-s.window)

	valid := len(client.timestamps)
	for i, ts := range client.timestamps {
		if ts.After(windowStart) {
			valid = i
			break
		}
	}
	client.timestamps = client.timestamps[valid:]

	if len(client.timestamps) >= s.requests {
		return false, 0, client.timestamps[0].Add(s.window), nil
	}

	client.timestamps = append(client.timestamps, now)
	return true, s.requests - len(client.timestamps), now.Add(s.window), nil
}

// RedisStore is a fixed window limiter shared by every server instance.
type RedisStore struct {
	client   redis.Cmdable
	requests int
	window   time.Duration
	prefix   string
}

func NewRedisStore(client redis.Cmdable, requests int, windowSeconds int) *RedisStore {
	requests, window := normalizeLimit(requests, windowSeconds)
	return &RedisStore{client: client, requests: requests, window: window, prefix: "ratelimit:"}
}

func (s *RedisStore) Limit() int { return s.requests }

func (s *RedisStore) Allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	bucket := time.Now().Unix() / int64(s.window.Seconds())
	redisKey := fmt.Sprintf("%s%s:%d", s.prefix, key, bucket)
	reset := time.Unix((bucket+1)*int64(s.window.Seconds()), 0)

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, reset, fmt.Errorf("rate limit counter: %w", err)
	}

	count := int(incr.Val())
	if count > s.requests {
		return false, 0, reset, nil
	}
	return true, s.requests - count, reset, nil
}

var (
	_ LimitStore = (*MemoryStore)(nil)
	_ LimitStore = (*RedisStore)(nil)
)

// RateLimit limits requests per client IP. Store errors let the request
// through.
func RateLimit(store LimitStore, logger *slog.Logger) func(http.Handler) http.Handler {
	return limit(store, logger, func(r *http.Request) string {
		return getClientIP(r)
	})
}

// RateLimitByUser limits per authenticated user, falling back to the client IP.
func RateLimitByUser(store LimitStore, logger *slog.Logger) func(http.Handler) http.Handler {
	return limit(store, logger, func(r *http.Request) string {
		if userID := GetUserID(r.Context()); userID != uuid.Nil {
			return "user:" + userID.String()
		}
		return getClientIP(r)
	})
}

func limit(store LimitStore, logger *slog.Logger, keyFn func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, remaining, resetTime, err := store.Allow(r.Context(), keyFn(r))
			if err != nil {
				logger.Warn("rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(store.Limit()))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

			if !allowed {
				w.Header().Set("Retry-After", strconv.FormatInt(int64(time.Until(resetTime).Seconds())+1, 10))
				writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	// X-Forwarded-For lists the original client first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	if i := strings.LastIndex(ip, ":"); i >= 0 {
		return ip[:i]
	}
	return ip
}
