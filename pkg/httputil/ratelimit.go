package httputil

import (
	"net/http"
	"strconv"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines per-client rate limiting
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per client
	RequestsPerSecond float64
	// Burst allows temporary bursts above the rate
	Burst int
	// MaxClients bounds the number of tracked clients; the least recently
	// seen client is forgotten first
	MaxClients int
	// TrustProxy keys clients by X-Forwarded-For
	TrustProxy bool
}

// DefaultRateLimitConfig returns default rate limit settings
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 1,
		Burst:             5,
		MaxClients:        10000,
	}
}

// RateLimiter limits requests per client IP with a token bucket each
type RateLimiter struct {
	config   RateLimitConfig
	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
	logger   *logrus.Logger
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config RateLimitConfig, logger *logrus.Logger) (*RateLimiter, error) {
	if config.MaxClients <= 0 {
		config.MaxClients = DefaultRateLimitConfig().MaxClients
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}
	cache, err := lru.New[string, *rate.Limiter](config.MaxClients)
	if err != nil {
		return nil, err
	}
	return &RateLimiter{
		config:   config,
		limiters: cache,
		logger:   logger,
	}, nil
}

// getLimiter returns the limiter for key, creating it on first use
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.Burst)
		rl.limiters.Add(key, limiter)
	}
	return limiter
}

// Allow reports whether a request from key may proceed now
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Handler returns the rate limiting middleware
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := ClientIP(r, rl.config.TrustProxy)

		if !rl.Allow(key) {
			rl.logger.WithFields(logrus.Fields{
				"client": key,
				"path":   r.URL.Path,
				"method": r.Method,
			}).Warn("Rate limit exceeded")

			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(rl.config.RequestsPerSecond)))
			WriteTooManyRequests(w, "Too many requests, please try again later")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func retryAfterSeconds(rps float64) int {
	if rps <= 0 || rps >= 1 {
		return 1
	}
	return int(1/rps + 0.5)
}
