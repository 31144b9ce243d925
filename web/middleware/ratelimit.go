package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/apextelemetry/apextelemetry/logger"
	"github.com/apextelemetry/apextelemetry/web/entity"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = time.Hour

// RateLimitConfig configures rate limiting
type RateLimitConfig struct {
	RequestsPerMinute int
	KeyFunc           func(c *gin.Context) string
	Paths             []string // only these path prefixes are limited
	Methods           []string // empty means every method
}

// LoginRateLimitConfig limits credential submissions per client IP.
func LoginRateLimitConfig(perMinute int) RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: perMinute,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
		Paths:   []string{"/login", "/register"},
		Methods: []string{http.MethodPost},
	}
}

func (config RateLimitConfig) applies(c *gin.Context) bool {
	if len(config.Methods) > 0 {
		ok := false
		for _, m := range config.Methods {
			if c.Request.Method == m {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, p := range config.Paths {
		if strings.HasPrefix(c.Request.URL.Path, p) {
			return true
		}
	}
	return false
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

type limiterSet struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

func (s *limiterSet) allow(key string) (bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, e := range s.limiters {
		if now.Sub(e.lastAccess) > limiterIdleTTL {
			delete(s.limiters, k)
		}
	}

	e, ok := s.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.limiters[key] = e
	}
	e.lastAccess = now
	allowed := e.limiter.AllowN(now, 1)
	return allowed, int(e.limiter.TokensAt(now))
}

// RateLimitMiddleware keeps a token bucket per key in memory.
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	set := &limiterSet{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Every(time.Minute / time.Duration(config.RequestsPerMinute)),
		burst:    config.RequestsPerMinute,
		now:      time.Now,
	}
	return func(c *gin.Context) {
		if !config.applies(c) {
			c.Next()
			return
		}

		key := config.KeyFunc(c)
		allowed, remaining := set.allow(key)
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerMinute))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))

		if !allowed {
			logger.Warningf("Rate limit exceeded for %s on %s", key, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, entity.Msg{
				Success: false,
				Msg:     "Too many attempts. Please try again later.",
			})
			return
		}
		c.Next()
	}
}
