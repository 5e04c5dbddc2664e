package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"trimline/internal/pkg/config"
	"trimline/internal/telemetry"
)

// ipRateLimiter stores a rate limiter per client IP.
type ipRateLimiter struct {
	ips map[string]*rate.Limiter
	mu  sync.Mutex
	r   rate.Limit
	b   int
}

func (i *ipRateLimiter) limiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	if l, ok := i.ips[ip]; ok {
		return l
	}
	l := rate.NewLimiter(i.r, i.b)
	i.ips[ip] = l
	return l
}

// RateLimiter rejects requests exceeding the per-IP budget with 429.
func RateLimiter(cfg config.RateConfig) gin.HandlerFunc {
	limiter := &ipRateLimiter{
		ips: make(map[string]*rate.Limiter),
		r:   rate.Limit(cfg.RequestsPerSecond),
		b:   cfg.Burst,
	}
	return func(c *gin.Context) {
		if !limiter.limiter(c.ClientIP()).Allow() {
			telemetry.RateLimitRejects.Inc()
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
