// Package ratelimit throttles requests per client IP.
package ratelimit

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"garaadka-laundry/internal/pkg/rest_err"
)

// idleTTL is how long an IP's limiter survives without traffic.
const idleTTL = 10 * time.Minute

type IPRateLimiter struct {
	mu       sync.Mutex
	limiters *cache.Cache
	r        rate.Limit
	b        int
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		limiters: cache.New(idleTTL, idleTTL),
		r:        r,
		b:        b,
	}
}

// GetLimiter returns the limiter for ip, creating it on first use. Each hit
// extends its lifetime.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	if v, ok := i.limiters.Get(ip); ok {
		l := v.(*rate.Limiter)
		i.limiters.SetDefault(ip, l)
		return l
	}
	l := rate.NewLimiter(i.r, i.b)
	i.limiters.SetDefault(ip, l)
	return l
}

func (i *IPRateLimiter) Allow(ip string) bool {
	return i.GetLimiter(ip).Allow()
}

// Middleware rejects over-limit clients with 429.
func Middleware(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			restErr := rest_err.NewTooManyRequestsError("Too many requests, please try again later")
			c.AbortWithStatusJSON(restErr.Code, restErr)
			return
		}
		c.Next()
	}
}
