package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimiter is a per-client-IP limiter for the submission endpoint.
type RateLimiter struct {
	lim *limiter.Limiter
}

// NewRateLimiter builds a limiter from a formatted rate such as "30-M"
// or "10-S". An unparsable rate falls back to 10 requests per second.
func NewRateLimiter(rate string, store limiter.Store) *RateLimiter {
	if store == nil {
		store = memory.NewStore()
	}
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		r = limiter.Rate{Period: time.Second, Limit: 10}
	}
	return &RateLimiter{lim: limiter.New(store, r)}
}

// Middleware returns the gin middleware.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lctx, err := l.lim.Get(c, "ip:"+c.ClientIP())
		if err != nil {
			// Limiter store failure never blocks traffic.
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		resetSec := int(time.Until(time.Unix(lctx.Reset, 0)).Seconds())
		if resetSec < 0 {
			resetSec = 0
		}
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if lctx.Reached {
			c.Header("Retry-After", strconv.Itoa(resetSec))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too Many Requests"})
			return
		}
		c.Next()
	}
}
