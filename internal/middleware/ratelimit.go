package middleware

import (
	"sync"

	"github.com/GoPolymarket/econgate/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ClientLimiter hands out one token bucket per client id.
type ClientLimiter struct {
	mu       sync.Mutex
	qps      rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

func NewClientLimiter(qps float64, burst int) *ClientLimiter {
	return &ClientLimiter{
		qps:      rate.Limit(qps),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *ClientLimiter) Get(clientID string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	limiter, ok := l.limiters[clientID]
	if !ok {
		limiter = rate.NewLimiter(l.qps, l.burst)
		l.limiters[clientID] = limiter
	}
	return limiter
}

// RateLimitMiddleware must run after AuthMiddleware. A limiter with a zero
// rate disables limiting.
func RateLimitMiddleware(limiter *ClientLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limiter.qps <= 0 {
			c.Next()
			return
		}
		clientID := ClientID(c)
		if clientID == "" {
			c.Error(apperrors.New(apperrors.ErrAuthFailed, "unauthorized", nil))
			c.Abort()
			return
		}

		if !limiter.Get(clientID).Allow() {
			c.Header("Retry-After", "1")
			c.Error(apperrors.New(apperrors.ErrRateLimited, "rate limit exceeded", nil))
			c.Abort()
			return
		}

		c.Next()
	}
}
