package middleware

import (
	"net/http"
	"strings"

	"github.com/GoPolymarket/econgate/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

// ReadOnlyMiddleware blocks state-changing requests. Contract checks are
// pure, so POSTs under /v1/contracts stay open; event publishing does not.
func ReadOnlyMiddleware(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		method := c.Request.Method
		switch method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if method == http.MethodPost && strings.HasPrefix(c.FullPath(), "/v1/contracts/") {
			c.Next()
			return
		}
		c.Error(apperrors.New(apperrors.ErrReadOnly, "read-only mode enabled", nil))
		c.Abort()
	}
}
