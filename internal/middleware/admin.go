package middleware

import (
	"github.com/GoPolymarket/econgate/internal/config"
	"github.com/GoPolymarket/econgate/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

const HeaderAdminKey = "X-Admin-Key"

// AdminMiddleware guards operator endpoints (audit, rejections).
func AdminMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg == nil || cfg.Auth.AdminKey == "" {
			c.Error(apperrors.New(apperrors.ErrForbidden, "admin key not configured", nil))
			c.Abort()
			return
		}
		if !keyEqual(c.GetHeader(HeaderAdminKey), cfg.Auth.AdminKey) {
			c.Error(apperrors.New(apperrors.ErrAuthFailed, "invalid admin key", nil))
			c.Abort()
			return
		}
		c.Next()
	}
}
