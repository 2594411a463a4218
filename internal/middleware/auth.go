package middleware

import (
	"crypto/subtle"

	"github.com/GoPolymarket/econgate/internal/config"
	"github.com/GoPolymarket/econgate/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

const (
	HeaderGatewayKey = "X-Gateway-Key"
	ContextClientKey = "client"

	AnonymousClient = "anonymous"
	// DefaultClient is the id given to callers presenting auth.api_key.
	DefaultClient = "default"
)

// AuthMiddleware resolves the calling client from X-Gateway-Key. Keys are
// matched against auth.api_key and the auth.clients table; without a key the
// caller is anonymous unless auth.require_api_key is set.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(HeaderGatewayKey)
		if apiKey == "" {
			if cfg != nil && !cfg.Auth.RequireAPIKey {
				c.Set(ContextClientKey, AnonymousClient)
				c.Next()
				return
			}
			c.Error(apperrors.New(apperrors.ErrAuthFailed, "missing API key", nil))
			c.Abort()
			return
		}

		clientID, ok := lookupClient(cfg, apiKey)
		if !ok {
			c.Error(apperrors.New(apperrors.ErrAuthFailed, "invalid API key", nil))
			c.Abort()
			return
		}

		c.Set(ContextClientKey, clientID)
		c.Next()
	}
}

func lookupClient(cfg *config.Config, apiKey string) (string, bool) {
	if cfg == nil {
		return "", false
	}
	if cfg.Auth.APIKey != "" && keyEqual(cfg.Auth.APIKey, apiKey) {
		return DefaultClient, true
	}
	for id, key := range cfg.Auth.Clients {
		if key != "" && keyEqual(key, apiKey) {
			return id, true
		}
	}
	return "", false
}

func keyEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// ClientID returns the client resolved by AuthMiddleware, or "" when the
// request did not pass through it.
func ClientID(c *gin.Context) string {
	return c.GetString(ContextClientKey)
}
