package middleware

import (
	"net/http"
	"strings"

	apperrors "unreal-mcp-go/internal/errors"

	"github.com/gin-gonic/gin"
)

// AuthConfig configures APIKeyAuth.
type AuthConfig struct {
	// Required reports whether a key must be presented; nil means always.
	Required func() bool
	// Validate checks a presented key.
	Validate func(key string) bool
}

// APIKeyAuth accepts the key from `Authorization: Bearer`, `x-api-key`, or
// the `key` query parameter (for websocket clients that cannot set headers).
func APIKeyAuth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Validate == nil || (cfg.Required != nil && !cfg.Required()) {
			c.Next()
			return
		}
		key := extractAPIKey(c)
		if key == "" {
			abortUnauthorized(c, "missing API key")
			return
		}
		if !cfg.Validate(key) {
			abortUnauthorized(c, "invalid API key")
			return
		}
		c.Set("api_key_present", true)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, apperrors.Payload{
		Status: "error",
		Error:  msg,
		Kind:   "unauthorized",
	})
}

func extractAPIKey(c *gin.Context) string {
	auth := strings.TrimSpace(c.GetHeader("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	if v := strings.TrimSpace(c.GetHeader("x-api-key")); v != "" {
		return v
	}
	return strings.TrimSpace(c.Query("key"))
}
