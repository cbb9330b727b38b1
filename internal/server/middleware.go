package server

import (
	"net/http"
	"strings"
	"time"

	"live-auction/internal/identity"
	"live-auction/utils"

	"github.com/gin-gonic/gin"
)

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	})
}

// RequireUser resolves the bearer token to a verified user and aborts with
// 401 otherwise. Anonymous mutation is never allowed.
func RequireUser(verifier identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		u, err := verifier.Verify(token)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, err, "authentication required")
			c.Abort()
			return
		}
		c.Set("user", u)
		c.Next()
	}
}
