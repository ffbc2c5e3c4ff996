package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireCredentials rejects every request while any required environment
// variable is unset. missing is computed once at startup.
func RequireCredentials(missing []string) gin.HandlerFunc {
	message := "Missing environment variables: " + strings.Join(missing, ", ")

	return func(c *gin.Context) {
		if len(missing) == 0 {
			c.Next()
			return
		}

		slog.ErrorContext(c.Request.Context(), "relay credentials not configured", "missing", missing)
		c.String(http.StatusInternalServerError, message)
		c.Abort()
	}
}
