package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

// CORS allows credentialed requests from the configured origins and
// short-circuits OPTIONS preflight requests. With no origins configured the
// request's own Origin is reflected.
func CORS(origins []string) gin.HandlerFunc {
	const (
		allowedMethods = "GET, POST, OPTIONS"
		allowedHeaders = "Content-Type, Authorization, X-Request-ID"
		maxAge         = "600"
	)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (len(origins) == 0 || slices.Contains(origins, origin)) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", allowedMethods)
			c.Header("Access-Control-Allow-Headers", allowedHeaders)
			c.Header("Access-Control-Max-Age", maxAge)
			c.Header("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
