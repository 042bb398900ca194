package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"gussgame/src/app/http/response"
	"gussgame/src/infra/logger"
)

// Recovery turns a panic into a logged 500 response. Register it first.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				requestID := GetRequestID(c)

				logger.WithRequestID(log, requestID).Error("panic recovered",
					"error", err,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
					"stack", string(debug.Stack()),
				)

				response.InternalError(c, requestID)
			}
		}()

		c.Next()
	}
}
