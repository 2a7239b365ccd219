package middleware

import (
	"net/http"

	"github.com/bizlab-kr/leadbot/internal/observability"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuditMiddleware logs every successful write on the admin surface.
func AuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if !isWrite(method) {
			c.Next()
			return
		}

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		observability.Logger().Info("admin change",
			zap.String("action", mapHTTPMethodToAction(method)),
			zap.String("route", c.FullPath()),
			zap.String("step", c.Param("step")),
			zap.String("ip_address", c.ClientIP()),
			zap.String("request_id", c.GetString(RequestIDKey)),
			zap.Int("status", status),
		)
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// mapHTTPMethodToAction maps HTTP methods to audit actions
func mapHTTPMethodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "unknown"
	}
}
