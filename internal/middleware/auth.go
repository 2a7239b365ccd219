package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/bizlab-kr/leadbot/internal/observability"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Admin credentials may arrive as a header or as the cookie set by the admin panel.
const (
	AdminTokenHeader = "X-Admin-Token"
	AdminTokenCookie = "admin_token"
)

const (
	msgAdminDisabled     = "관리자 기능이 설정되지 않았습니다."
	msgAdminUnauthorized = "관리자 인증이 필요합니다."
)

// RequireAdmin gates question mutations behind the shared admin secret.
// An empty secret disables the admin surface entirely.
func RequireAdmin(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			observability.Logger().Warn("admin request rejected: ADMIN_SECRET is not set",
				zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": msgAdminDisabled})
			return
		}

		if !IsAuthorized(c, secret) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgAdminUnauthorized})
			return
		}

		c.Next()
	}
}

// IsAuthorized reports whether the request carries the admin secret.
func IsAuthorized(c *gin.Context, secret string) bool {
	token := c.GetHeader(AdminTokenHeader)
	if token == "" {
		token, _ = c.Cookie(AdminTokenCookie)
	}
	if token == "" || secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}
