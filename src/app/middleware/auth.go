package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"gussgame/src/app/http/response"
	"gussgame/src/core/ports"
)

const (
	// TokenCookie is the cookie carrying the session token.
	TokenCookie = "token"

	principalKey = "principal"
)

// Authenticator resolves a session token to the calling principal.
type Authenticator interface {
	Authenticate(token string) (*ports.Principal, error)
}

// Auth requires a valid session token from the token cookie or an
// Authorization: Bearer header and stores the principal in the context.
func Auth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := auth.Authenticate(tokenFromRequest(c))
		if err != nil {
			response.Unauthorized(c, "authentication required", GetRequestID(c))
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireAdmin rejects callers without the admin role. It must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			response.Unauthorized(c, "authentication required", GetRequestID(c))
			return
		}
		if !p.IsAdmin() {
			response.Forbidden(c, "admin role required", GetRequestID(c))
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the principal stored by Auth.
func GetPrincipal(c *gin.Context) (*ports.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	p, ok := v.(*ports.Principal)
	return p, ok
}

func tokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(TokenCookie); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
