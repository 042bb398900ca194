package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gussgame/src/app/http/dto"
	"gussgame/src/app/http/response"
	"gussgame/src/app/middleware"
	"gussgame/src/core/usecase"
)

// AuthHandler handles login, logout and the current-user endpoint.
type AuthHandler struct {
	authService  *usecase.AuthService
	tokenTTL     time.Duration
	cookieSecure bool
}

func NewAuthHandler(authService *usecase.AuthService, tokenTTL time.Duration, cookieSecure bool) *AuthHandler {
	return &AuthHandler{authService: authService, tokenTTL: tokenTTL, cookieSecure: cookieSecure}
}

// Login signs in or registers the user and sets the session cookie.
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "username and password are required", middleware.GetRequestID(c))
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}

	h.setTokenCookie(c, res.Token, int(h.tokenTTL.Seconds()))
	response.OK(c, dto.LoginResponse{Token: res.Token, User: dto.UserFromDomain(res.User)})
}

// Logout clears the session cookie.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setTokenCookie(c, "", -1)
	response.OK(c, dto.MessageResponse{Message: "logged out"})
}

// Me returns the authenticated caller.
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Unauthorized(c, "authentication required", middleware.GetRequestID(c))
		return
	}
	response.OK(c, dto.MeResponse{User: dto.UserFromPrincipal(p)})
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, maxAge, "/", "", h.cookieSecure, true)
}
