package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gussgame/src/core/domain"
	"gussgame/src/core/ports"
	"gussgame/src/infra/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticAuth map[string]*ports.Principal

func (a staticAuth) Authenticate(token string) (*ports.Principal, error) {
	if p, ok := a[token]; ok {
		return p, nil
	}
	return nil, errors.New("bad token")
}

func TestAuth_TokenSources(t *testing.T) {
	admin := &ports.Principal{UserID: uuid.New(), Username: "admin", Role: domain.RoleAdmin}
	alice := &ports.Principal{UserID: uuid.New(), Username: "alice", Role: domain.RoleSurvivor}
	authn := staticAuth{"admin-token": admin, "alice-token": alice}

	r := gin.New()
	r.Use(RequestID(), Auth(authn))
	r.GET("/me", func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		require.True(t, ok)
		c.String(http.StatusOK, p.Username)
	})
	r.POST("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, tc := range []struct {
		name   string
		method string
		path   string
		setup  func(*http.Request)
		code   int
	}{
		{"cookie", http.MethodGet, "/me", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: TokenCookie, Value: "alice-token"})
		}, http.StatusOK},
		{"bearer", http.MethodGet, "/me", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer alice-token")
		}, http.StatusOK},
		{"missing", http.MethodGet, "/me", func(*http.Request) {}, http.StatusUnauthorized},
		{"wrong scheme", http.MethodGet, "/me", func(r *http.Request) {
			r.Header.Set("Authorization", "Basic alice-token")
		}, http.StatusUnauthorized},
		{"survivor on admin route", http.MethodPost, "/admin", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer alice-token")
		}, http.StatusForbidden},
		{"admin on admin route", http.MethodPost, "/admin", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer admin-token")
		}, http.StatusNoContent},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			tc.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.code, w.Code)
		})
	}
}

func TestKeyedRateLimiter(t *testing.T) {
	l := NewKeyedRateLimiter(0.001, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("a"))
	}
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
}

func TestKeyedRateLimiter_PrunesIdleEntries(t *testing.T) {
	l := NewKeyedRateLimiter(1, 1)
	old := time.Now().Add(-2 * limiterIdleTTL)
	for i := 0; i < limiterCleanupThreshold; i++ {
		l.limiter(uuid.NewString(), old)
	}
	require.Len(t, l.entries, limiterCleanupThreshold)

	l.limiter("fresh", time.Now())
	assert.Len(t, l.entries, 1)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://game.example"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://game.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://game.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	_, err := uuid.Parse(w.Body.String())
	assert.NoError(t, err)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(logger.Discard()), RequestID())
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}
