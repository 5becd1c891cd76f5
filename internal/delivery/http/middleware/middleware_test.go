package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/befriend-app/befriend-backend/internal/domain"
	"github.com/befriend-app/befriend-backend/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type tokenTable map[string]*domain.Identity

func (t tokenTable) Verify(_ context.Context, token string) (*domain.Identity, error) {
	if id, ok := t[token]; ok {
		return id, nil
	}
	return nil, fmt.Errorf("%w: unknown token", domain.ErrInvalidToken)
}

func whoami(c *gin.Context) {
	id, ok := IdentityFrom(c)
	if !ok {
		c.String(http.StatusInternalServerError, "no identity")
		return
	}
	c.String(http.StatusOK, id.UID)
}

func TestRequireAuth(t *testing.T) {
	auth := NewAuthMiddleware(tokenTable{"good": {UID: "u1"}}, nil)
	r := gin.New()
	r.GET("/who", auth.RequireAuth(), whoami)

	tests := []struct {
		name   string
		header string
		code   int
		body   string
	}{
		{"no header", "", http.StatusUnauthorized, "Missing bearer token"},
		{"wrong scheme", "Basic Z29vZA==", http.StatusUnauthorized, "Missing bearer token"},
		{"empty token", "Bearer   ", http.StatusUnauthorized, "Missing bearer token"},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, "Invalid token"},
		{"valid", "Bearer good", http.StatusOK, "u1"},
		{"lowercase scheme", "bearer good", http.StatusOK, "u1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/who", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.POST("/discover", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/discover", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodPost, "/discover", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestKeyedRateLimiter(t *testing.T) {
	now := time.Now()
	l := NewKeyedRateLimiter(60, 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))

	now = now.Add(time.Second)
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
}

func TestKeyedRateLimiterPrunesIdle(t *testing.T) {
	now := time.Now()
	l := NewKeyedRateLimiter(60, 1)
	l.now = func() time.Time { return now }

	for i := 0; i <= pruneThreshold; i++ {
		l.Allow(fmt.Sprintf("k%d", i))
	}
	require.Equal(t, pruneThreshold+1, l.size())

	now = now.Add(maxIdle + time.Minute)
	l.Allow("fresh")
	assert.Equal(t, 1, l.size())
}

func TestRateLimitByUser(t *testing.T) {
	limiter := NewKeyedRateLimiter(1, 1)
	r := gin.New()
	r.POST("/discover", func(c *gin.Context) {
		SetIdentity(c, &domain.Identity{UID: c.GetHeader("X-UID")})
		c.Next()
	}, RateLimitByUser(limiter), func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(uid string) int {
		req := httptest.NewRequest(http.MethodPost, "/discover", nil)
		req.Header.Set("X-UID", uid)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("u1"))
	assert.Equal(t, http.StatusTooManyRequests, do("u1"))
	assert.Equal(t, http.StatusOK, do("u2"))
}

func TestRequestIDAndAccessLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), AccessLog(zap.New(core), metrics.New()))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	generated := rec.Header().Get(requestIDHeader)
	assert.Len(t, generated, 36)

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "/health", entries[0].ContextMap()["route"])
	assert.Equal(t, generated, entries[0].ContextMap()["request_id"])
	assert.Equal(t, "unmatched", entries[1].ContextMap()["route"])
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
}
