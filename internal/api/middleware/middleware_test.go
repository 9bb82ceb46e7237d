package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yizeng/gab/gin/gorm/event-registration/internal/authz"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/domain"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/metrics"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/pkg/jwthelper"
)

const (
	testSigningKey = "test-signing-key-0123456789"
	testUserAgent  = "middleware-test"
)

type stubResolver map[string]domain.Identity

func (s stubResolver) ResolveCaller(_ context.Context, userID string) (domain.Identity, error) {
	if userID == "broken" {
		return domain.Identity{}, errors.New("db down")
	}

	caller, ok := s[userID]
	if !ok {
		return domain.Identity{}, authz.ErrUnauthenticated
	}

	return caller, nil
}

var resolver = stubResolver{
	"s1": {ID: "s1", Name: "Sam", Role: domain.RoleStudent},
	"a1": {ID: "a1", Name: "Ann", Role: domain.RoleAdmin},
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(requestid.New())
	chain := append(handlers, func(ctx *gin.Context) {
		caller := CallerFromContext(ctx)
		if caller == nil {
			ctx.String(http.StatusOK, "anonymous")
			return
		}
		ctx.String(http.StatusOK, caller.ID)
	})
	router.GET("/protected/:id", chain...)

	return router
}

func token(t *testing.T, userID string, ttl time.Duration) string {
	t.Helper()

	tok, err := jwthelper.GenerateToken([]byte(testSigningKey), userID, testUserAgent, ttl)
	require.NoError(t, err)

	return tok
}

func do(router http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected/1", nil)
	req.Header.Set("User-Agent", testUserAgent)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestVerifyJWT(t *testing.T) {
	router := newRouter(NewAuthenticator(testSigningKey, resolver).VerifyJWT())

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "valid", header: "Bearer " + token(t, "s1", time.Hour), wantStatus: http.StatusOK, wantBody: "s1"},
		{name: "lowercase scheme", header: "bearer " + token(t, "a1", time.Hour), wantStatus: http.StatusOK, wantBody: "a1"},
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer not.a.jwt", wantStatus: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + token(t, "s1", -time.Minute), wantStatus: http.StatusUnauthorized},
		{name: "unknown user", header: "Bearer " + token(t, "ghost", time.Hour), wantStatus: http.StatusUnauthorized},
		{name: "resolver failure", header: "Bearer " + token(t, "broken", time.Hour), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, tt.header)
			assert.Equal(t, tt.wantStatus, w.Code)

			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
				return
			}

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestVerifyJWT_UserAgentBinding(t *testing.T) {
	router := newRouter(NewAuthenticator(testSigningKey, resolver).VerifyJWT())

	req := httptest.NewRequest(http.MethodGet, "/protected/1", nil)
	req.Header.Set("User-Agent", "someone-else")
	req.Header.Set("Authorization", "Bearer "+token(t, "s1", time.Hour))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	auth := NewAuthenticator(testSigningKey, resolver)
	router := newRouter(auth.VerifyJWT(), RequireRole(domain.RoleAdmin))

	assert.Equal(t, http.StatusOK, do(router, "Bearer "+token(t, "a1", time.Hour)).Code)
	assert.Equal(t, http.StatusForbidden, do(router, "Bearer "+token(t, "s1", time.Hour)).Code)

	unauthenticated := newRouter(RequireRole(domain.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, do(unauthenticated, "").Code)
}

func TestCallerFromContext_Anonymous(t *testing.T) {
	w := do(newRouter(), "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())
}

func TestConfigCORS(t *testing.T) {
	router := gin.New()
	router.Use(ConfigCORS([]string{"https://app.example.com"}))
	router.GET("/ping", func(ctx *gin.Context) { ctx.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestConfigCORS_AllowAll(t *testing.T) {
	router := gin.New()
	router.Use(ConfigCORS(nil))
	router.GET("/ping", func(ctx *gin.Context) { ctx.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	router := gin.New()
	router.Use(Metrics())
	router.GET("/items/:id", func(ctx *gin.Context) { ctx.Status(http.StatusTeapot) })

	before := testutil.ToFloat64(metrics.RequestCounter.WithLabelValues("418", http.MethodGet, "/items/:id"))

	for _, id := range []string{"1", "2", "3"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
	}

	after := testutil.ToFloat64(metrics.RequestCounter.WithLabelValues("418", http.MethodGet, "/items/:id"))
	assert.Equal(t, 3.0, after-before)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.RequestInProgress.WithLabelValues(http.MethodGet, "/items/:id")))
}

func TestZapLogger(t *testing.T) {
	router := gin.New()
	router.Use(requestid.New(), ZapLogger())
	router.GET("/ok", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
