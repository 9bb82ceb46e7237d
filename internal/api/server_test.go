package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yizeng/gab/gin/gorm/event-registration/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	// No connection is made until a query runs.
	db, err := gorm.Open(postgres.Open("host=127.0.0.1 port=1 user=none dbname=none sslmode=disable"), &gorm.Config{
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	conf := &config.AppConfig{
		API: &config.APIConfig{
			Environment:   "test",
			Port:          "8080",
			BaseURL:       "localhost:8080",
			JWTSigningKey: "0123456789abcdef0123",
			JWTTTL:        time.Hour,
		},
		Gin:    &config.GinConfig{Mode: "test"},
		Ticket: &config.TicketConfig{QRSize: 256},
	}

	return NewServer(conf, db)
}

func TestServer_Routes(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/api", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/swagger/index.html", http.StatusOK},
		{http.MethodPost, "/api/events", http.StatusUnauthorized},
		{http.MethodPut, "/api/events/e1", http.StatusUnauthorized},
		{http.MethodDelete, "/api/events/e1", http.StatusUnauthorized},
		{http.MethodPost, "/api/events/e1/register", http.StatusUnauthorized},
		{http.MethodGet, "/api/events/e1/registrations", http.StatusUnauthorized},
		{http.MethodGet, "/api/events/e1/registrations/export", http.StatusUnauthorized},
		{http.MethodGet, "/api/events/e1/ticket", http.StatusUnauthorized},
		{http.MethodGet, "/api/events/admin/all", http.StatusUnauthorized},
		{http.MethodPost, "/api/events/e1/recount", http.StatusUnauthorized},
		{http.MethodGet, "/api/auth/me", http.StatusUnauthorized},
		{http.MethodGet, "/api/nowhere", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			s.Router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestServer_RequestID(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080", publicURL("localhost:8080"))
	assert.Equal(t, "https://events.example.com", publicURL("https://events.example.com"))
}
