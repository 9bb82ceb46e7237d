package v1

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yizeng/gab/gin/gorm/event-registration/internal/api/middleware"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/config"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/domain"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/pkg/jwthelper"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/service"
)

const testSigningKey = "0123456789abcdef0123"

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Signup(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (domain.User, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockAuthService) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) GetUser(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func newAuthRouter(svc *mockAuthService, users *mockUserService, caller *domain.Identity) *gin.Engine {
	conf := &config.APIConfig{JWTSigningKey: testSigningKey, JWTTTL: time.Hour}
	h := NewAuthHandler(conf, svc, users)

	router := gin.New()
	router.Use(func(ctx *gin.Context) {
		if caller != nil {
			middleware.SetCaller(ctx, caller)
		}
	})
	router.POST("/api/auth/register", h.HandleSignup)
	router.POST("/api/auth/login", h.HandleLogin)
	router.POST("/api/auth/check-email", h.HandleCheckEmail)
	router.GET("/api/auth/me", h.HandleMe)

	return router
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestHandleSignup(t *testing.T) {
	svc := new(mockAuthService)
	router := newAuthRouter(svc, new(mockUserService), nil)

	svc.On("Signup", mock.Anything, domain.User{
		Email: "ada@example.com", Password: "secret123", Name: "Ada", Role: domain.RoleStudent,
	}).Return(domain.User{ID: "u1", Email: "ada@example.com", Name: "Ada", Role: domain.RoleStudent}, nil)
	svc.On("Signup", mock.Anything, mock.MatchedBy(func(u domain.User) bool { return u.Email == "taken@example.com" })).
		Return(domain.User{}, service.ErrUserEmailExists)

	w := serve(router, http.MethodPost, "/api/auth/register", `{"name":"Ada","email":"ada@example.com","password":"secret123"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	data := body["data"].(map[string]any)
	assert.Equal(t, "student", data["role"])
	assert.NotContains(t, data, "password")

	w = serve(router, http.MethodPost, "/api/auth/register", `{"name":"Ada","email":"taken@example.com","password":"secret123"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User already exists", decode(t, w)["message"])

	w = serve(router, http.MethodPost, "/api/auth/register", `{"name":"Ada","email":"ada@example.com","password":"secret123","role":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertExpectations(t)
}

func TestHandleLogin(t *testing.T) {
	svc := new(mockAuthService)
	router := newAuthRouter(svc, new(mockUserService), nil)

	svc.On("Login", mock.Anything, "ada@example.com", "secret123").
		Return(domain.User{ID: "u1", Email: "ada@example.com", Role: domain.RoleStudent}, nil)
	svc.On("Login", mock.Anything, "ada@example.com", "wrong").Return(domain.User{}, service.ErrWrongPassword)
	svc.On("Login", mock.Anything, "nobody@example.com", mock.Anything).Return(domain.User{}, service.ErrUserNotFound)

	w := serve(router, http.MethodPost, "/api/auth/login", `{"email":"ada@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	claims, err := jwthelper.ParseToken([]byte(testSigningKey), token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "test-agent", claims.UserAgent)

	for _, payload := range []string{
		`{"email":"ada@example.com","password":"wrong"}`,
		`{"email":"nobody@example.com","password":"secret123"}`,
	} {
		w = serve(router, http.MethodPost, "/api/auth/login", payload)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid email or password", decode(t, w)["message"])
	}

	w = serve(router, http.MethodPost, "/api/auth/login", `{"email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleCheckEmail(t *testing.T) {
	svc := new(mockAuthService)
	router := newAuthRouter(svc, new(mockUserService), nil)
	svc.On("EmailExists", mock.Anything, "ada@example.com").Return(true, nil)

	w := serve(router, http.MethodPost, "/api/auth/check-email", `{"email":"ada@example.com"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["exists"])
}

func TestHandleMe(t *testing.T) {
	users := new(mockUserService)
	users.On("GetUser", mock.Anything, "u1").Return(domain.User{ID: "u1", Name: "Ann", Role: domain.RoleOrganiser}, nil)

	w := serve(newAuthRouter(new(mockAuthService), users, testCaller), http.MethodGet, "/api/auth/me", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ann", decode(t, w)["data"].(map[string]any)["name"])

	w = serve(newAuthRouter(new(mockAuthService), users, nil), http.MethodGet, "/api/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
