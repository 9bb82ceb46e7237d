package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/gorm/event-registration/internal/api/handler/v1/request"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/api/middleware"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/config"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/domain"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/pkg/jwthelper"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/service"
)

type AuthService interface {
	Signup(ctx context.Context, user domain.User) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type UserService interface {
	GetUser(ctx context.Context, id string) (domain.User, error)
}

type AuthHandler struct {
	conf  *config.APIConfig
	svc   AuthService
	users UserService
}

func NewAuthHandler(conf *config.APIConfig, svc AuthService, users UserService) *AuthHandler {
	return &AuthHandler{
		conf:  conf,
		svc:   svc,
		users: users,
	}
}

// HandleSignup godoc
// @Summary      Signup a new user
// @Description  Students and organisers can sign up. Admin accounts are seeded from configuration.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      request.SignupRequest  true  "request body"
// @Success      201      {object}  response.UserResponse
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /auth/register [post]
func (h *AuthHandler) HandleSignup(ctx *gin.Context) {
	var req request.SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.Signup(ctx.Request.Context(), domain.User{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserEmailExists):
			response.RenderErr(ctx, response.ErrConflict("User already exists", err))
		case errors.Is(err, service.ErrInvalidInput):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleSignup -> h.svc.Signup -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusCreated, response.UserResponse{
		Success: true,
		Data:    user,
	})
}

// HandleLogin godoc
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      request.LoginRequest  true  "request body"
// @Success      200      {object}  response.LoginResponse
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /auth/login [post]
func (h *AuthHandler) HandleLogin(ctx *gin.Context) {
	req := request.LoginRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	user, err := h.svc.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) || errors.Is(err, service.ErrWrongPassword) {
			response.RenderErr(ctx, response.ErrWrongCredentials(err))

			return
		}

		err = fmt.Errorf("v1.HandleLogin -> h.svc.Login -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	token, err := jwthelper.GenerateToken([]byte(h.conf.JWTSigningKey), user.ID, ctx.Request.UserAgent(), h.conf.JWTTTL)
	if err != nil {
		err = fmt.Errorf("v1.HandleLogin -> jwthelper.GenerateToken -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.LoginResponse{
		Success: true,
		Token:   token,
		User:    user,
	})
}

// HandleCheckEmail godoc
// @Summary      Check whether an email is registered
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      request.CheckEmailRequest  true  "request body"
// @Success      200      {object}  response.EmailExistsResponse
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /auth/check-email [post]
func (h *AuthHandler) HandleCheckEmail(ctx *gin.Context) {
	var req request.CheckEmailRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	exists, err := h.svc.EmailExists(ctx.Request.Context(), req.Email)
	if err != nil {
		err = fmt.Errorf("v1.HandleCheckEmail -> h.svc.EmailExists -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.EmailExistsResponse{
		Success: true,
		Exists:  exists,
	})
}

// HandleMe godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.UserResponse
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /auth/me [get]
// @Security BearerAuth
func (h *AuthHandler) HandleMe(ctx *gin.Context) {
	caller := middleware.CallerFromContext(ctx)
	if caller == nil {
		response.RenderErr(ctx, response.ErrUnauthenticated(service.ErrUnauthenticated))
		return
	}

	user, err := h.users.GetUser(ctx.Request.Context(), caller.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.RenderErr(ctx, response.ErrUnauthenticated(err))
			return
		}

		err = fmt.Errorf("v1.HandleMe -> h.users.GetUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.UserResponse{
		Success: true,
		Data:    user,
	})
}
