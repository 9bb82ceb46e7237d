package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/gorm/event-registration/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/authz"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/domain"
)

// RequireRole must run after VerifyJWT.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	policy := authz.RequireRole(roles...)

	return func(ctx *gin.Context) {
		err := authz.Authorize(CallerFromContext(ctx), policy)
		switch {
		case err == nil:
			ctx.Next()
		case errors.Is(err, authz.ErrUnauthenticated):
			response.RenderErr(ctx, response.ErrUnauthenticated(err))
		default:
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		}
	}
}
