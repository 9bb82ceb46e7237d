package v1

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/gorm/event-registration/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/service"
)

// renderServiceErr maps a service error onto its HTTP response. op names the
// failing call for the server-side log of unclassified errors.
func renderServiceErr(ctx *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		response.RenderErr(ctx, response.ErrNotFound("Event", "id", ctx.Param("id")))
	case errors.Is(err, service.ErrRegistrationNotFound):
		if id := ctx.Param("registrationId"); id != "" {
			response.RenderErr(ctx, response.ErrNotFound("Registration", "id", id))
			return
		}
		response.RenderErr(ctx, response.ErrNotFound("Registration", "event", ctx.Param("id")))
	case errors.Is(err, service.ErrUnauthenticated):
		response.RenderErr(ctx, response.ErrUnauthenticated(err))
	case errors.Is(err, service.ErrForbidden):
		response.RenderErr(ctx, response.ErrPermissionDenied(err))
	case errors.Is(err, service.ErrInvalidInput):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	case errors.Is(err, service.ErrAlreadyRegistered):
		response.RenderErr(ctx, response.ErrConflict("Already registered", err))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err)))
	}
}
