package response

import (
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var exposeErrorDetails atomic.Bool

// SetExposeErrorDetails controls whether the raw error string is sent to
// clients in the "error" field. It is safe to call while serving.
func SetExposeErrorDetails(expose bool) {
	exposeErrorDetails.Store(expose)
}

type Err struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"Event not found"`
	Detail  string `json:"error,omitempty"`
}

func (e *Err) Error() string {
	if e.Err == nil {
		return e.Message
	}

	return e.Err.Error()
}

func RenderErr(ctx *gin.Context, e *Err) {
	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("request_id", requestid.Get(ctx)),
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
			zap.Error(e.Err),
		)
	}

	if exposeErrorDetails.Load() && e.Err != nil {
		e.Detail = e.Err.Error()
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

func ErrBadRequest(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		Message:        err.Error(),
	}
}

func ErrNotFound(resource, key string, value any) *Err {
	return &Err{
		Err:            fmt.Errorf("%v with %v=%v not found", resource, key, value),
		HTTPStatusCode: http.StatusNotFound,
		Message:        fmt.Sprintf("%v not found", resource),
	}
}

func ErrConflict(message string, err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		Message:        message,
	}
}

func ErrUnauthenticated(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		Message:        "Not authorized, no valid token",
	}
}

func ErrWrongCredentials(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		Message:        "Invalid email or password",
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusForbidden,
		Message:        "Not authorized to perform this action",
	}
}

// ErrInternalServerError hides err behind a generic message; it is logged by
// RenderErr and only sent to clients when details are exposed.
func ErrInternalServerError(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		Message:        "Server Error",
	}
}
