package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/gorm/event-registration/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/authz"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/domain"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/pkg/jwthelper"
)

const callerKey = "caller"

var (
	errMissingToken      = errors.New("missing bearer token")
	errUserAgentMismatch = errors.New("token was issued to a different user agent")
)

type IdentityResolver interface {
	ResolveCaller(ctx context.Context, userID string) (domain.Identity, error)
}

type Authenticator struct {
	signingKey []byte
	resolver   IdentityResolver
}

func NewAuthenticator(signingKey string, resolver IdentityResolver) *Authenticator {
	return &Authenticator{
		signingKey: []byte(signingKey),
		resolver:   resolver,
	}
}

// VerifyJWT rejects the request with 401 unless it carries a valid bearer
// token for an existing user. The resolved caller is stored in the context.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, ok := bearerToken(ctx.GetHeader("Authorization"))
		if !ok {
			response.RenderErr(ctx, response.ErrUnauthenticated(errMissingToken))
			return
		}

		claims, err := jwthelper.ParseToken(a.signingKey, tokenString)
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthenticated(err))
			return
		}

		if claims.UserAgent != ctx.Request.UserAgent() {
			response.RenderErr(ctx, response.ErrUnauthenticated(errUserAgentMismatch))
			return
		}

		caller, err := a.resolver.ResolveCaller(ctx.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, authz.ErrUnauthenticated) {
				response.RenderErr(ctx, response.ErrUnauthenticated(err))
				return
			}

			err = fmt.Errorf("VerifyJWT -> a.resolver.ResolveCaller -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
			return
		}

		SetCaller(ctx, &caller)
		ctx.Next()
	}
}

func SetCaller(ctx *gin.Context, caller *domain.Identity) {
	ctx.Set(callerKey, caller)
}

// CallerFromContext returns the caller resolved by VerifyJWT, or nil on
// routes that are not authenticated.
func CallerFromContext(ctx *gin.Context) *domain.Identity {
	value, ok := ctx.Get(callerKey)
	if !ok {
		return nil
	}

	caller, _ := value.(*domain.Identity)

	return caller
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}
