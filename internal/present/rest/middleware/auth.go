package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/domain"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/present/rest/presenter"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/service"
)

var tracer = otel.Tracer("auth")

type AuthMiddleware struct {
	auth *service.AuthService
}

func NewAuthMiddleware(auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// IdentifyIdentity resolves a Bearer token into the requester's identity
// and stores it in the request context. An absent or rejected token leaves
// the request anonymous; route guards decide whether that is acceptable.
func (m *AuthMiddleware) IdentifyIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.IdentifyIdentity")
		defer span.End()

		authHeader := c.Request().Header.Get("authorization")
		if authHeader != "" {
			authType, token, found := strings.Cut(authHeader, " ")
			if !found || authType != "Bearer" {
				span.RecordError(errors.New("malformed authorization header"))
			} else {
				result, err := m.auth.Verify(ctx, token)
				if err != nil {
					span.RecordError(errors.Wrap(err, "token verification failed"))
				} else {
					ctx = context.WithValue(ctx, domain.RequesterIdCtxKey, result.UserID)
					ctx = context.WithValue(ctx, domain.RequesterRoleCtxKey, result.Role)
					span.SetAttributes(attribute.String("RequesterId", result.UserID))
				}
			}
		}

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// RequireAuth rejects requests that carry no verified identity.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if RequesterID(c) == "" {
			return presenter.Unauthorized(c, "authentication required")
		}
		return next(c)
	}
}

// RequesterID returns the authenticated requester's user id, or "".
func RequesterID(c echo.Context) string {
	id, _ := c.Request().Context().Value(domain.RequesterIdCtxKey).(string)
	return id
}

// RequesterRole returns the authenticated requester's role, or "".
func RequesterRole(c echo.Context) string {
	role, _ := c.Request().Context().Value(domain.RequesterRoleCtxKey).(string)
	return role
}
