// Package identity resolves the actor behind a request. Authentication
// mechanics live in the upstream gateway; this service only consumes the
// resolved role and user id to gate order transitions and pricing edits.
package identity

import (
	"context"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Role is the actor category.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

// Actor is the resolved identity for one request.
type Actor struct {
	Role   Role
	UserID int64
}

// Staff reports whether the actor may perform operator actions.
func (a Actor) Staff() bool {
	return a.Role == RoleStaff || a.Role == RoleAdmin
}

type contextKey struct{}

// Headers the gateway forwards the resolved identity on.
const (
	HeaderRole   = "X-Actor-Role"
	HeaderUserID = "X-Actor-ID"
)

// WithActor stores the actor on the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, actor)
}

// FromContext returns the request actor, defaulting to an anonymous customer.
func FromContext(ctx context.Context) Actor {
	if actor, ok := ctx.Value(contextKey{}).(Actor); ok {
		return actor
	}
	return Actor{Role: RoleCustomer}
}

// Middleware attaches the forwarded actor to the request context.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := Actor{Role: RoleCustomer}
			switch Role(c.Request().Header.Get(HeaderRole)) {
			case RoleStaff:
				actor.Role = RoleStaff
			case RoleAdmin:
				actor.Role = RoleAdmin
			}
			if raw := c.Request().Header.Get(HeaderUserID); raw != "" {
				if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
					actor.UserID = id
				}
			}

			ctx := WithActor(c.Request().Context(), actor)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
