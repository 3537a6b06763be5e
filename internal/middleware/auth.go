// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package middleware provides the echo middleware guarding the API routes.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"codeberg.org/skillnaav/portal/internal/auth"
	"codeberg.org/skillnaav/portal/internal/models"
	"codeberg.org/skillnaav/portal/internal/services/token"
)

// Response messages of the access middleware.
const (
	MsgNoToken      = "Not authorized, no token"
	MsgTokenInvalid = "Not authorized, token invalid"
	MsgTokenExpired = "Not authorized, token expired"
	MsgUserNotFound = "Not authorized, user not found"
	MsgForbidden    = "Forbidden"
	MsgNotApproved  = "Account not approved"
	MsgServerError  = "Server error"

	identityKey  = "identity"
	bearerPrefix = "bearer "
)

// TokenVerifier checks a raw token and returns its claims.
type TokenVerifier interface {
	Verify(raw string) (*token.Claims, error)
}

// IdentityResolver loads the identity a verified token refers to.
type IdentityResolver interface {
	Resolve(ctx context.Context, role models.Role, id int64) (*auth.Identity, error)
}

func deny(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"message": message})
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get(echo.HeaderAuthorization))
	if len(h) < len(bearerPrefix) || !strings.EqualFold(h[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(h[len(bearerPrefix):])
}

// Authenticate requires a valid bearer token and attaches the resolved identity
// to the request context. The role always comes from the verified claims.
func Authenticate(tokens TokenVerifier, resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c.Request())
			if raw == "" {
				return deny(c, http.StatusUnauthorized, MsgNoToken)
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				if errors.Is(err, auth.ErrExpiredToken) {
					return deny(c, http.StatusUnauthorized, MsgTokenExpired)
				}
				return deny(c, http.StatusUnauthorized, MsgTokenInvalid)
			}

			ctx := c.Request().Context()
			id, err := resolver.Resolve(ctx, claims.Role, claims.ID)
			if err != nil {
				if errors.Is(err, auth.ErrIdentityNotFound) {
					return deny(c, http.StatusUnauthorized, MsgUserNotFound)
				}
				slog.Error("identity_resolve_failed", "role", claims.Role, "id", claims.ID, "error", err)
				return deny(c, http.StatusInternalServerError, MsgServerError)
			}

			c.Set(identityKey, id)
			c.SetRequest(c.Request().WithContext(auth.WithIdentity(ctx, id)))
			return next(c)
		}
	}
}

// QueryToken copies a token from the query parameter into the Authorization
// header when the header is absent. EventSource clients cannot set headers.
func QueryToken(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()
			if r.Header.Get(echo.HeaderAuthorization) == "" {
				if raw := c.QueryParam(param); raw != "" {
					r.Header.Set(echo.HeaderAuthorization, "Bearer "+raw)
				}
			}
			return next(c)
		}
	}
}

// RequireRole allows only identities with one of the roles.
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := Identity(c)
			if id == nil {
				return deny(c, http.StatusUnauthorized, MsgNoToken)
			}
			if !id.Is(roles...) {
				slog.Warn("access_denied", "role", id.Role, "id", id.ID, "path", c.Path())
				return deny(c, http.StatusForbidden, MsgForbidden)
			}
			return next(c)
		}
	}
}

// RequireApproved rejects identities whose role needs approval and who are not approved yet.
func RequireApproved(policy auth.Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := Identity(c)
			if id == nil {
				return deny(c, http.StatusUnauthorized, MsgNoToken)
			}
			if !policy.Permits(id) {
				return deny(c, http.StatusForbidden, MsgNotApproved)
			}
			return next(c)
		}
	}
}

// Identity returns the identity attached by Authenticate, or nil.
func Identity(c echo.Context) *auth.Identity {
	if id, ok := c.Get(identityKey).(*auth.Identity); ok {
		return id
	}
	return auth.GetIdentity(c.Request().Context())
}
