// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth provides the authenticated identity, the approval policy and
// the authorization error taxonomy shared by services and middleware.
package auth

import (
	"context"

	"codeberg.org/skillnaav/portal/internal/ctxkeys"
	"codeberg.org/skillnaav/portal/internal/models"
)

// Identity is the resolved caller of a request. It never carries a password hash.
type Identity struct {
	ID       int64       `json:"id"`
	Role     models.Role `json:"role"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Approved bool        `json:"approved"`
}

// FromModel builds an Identity from a stored account.
func FromModel(m models.Identity) *Identity {
	a := m.Base()
	return &Identity{
		ID:       a.ID,
		Role:     m.Role(),
		Name:     a.Name,
		Email:    a.Email,
		Approved: a.Approved,
	}
}

// Is reports whether the identity has one of the given roles.
func (i *Identity) Is(roles ...models.Role) bool {
	if i == nil {
		return false
	}
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxkeys.Identity{}, id)
}

// GetIdentity returns the authenticated identity from the context, or nil if not authenticated.
func GetIdentity(ctx context.Context) *Identity {
	if id, ok := ctx.Value(ctxkeys.Identity{}).(*Identity); ok {
		return id
	}
	return nil
}
