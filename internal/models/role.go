// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"errors"
	"strings"

	"github.com/samber/lo"
)

// Role identifies which identity collection an actor belongs to.
type Role string

const (
	RoleUser    Role = "user"
	RolePartner Role = "partner"
	RoleAdmin   Role = "admin"
)

// ErrUnknownRole is returned when a role string is not one of the known roles.
var ErrUnknownRole = errors.New("unknown role")

// Roles lists all known roles.
func Roles() []Role {
	return []Role{RoleUser, RolePartner, RoleAdmin}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return lo.Contains(Roles(), r)
}

// ParseRole parses a role name. "student" is accepted as an alias of user.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "student" {
		return RoleUser, nil
	}
	r := Role(s)
	if !r.Valid() {
		return "", ErrUnknownRole
	}
	return r, nil
}
