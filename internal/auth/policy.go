// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"codeberg.org/skillnaav/portal/internal/config"
	"codeberg.org/skillnaav/portal/internal/models"
)

// Policy maps each role to whether its accounts need admin approval before use.
type Policy map[models.Role]bool

// DefaultPolicy requires approval for partners and admins.
func DefaultPolicy() Policy {
	return Policy{
		models.RoleUser:    false,
		models.RolePartner: true,
		models.RoleAdmin:   true,
	}
}

// PolicyFromConfig builds the policy from the auth settings.
func PolicyFromConfig(cfg *config.AuthConfig) Policy {
	return Policy{
		models.RoleUser:    cfg.UserApproval,
		models.RolePartner: cfg.PartnerApproval,
		models.RoleAdmin:   cfg.AdminApproval,
	}
}

// RequiresApproval reports whether accounts of role must be approved.
// Unknown roles always require it.
func (p Policy) RequiresApproval(role models.Role) bool {
	required, ok := p[role]
	return !ok || required
}

// Permits reports whether id may act given its approval state.
func (p Policy) Permits(id *Identity) bool {
	if id == nil {
		return false
	}
	return id.Approved || !p.RequiresApproval(id.Role)
}
