// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// PasswordResetToken stores a hashed one-time code for resetting a password.
type PasswordResetToken struct { //nolint:govet // fieldalignment: readability over optimization
	ID         int64     `db:"id" json:"id"`
	Role       Role      `db:"role" json:"role"`
	IdentityID int64     `db:"identity_id" json:"identity_id"`
	CodeHash   string    `db:"code_hash" json:"-"` // bcrypt
	Attempts   int       `db:"attempts" json:"attempts"`
	ExpiresAt  time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Expired reports whether the token is past its expiry at now.
func (t *PasswordResetToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
