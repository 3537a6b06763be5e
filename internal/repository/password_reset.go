// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/skillnaav/portal/internal/models"
)

// SavePasswordReset stores a reset code, replacing any earlier code of the same account.
func (r *Repository) SavePasswordReset(ctx context.Context, role models.Role, identityID int64, codeHash string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO password_reset_tokens (role, identity_id, code_hash, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (role, identity_id) DO UPDATE SET code_hash = excluded.code_hash,
		 attempts = 0, expires_at = excluded.expires_at, created_at = CURRENT_TIMESTAMP`,
		role, identityID, codeHash, expiresAt.UTC())
	return wrapError(err)
}

// GetPasswordReset retrieves the pending reset code of an account.
func (r *Repository) GetPasswordReset(ctx context.Context, role models.Role, identityID int64) (*models.PasswordResetToken, error) {
	var tok models.PasswordResetToken
	err := r.db.GetContext(ctx, &tok,
		`SELECT * FROM password_reset_tokens WHERE role = ? AND identity_id = ?`, role, identityID)
	if err != nil {
		return nil, wrapError(err)
	}
	return &tok, nil
}

// IncrementPasswordResetAttempts counts a failed verification.
func (r *Repository) IncrementPasswordResetAttempts(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE password_reset_tokens SET attempts = attempts + 1 WHERE id = ?`, id)
	return err
}

// DeletePasswordReset removes the reset code of an account.
func (r *Repository) DeletePasswordReset(ctx context.Context, role models.Role, identityID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE role = ? AND identity_id = ?`, role, identityID)
	return err
}
