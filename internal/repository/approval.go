// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"codeberg.org/skillnaav/portal/internal/models"
)

// Kind names a table whose rows go through the approval lifecycle.
type Kind string

const (
	KindUser       Kind = "users"
	KindPartner    Kind = "partners"
	KindAdmin      Kind = "admins"
	KindInternship Kind = "internships"
)

// KindForRole returns the approval kind backing the accounts of role.
func KindForRole(role models.Role) (Kind, error) {
	switch role {
	case models.RoleUser:
		return KindUser, nil
	case models.RolePartner:
		return KindPartner, nil
	case models.RoleAdmin:
		return KindAdmin, nil
	}
	return "", fmt.Errorf("%w: %q", models.ErrUnknownRole, role)
}

func identityTable(role models.Role) (string, error) {
	kind, err := KindForRole(role)
	return string(kind), err
}

func (k Kind) valid() bool {
	switch k {
	case KindUser, KindPartner, KindAdmin, KindInternship:
		return true
	}
	return false
}

// liveFilter hides soft-deleted postings.
func (k Kind) liveFilter() string {
	if k == KindInternship {
		return " AND deleted = 0"
	}
	return ""
}

// GetApproval reads the approval columns of one row.
func (r *Repository) GetApproval(ctx context.Context, kind Kind, id int64) (models.Approval, error) {
	var a models.Approval
	if !kind.valid() {
		return a, fmt.Errorf("unknown approval kind %q", kind)
	}
	err := r.db.GetContext(ctx, &a,
		`SELECT approved, reviewed, version FROM `+string(kind)+` WHERE id = ?`+kind.liveFilter(), id)
	return a, wrapError(err)
}

// SetApproval records a review decision if the row still has expectedVersion.
// Rejected postings are soft-deleted.
func (r *Repository) SetApproval(ctx context.Context, kind Kind, id, expectedVersion int64, approved bool) error {
	if !kind.valid() {
		return fmt.Errorf("unknown approval kind %q", kind)
	}
	set := `approved = ?, reviewed = 1, version = version + 1, updated_at = CURRENT_TIMESTAMP`
	args := []any{approved}
	if kind == KindInternship {
		set += `, deleted = ?`
		args = append(args, !approved)
	}
	args = append(args, id, expectedVersion)

	res, err := r.db.ExecContext(ctx,
		`UPDATE `+string(kind)+` SET `+set+` WHERE id = ? AND version = ?`+kind.liveFilter(), args...)
	return r.casResult(ctx, kind, id, res, err)
}

// DeleteIfVersion removes a row if it still has expectedVersion.
func (r *Repository) DeleteIfVersion(ctx context.Context, kind Kind, id, expectedVersion int64) error {
	if !kind.valid() {
		return fmt.Errorf("unknown approval kind %q", kind)
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM `+string(kind)+` WHERE id = ? AND version = ?`+kind.liveFilter(), id, expectedVersion)
	return r.casResult(ctx, kind, id, res, err)
}

// casResult tells a missing row apart from a lost race when nothing was written.
func (r *Repository) casResult(ctx context.Context, kind Kind, id int64, res sql.Result, err error) error {
	if err != nil {
		return wrapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := r.GetApproval(ctx, kind, id); err != nil {
		return err
	}
	return ErrVersionConflict
}

// expectOne maps a write that touched no rows to ErrNotFound.
func expectOne(res sql.Result, err error) error {
	if err != nil {
		return wrapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
