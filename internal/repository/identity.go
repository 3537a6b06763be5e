// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"fmt"
	"strings"

	"codeberg.org/skillnaav/portal/internal/models"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser inserts a student account.
func (r *Repository) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, university_name, dob, education_level, field_of_interest, approved, reviewed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Name, normalizeEmail(u.Email), u.PasswordHash, u.UniversityName, u.DOB, u.EducationLevel, u.FieldOfInterest,
		u.Approved, u.Reviewed)
	if err != nil {
		return nil, wrapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetUserByID(ctx, id)
}

// GetUserByID retrieves a student by ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &u, nil
}

// GetUserByEmail retrieves a student by email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE email = ?`, normalizeEmail(email)); err != nil {
		return nil, wrapError(err)
	}
	return &u, nil
}

// UpdateUserProfile updates the editable profile fields of a student.
func (r *Repository) UpdateUserProfile(ctx context.Context, u *models.User) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET name = ?, university_name = ?, dob = ?, education_level = ?, field_of_interest = ?,
		 version = version + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		u.Name, u.UniversityName, u.DOB, u.EducationLevel, u.FieldOfInterest, u.ID)
	return expectOne(res, err)
}

// CreatePartner inserts a partner account.
func (r *Repository) CreatePartner(ctx context.Context, p *models.Partner) (*models.Partner, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO partners (name, email, password_hash, company_name, institution_id, approved, reviewed)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Name, normalizeEmail(p.Email), p.PasswordHash, p.CompanyName, p.InstitutionID, p.Approved, p.Reviewed)
	if err != nil {
		return nil, wrapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetPartnerByID(ctx, id)
}

// GetPartnerByID retrieves a partner by ID.
func (r *Repository) GetPartnerByID(ctx context.Context, id int64) (*models.Partner, error) {
	var p models.Partner
	if err := r.db.GetContext(ctx, &p, `SELECT * FROM partners WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &p, nil
}

// GetPartnerByEmail retrieves a partner by email address.
func (r *Repository) GetPartnerByEmail(ctx context.Context, email string) (*models.Partner, error) {
	var p models.Partner
	if err := r.db.GetContext(ctx, &p, `SELECT * FROM partners WHERE email = ?`, normalizeEmail(email)); err != nil {
		return nil, wrapError(err)
	}
	return &p, nil
}

// ListPartners returns all partners, newest first.
func (r *Repository) ListPartners(ctx context.Context) ([]models.Partner, error) {
	var partners []models.Partner
	if err := r.db.SelectContext(ctx, &partners, `SELECT * FROM partners ORDER BY created_at DESC, id DESC`); err != nil {
		return nil, err
	}
	return partners, nil
}

// UpdatePartnerProfile updates the editable profile fields of a partner.
func (r *Repository) UpdatePartnerProfile(ctx context.Context, p *models.Partner) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE partners SET name = ?, company_name = ?, institution_id = ?,
		 version = version + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		p.Name, p.CompanyName, p.InstitutionID, p.ID)
	return expectOne(res, err)
}

// CreateAdmin inserts an admin account.
func (r *Repository) CreateAdmin(ctx context.Context, a *models.Admin) (*models.Admin, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO admins (name, email, password_hash, pic, approved, reviewed) VALUES (?, ?, ?, ?, ?, ?)`,
		a.Name, normalizeEmail(a.Email), a.PasswordHash, a.Pic, a.Approved, a.Reviewed)
	if err != nil {
		return nil, wrapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetAdminByID(ctx, id)
}

// GetAdminByID retrieves an admin by ID.
func (r *Repository) GetAdminByID(ctx context.Context, id int64) (*models.Admin, error) {
	var a models.Admin
	if err := r.db.GetContext(ctx, &a, `SELECT * FROM admins WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &a, nil
}

// GetAdminByEmail retrieves an admin by email address.
func (r *Repository) GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var a models.Admin
	if err := r.db.GetContext(ctx, &a, `SELECT * FROM admins WHERE email = ?`, normalizeEmail(email)); err != nil {
		return nil, wrapError(err)
	}
	return &a, nil
}

// ListAdmins returns all admins, newest first.
func (r *Repository) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	var admins []models.Admin
	if err := r.db.SelectContext(ctx, &admins, `SELECT * FROM admins ORDER BY created_at DESC, id DESC`); err != nil {
		return nil, err
	}
	return admins, nil
}

// CountApprovedAdmins returns the number of admins that may log in.
func (r *Repository) CountApprovedAdmins(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM admins WHERE approved = 1`)
	return count, err
}

// GetIdentityByID loads the account of the given role.
func (r *Repository) GetIdentityByID(ctx context.Context, role models.Role, id int64) (models.Identity, error) {
	switch role {
	case models.RoleUser:
		return r.GetUserByID(ctx, id)
	case models.RolePartner:
		return r.GetPartnerByID(ctx, id)
	case models.RoleAdmin:
		return r.GetAdminByID(ctx, id)
	}
	return nil, fmt.Errorf("%w: %q", models.ErrUnknownRole, role)
}

// GetIdentityByEmail loads the account of the given role by email address.
func (r *Repository) GetIdentityByEmail(ctx context.Context, role models.Role, email string) (models.Identity, error) {
	switch role {
	case models.RoleUser:
		return r.GetUserByEmail(ctx, email)
	case models.RolePartner:
		return r.GetPartnerByEmail(ctx, email)
	case models.RoleAdmin:
		return r.GetAdminByEmail(ctx, email)
	}
	return nil, fmt.Errorf("%w: %q", models.ErrUnknownRole, role)
}

// EmailExists checks whether an account of the given role uses email.
func (r *Repository) EmailExists(ctx context.Context, role models.Role, email string) (bool, error) {
	table, err := identityTable(role)
	if err != nil {
		return false, err
	}
	var exists bool
	err = r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM `+table+` WHERE email = ?)`, normalizeEmail(email))
	return exists, err
}

// UpdatePassword replaces the password hash of an account.
func (r *Repository) UpdatePassword(ctx context.Context, role models.Role, id int64, passwordHash string) error {
	table, err := identityTable(role)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE `+table+` SET password_hash = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		passwordHash, id)
	return expectOne(res, err)
}
