// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/skillnaav/portal/internal/models"
)

// CreateInternship inserts a posting. New postings start pending review.
func (r *Repository) CreateInternship(ctx context.Context, in *models.Internship) (*models.Internship, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO internships (partner_id, title, company, location, description, start_date, duration, salary,
		 qualifications, contact_name, contact_email, contact_phone, img_url, approved, reviewed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.PartnerID, in.Title, in.Company, in.Location, in.Description, in.StartDate, in.Duration, in.Salary,
		in.Qualifications, in.ContactName, in.ContactEmail, in.ContactPhone, in.ImgURL, in.Approved, in.Reviewed)
	if err != nil {
		return nil, wrapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetInternship(ctx, id)
}

// GetInternship retrieves a posting that has not been deleted.
func (r *Repository) GetInternship(ctx context.Context, id int64) (*models.Internship, error) {
	var in models.Internship
	if err := r.db.GetContext(ctx, &in, `SELECT * FROM internships WHERE id = ? AND deleted = 0`, id); err != nil {
		return nil, wrapError(err)
	}
	return &in, nil
}

// ListApprovedInternships returns the publicly visible postings, newest first.
func (r *Repository) ListApprovedInternships(ctx context.Context) ([]models.Internship, error) {
	return r.listInternships(ctx, `WHERE approved = 1 AND deleted = 0`)
}

// ListPendingInternships returns postings awaiting review, oldest first.
func (r *Repository) ListPendingInternships(ctx context.Context) ([]models.Internship, error) {
	var list []models.Internship
	err := r.db.SelectContext(ctx, &list,
		`SELECT * FROM internships WHERE reviewed = 0 AND deleted = 0 ORDER BY created_at ASC, id ASC`)
	return list, err
}

// ListInternshipsByPartner returns the postings owned by a partner, newest first.
func (r *Repository) ListInternshipsByPartner(ctx context.Context, partnerID int64) ([]models.Internship, error) {
	return r.listInternships(ctx, `WHERE partner_id = ? AND deleted = 0`, partnerID)
}

func (r *Repository) listInternships(ctx context.Context, where string, args ...any) ([]models.Internship, error) {
	var list []models.Internship
	err := r.db.SelectContext(ctx, &list,
		`SELECT * FROM internships `+where+` ORDER BY created_at DESC, id DESC`, args...)
	return list, err
}

// UpdateInternship replaces the content of a posting owned by in.PartnerID.
// The posting returns to pending review.
func (r *Repository) UpdateInternship(ctx context.Context, in *models.Internship) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE internships SET title = ?, company = ?, location = ?, description = ?, start_date = ?, duration = ?,
		 salary = ?, qualifications = ?, contact_name = ?, contact_email = ?, contact_phone = ?, img_url = ?,
		 approved = 0, reviewed = 0, version = version + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND partner_id = ? AND deleted = 0`,
		in.Title, in.Company, in.Location, in.Description, in.StartDate, in.Duration,
		in.Salary, in.Qualifications, in.ContactName, in.ContactEmail, in.ContactPhone, in.ImgURL,
		in.ID, in.PartnerID)
	return expectOne(res, err)
}

// DeleteInternship soft-deletes a posting owned by partnerID.
func (r *Repository) DeleteInternship(ctx context.Context, id, partnerID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE internships SET deleted = 1, version = version + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND partner_id = ? AND deleted = 0`,
		id, partnerID)
	return expectOne(res, err)
}
