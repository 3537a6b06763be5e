// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/skillnaav/portal/internal/models"
)

// CreateApplication records a resume submission. A student applies once per posting.
func (r *Repository) CreateApplication(ctx context.Context, a *models.Application) (*models.Application, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO applications (internship_id, user_id, resume_name, resume_path, resume_size, content_type)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.InternshipID, a.UserID, a.ResumeName, a.ResumePath, a.ResumeSize, a.ContentType)
	if err != nil {
		return nil, wrapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetApplication(ctx, id)
}

// GetApplication retrieves an application by ID.
func (r *Repository) GetApplication(ctx context.Context, id int64) (*models.Application, error) {
	var a models.Application
	if err := r.db.GetContext(ctx, &a, `SELECT * FROM applications WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &a, nil
}

// HasApplied checks whether a student already applied to a posting.
func (r *Repository) HasApplied(ctx context.Context, internshipID, userID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM applications WHERE internship_id = ? AND user_id = ?)`, internshipID, userID)
	return exists, err
}

// ListApplications returns the applications for a posting, oldest first.
func (r *Repository) ListApplications(ctx context.Context, internshipID int64) ([]models.Application, error) {
	var list []models.Application
	err := r.db.SelectContext(ctx, &list,
		`SELECT * FROM applications WHERE internship_id = ? ORDER BY created_at ASC, id ASC`, internshipID)
	return list, err
}
