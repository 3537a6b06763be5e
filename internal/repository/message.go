// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/skillnaav/portal/internal/models"
)

// CreateMessage appends a message to the thread of an internship.
func (r *Repository) CreateMessage(ctx context.Context, m *models.Message) (*models.Message, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (internship_id, partner_id, sender_role, sender_id, body) VALUES (?, ?, ?, ?, ?)`,
		m.InternshipID, m.PartnerID, m.SenderRole, m.SenderID, m.Body)
	if err != nil {
		return nil, wrapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	var out models.Message
	if err := r.db.GetContext(ctx, &out, `SELECT * FROM messages WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &out, nil
}

// ListMessages returns the thread of an internship in chronological order.
func (r *Repository) ListMessages(ctx context.Context, internshipID int64) ([]models.Message, error) {
	var list []models.Message
	err := r.db.SelectContext(ctx, &list,
		`SELECT * FROM messages WHERE internship_id = ? ORDER BY created_at ASC, id ASC`, internshipID)
	return list, err
}
