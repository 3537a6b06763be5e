// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// Message belongs to the thread of one internship between its partner and the admins.
type Message struct { //nolint:govet // fieldalignment: readability over optimization
	ID           int64     `db:"id" json:"id"`
	InternshipID int64     `db:"internship_id" json:"internship_id"`
	PartnerID    int64     `db:"partner_id" json:"partner_id"`
	SenderRole   Role      `db:"sender_role" json:"sender_role"`
	SenderID     int64     `db:"sender_id" json:"sender_id"`
	Body         string    `db:"body" json:"message"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
