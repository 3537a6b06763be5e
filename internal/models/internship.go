// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// Internship is a posting owned by exactly one partner.
type Internship struct { //nolint:govet // fieldalignment not critical for models
	ID             int64      `db:"id" json:"id"`
	PartnerID      int64      `db:"partner_id" json:"partner_id"`
	Title          string     `db:"title" json:"title"`
	Company        string     `db:"company" json:"company"`
	Location       string     `db:"location" json:"location"`
	Description    string     `db:"description" json:"description"`
	StartDate      string     `db:"start_date" json:"start_date"`
	Duration       string     `db:"duration" json:"duration"`
	Salary         string     `db:"salary" json:"salary"`
	Qualifications StringList `db:"qualifications" json:"qualifications"`
	ContactName    string     `db:"contact_name" json:"contact_name"`
	ContactEmail   string     `db:"contact_email" json:"contact_email"`
	ContactPhone   string     `db:"contact_phone" json:"contact_phone"`
	ImgURL         string     `db:"img_url" json:"img_url"`
	Approval
	Deleted   bool      `db:"deleted" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
