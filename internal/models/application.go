// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// Application is a student's resume submission for an internship.
type Application struct { //nolint:govet // fieldalignment: readability over optimization
	ID           int64     `db:"id" json:"id"`
	InternshipID int64     `db:"internship_id" json:"internship_id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	ResumeName   string    `db:"resume_name" json:"resume_name"`
	ResumePath   string    `db:"resume_path" json:"-"`
	ResumeSize   int64     `db:"resume_size" json:"resume_size"`
	ContentType  string    `db:"content_type" json:"content_type"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
