// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"time"
)

// Account holds the columns every identity table has.
type Account struct { //nolint:govet // fieldalignment not critical for models
	ID           int64  `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	Approval
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Identity is implemented by User, Partner and Admin.
type Identity interface {
	Role() Role
	Base() *Account
}

// User is a student looking for internships.
type User struct { //nolint:govet // fieldalignment not critical for models
	Account
	UniversityName  string `db:"university_name" json:"university_name"`
	DOB             string `db:"dob" json:"dob"`
	EducationLevel  string `db:"education_level" json:"education_level"`
	FieldOfInterest string `db:"field_of_interest" json:"field_of_interest"`
}

func (u *User) Role() Role     { return RoleUser }
func (u *User) Base() *Account { return &u.Account }

// Partner is a company or university that publishes internships.
type Partner struct { //nolint:govet // fieldalignment not critical for models
	Account
	CompanyName   string `db:"company_name" json:"company_name"`
	InstitutionID string `db:"institution_id" json:"institution_id"`
}

func (p *Partner) Role() Role     { return RolePartner }
func (p *Partner) Base() *Account { return &p.Account }

// Admin reviews partners and postings.
type Admin struct { //nolint:govet // fieldalignment not critical for models
	Account
	Pic string `db:"pic" json:"pic"`
}

func (a *Admin) Role() Role     { return RoleAdmin }
func (a *Admin) Base() *Account { return &a.Account }
