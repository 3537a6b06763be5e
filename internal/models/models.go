// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package models defines the records persisted by the repository.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// ApprovalStatus is the derived review state of an approvable record.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

// Approval holds the columns shared by every record an admin can approve.
// Version increases on every write and guards compare-and-swap updates.
type Approval struct {
	Approved bool  `db:"approved" json:"approved"`
	Reviewed bool  `db:"reviewed" json:"-"`
	Version  int64 `db:"version" json:"version"`
}

// Status derives the approval state from the flags.
func (a Approval) Status() ApprovalStatus {
	switch {
	case a.Approved:
		return StatusApproved
	case a.Reviewed:
		return StatusRejected
	default:
		return StatusPending
	}
}

// StringList is a list of strings stored as a JSON array in a TEXT column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return errors.Join(errors.New("invalid string list"), err)
	}
	*l = out
	return nil
}
