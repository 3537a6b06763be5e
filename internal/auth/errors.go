// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotApproved        = errors.New("account not approved")
	ErrMissingToken       = errors.New("no token")
	ErrInvalidToken       = errors.New("token invalid")
	ErrExpiredToken       = errors.New("token expired")
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrForbidden          = errors.New("forbidden")
)
