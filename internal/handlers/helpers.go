// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"codeberg.org/skillnaav/portal/internal/auth"
	"codeberg.org/skillnaav/portal/internal/middleware"
)

// bind decodes the request body into v.
func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return fmt.Errorf("%w: malformed body", errInvalidRequest)
	}
	return nil
}

// paramID parses a positive integer path parameter.
func paramID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", errInvalidRequest, name)
	}
	return id, nil
}

// caller returns the identity attached by the access middleware.
func caller(c echo.Context) *auth.Identity {
	return middleware.Identity(c)
}

// orEmpty keeps empty lists serialised as [] instead of null.
func orEmpty[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}

func message(text string) map[string]string {
	return map[string]string{"message": text}
}
