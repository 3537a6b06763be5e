// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"codeberg.org/skillnaav/portal/internal/auth"
	"codeberg.org/skillnaav/portal/internal/middleware"
	"codeberg.org/skillnaav/portal/internal/models"
	"codeberg.org/skillnaav/portal/internal/repository"
	"codeberg.org/skillnaav/portal/internal/services/application"
	"codeberg.org/skillnaav/portal/internal/services/approval"
	authsvc "codeberg.org/skillnaav/portal/internal/services/auth"
	"codeberg.org/skillnaav/portal/internal/services/chat"
	"codeberg.org/skillnaav/portal/internal/services/internship"
)

var errInvalidRequest = errors.New("invalid request")

// badRequest lists the errors whose own text is safe to return to the client.
var badRequest = []error{
	errInvalidRequest,
	authsvc.ErrMissingField,
	authsvc.ErrInvalidEmail,
	authsvc.ErrInvalidCode,
	models.ErrUnknownRole,
	internship.ErrInvalidInput,
	application.ErrUnsupportedFile,
	application.ErrFileTooLarge,
	chat.ErrEmptyMessage,
	chat.ErrMessageTooLong,
	approval.ErrUnknownSubject,
	approval.ErrUnknownTransition,
}

var conflict = map[error]string{
	authsvc.ErrEmailTaken:         "Email already registered",
	application.ErrAlreadyApplied: "You have already applied to this internship",
	repository.ErrVersionConflict: "Record was changed by another request, please retry",
	repository.ErrDuplicate:       "Record already exists",
}

// writeError maps a domain error to a status and a {message} body.
// resource names the record for 404 messages, e.g. "Partner".
// Unknown errors are logged and answered with a generic 500.
func writeError(c echo.Context, resource string, err error) error {
	var pwErr *authsvc.PasswordValidationError
	if errors.As(err, &pwErr) {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"message": pwErr.Error(),
			"errors":  pwErr.Messages(),
		})
	}

	for _, target := range badRequest {
		if errors.Is(err, target) {
			return c.JSON(http.StatusBadRequest, message(err.Error()))
		}
	}
	for target, text := range conflict {
		if errors.Is(err, target) {
			return c.JSON(http.StatusConflict, message(text))
		}
	}

	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, auth.ErrIdentityNotFound):
		if resource == "" {
			resource = "Record"
		}
		return c.JSON(http.StatusNotFound, message(resource+" not found."))
	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, message("Invalid email or password"))
	case errors.Is(err, auth.ErrMissingToken):
		return c.JSON(http.StatusUnauthorized, message(middleware.MsgNoToken))
	case errors.Is(err, auth.ErrExpiredToken):
		return c.JSON(http.StatusUnauthorized, message(middleware.MsgTokenExpired))
	case errors.Is(err, auth.ErrInvalidToken):
		return c.JSON(http.StatusUnauthorized, message(middleware.MsgTokenInvalid))
	case errors.Is(err, auth.ErrNotApproved):
		return c.JSON(http.StatusForbidden, message(middleware.MsgNotApproved))
	case errors.Is(err, auth.ErrForbidden):
		return c.JSON(http.StatusForbidden, message(middleware.MsgForbidden))
	}

	slog.Error("request_failed",
		"method", c.Request().Method,
		"path", c.Path(),
		"error", err,
	)
	return c.JSON(http.StatusInternalServerError, message(middleware.MsgServerError))
}
