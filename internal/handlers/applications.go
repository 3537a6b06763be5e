// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"codeberg.org/skillnaav/portal/internal/services/application"
)

// Apply stores the uploaded resume of the calling student.
func (h *Handlers) Apply(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, "Internship", err)
	}

	fh, err := c.FormFile("resume")
	if err != nil {
		return writeError(c, "", fmt.Errorf("%w: resume file is required", errInvalidRequest))
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, "", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("failed to close upload", "error", closeErr)
		}
	}()

	app, err := h.applications.Apply(c.Request().Context(), caller(c), id, application.Upload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Body:     f,
	})
	if err != nil {
		return writeError(c, "Internship", err)
	}
	return c.JSON(http.StatusCreated, app)
}

// ListApplications returns the applications to a posting.
func (h *Handlers) ListApplications(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, "Internship", err)
	}
	list, err := h.applications.ListForInternship(c.Request().Context(), caller(c), id)
	if err != nil {
		return writeError(c, "Internship", err)
	}
	return c.JSON(http.StatusOK, orEmpty(list))
}

// Resume sends the resume file of an application.
func (h *Handlers) Resume(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, "Application", err)
	}
	app, path, err := h.applications.OpenResume(c.Request().Context(), caller(c), id)
	if err != nil {
		return writeError(c, "Application", err)
	}
	c.Response().Header().Set(echo.HeaderContentType, app.ContentType)
	return c.Attachment(path, app.ResumeName)
}
