// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"codeberg.org/skillnaav/portal/internal/services/internship"
)

// ListInternships returns the approved postings.
func (h *Handlers) ListInternships(c echo.Context) error {
	list, err := h.internships.ListPublic(c.Request().Context())
	if err != nil {
		return writeError(c, "", err)
	}
	return c.JSON(http.StatusOK, orEmpty(list))
}

// GetInternship returns an approved posting.
func (h *Handlers) GetInternship(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, "Internship", err)
	}
	posting, err := h.internships.Get(c.Request().Context(), nil, id)
	if err != nil {
		return writeError(c, "Internship", err)
	}
	return c.JSON(http.StatusOK, posting)
}

// MyInternships returns every posting of the calling partner.
func (h *Handlers) MyInternships(c echo.Context) error {
	list, err := h.internships.ListMine(c.Request().Context(), caller(c))
	if err != nil {
		return writeError(c, "", err)
	}
	return c.JSON(http.StatusOK, orEmpty(list))
}

// ReviewInternships returns the postings waiting for a decision.
func (h *Handlers) ReviewInternships(c echo.Context) error {
	list, err := h.internships.ListForReview(c.Request().Context())
	if err != nil {
		return writeError(c, "", err)
	}
	return c.JSON(http.StatusOK, orEmpty(list))
}

// CreateInternship publishes a posting for review.
func (h *Handlers) CreateInternship(c echo.Context) error {
	var in internship.Input
	if err := bind(c, &in); err != nil {
		return writeError(c, "", err)
	}
	posting, err := h.internships.Create(c.Request().Context(), caller(c), in)
	if err != nil {
		return writeError(c, "", err)
	}
	return c.JSON(http.StatusCreated, posting)
}

// UpdateInternship replaces a posting of the calling partner.
func (h *Handlers) UpdateInternship(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, "Internship", err)
	}
	var in internship.Input
	if err := bind(c, &in); err != nil {
		return writeError(c, "", err)
	}
	posting, err := h.internships.Update(c.Request().Context(), caller(c), id, in)
	if err != nil {
		return writeError(c, "Internship", err)
	}
	return c.JSON(http.StatusOK, posting)
}

// DeleteInternship removes a posting of the calling partner.
func (h *Handlers) DeleteInternship(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, "Internship", err)
	}
	if err := h.internships.Delete(c.Request().Context(), caller(c), id); err != nil {
		return writeError(c, "Internship", err)
	}
	return c.JSON(http.StatusOK, message("Internship deleted successfully."))
}
