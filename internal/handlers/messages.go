// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// SendMessageRequest is the body of a new thread message.
type SendMessageRequest struct {
	Message string `json:"message"`
}

// ListMessages returns the thread of a posting.
func (h *Handlers) ListMessages(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, "Internship", err)
	}
	msgs, err := h.chat.List(c.Request().Context(), caller(c), id)
	if err != nil {
		return writeError(c, "Internship", err)
	}
	return c.JSON(http.StatusOK, orEmpty(msgs))
}

// SendMessage appends a message to the thread of a posting.
func (h *Handlers) SendMessage(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, "Internship", err)
	}
	var req SendMessageRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, "", err)
	}
	msg, err := h.chat.Send(c.Request().Context(), caller(c), id, req.Message)
	if err != nil {
		return writeError(c, "Internship", err)
	}
	return c.JSON(http.StatusCreated, msg)
}
