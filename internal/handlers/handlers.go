// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package handlers implements the JSON API.
package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"codeberg.org/skillnaav/portal/internal/repository"
	"codeberg.org/skillnaav/portal/internal/services/application"
	"codeberg.org/skillnaav/portal/internal/services/approval"
	authsvc "codeberg.org/skillnaav/portal/internal/services/auth"
	"codeberg.org/skillnaav/portal/internal/services/chat"
	"codeberg.org/skillnaav/portal/internal/services/internship"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	repo         *repository.Repository
	auth         *authsvc.Service
	approvals    *approval.Service
	internships  *internship.Service
	applications *application.Service
	chat         *chat.Service
	heartbeat    time.Duration
}

// New creates a new Handlers instance.
func New(
	repo *repository.Repository,
	auth *authsvc.Service,
	approvals *approval.Service,
	internships *internship.Service,
	applications *application.Service,
	chatSvc *chat.Service,
) *Handlers {
	return &Handlers{
		repo:         repo,
		auth:         auth,
		approvals:    approvals,
		internships:  internships,
		applications: applications,
		chat:         chatSvc,
		heartbeat:    30 * time.Second,
	}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	if h.repo != nil {
		if err := h.repo.Ping(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
