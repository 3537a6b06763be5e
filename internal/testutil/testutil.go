// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"

	"codeberg.org/skillnaav/portal/internal/database"
	"codeberg.org/skillnaav/portal/internal/models"
	"codeberg.org/skillnaav/portal/internal/repository"
)

// TestPassword is the plain password of every fixture account.
const TestPassword = "correct horse battery"

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

func hash(t *testing.T) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

// NewTestUser creates an approved student.
func NewTestUser(t *testing.T, repo *repository.Repository, email string) *models.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), &models.User{
		Account: models.Account{
			Name:         "Test Student",
			Email:        email,
			PasswordHash: hash(t),
			Approval:     models.Approval{Approved: true, Reviewed: true},
		},
		UniversityName: "Test University",
	})
	require.NoError(t, err)
	return u
}

// NewTestPartner creates a partner. approved controls whether it may log in.
func NewTestPartner(t *testing.T, repo *repository.Repository, email string, approved bool) *models.Partner {
	t.Helper()
	p, err := repo.CreatePartner(context.Background(), &models.Partner{
		Account: models.Account{
			Name:         "Test Partner",
			Email:        email,
			PasswordHash: hash(t),
			Approval:     models.Approval{Approved: approved, Reviewed: approved},
		},
		CompanyName:   "Acme",
		InstitutionID: "ACME-1",
	})
	require.NoError(t, err)
	return p
}

// NewTestAdmin creates an approved admin.
func NewTestAdmin(t *testing.T, repo *repository.Repository, email string) *models.Admin {
	t.Helper()
	a, err := repo.CreateAdmin(context.Background(), &models.Admin{
		Account: models.Account{
			Name:         "Test Admin",
			Email:        email,
			PasswordHash: hash(t),
			Approval:     models.Approval{Approved: true, Reviewed: true},
		},
	})
	require.NoError(t, err)
	return a
}

// NewTestInternship creates a posting owned by partnerID.
func NewTestInternship(t *testing.T, repo *repository.Repository, partnerID int64, approved bool) *models.Internship {
	t.Helper()
	in, err := repo.CreateInternship(context.Background(), &models.Internship{
		PartnerID:      partnerID,
		Title:          "Backend Intern",
		Company:        "Acme",
		Location:       "Remote",
		Description:    "Build APIs",
		Qualifications: models.StringList{"Go", "SQL"},
		ContactName:    "Jane",
		ContactEmail:   "jane@acme.test",
		ContactPhone:   "555-0100",
		Approval:       models.Approval{Approved: approved, Reviewed: approved},
	})
	require.NoError(t, err)
	return in
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewEchoContextWithHeaders creates an Echo context with custom headers.
func NewEchoContextWithHeaders(e *echo.Echo, method, path string, body io.Reader, headers map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, path string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// CaptureLogs routes the default slog logger into a buffer at level until the test ends.
func CaptureLogs(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}
