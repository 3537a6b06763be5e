// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package application handles student resume submissions.
package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"codeberg.org/skillnaav/portal/internal/auth"
	"codeberg.org/skillnaav/portal/internal/models"
	"codeberg.org/skillnaav/portal/internal/repository"
	"codeberg.org/skillnaav/portal/internal/services/internship"
)

var (
	ErrAlreadyApplied  = errors.New("already applied to this internship")
	ErrUnsupportedFile = errors.New("resume must be a PDF or Word document")
)

// allowed maps resume extensions to their content types.
var allowed = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Upload is a resume file received from a student.
type Upload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// Service implements applying and reviewing applications.
type Service struct {
	repo  *repository.Repository
	store *FileStore
}

// NewService creates an application service.
func NewService(repo *repository.Repository, store *FileStore) *Service {
	return &Service{repo: repo, store: store}
}

// Apply stores the resume and records the application of the student.
func (s *Service) Apply(ctx context.Context, student *auth.Identity, internshipID int64, up Upload) (*models.Application, error) {
	if !student.Is(models.RoleUser) {
		return nil, auth.ErrForbidden
	}

	posting, err := s.repo.GetInternship(ctx, internshipID)
	if err != nil {
		return nil, err
	}
	if !posting.Approved {
		return nil, repository.ErrNotFound
	}

	ext := strings.ToLower(filepath.Ext(up.Filename))
	contentType, ok := allowed[ext]
	if !ok {
		return nil, ErrUnsupportedFile
	}
	if up.Size > s.store.maxSize {
		return nil, ErrFileTooLarge
	}

	applied, err := s.repo.HasApplied(ctx, internshipID, student.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check application: %w", err)
	}
	if applied {
		return nil, ErrAlreadyApplied
	}

	stored, size, err := s.store.Save(up.Body, ext)
	if err != nil {
		return nil, err
	}

	app, err := s.repo.CreateApplication(ctx, &models.Application{
		InternshipID: internshipID,
		UserID:       student.ID,
		ResumeName:   filepath.Base(up.Filename),
		ResumePath:   stored,
		ResumeSize:   size,
		ContentType:  contentType,
	})
	if err != nil {
		_ = s.store.Remove(stored)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyApplied
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	slog.Info("application_created", "id", app.ID, "internship_id", internshipID, "user_id", student.ID)
	return app, nil
}

// ListForInternship returns the applications of a posting to its owner or an admin.
func (s *Service) ListForInternship(ctx context.Context, viewer *auth.Identity, internshipID int64) ([]models.Application, error) {
	posting, err := s.repo.GetInternship(ctx, internshipID)
	if err != nil {
		return nil, err
	}
	if !internship.CanManage(viewer, posting) {
		return nil, auth.ErrForbidden
	}
	return s.repo.ListApplications(ctx, internshipID)
}

// OpenResume returns an application with the path of its resume file.
// The applicant, the owning partner and admins may read it.
func (s *Service) OpenResume(ctx context.Context, viewer *auth.Identity, applicationID int64) (*models.Application, string, error) {
	app, err := s.repo.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, "", err
	}

	if !(viewer.Is(models.RoleUser) && viewer.ID == app.UserID) {
		posting, err := s.repo.GetInternship(ctx, app.InternshipID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", auth.ErrForbidden
		}
		if err != nil {
			return nil, "", err
		}
		if !internship.CanManage(viewer, posting) {
			return nil, "", auth.ErrForbidden
		}
	}

	p, err := s.store.Path(app.ResumePath)
	if err != nil {
		return nil, "", err
	}
	return app, p, nil
}
