// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package internship manages the postings partners publish.
package internship

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"codeberg.org/skillnaav/portal/internal/auth"
	"codeberg.org/skillnaav/portal/internal/models"
	"codeberg.org/skillnaav/portal/internal/repository"
)

// ErrInvalidInput is returned when a posting misses required content.
var ErrInvalidInput = errors.New("invalid internship")

// Input is the partner-editable content of a posting.
type Input struct {
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	Location       string   `json:"location"`
	Description    string   `json:"description"`
	StartDate      string   `json:"start_date"`
	Duration       string   `json:"duration"`
	Salary         string   `json:"salary"`
	Qualifications []string `json:"qualifications"`
	ContactName    string   `json:"contact_name"`
	ContactEmail   string   `json:"contact_email"`
	ContactPhone   string   `json:"contact_phone"`
	ImgURL         string   `json:"img_url"`
}

func (in *Input) normalize() {
	for _, f := range []*string{
		&in.Title, &in.Company, &in.Location, &in.Description, &in.StartDate, &in.Duration,
		&in.Salary, &in.ContactName, &in.ContactEmail, &in.ContactPhone, &in.ImgURL,
	} {
		*f = strings.TrimSpace(*f)
	}
	quals := make([]string, 0, len(in.Qualifications))
	for _, q := range in.Qualifications {
		if q = strings.TrimSpace(q); q != "" {
			quals = append(quals, q)
		}
	}
	in.Qualifications = quals
}

func (in *Input) validate() error {
	required := []struct{ name, value string }{
		{"title", in.Title},
		{"company", in.Company},
		{"location", in.Location},
		{"description", in.Description},
		{"contact_name", in.ContactName},
		{"contact_email", in.ContactEmail},
		{"contact_phone", in.ContactPhone},
	}
	for _, f := range required {
		if f.value == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, f.name)
		}
	}
	if _, err := mail.ParseAddress(in.ContactEmail); err != nil {
		return fmt.Errorf("%w: contact_email is not a valid address", ErrInvalidInput)
	}
	return nil
}

func (in *Input) apply(m *models.Internship) {
	m.Title = in.Title
	m.Company = in.Company
	m.Location = in.Location
	m.Description = in.Description
	m.StartDate = in.StartDate
	m.Duration = in.Duration
	m.Salary = in.Salary
	m.Qualifications = models.StringList(in.Qualifications)
	m.ContactName = in.ContactName
	m.ContactEmail = in.ContactEmail
	m.ContactPhone = in.ContactPhone
	m.ImgURL = in.ImgURL
}

// Service implements posting management.
type Service struct {
	repo *repository.Repository
}

// NewService creates an internship service.
func NewService(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// Create publishes a posting owned by the partner. It starts pending review.
func (s *Service) Create(ctx context.Context, owner *auth.Identity, in Input) (*models.Internship, error) {
	if !owner.Is(models.RolePartner) {
		return nil, auth.ErrForbidden
	}
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	m := &models.Internship{PartnerID: owner.ID}
	in.apply(m)
	created, err := s.repo.CreateInternship(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("failed to create internship: %w", err)
	}

	slog.Info("internship_created", "id", created.ID, "partner_id", owner.ID)
	return created, nil
}

// Update replaces the content of a posting. Only the owner may edit and each
// edit sends the posting back to review.
func (s *Service) Update(ctx context.Context, owner *auth.Identity, id int64, in Input) (*models.Internship, error) {
	current, err := s.owned(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	in.apply(current)
	if err := s.repo.UpdateInternship(ctx, current); err != nil {
		return nil, fmt.Errorf("failed to update internship: %w", err)
	}

	slog.Info("internship_updated", "id", id, "partner_id", owner.ID)
	return s.repo.GetInternship(ctx, id)
}

// Delete removes a posting of the owner from all listings.
func (s *Service) Delete(ctx context.Context, owner *auth.Identity, id int64) error {
	if _, err := s.owned(ctx, owner, id); err != nil {
		return err
	}
	if err := s.repo.DeleteInternship(ctx, id, owner.ID); err != nil {
		return fmt.Errorf("failed to delete internship: %w", err)
	}
	slog.Info("internship_deleted", "id", id, "partner_id", owner.ID)
	return nil
}

// Get returns a posting. Unapproved postings are only visible to their owner and admins.
func (s *Service) Get(ctx context.Context, viewer *auth.Identity, id int64) (*models.Internship, error) {
	in, err := s.repo.GetInternship(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Approved || CanManage(viewer, in) {
		return in, nil
	}
	return nil, repository.ErrNotFound
}

// ListPublic returns the approved postings.
func (s *Service) ListPublic(ctx context.Context) ([]models.Internship, error) {
	return s.repo.ListApprovedInternships(ctx)
}

// ListMine returns every live posting of the partner, whatever its review state.
func (s *Service) ListMine(ctx context.Context, owner *auth.Identity) ([]models.Internship, error) {
	if !owner.Is(models.RolePartner) {
		return nil, auth.ErrForbidden
	}
	return s.repo.ListInternshipsByPartner(ctx, owner.ID)
}

// ListForReview returns the postings awaiting an admin decision.
func (s *Service) ListForReview(ctx context.Context) ([]models.Internship, error) {
	return s.repo.ListPendingInternships(ctx)
}

// CanManage reports whether id is the owning partner of in or an admin.
func CanManage(id *auth.Identity, in *models.Internship) bool {
	if id == nil {
		return false
	}
	return id.Role == models.RoleAdmin || (id.Role == models.RolePartner && id.ID == in.PartnerID)
}

func (s *Service) owned(ctx context.Context, owner *auth.Identity, id int64) (*models.Internship, error) {
	in, err := s.repo.GetInternship(ctx, id)
	if err != nil {
		return nil, err
	}
	if !owner.Is(models.RolePartner) || in.PartnerID != owner.ID {
		return nil, auth.ErrForbidden
	}
	return in, nil
}
