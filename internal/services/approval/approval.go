// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package approval applies admin review decisions to accounts and postings.
package approval

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/samber/lo"

	"codeberg.org/skillnaav/portal/internal/config"
	"codeberg.org/skillnaav/portal/internal/models"
	"codeberg.org/skillnaav/portal/internal/obs"
	"codeberg.org/skillnaav/portal/internal/repository"
	"codeberg.org/skillnaav/portal/internal/services/email"
)

// Subject is the kind of record a decision applies to.
type Subject string

const (
	SubjectUser       Subject = "user"
	SubjectPartner    Subject = "partner"
	SubjectAdmin      Subject = "admin"
	SubjectInternship Subject = "internship"
)

// Transition is a review decision.
type Transition string

const (
	Approve Transition = "approve"
	Reject  Transition = "reject"
)

var (
	ErrUnknownSubject    = errors.New("unknown approval subject")
	ErrUnknownTransition = errors.New("unknown transition")
)

// Result reports what a decision did.
type Result struct {
	Subject    Subject
	ID         int64
	Transition Transition
	// Changed is false when the record already was in the requested state.
	Changed bool
	// Removed is set when a rejected posting was deleted for good.
	Removed bool
}

// FileRemover deletes stored resume files by name.
type FileRemover interface {
	Remove(name string) error
}

// Service applies transitions with compare-and-swap writes.
type Service struct {
	repo         *repository.Repository
	notifier     email.Notifier
	metrics      *obs.Metrics
	files        FileRemover
	rejectPolicy string
}

// NewService creates an approval service. notifier, metrics and files may be nil;
// without files the resumes of hard-deleted postings stay on disk.
func NewService(repo *repository.Repository, notifier email.Notifier, metrics *obs.Metrics,
	cfg *config.InternshipConfig, files FileRemover,
) *Service {
	if notifier == nil {
		notifier = email.LogNotifier{}
	}
	policy := config.RejectSoft
	if cfg != nil && cfg.RejectPolicy == config.RejectHard {
		policy = config.RejectHard
	}
	return &Service{repo: repo, notifier: notifier, metrics: metrics, files: files, rejectPolicy: policy}
}

func (s Subject) kind() (repository.Kind, error) {
	switch s {
	case SubjectUser:
		return repository.KindUser, nil
	case SubjectPartner:
		return repository.KindPartner, nil
	case SubjectAdmin:
		return repository.KindAdmin, nil
	case SubjectInternship:
		return repository.KindInternship, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSubject, s)
}

// Apply records transition t on the record id of subject.
// Repeating the decision a record already carries is a no-op without notification.
// reason is only used for rejections; an empty reason uses the default text.
func (s *Service) Apply(ctx context.Context, subject Subject, id int64, t Transition, reason string) (*Result, error) {
	kind, err := subject.kind()
	if err != nil {
		return nil, err
	}
	if t != Approve && t != Reject {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransition, t)
	}

	current, err := s.repo.GetApproval(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	res := &Result{Subject: subject, ID: id, Transition: t}
	if holds(t, current) {
		slog.Info("approval_unchanged", "subject", subject, "id", id)
		return res, nil
	}

	// load before writing: a hard delete leaves nothing to address
	notice, err := s.notice(ctx, subject, id, reason)
	if err != nil {
		return nil, err
	}

	var resumes []string
	if s.removes(subject, t) {
		if resumes, err = s.resumeFiles(ctx, id); err != nil {
			return nil, err
		}
		err = s.repo.DeleteIfVersion(ctx, kind, id, current.Version)
	} else {
		err = s.repo.SetApproval(ctx, kind, id, current.Version, t == Approve)
	}
	if err != nil {
		return s.settle(ctx, kind, res, err)
	}
	res.Changed = true
	res.Removed = s.removes(subject, t)

	slog.Info("approval_"+string(t), "subject", subject, "id", id, "removed", res.Removed)
	s.metrics.ApprovalTransition(string(subject), string(t))

	s.removeFiles(resumes)
	s.notify(ctx, t, notice)
	return res, nil
}

// holds reports whether a record already carries the outcome of t.
func holds(t Transition, a models.Approval) bool {
	if t == Approve {
		return a.Approved
	}
	return a.Status() == models.StatusRejected
}

// removes reports whether t deletes the record instead of updating it.
func (s *Service) removes(subject Subject, t Transition) bool {
	return t == Reject && subject == SubjectInternship && s.rejectPolicy == config.RejectHard
}

// settle resolves a write that lost against a concurrent decision. If the
// winner left the record in the requested state the call is a no-op.
func (s *Service) settle(ctx context.Context, kind repository.Kind, res *Result, writeErr error) (*Result, error) {
	// rejected postings disappear from view under either policy
	rejectedPosting := res.Subject == SubjectInternship && res.Transition == Reject

	if errors.Is(writeErr, repository.ErrNotFound) && rejectedPosting {
		return s.unchanged(res), nil
	}
	if !errors.Is(writeErr, repository.ErrVersionConflict) {
		return nil, writeErr
	}

	latest, err := s.repo.GetApproval(ctx, kind, res.ID)
	switch {
	case errors.Is(err, repository.ErrNotFound) && rejectedPosting:
		return s.unchanged(res), nil
	case err != nil:
		return nil, err
	case holds(res.Transition, latest):
		return s.unchanged(res), nil
	}
	slog.Warn("approval_conflict", "subject", res.Subject, "id", res.ID, "transition", res.Transition)
	return nil, writeErr
}

func (s *Service) unchanged(res *Result) *Result {
	slog.Info("approval_unchanged", "subject", res.Subject, "id", res.ID, "concurrent", true)
	res.Removed = s.removes(res.Subject, res.Transition)
	return res
}

// resumeFiles lists the stored resumes of a posting about to be deleted,
// whose application rows go with it.
func (s *Service) resumeFiles(ctx context.Context, internshipID int64) ([]string, error) {
	if s.files == nil {
		return nil, nil
	}
	apps, err := s.repo.ListApplications(ctx, internshipID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return lo.Map(apps, func(a models.Application, _ int) string { return a.ResumePath }), nil
}

// removeFiles is best effort; leftovers are logged.
func (s *Service) removeFiles(names []string) {
	for _, name := range names {
		if err := s.files.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("resume_cleanup_failed", "file", name, "error", err)
		}
	}
}

// notice builds the notification for the owner of a record.
// For postings the owner is the partner that published it.
func (s *Service) notice(ctx context.Context, subject Subject, id int64, reason string) (email.Notice, error) {
	n := email.Notice{Kind: string(subject), Reason: reason}

	if subject == SubjectInternship {
		in, err := s.repo.GetInternship(ctx, id)
		if err != nil {
			return n, err
		}
		n.Title = in.Title
		partner, err := s.repo.GetPartnerByID(ctx, in.PartnerID)
		if err != nil {
			return n, err
		}
		n.To = email.Recipient{Name: partner.Name, Email: partner.Email}
		return n, nil
	}

	account, err := s.repo.GetIdentityByID(ctx, models.Role(subject), id)
	if err != nil {
		return n, err
	}
	n.To = email.Recipient{Name: account.Base().Name, Email: account.Base().Email}
	return n, nil
}

// notify never fails the decision; delivery problems are logged and counted.
func (s *Service) notify(ctx context.Context, t Transition, n email.Notice) {
	var err error
	if t == Approve {
		err = s.notifier.NotifyApproved(ctx, n)
	} else {
		err = s.notifier.NotifyRejected(ctx, n)
	}
	if err != nil {
		slog.Error("notification_failed", "kind", n.Kind, "transition", t, "email", n.To.Email, "error", err)
		s.metrics.NotificationFailed(string(t))
	}
}
