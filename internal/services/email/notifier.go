// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"log/slog"
	"time"
)

// Recipient is the addressee of a notification.
type Recipient struct {
	Name  string
	Email string
}

// Notice describes the outcome of a review.
// Kind is "user", "partner", "admin" or "internship"; Title is set for internships.
type Notice struct {
	To     Recipient
	Kind   string
	Title  string
	Reason string
}

// Notifier delivers account notifications.
type Notifier interface {
	NotifyApproved(ctx context.Context, n Notice) error
	NotifyRejected(ctx context.Context, n Notice) error
	SendPasswordReset(ctx context.Context, to Recipient, code string, ttl time.Duration) error
}

// LogNotifier writes notifications to the log instead of sending them.
// It is used when no SMTP server is configured.
type LogNotifier struct{}

func (LogNotifier) NotifyApproved(_ context.Context, n Notice) error {
	slog.Info("notification_approved", "email", n.To.Email, "kind", n.Kind, "title", n.Title)
	return nil
}

func (LogNotifier) NotifyRejected(_ context.Context, n Notice) error {
	slog.Info("notification_rejected", "email", n.To.Email, "kind", n.Kind, "title", n.Title, "reason", n.Reason)
	return nil
}

// SendPasswordReset records that a code was issued. The code itself is
// only written at debug level, for local development.
func (LogNotifier) SendPasswordReset(ctx context.Context, to Recipient, code string, ttl time.Duration) error {
	slog.Info("notification_password_reset", "email", to.Email, "ttl", ttl)
	slog.DebugContext(ctx, "notification_password_reset_code", "email", to.Email, "code", code)
	return nil
}
