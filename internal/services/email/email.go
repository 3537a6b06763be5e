// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package email sends review and password reset notifications.
package email

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"codeberg.org/skillnaav/portal/internal/config"
	"codeberg.org/skillnaav/portal/internal/i18n"
)

// Service sends notifications via SMTP.
type Service struct {
	cfg  *config.SMTPConfig
	send func(*mail.Msg) error
}

// NewService creates a new email service.
func NewService(cfg *config.SMTPConfig) (*Service, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	s := &Service{cfg: cfg}
	s.send = s.dialAndSend
	return s, nil
}

// NewNotifier returns the SMTP service when configured, the log notifier otherwise.
func NewNotifier(cfg *config.SMTPConfig) (Notifier, error) {
	if !cfg.Enabled() {
		return LogNotifier{}, nil
	}
	return NewService(cfg)
}

// NotifyApproved tells the owner that the account or posting was approved.
func (s *Service) NotifyApproved(ctx context.Context, n Notice) error {
	data := noticeData(n)
	body := "approved_body_account"
	if n.Title != "" {
		body = "approved_body_internship"
	}
	return s.deliver(n.To.Email, i18n.TData(ctx, "approved_subject", data), i18n.TData(ctx, body, data))
}

// NotifyRejected tells the owner that the account or posting was rejected.
func (s *Service) NotifyRejected(ctx context.Context, n Notice) error {
	data := noticeData(n)
	if n.Reason == "" {
		data["Reason"] = i18n.T(ctx, "rejected_default_reason")
	}
	body := "rejected_body_account"
	if n.Title != "" {
		body = "rejected_body_internship"
	}
	return s.deliver(n.To.Email, i18n.TData(ctx, "rejected_subject", data), i18n.TData(ctx, body, data))
}

// SendPasswordReset mails a one-time reset code.
func (s *Service) SendPasswordReset(ctx context.Context, to Recipient, code string, ttl time.Duration) error {
	data := map[string]any{
		"Name":    to.Name,
		"Code":    code,
		"Minutes": int(ttl.Minutes()),
	}
	return s.deliver(to.Email, i18n.T(ctx, "reset_subject"), i18n.TData(ctx, "reset_body", data))
}

func noticeData(n Notice) map[string]any {
	return map[string]any{
		"Name":   n.To.Name,
		"Kind":   n.Kind,
		"Title":  n.Title,
		"Reason": n.Reason,
	}
}

func (s *Service) deliver(to, subject, body string) error {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	return s.send(msg)
}

// dialAndSend sends the message via SMTP using go-mail.
func (s *Service) dialAndSend(msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	// Implicit TLS on 465, STARTTLS elsewhere
	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
