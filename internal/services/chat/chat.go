// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package chat implements the message thread attached to each internship.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"codeberg.org/skillnaav/portal/internal/auth"
	"codeberg.org/skillnaav/portal/internal/models"
	"codeberg.org/skillnaav/portal/internal/repository"
	"codeberg.org/skillnaav/portal/internal/services/internship"
	"codeberg.org/skillnaav/portal/internal/sse"
)

// MaxMessageLength is the longest message body accepted, in characters.
const MaxMessageLength = 2000

// EventMessage is the SSE event name of a new message.
const EventMessage = "message"

var (
	ErrEmptyMessage   = errors.New("message is required")
	ErrMessageTooLong = fmt.Errorf("message exceeds %d characters", MaxMessageLength)
)

// Service sends and lists thread messages and pushes new ones to subscribers.
type Service struct {
	repo *repository.Repository
	hub  *sse.Hub
}

// NewService creates a chat service. hub may be nil when no live delivery is needed.
func NewService(repo *repository.Repository, hub *sse.Hub) *Service {
	return &Service{repo: repo, hub: hub}
}

// Send appends a message from sender to the thread of the internship.
func (s *Service) Send(ctx context.Context, sender *auth.Identity, internshipID int64, body string) (*models.Message, error) {
	posting, err := s.thread(ctx, sender, internshipID)
	if err != nil {
		return nil, err
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(body) > MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	msg, err := s.repo.CreateMessage(ctx, &models.Message{
		InternshipID: posting.ID,
		PartnerID:    posting.PartnerID,
		SenderRole:   sender.Role,
		SenderID:     sender.ID,
		Body:         body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	slog.Info("message_sent", "internship_id", posting.ID, "sender_role", sender.Role, "sender_id", sender.ID)
	s.publish(msg)
	return msg, nil
}

// List returns the thread of the internship, oldest first.
func (s *Service) List(ctx context.Context, viewer *auth.Identity, internshipID int64) ([]models.Message, error) {
	if _, err := s.thread(ctx, viewer, internshipID); err != nil {
		return nil, err
	}
	msgs, err := s.repo.ListMessages(ctx, internshipID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

// Subscribe registers viewer for live messages of the thread.
// The returned cancel function must be called when the stream ends.
func (s *Service) Subscribe(ctx context.Context, viewer *auth.Identity, internshipID int64) (<-chan string, func(), error) {
	if s.hub == nil {
		return nil, nil, errors.New("live delivery is not enabled")
	}
	if _, err := s.thread(ctx, viewer, internshipID); err != nil {
		return nil, nil, err
	}

	topic := sse.ThreadTopic(internshipID)
	key := sse.SubscriberKey(string(viewer.Role), viewer.ID)
	ch := s.hub.Subscribe(topic, key)

	slog.Debug("thread_subscribed", "internship_id", internshipID, "subscriber", key)
	return ch, func() { s.hub.Unsubscribe(topic, key, ch) }, nil
}

func (s *Service) publish(msg *models.Message) {
	if s.hub == nil {
		return
	}
	event, err := sse.FormatJSONEvent(EventMessage, msg)
	if err != nil {
		slog.Error("message_publish_failed", "id", msg.ID, "error", err)
		return
	}
	s.hub.Publish(sse.ThreadTopic(msg.InternshipID), event)
}

// thread loads the internship and checks that id takes part in its thread.
func (s *Service) thread(ctx context.Context, id *auth.Identity, internshipID int64) (*models.Internship, error) {
	posting, err := s.repo.GetInternship(ctx, internshipID)
	if err != nil {
		return nil, err
	}
	if !internship.CanManage(id, posting) {
		return nil, auth.ErrForbidden
	}
	return posting, nil
}
