package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pdnportal/portal/modules/notification/domain/entities/notification"
	"github.com/pdnportal/portal/pkg/application"
)

// NotificationService stores inbox entries and pushes them to the owner's
// websocket channel. Delivery is best effort: a request workflow must never
// fail because a notification could not be written or pushed.
type NotificationService struct {
	repo   notification.Repository
	hub    application.Huber
	logger *logrus.Logger
}

func NewNotificationService(
	repo notification.Repository,
	hub application.Huber,
	logger *logrus.Logger,
) *NotificationService {
	return &NotificationService{
		repo:   repo,
		hub:    hub,
		logger: logger,
	}
}

type NotifyParams struct {
	UserID   uuid.UUID
	SenderID *uuid.UUID
	Title    string
	Message  string
	Link     string
}

func (s *NotificationService) Notify(ctx context.Context, params NotifyParams) {
	created, err := s.repo.Create(ctx, &notification.Notification{
		UserID:   params.UserID,
		SenderID: params.SenderID,
		Title:    params.Title,
		Message:  params.Message,
		Link:     params.Link,
	})
	if err != nil {
		s.logger.WithError(err).WithField("user_id", params.UserID).Warn("notification write failed")
		return
	}

	payload, err := json.Marshal(map[string]any{
		"type":         "notification",
		"notification": created,
	})
	if err != nil {
		s.logger.WithError(err).Warn("notification payload marshal failed")
		return
	}
	s.hub.Broadcast(application.UserChannel(params.UserID), payload)
}

func (s *NotificationService) List(ctx context.Context, params *notification.FindParams) ([]*notification.Notification, error) {
	return s.repo.List(ctx, params)
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead flips a single entry, refusing to touch another user's inbox.
func (s *NotificationService) MarkRead(ctx context.Context, id int64, userID uuid.UUID) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return notification.ErrNotFound
	}
	return s.repo.MarkRead(ctx, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID)
}
