package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/pdnportal/portal/modules/notification/domain/entities/notification"
	"github.com/pdnportal/portal/pkg/application"
)

type memoryNotificationRepo struct {
	items  map[int64]notification.Notification
	nextID int64
	failed bool
}

func newMemoryNotificationRepo() *memoryNotificationRepo {
	return &memoryNotificationRepo{items: make(map[int64]notification.Notification)}
}

func (m *memoryNotificationRepo) Create(_ context.Context, n *notification.Notification) (*notification.Notification, error) {
	if m.failed {
		return nil, errors.New("storage unavailable")
	}
	m.nextID++
	stored := *n
	stored.ID = m.nextID
	m.items[stored.ID] = stored
	out := stored
	return &out, nil
}

func (m *memoryNotificationRepo) GetByID(_ context.Context, id int64) (*notification.Notification, error) {
	stored, ok := m.items[id]
	if !ok {
		return nil, notification.ErrNotFound
	}
	out := stored
	return &out, nil
}

func (m *memoryNotificationRepo) List(_ context.Context, params *notification.FindParams) ([]*notification.Notification, error) {
	var out []*notification.Notification
	for id := range m.items {
		stored := m.items[id]
		if stored.UserID != params.UserID {
			continue
		}
		if params.UnreadOnly && stored.Read {
			continue
		}
		copied := stored
		out = append(out, &copied)
	}
	return out, nil
}

func (m *memoryNotificationRepo) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, stored := range m.items {
		if stored.UserID == userID && !stored.Read {
			count++
		}
	}
	return count, nil
}

func (m *memoryNotificationRepo) MarkRead(_ context.Context, id int64) error {
	stored, ok := m.items[id]
	if !ok {
		return notification.ErrNotFound
	}
	stored.Read = true
	m.items[id] = stored
	return nil
}

func (m *memoryNotificationRepo) MarkAllRead(_ context.Context, userID uuid.UUID) error {
	for id, stored := range m.items {
		if stored.UserID == userID {
			stored.Read = true
			m.items[id] = stored
		}
	}
	return nil
}

type recordingHub struct {
	channels []string
	messages [][]byte
}

func (h *recordingHub) ServeHTTP(http.ResponseWriter, *http.Request) {}

func (h *recordingHub) Broadcast(channel string, message []byte) {
	h.channels = append(h.channels, channel)
	h.messages = append(h.messages, message)
}

func (h *recordingHub) ConnectionCount(string) int { return 0 }

func newNotificationService(repo notification.Repository, hub application.Huber) *NotificationService {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewNotificationService(repo, hub, logger)
}

func TestNotificationService_Notify_PersistsAndPushes(t *testing.T) {
	repo := newMemoryNotificationRepo()
	hub := &recordingHub{}
	service := newNotificationService(repo, hub)
	recipient := uuid.New()

	service.Notify(context.Background(), NotifyParams{
		UserID:  recipient,
		Title:   "Job order awaiting your approval",
		Message: "G-0001 was submitted.",
		Link:    "/joborder/requests/1",
	})

	require.Len(t, repo.items, 1)
	require.Len(t, hub.channels, 1)
	require.Equal(t, application.UserChannel(recipient), hub.channels[0])
	require.Contains(t, string(hub.messages[0]), "G-0001 was submitted.")
}

func TestNotificationService_Notify_SwallowsStorageErrors(t *testing.T) {
	repo := newMemoryNotificationRepo()
	repo.failed = true
	hub := &recordingHub{}
	service := newNotificationService(repo, hub)

	service.Notify(context.Background(), NotifyParams{
		UserID: uuid.New(),
		Title:  "Job order rejected",
	})

	require.Empty(t, repo.items)
	require.Empty(t, hub.channels)
}

func TestNotificationService_MarkRead_RefusesForeignInbox(t *testing.T) {
	repo := newMemoryNotificationRepo()
	service := newNotificationService(repo, &recordingHub{})
	owner := uuid.New()

	created, err := repo.Create(context.Background(), &notification.Notification{UserID: owner, Title: "t"})
	require.NoError(t, err)

	err = service.MarkRead(context.Background(), created.ID, uuid.New())
	require.ErrorIs(t, err, notification.ErrNotFound)

	require.NoError(t, service.MarkRead(context.Background(), created.ID, owner))
	count, err := service.CountUnread(context.Background(), owner)
	require.NoError(t, err)
	require.Zero(t, count)
}
