package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("notification not found")

// Notification is a per-user inbox entry. Link points at the portal
// resource the notification is about, usually a job order request.
// SenderID is nil for system-generated entries.
type Notification struct {
	ID        int64      `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	SenderID  *uuid.UUID `json:"sender_id,omitempty"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type FindParams struct {
	UserID     uuid.UUID
	UnreadOnly bool
	Limit      int
	Offset     int
}

type Repository interface {
	Create(ctx context.Context, n *Notification) (*Notification, error)
	GetByID(ctx context.Context, id int64) (*Notification, error)
	List(ctx context.Context, params *FindParams) ([]*Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}
