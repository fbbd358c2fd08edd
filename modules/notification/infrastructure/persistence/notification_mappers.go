package persistence

import (
	"github.com/google/uuid"

	"github.com/pdnportal/portal/modules/notification/domain/entities/notification"
	"github.com/pdnportal/portal/modules/notification/infrastructure/persistence/models"
)

func toDBNotification(n *notification.Notification) *models.Notification {
	row := &models.Notification{
		ID:        n.ID,
		UserID:    n.UserID.String(),
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
	if n.SenderID != nil {
		s := n.SenderID.String()
		row.SenderID = &s
	}
	return row
}

func toDomainNotification(row *models.Notification) (*notification.Notification, error) {
	userID, err := uuid.Parse(row.UserID)
	if err != nil {
		return nil, err
	}
	n := &notification.Notification{
		ID:        row.ID,
		UserID:    userID,
		Title:     row.Title,
		Message:   row.Message,
		Link:      row.Link,
		Read:      row.Read,
		CreatedAt: row.CreatedAt,
	}
	if row.SenderID != nil {
		senderID, err := uuid.Parse(*row.SenderID)
		if err != nil {
			return nil, err
		}
		n.SenderID = &senderID
	}
	return n, nil
}
