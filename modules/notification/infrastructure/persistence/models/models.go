package models

import "time"

type Notification struct {
	ID        int64
	UserID    string
	SenderID  *string
	Title     string
	Message   string
	Link      string
	Read      bool
	CreatedAt time.Time
}
