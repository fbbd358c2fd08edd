package models

import "time"

type User struct {
	ID          string
	Username    string
	Name        string
	Position    string
	Line        string
	Requestor   bool
	Approver    bool
	Checker     bool
	Maintenance bool
	Facilitator bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ApproverAssignment struct {
	ID         int64
	UserID     *string
	Module     string
	Role       string
	ApproverID string
	Position   int
	CreatedAt  time.Time
}
