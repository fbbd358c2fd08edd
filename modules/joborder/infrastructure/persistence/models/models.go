package models

import "time"

type JobRequest struct {
	ID             int64
	ControlNumber  string
	Category       string
	RequesterID    string
	RequestorName  string
	Tool           string
	NatureOfChange string
	Details        string
	Line           string
	Status         string
	CurrentStage   int

	InChargeID       *string
	DateReceived     *time.Time
	TargetDate       *time.Time
	TargetDateReason string
	ActionTaken      string
	DateCompleted    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

type RoutingStep struct {
	ID            int64
	RequestID     int64
	RequesterID   string
	ApproverID    string
	Sequence      int
	Status        string
	Remarks       string
	FirstApprover bool
	CreatedAt     time.Time
	ApprovedAt    *time.Time
}
