package joborder

import "github.com/google/uuid"

// Workflow events published after a transaction commits. The notification
// handler fans these out to the affected users.

type SubmittedEvent struct {
	Request  *JobRequest
	NextStep *RoutingStep
}

type AdvancedEvent struct {
	Request  *JobRequest
	ActorID  uuid.UUID
	NextStep *RoutingStep
}

type RejectedEvent struct {
	Request *JobRequest
	ActorID uuid.UUID
	Remarks string
}

// SentBackEvent is the checker's non-terminal rejection: the execution step
// is reopened instead of the request dying.
type SentBackEvent struct {
	Request      *JobRequest
	ActorID      uuid.UUID
	ReopenedStep *RoutingStep
	Remarks      string
}

type AssignedEvent struct {
	Request    *JobRequest
	ActorID    uuid.UUID
	AssigneeID uuid.UUID
}

type CompletedEvent struct {
	Request   *JobRequest
	ActorID   uuid.UUID
	CheckerID uuid.UUID
}

type CheckedEvent struct {
	Request *JobRequest
	ActorID uuid.UUID
}

type ClosedEvent struct {
	Request *JobRequest
	ActorID uuid.UUID
}

type CancelledEvent struct {
	Request *JobRequest
	ActorID uuid.UUID
}
