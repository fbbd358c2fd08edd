package joborder

import (
	"time"

	"github.com/google/uuid"
)

type StepStatus string

const (
	StepSubmitted  StepStatus = "Submitted"
	StepProcessing StepStatus = "Processing"
	StepApproved   StepStatus = "Approved"
	StepRejected   StepStatus = "Rejected"
	StepCancelled  StepStatus = "Cancelled"
	StepPending    StepStatus = "Pending"
)

// RoutingStep is one hop of the approval chain. Steps are append-only: a
// superseded step is frozen as Approved or Rejected and never rewritten,
// with the single exception of the checker send-back which reopens the
// execution step.
type RoutingStep struct {
	ID          int64      `json:"id"`
	RequestID   int64      `json:"request_id"`
	RequesterID uuid.UUID  `json:"requester_id"`
	ApproverID  uuid.UUID  `json:"approver_id"`
	Sequence    int        `json:"sequence"`
	Status      StepStatus `json:"status"`
	Remarks     string     `json:"remarks"`
	// FirstApprover marks the step created directly from submission.
	FirstApprover bool       `json:"first_approver"`
	CreatedAt     time.Time  `json:"created_at"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`
}
