package joborder

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusRouting   Status = "Routing"
	StatusCompleted Status = "Completed"
	StatusChecked   Status = "Checked"
	StatusCancelled Status = "Cancelled"
	StatusClosed    Status = "Closed"
	StatusRejected  Status = "Rejected"
)

// IsTerminal reports whether no further workflow action may touch the
// request.
func (s Status) IsTerminal() bool {
	return s == StatusClosed || s == StatusCancelled || s == StatusRejected
}

type Category string

const (
	CategoryGreen  Category = "Green"
	CategoryYellow Category = "Yellow"
	CategoryWhite  Category = "White"
	CategoryOrange Category = "Orange"
)

var controlPrefixes = map[Category]string{
	CategoryGreen:  "G",
	CategoryYellow: "Y",
	CategoryWhite:  "W",
	CategoryOrange: "O",
}

func (c Category) Valid() bool {
	_, ok := controlPrefixes[c]
	return ok
}

// ControlPrefix is the letter prepended to the per-category sequence
// when forming a control number such as G-0001.
func (c Category) ControlPrefix() string {
	return controlPrefixes[c]
}

var (
	ErrNotFound         = errors.New("job request not found")
	ErrNotAuthorized    = errors.New("actor does not hold the current routing step")
	ErrAlreadyProcessed = errors.New("job request is already in a terminal status")
	ErrMissingReason    = errors.New("rejection requires remarks")
	ErrMissingAction    = errors.New("completion requires the action taken")
	ErrNoNextApprover   = errors.New("no configured approver for the next stage")
	ErrInvalidAction    = errors.New("operation not valid at the current stage")
	ErrInvalidAssignee  = errors.New("assignee is not maintenance staff")
	ErrNoCurrentStep    = errors.New("no routing step is currently processing")
)

// JobRequest is the aggregate root of the routing workflow. CurrentStage is
// kept in lockstep with the Processing step so readers never have to derive
// the workflow pointer from the step table.
type JobRequest struct {
	ID             int64     `json:"id"`
	ControlNumber  string    `json:"control_number"`
	Category       Category  `json:"category"`
	RequesterID    uuid.UUID `json:"requester_id"`
	RequestorName  string    `json:"requestor_name"`
	Tool           string    `json:"tool"`
	NatureOfChange string    `json:"nature_of_change"`
	Details        string    `json:"details"`
	Line           string    `json:"line"`
	Status         Status    `json:"status"`
	CurrentStage   Stage     `json:"current_stage"`

	InChargeID       *uuid.UUID `json:"in_charge_id,omitempty"`
	DateReceived     *time.Time `json:"date_received,omitempty"`
	TargetDate       *time.Time `json:"target_date,omitempty"`
	TargetDateReason string     `json:"target_date_reason,omitempty"`
	ActionTaken      string     `json:"action_taken,omitempty"`
	DateCompleted    *time.Time `json:"date_completed,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type FindParams struct {
	PreparerID  *uuid.UUID
	InChargeID  *uuid.UUID
	ApproverID  *uuid.UUID // requests whose Processing step belongs to this user
	ActedByID   *uuid.UUID // requests the user has already approved or rejected a step of
	Statuses    []Status
	Category    *Category
	Search      string // matches control number, requestor, tool, nature
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Unassigned  bool // no in-charge yet
	Limit       int
	Offset      int
}

type Repository interface {
	Create(ctx context.Context, r *JobRequest) (*JobRequest, error)
	Update(ctx context.Context, r *JobRequest) error
	GetByID(ctx context.Context, id int64) (*JobRequest, error)
	// GetByIDForUpdate locks the request row for the rest of the
	// transaction.
	GetByIDForUpdate(ctx context.Context, id int64) (*JobRequest, error)
	List(ctx context.Context, params *FindParams) ([]*JobRequest, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	// NextControlSequence increments and returns the per-category counter.
	NextControlSequence(ctx context.Context, category Category) (int64, error)

	CreateStep(ctx context.Context, s *RoutingStep) (*RoutingStep, error)
	UpdateStep(ctx context.Context, s *RoutingStep) error
	Steps(ctx context.Context, requestID int64) ([]*RoutingStep, error)
	ProcessingStep(ctx context.Context, requestID int64) (*RoutingStep, error)
	StepBySequence(ctx context.Context, requestID int64, sequence int) (*RoutingStep, error)
}
