package viewmodels

type RoutingStep struct {
	ID            int64   `json:"id"`
	RequestID     int64   `json:"request_id"`
	RequesterID   string  `json:"requester_id"`
	ApproverID    string  `json:"approver_id"`
	Sequence      int     `json:"sequence"`
	Status        string  `json:"status"`
	Remarks       string  `json:"remarks,omitempty"`
	FirstApprover bool    `json:"first_approver"`
	CreatedAt     string  `json:"created_at"`
	ApprovedAt    *string `json:"approved_at,omitempty"`
}

type JobRequest struct {
	ID               int64   `json:"id"`
	ControlNumber    string  `json:"control_number"`
	Category         string  `json:"category"`
	RequesterID      string  `json:"requester_id"`
	RequestorName    string  `json:"requestor_name"`
	Line             string  `json:"line,omitempty"`
	Tool             string  `json:"tool"`
	NatureOfChange   string  `json:"nature_of_change"`
	Details          string  `json:"details,omitempty"`
	Status           string  `json:"status"`
	CurrentStage     int     `json:"current_stage"`
	CurrentStageName string  `json:"current_stage_name"`
	InChargeID       *string `json:"in_charge_id,omitempty"`
	DateReceived     *string `json:"date_received,omitempty"`
	TargetDate       *string `json:"target_date,omitempty"`
	TargetDateReason string  `json:"target_date_reason,omitempty"`
	ActionTaken      string  `json:"action_taken,omitempty"`
	DateCompleted    *string `json:"date_completed,omitempty"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

type JobRequestDetail struct {
	JobRequest
	Steps []*RoutingStep `json:"steps"`
}

type PaginatedJobRequests struct {
	Items []*JobRequest `json:"items"`
	Total int64         `json:"total"`
}

type StatsOverview struct {
	ByStatus           map[string]int64 `json:"by_status"`
	SubmittedThisMonth int64            `json:"submitted_this_month"`
	ClosedThisMonth    int64            `json:"closed_this_month"`
	PendingForUser     int64            `json:"pending_for_user"`
	AwaitingAction     int64            `json:"awaiting_action"`
}

type MonthlyCount struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	Category  string `json:"category"`
	Total     int64  `json:"total"`
	Completed int64  `json:"completed"`
}

type WorkloadEntry struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Active int64  `json:"active"`
}

type DeadlineBuckets struct {
	Overdue  []*JobRequest `json:"overdue"`
	Today    []*JobRequest `json:"today"`
	Tomorrow []*JobRequest `json:"tomorrow"`
	ThisWeek []*JobRequest `json:"this_week"`
	NextWeek []*JobRequest `json:"next_week"`
	Later    []*JobRequest `json:"later"`
}
