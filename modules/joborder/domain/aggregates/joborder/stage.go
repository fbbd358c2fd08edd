package joborder

// Stage names a position in the fixed routing sequence. The integer value
// doubles as the sequence number of the routing step acting at that stage.
type Stage int

const (
	StageSubmitted Stage = iota
	StageFirstApproval
	StageSecondApproval
	StageThirdApproval
	StageFinalApproval
	StageFacilitation
	StageExecution
	StageChecking
	StageClosure
)

var stageNames = map[Stage]string{
	StageSubmitted:      "submitted",
	StageFirstApproval:  "first_approval",
	StageSecondApproval: "second_approval",
	StageThirdApproval:  "third_approval",
	StageFinalApproval:  "final_approval",
	StageFacilitation:   "facilitation",
	StageExecution:      "execution",
	StageChecking:       "checking",
	StageClosure:        "closure",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// ActorRule describes how the next step's approver is resolved.
type ActorRule int

const (
	// ActorConfiguredApprover chains to the previous approver's own
	// configured approver.
	ActorConfiguredApprover ActorRule = iota
	// ActorFacilitator resolves the module's designated facilitator.
	ActorFacilitator
	// ActorAssignedInCharge is the execution owner picked by the
	// facilitator.
	ActorAssignedInCharge
	// ActorConfiguredChecker chains to the requester's configured checker.
	ActorConfiguredChecker
	// ActorRequester routes back to the original requester.
	ActorRequester
	// ActorNone ends the chain.
	ActorNone
)

// Transition describes one hop of the workflow: where approval at a stage
// leads, the request status written as a side effect, and who acts next.
type Transition struct {
	Next      Stage
	Status    Status
	NextActor ActorRule
}

// transitions is the data-driven stage machine. Stages absent from the map
// cannot be advanced generically: facilitation, execution and closure have
// dedicated operations with extra inputs.
var transitions = map[Stage]Transition{
	StageFirstApproval:  {Next: StageSecondApproval, Status: StatusRouting, NextActor: ActorConfiguredApprover},
	StageSecondApproval: {Next: StageThirdApproval, Status: StatusRouting, NextActor: ActorConfiguredApprover},
	StageThirdApproval:  {Next: StageFinalApproval, Status: StatusRouting, NextActor: ActorConfiguredApprover},
	StageFinalApproval:  {Next: StageFacilitation, Status: StatusRouting, NextActor: ActorFacilitator},
	StageFacilitation:   {Next: StageExecution, Status: StatusRouting, NextActor: ActorAssignedInCharge},
	StageExecution:      {Next: StageChecking, Status: StatusCompleted, NextActor: ActorConfiguredChecker},
	StageChecking:       {Next: StageClosure, Status: StatusChecked, NextActor: ActorRequester},
	StageClosure:        {Next: StageClosure, Status: StatusClosed, NextActor: ActorNone},
}

// TransitionFrom returns the transition taken when the given stage is
// approved.
func TransitionFrom(stage Stage) (Transition, bool) {
	t, ok := transitions[stage]
	return t, ok
}

// CanAdvanceGenerically reports whether Advance may act at the stage, as
// opposed to the dedicated assign/complete/close operations.
func (s Stage) CanAdvanceGenerically() bool {
	switch s {
	case StageFirstApproval, StageSecondApproval, StageThirdApproval, StageFinalApproval, StageChecking:
		return true
	default:
		return false
	}
}
