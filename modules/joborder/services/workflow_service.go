package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdnportal/portal/modules/core/domain/aggregates/user"
	"github.com/pdnportal/portal/modules/core/domain/entities/approver"
	"github.com/pdnportal/portal/modules/joborder/domain/aggregates/joborder"
	"github.com/pdnportal/portal/pkg/composables"
	"github.com/pdnportal/portal/pkg/eventbus"
	"github.com/pdnportal/portal/pkg/retry"
	"github.com/pdnportal/portal/pkg/serrors"
)

// Directory is the slice of the core directory service the workflow needs
// to resolve next actors.
type Directory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	ApproverFor(ctx context.Context, userID uuid.UUID, module, role string) (*user.User, error)
	Facilitator(ctx context.Context, module string) (*user.User, error)
}

// WorkflowService drives the routing chain. Every mutating operation runs
// inside a single transaction that locks the parent request row first, and
// the whole transaction retries on storage contention.
type WorkflowService struct {
	repo      joborder.Repository
	directory Directory
	publisher eventbus.EventBus
}

func NewWorkflowService(
	repo joborder.Repository,
	directory Directory,
	publisher eventbus.EventBus,
) *WorkflowService {
	return &WorkflowService{
		repo:      repo,
		directory: directory,
		publisher: publisher,
	}
}

type SubmitParams struct {
	RequesterID    uuid.UUID
	Category       joborder.Category
	Tool           string
	NatureOfChange string
	Details        string
	Line           string
}

func (p *SubmitParams) validate() error {
	if p.RequesterID == uuid.Nil {
		return serrors.NewFieldRequiredError("requester_id")
	}
	if !p.Category.Valid() {
		return serrors.NewErrorf("JOBORDER_INVALID_CATEGORY", "unknown category %q", p.Category)
	}
	if strings.TrimSpace(p.Tool) == "" {
		return serrors.NewFieldRequiredError("tool")
	}
	if strings.TrimSpace(p.NatureOfChange) == "" {
		return serrors.NewFieldRequiredError("nature_of_change")
	}
	// Orange requests and corrective natures must explain themselves.
	nature := strings.ToLower(p.NatureOfChange)
	if p.Category == joborder.CategoryOrange || nature == "countermeasure" || nature == "safety" {
		if strings.TrimSpace(p.Details) == "" {
			return serrors.NewFieldRequiredError("details")
		}
	}
	return nil
}

// Submit creates a request in Routing with its submission step and the
// first Processing step for the requester's configured approver.
func (s *WorkflowService) Submit(ctx context.Context, params SubmitParams) (*joborder.JobRequest, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	var created *joborder.JobRequest
	var firstStep *joborder.RoutingStep
	err := retry.OnContention(ctx, func(ctx context.Context) error {
		return composables.InTx(ctx, func(txCtx context.Context) error {
			requester, err := s.directory.GetByID(txCtx, params.RequesterID)
			if err != nil {
				return err
			}
			firstApprover, err := s.directory.ApproverFor(
				txCtx, requester.ID, approver.ModuleJobOrder, approver.RoleApprover)
			if errors.Is(err, approver.ErrNotFound) {
				return joborder.ErrNoNextApprover
			}
			if err != nil {
				return err
			}

			sequence, err := s.repo.NextControlSequence(txCtx, params.Category)
			if err != nil {
				return err
			}

			created, err = s.repo.Create(txCtx, &joborder.JobRequest{
				ControlNumber:  fmt.Sprintf("%s-%04d", params.Category.ControlPrefix(), sequence),
				Category:       params.Category,
				RequesterID:    requester.ID,
				RequestorName:  requester.Name,
				Tool:           params.Tool,
				NatureOfChange: params.NatureOfChange,
				Details:        params.Details,
				Line:           params.Line,
				Status:         joborder.StatusRouting,
				CurrentStage:   joborder.StageFirstApproval,
			})
			if err != nil {
				return err
			}

			now := time.Now()
			if _, err := s.repo.CreateStep(txCtx, &joborder.RoutingStep{
				RequestID:   created.ID,
				RequesterID: requester.ID,
				ApproverID:  requester.ID,
				Sequence:    int(joborder.StageSubmitted),
				Status:      joborder.StepSubmitted,
				ApprovedAt:  &now,
			}); err != nil {
				return err
			}

			firstStep, err = s.repo.CreateStep(txCtx, &joborder.RoutingStep{
				RequestID:     created.ID,
				RequesterID:   requester.ID,
				ApproverID:    firstApprover.ID,
				Sequence:      int(joborder.StageFirstApproval),
				Status:        joborder.StepProcessing,
				FirstApprover: true,
			})
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(&joborder.SubmittedEvent{Request: created, NextStep: firstStep})
	return created, nil
}

// execute wraps a workflow mutation: lock the request, run fn, publish the
// events fn returned once the transaction has committed.
func (s *WorkflowService) execute(
	ctx context.Context,
	requestID int64,
	fn func(ctx context.Context, req *joborder.JobRequest) ([]any, error),
) error {
	var events []any
	err := retry.OnContention(ctx, func(ctx context.Context) error {
		events = nil
		return composables.InTx(ctx, func(txCtx context.Context) error {
			req, err := s.repo.GetByIDForUpdate(txCtx, requestID)
			if err != nil {
				return err
			}
			events, err = fn(txCtx, req)
			return err
		})
	})
	if err != nil {
		return err
	}
	for _, event := range events {
		s.publisher.Publish(event)
	}
	return nil
}

// currentStepFor authorizes the actor: the request must not be terminal and
// the actor must hold the Processing step.
func (s *WorkflowService) currentStepFor(
	ctx context.Context,
	req *joborder.JobRequest,
	actorID uuid.UUID,
) (*joborder.RoutingStep, error) {
	if req.Status.IsTerminal() {
		return nil, joborder.ErrAlreadyProcessed
	}
	step, err := s.repo.ProcessingStep(ctx, req.ID)
	if errors.Is(err, joborder.ErrNoCurrentStep) {
		return nil, joborder.ErrAlreadyProcessed
	}
	if err != nil {
		return nil, err
	}
	if step.ApproverID != actorID {
		return nil, joborder.ErrNotAuthorized
	}
	return step, nil
}

func (s *WorkflowService) freezeStep(
	ctx context.Context,
	step *joborder.RoutingStep,
	status joborder.StepStatus,
	remarks string,
) error {
	now := time.Now()
	step.Status = status
	step.Remarks = remarks
	step.ApprovedAt = &now
	return s.repo.UpdateStep(ctx, step)
}

// Advance approves the current step at the generic approval stages (the
// approval chain and checking) and opens the next one.
func (s *WorkflowService) Advance(
	ctx context.Context,
	requestID int64,
	actorID uuid.UUID,
	remarks string,
) (*joborder.RoutingStep, error) {
	var nextStep *joborder.RoutingStep
	err := s.execute(ctx, requestID, func(txCtx context.Context, req *joborder.JobRequest) ([]any, error) {
		current, err := s.currentStepFor(txCtx, req, actorID)
		if err != nil {
			return nil, err
		}
		if !req.CurrentStage.CanAdvanceGenerically() {
			return nil, joborder.ErrInvalidAction
		}
		transition, ok := joborder.TransitionFrom(req.CurrentStage)
		if !ok {
			return nil, joborder.ErrInvalidAction
		}

		nextActor, err := s.resolveNextActor(txCtx, req, current, transition.NextActor)
		if err != nil {
			return nil, err
		}

		if err := s.freezeStep(txCtx, current, joborder.StepApproved, remarks); err != nil {
			return nil, err
		}

		nextStep, err = s.repo.CreateStep(txCtx, &joborder.RoutingStep{
			RequestID:   req.ID,
			RequesterID: req.RequesterID,
			ApproverID:  nextActor,
			Sequence:    current.Sequence + 1,
			Status:      joborder.StepProcessing,
		})
		if err != nil {
			return nil, err
		}

		fromStage := req.CurrentStage
		req.CurrentStage = transition.Next
		req.Status = transition.Status
		if err := s.repo.Update(txCtx, req); err != nil {
			return nil, err
		}

		events := []any{&joborder.AdvancedEvent{Request: req, ActorID: actorID, NextStep: nextStep}}
		if fromStage == joborder.StageChecking {
			events = append(events, &joborder.CheckedEvent{Request: req, ActorID: actorID})
		}
		return events, nil
	})
	if err != nil {
		return nil, err
	}
	return nextStep, nil
}

func (s *WorkflowService) resolveNextActor(
	ctx context.Context,
	req *joborder.JobRequest,
	current *joborder.RoutingStep,
	rule joborder.ActorRule,
) (uuid.UUID, error) {
	switch rule {
	case joborder.ActorConfiguredApprover:
		next, err := s.directory.ApproverFor(
			ctx, current.ApproverID, approver.ModuleJobOrder, approver.RoleApprover)
		if errors.Is(err, approver.ErrNotFound) {
			return uuid.Nil, joborder.ErrNoNextApprover
		}
		if err != nil {
			return uuid.Nil, err
		}
		return next.ID, nil
	case joborder.ActorFacilitator:
		facilitator, err := s.directory.Facilitator(ctx, approver.ModuleJobOrder)
		if errors.Is(err, approver.ErrNotFound) {
			return uuid.Nil, joborder.ErrNoNextApprover
		}
		if err != nil {
			return uuid.Nil, err
		}
		return facilitator.ID, nil
	case joborder.ActorConfiguredChecker:
		checker, err := s.directory.ApproverFor(
			ctx, req.RequesterID, approver.ModuleJobOrder, approver.RoleChecker)
		if errors.Is(err, approver.ErrNotFound) {
			return uuid.Nil, joborder.ErrNoNextApprover
		}
		if err != nil {
			return uuid.Nil, err
		}
		return checker.ID, nil
	case joborder.ActorRequester:
		return req.RequesterID, nil
	default:
		return uuid.Nil, joborder.ErrInvalidAction
	}
}

// Reject refuses the current step. At the checking stage this is a
// send-back that reopens the execution step; everywhere else it is
// terminal.
func (s *WorkflowService) Reject(
	ctx context.Context,
	requestID int64,
	actorID uuid.UUID,
	remarks string,
) (*joborder.RoutingStep, error) {
	if strings.TrimSpace(remarks) == "" {
		return nil, joborder.ErrMissingReason
	}

	var result *joborder.RoutingStep
	err := s.execute(ctx, requestID, func(txCtx context.Context, req *joborder.JobRequest) ([]any, error) {
		current, err := s.currentStepFor(txCtx, req, actorID)
		if err != nil {
			return nil, err
		}

		if err := s.freezeStep(txCtx, current, joborder.StepRejected, remarks); err != nil {
			return nil, err
		}

		if req.CurrentStage == joborder.StageChecking {
			executionStep, err := s.repo.StepBySequence(txCtx, req.ID, int(joborder.StageExecution))
			if err != nil {
				return nil, err
			}
			executionStep.Status = joborder.StepProcessing
			executionStep.ApprovedAt = nil
			if err := s.repo.UpdateStep(txCtx, executionStep); err != nil {
				return nil, err
			}

			req.Status = joborder.StatusRouting
			req.CurrentStage = joborder.StageExecution
			req.DateCompleted = nil
			if err := s.repo.Update(txCtx, req); err != nil {
				return nil, err
			}
			result = executionStep
			return []any{&joborder.SentBackEvent{
				Request:      req,
				ActorID:      actorID,
				ReopenedStep: executionStep,
				Remarks:      remarks,
			}}, nil
		}

		req.Status = joborder.StatusRejected
		if err := s.repo.Update(txCtx, req); err != nil {
			return nil, err
		}
		result = current
		return []any{&joborder.RejectedEvent{Request: req, ActorID: actorID, Remarks: remarks}}, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AssignInCharge is the facilitator's move: pick the execution owner and
// open the execution step for them.
func (s *WorkflowService) AssignInCharge(
	ctx context.Context,
	requestID int64,
	actorID uuid.UUID,
	assigneeID uuid.UUID,
) (*joborder.RoutingStep, error) {
	var nextStep *joborder.RoutingStep
	err := s.execute(ctx, requestID, func(txCtx context.Context, req *joborder.JobRequest) ([]any, error) {
		current, err := s.currentStepFor(txCtx, req, actorID)
		if err != nil {
			return nil, err
		}
		if req.CurrentStage != joborder.StageFacilitation {
			return nil, joborder.ErrInvalidAction
		}

		assignee, err := s.directory.GetByID(txCtx, assigneeID)
		if err != nil {
			return nil, err
		}
		if !assignee.Maintenance {
			return nil, joborder.ErrInvalidAssignee
		}

		if err := s.freezeStep(txCtx, current, joborder.StepApproved, ""); err != nil {
			return nil, err
		}

		nextStep, err = s.repo.CreateStep(txCtx, &joborder.RoutingStep{
			RequestID:   req.ID,
			RequesterID: req.RequesterID,
			ApproverID:  assignee.ID,
			Sequence:    current.Sequence + 1,
			Status:      joborder.StepProcessing,
		})
		if err != nil {
			return nil, err
		}

		now := time.Now()
		req.InChargeID = &assignee.ID
		req.DateReceived = &now
		req.CurrentStage = joborder.StageExecution
		req.Status = joborder.StatusRouting
		if err := s.repo.Update(txCtx, req); err != nil {
			return nil, err
		}
		return []any{&joborder.AssignedEvent{Request: req, ActorID: actorID, AssigneeID: assignee.ID}}, nil
	})
	if err != nil {
		return nil, err
	}
	return nextStep, nil
}

// Complete is the execution owner finishing the work: the request becomes
// Completed and routes to the requester's configured checker. A checker
// step previously rejected by a send-back is reopened instead of a new row
// being inserted.
func (s *WorkflowService) Complete(
	ctx context.Context,
	requestID int64,
	actorID uuid.UUID,
	actionTaken string,
	remarks string,
) (*joborder.RoutingStep, error) {
	if strings.TrimSpace(actionTaken) == "" {
		return nil, joborder.ErrMissingAction
	}

	var checkerStep *joborder.RoutingStep
	err := s.execute(ctx, requestID, func(txCtx context.Context, req *joborder.JobRequest) ([]any, error) {
		current, err := s.currentStepFor(txCtx, req, actorID)
		if err != nil {
			return nil, err
		}
		if req.CurrentStage != joborder.StageExecution {
			return nil, joborder.ErrInvalidAction
		}

		checker, err := s.directory.ApproverFor(
			txCtx, req.RequesterID, approver.ModuleJobOrder, approver.RoleChecker)
		if errors.Is(err, approver.ErrNotFound) {
			return nil, joborder.ErrNoNextApprover
		}
		if err != nil {
			return nil, err
		}

		if err := s.freezeStep(txCtx, current, joborder.StepApproved, remarks); err != nil {
			return nil, err
		}

		existing, err := s.repo.StepBySequence(txCtx, req.ID, int(joborder.StageChecking))
		switch {
		case err == nil && existing.Status == joborder.StepRejected:
			existing.Status = joborder.StepProcessing
			existing.ApproverID = checker.ID
			existing.ApprovedAt = nil
			if err := s.repo.UpdateStep(txCtx, existing); err != nil {
				return nil, err
			}
			checkerStep = existing
		case err == nil:
			return nil, joborder.ErrInvalidAction
		case errors.Is(err, joborder.ErrNoCurrentStep):
			checkerStep, err = s.repo.CreateStep(txCtx, &joborder.RoutingStep{
				RequestID:   req.ID,
				RequesterID: req.RequesterID,
				ApproverID:  checker.ID,
				Sequence:    current.Sequence + 1,
				Status:      joborder.StepProcessing,
			})
			if err != nil {
				return nil, err
			}
		default:
			return nil, err
		}

		now := time.Now()
		req.Status = joborder.StatusCompleted
		req.CurrentStage = joborder.StageChecking
		req.ActionTaken = actionTaken
		req.DateCompleted = &now
		if err := s.repo.Update(txCtx, req); err != nil {
			return nil, err
		}
		return []any{&joborder.CompletedEvent{Request: req, ActorID: actorID, CheckerID: checker.ID}}, nil
	})
	if err != nil {
		return nil, err
	}
	return checkerStep, nil
}

// Close is the requester's final confirmation after the checker signed off.
func (s *WorkflowService) Close(
	ctx context.Context,
	requestID int64,
	actorID uuid.UUID,
	remarks string,
) error {
	return s.execute(ctx, requestID, func(txCtx context.Context, req *joborder.JobRequest) ([]any, error) {
		current, err := s.currentStepFor(txCtx, req, actorID)
		if err != nil {
			return nil, err
		}
		if req.CurrentStage != joborder.StageClosure || actorID != req.RequesterID {
			return nil, joborder.ErrInvalidAction
		}
		if req.Status != joborder.StatusChecked {
			return nil, joborder.ErrInvalidAction
		}

		if err := s.freezeStep(txCtx, current, joborder.StepApproved, remarks); err != nil {
			return nil, err
		}
		req.Status = joborder.StatusClosed
		if err := s.repo.Update(txCtx, req); err != nil {
			return nil, err
		}
		return []any{&joborder.ClosedEvent{Request: req, ActorID: actorID}}, nil
	})
}

// Cancel withdraws a request. Only the requester may cancel, and only
// while the request is still Routing. History is kept: open steps are
// marked Cancelled, never deleted.
func (s *WorkflowService) Cancel(ctx context.Context, requestID int64, actorID uuid.UUID) error {
	return s.execute(ctx, requestID, func(txCtx context.Context, req *joborder.JobRequest) ([]any, error) {
		if req.RequesterID != actorID {
			return nil, joborder.ErrNotAuthorized
		}
		if req.Status != joborder.StatusRouting {
			return nil, joborder.ErrAlreadyProcessed
		}

		steps, err := s.repo.Steps(txCtx, req.ID)
		if err != nil {
			return nil, err
		}
		for _, step := range steps {
			if step.Status != joborder.StepProcessing && step.Status != joborder.StepPending {
				continue
			}
			step.Status = joborder.StepCancelled
			if err := s.repo.UpdateStep(txCtx, step); err != nil {
				return nil, err
			}
		}

		req.Status = joborder.StatusCancelled
		if err := s.repo.Update(txCtx, req); err != nil {
			return nil, err
		}
		return []any{&joborder.CancelledEvent{Request: req, ActorID: actorID}}, nil
	})
}

// SetTargetDate records the execution owner's committed completion date.
func (s *WorkflowService) SetTargetDate(
	ctx context.Context,
	requestID int64,
	actorID uuid.UUID,
	target time.Time,
	reason string,
) error {
	if target.IsZero() {
		return serrors.NewFieldRequiredError("target_date")
	}
	return s.execute(ctx, requestID, func(txCtx context.Context, req *joborder.JobRequest) ([]any, error) {
		if req.Status.IsTerminal() {
			return nil, joborder.ErrAlreadyProcessed
		}
		if req.InChargeID == nil || *req.InChargeID != actorID {
			return nil, joborder.ErrNotAuthorized
		}
		req.TargetDate = &target
		req.TargetDateReason = reason
		if err := s.repo.Update(txCtx, req); err != nil {
			return nil, err
		}
		return nil, nil
	})
}

// Get returns the request with its full ordered routing trail.
func (s *WorkflowService) Get(ctx context.Context, requestID int64) (*joborder.JobRequest, []*joborder.RoutingStep, error) {
	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	steps, err := s.repo.Steps(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	return req, steps, nil
}

func (s *WorkflowService) List(ctx context.Context, params *joborder.FindParams) ([]*joborder.JobRequest, error) {
	return s.repo.List(ctx, params)
}

func (s *WorkflowService) Count(ctx context.Context, params *joborder.FindParams) (int64, error) {
	return s.repo.Count(ctx, params)
}
