package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/pdnportal/portal/modules/core/domain/aggregates/user"
	"github.com/pdnportal/portal/modules/core/domain/entities/approver"
	"github.com/pdnportal/portal/modules/joborder/domain/aggregates/joborder"
	"github.com/pdnportal/portal/pkg/composables"
	"github.com/pdnportal/portal/pkg/eventbus"
	"github.com/pdnportal/portal/pkg/serrors"
)

// stubTx satisfies the context transaction slot; the in-memory repository
// never touches it.
type stubTx struct {
	pgx.Tx
}

type memoryRepo struct {
	requests map[int64]joborder.JobRequest
	steps    map[int64]joborder.RoutingStep
	counters map[joborder.Category]int64

	nextRequestID int64
	nextStepID    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		requests: make(map[int64]joborder.JobRequest),
		steps:    make(map[int64]joborder.RoutingStep),
		counters: make(map[joborder.Category]int64),
	}
}

func (m *memoryRepo) Create(_ context.Context, r *joborder.JobRequest) (*joborder.JobRequest, error) {
	m.nextRequestID++
	stored := *r
	stored.ID = m.nextRequestID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	m.requests[stored.ID] = stored
	out := stored
	return &out, nil
}

func (m *memoryRepo) Update(_ context.Context, r *joborder.JobRequest) error {
	if _, ok := m.requests[r.ID]; !ok {
		return joborder.ErrNotFound
	}
	m.requests[r.ID] = *r
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id int64) (*joborder.JobRequest, error) {
	stored, ok := m.requests[id]
	if !ok {
		return nil, joborder.ErrNotFound
	}
	out := stored
	return &out, nil
}

func (m *memoryRepo) GetByIDForUpdate(ctx context.Context, id int64) (*joborder.JobRequest, error) {
	return m.GetByID(ctx, id)
}

func (m *memoryRepo) List(_ context.Context, params *joborder.FindParams) ([]*joborder.JobRequest, error) {
	var out []*joborder.JobRequest
	for id := range m.requests {
		stored := m.requests[id]
		if params != nil && params.PreparerID != nil && stored.RequesterID != *params.PreparerID {
			continue
		}
		if params != nil && params.CreatedFrom != nil && stored.CreatedAt.Before(*params.CreatedFrom) {
			continue
		}
		if params != nil && params.ApproverID != nil {
			holds := false
			for _, step := range m.steps {
				if step.RequestID == stored.ID &&
					step.ApproverID == *params.ApproverID &&
					step.Status == joborder.StepProcessing {
					holds = true
					break
				}
			}
			if !holds {
				continue
			}
		}
		if params != nil && len(params.Statuses) > 0 {
			match := false
			for _, status := range params.Statuses {
				if stored.Status == status {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		copied := stored
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryRepo) Count(ctx context.Context, params *joborder.FindParams) (int64, error) {
	items, err := m.List(ctx, params)
	if err != nil {
		return 0, err
	}
	return int64(len(items)), nil
}

func (m *memoryRepo) NextControlSequence(_ context.Context, category joborder.Category) (int64, error) {
	m.counters[category]++
	return m.counters[category], nil
}

func (m *memoryRepo) CreateStep(_ context.Context, s *joborder.RoutingStep) (*joborder.RoutingStep, error) {
	m.nextStepID++
	stored := *s
	stored.ID = m.nextStepID
	m.steps[stored.ID] = stored
	out := stored
	return &out, nil
}

func (m *memoryRepo) UpdateStep(_ context.Context, s *joborder.RoutingStep) error {
	if _, ok := m.steps[s.ID]; !ok {
		return joborder.ErrNotFound
	}
	m.steps[s.ID] = *s
	return nil
}

func (m *memoryRepo) Steps(_ context.Context, requestID int64) ([]*joborder.RoutingStep, error) {
	var out []*joborder.RoutingStep
	for id := range m.steps {
		stored := m.steps[id]
		if stored.RequestID != requestID {
			continue
		}
		copied := stored
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (m *memoryRepo) ProcessingStep(ctx context.Context, requestID int64) (*joborder.RoutingStep, error) {
	steps, _ := m.Steps(ctx, requestID)
	for _, step := range steps {
		if step.Status == joborder.StepProcessing {
			return step, nil
		}
	}
	return nil, joborder.ErrNoCurrentStep
}

func (m *memoryRepo) StepBySequence(ctx context.Context, requestID int64, sequence int) (*joborder.RoutingStep, error) {
	steps, _ := m.Steps(ctx, requestID)
	for _, step := range steps {
		if step.Sequence == sequence {
			return step, nil
		}
	}
	return nil, joborder.ErrNoCurrentStep
}

type memoryDirectory struct {
	users       map[uuid.UUID]*user.User
	approvers   map[uuid.UUID]uuid.UUID
	checkers    map[uuid.UUID]uuid.UUID
	facilitator uuid.UUID
}

func (d *memoryDirectory) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (d *memoryDirectory) ApproverFor(ctx context.Context, userID uuid.UUID, _, role string) (*user.User, error) {
	var table map[uuid.UUID]uuid.UUID
	switch role {
	case approver.RoleApprover:
		table = d.approvers
	case approver.RoleChecker:
		table = d.checkers
	default:
		return nil, approver.ErrNotFound
	}
	next, ok := table[userID]
	if !ok {
		return nil, approver.ErrNotFound
	}
	return d.GetByID(ctx, next)
}

func (d *memoryDirectory) Facilitator(ctx context.Context, _ string) (*user.User, error) {
	if d.facilitator == uuid.Nil {
		return nil, approver.ErrNotFound
	}
	return d.GetByID(ctx, d.facilitator)
}

type workflowFixture struct {
	ctx     context.Context
	service *WorkflowService
	repo    *memoryRepo

	requester   uuid.UUID
	approvers   [4]uuid.UUID
	facilitator uuid.UUID
	maintenance uuid.UUID
	checker     uuid.UUID
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()

	f := &workflowFixture{
		requester:   uuid.New(),
		facilitator: uuid.New(),
		maintenance: uuid.New(),
		checker:     uuid.New(),
	}
	for i := range f.approvers {
		f.approvers[i] = uuid.New()
	}

	directory := &memoryDirectory{
		users: map[uuid.UUID]*user.User{
			f.requester:   {ID: f.requester, Name: "Rey Cruz", Requestor: true},
			f.facilitator: {ID: f.facilitator, Name: "Fe Santos", Facilitator: true},
			f.maintenance: {ID: f.maintenance, Name: "Mon Reyes", Maintenance: true},
			f.checker:     {ID: f.checker, Name: "Cha Lim", Checker: true},
		},
		approvers: map[uuid.UUID]uuid.UUID{
			f.requester:    f.approvers[0],
			f.approvers[0]: f.approvers[1],
			f.approvers[1]: f.approvers[2],
			f.approvers[2]: f.approvers[3],
		},
		checkers: map[uuid.UUID]uuid.UUID{
			f.requester: f.checker,
		},
		facilitator: f.facilitator,
	}
	for i, id := range f.approvers {
		directory.users[id] = &user.User{ID: id, Name: fmt.Sprintf("Approver %d", i+1), Approver: true}
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f.repo = newMemoryRepo()
	f.service = NewWorkflowService(f.repo, directory, eventbus.NewEventPublisher(logger))
	f.ctx = composables.WithTx(context.Background(), stubTx{})
	return f
}

func (f *workflowFixture) submit(t *testing.T) *joborder.JobRequest {
	t.Helper()
	created, err := f.service.Submit(f.ctx, SubmitParams{
		RequesterID:    f.requester,
		Category:       joborder.CategoryGreen,
		Tool:           "Wire bonder 3",
		NatureOfChange: "Calibration",
	})
	require.NoError(t, err)
	return created
}

// submitAndRoute drives a fresh request through the approval chain and
// facilitation up to the execution stage.
func (f *workflowFixture) submitAndRoute(t *testing.T) *joborder.JobRequest {
	t.Helper()
	created := f.submit(t)
	for _, actor := range f.approvers {
		_, err := f.service.Advance(f.ctx, created.ID, actor, "ok")
		require.NoError(t, err)
	}
	_, err := f.service.AssignInCharge(f.ctx, created.ID, f.facilitator, f.maintenance)
	require.NoError(t, err)
	return created
}

func TestWorkflowService_Submit_CreatesRequestWithFirstSteps(t *testing.T) {
	f := newWorkflowFixture(t)

	created := f.submit(t)
	require.Equal(t, "G-0001", created.ControlNumber)
	require.Equal(t, joborder.StatusRouting, created.Status)
	require.Equal(t, joborder.StageFirstApproval, created.CurrentStage)

	steps, err := f.repo.Steps(f.ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, steps, 2)

	require.Equal(t, joborder.StepSubmitted, steps[0].Status)
	require.Equal(t, f.requester, steps[0].ApproverID)
	require.NotNil(t, steps[0].ApprovedAt)

	require.Equal(t, joborder.StepProcessing, steps[1].Status)
	require.Equal(t, f.approvers[0], steps[1].ApproverID)
	require.True(t, steps[1].FirstApprover)
}

func TestWorkflowService_Submit_ControlNumbersCountPerCategory(t *testing.T) {
	f := newWorkflowFixture(t)

	first := f.submit(t)
	second := f.submit(t)
	require.Equal(t, "G-0001", first.ControlNumber)
	require.Equal(t, "G-0002", second.ControlNumber)

	white, err := f.service.Submit(f.ctx, SubmitParams{
		RequesterID:    f.requester,
		Category:       joborder.CategoryWhite,
		Tool:           "Die bonder 1",
		NatureOfChange: "Jig replacement",
	})
	require.NoError(t, err)
	require.Equal(t, "W-0001", white.ControlNumber)
}

func TestWorkflowService_Submit_OrangeRequiresDetails(t *testing.T) {
	f := newWorkflowFixture(t)

	_, err := f.service.Submit(f.ctx, SubmitParams{
		RequesterID:    f.requester,
		Category:       joborder.CategoryOrange,
		Tool:           "Molding press",
		NatureOfChange: "Customer complaint",
	})
	var base *serrors.BaseError
	require.ErrorAs(t, err, &base)
	require.Equal(t, "FIELD_REQUIRED", base.Code)
}

func TestWorkflowService_Submit_RejectsUnknownCategory(t *testing.T) {
	f := newWorkflowFixture(t)

	_, err := f.service.Submit(f.ctx, SubmitParams{
		RequesterID:    f.requester,
		Category:       joborder.Category("Purple"),
		Tool:           "Oven",
		NatureOfChange: "Repair",
	})
	var base *serrors.BaseError
	require.ErrorAs(t, err, &base)
	require.Equal(t, "JOBORDER_INVALID_CATEGORY", base.Code)
}

func TestWorkflowService_Submit_FailsWithoutConfiguredApprover(t *testing.T) {
	f := newWorkflowFixture(t)
	orphan := uuid.New()
	directory := f.service.directory.(*memoryDirectory)
	directory.users[orphan] = &user.User{ID: orphan, Name: "No Chain", Requestor: true}

	_, err := f.service.Submit(f.ctx, SubmitParams{
		RequesterID:    orphan,
		Category:       joborder.CategoryGreen,
		Tool:           "Oven",
		NatureOfChange: "Repair",
	})
	require.ErrorIs(t, err, joborder.ErrNoNextApprover)
}

func TestWorkflowService_Advance_MovesToNextConfiguredApprover(t *testing.T) {
	f := newWorkflowFixture(t)
	created := f.submit(t)

	next, err := f.service.Advance(f.ctx, created.ID, f.approvers[0], "looks fine")
	require.NoError(t, err)
	require.Equal(t, f.approvers[1], next.ApproverID)
	require.Equal(t, 2, next.Sequence)
	require.Equal(t, joborder.StepProcessing, next.Status)

	updated, err := f.repo.GetByID(f.ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, joborder.StageSecondApproval, updated.CurrentStage)
	require.Equal(t, joborder.StatusRouting, updated.Status)

	previous, err := f.repo.StepBySequence(f.ctx, created.ID, 1)
	require.NoError(t, err)
	require.Equal(t, joborder.StepApproved, previous.Status)
	require.Equal(t, "looks fine", previous.Remarks)
	require.NotNil(t, previous.ApprovedAt)
}

func TestWorkflowService_Advance_OnlyProcessingHolderMayAct(t *testing.T) {
	f := newWorkflowFixture(t)
	created := f.submit(t)

	_, err := f.service.Advance(f.ctx, created.ID, f.approvers[1], "")
	require.ErrorIs(t, err, joborder.ErrNotAuthorized)

	_, err = f.service.Advance(f.ctx, created.ID, f.requester, "")
	require.ErrorIs(t, err, joborder.ErrNotAuthorized)
}

func TestWorkflowService_Advance_FinalApprovalRoutesToFacilitator(t *testing.T) {
	f := newWorkflowFixture(t)
	created := f.submit(t)

	for _, actor := range f.approvers[:3] {
		_, err := f.service.Advance(f.ctx, created.ID, actor, "")
		require.NoError(t, err)
	}
	next, err := f.service.Advance(f.ctx, created.ID, f.approvers[3], "")
	require.NoError(t, err)
	require.Equal(t, f.facilitator, next.ApproverID)

	updated, err := f.repo.GetByID(f.ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, joborder.StageFacilitation, updated.CurrentStage)
}

func TestWorkflowService_Advance_RefusedAtFacilitationStage(t *testing.T) {
	f := newWorkflowFixture(t)
	created := f.submit(t)

	for _, actor := range f.approvers {
		_, err := f.service.Advance(f.ctx, created.ID, actor, "")
		require.NoError(t, err)
	}
	_, err := f.service.Advance(f.ctx, created.ID, f.facilitator, "")
	require.ErrorIs(t, err, joborder.ErrInvalidAction)
}

func TestWorkflowService_Advance_SameActorCannotActTwice(t *testing.T) {
	f := newWorkflowFixture(t)
	created := f.submit(t)

	_, err := f.service.Advance(f.ctx, created.ID, f.approvers[0], "ok")
	require.NoError(t, err)

	_, err = f.service.Advance(f.ctx, created.ID, f.approvers[0], "ok again")
	require.ErrorIs(t, err, joborder.ErrNotAuthorized)
}

func TestWorkflowService_Advance_RefusedAfterClosure(t *testing.T) {
	f := newWorkflowFixture(t)
	created := f.submitAndRoute(t)

	_, err := f.service.Complete(f.ctx, created.ID, f.maintenance, "replaced capillary", "")
	require.NoError(t, err)
	_, err = f.service.Advance(f.ctx, created.ID, f.checker, "verified")
	require.NoError(t, err)
	require.NoError(t, f.service.Close(f.ctx, created.ID, f.requester, "done"))

	_, err = f.service.Advance(f.ctx, created.ID, f.requester, "again")
	require.ErrorIs(t, err, joborder.ErrAlreadyProcessed)
}

func TestWorkflowService_Advance_RefusedAfterCancellation(t *testing.T) {
	f := newWorkflowFixture(t)
	created := f.submit(t)
	require.NoError(t, f.service.Cancel(f.ctx, created.ID, f.requester))

	_, err := f.service.Advance(f.ctx, created.ID, f.approvers[0], "")
	require.ErrorIs(t, err, joborder.ErrAlreadyProcessed)
}

func TestWorkflowService_AssignInCharge_OpensExecutionStep(t *testing.T) {
	f := newWorkflowFixture(t)
	created := f.submitAndRoute(t)

	updated, err := f.repo.GetByID(f.ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, joborder.StageExecution, updated.CurrentStage)
	require.NotNil(t, updated.InChargeID)
	require.Equal(t, f.maintenance, *updated.InChargeID)
	require.NotNil(t, updated.DateReceived)

	step, err := f.repo.ProcessingStep(f.ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, f.maintenance, step.ApproverID)
	require.Equal(t, int(joborder.StageExecution), step.Sequence)
}

func TestWorkflowService_AssignInCharge_RejectsNonMaintenanceAssignee(t *testing.T) {
	f := newWorkflowFixture(t)
	created := f.submit(t)
	for _, actor := range f.approvers {
		_, err := f.service.Advance(f.ctx, created.ID, actor, "")
		require.NoError(t, err)
	}

	_, err := f.service.AssignInCharge(f.ctx, created.ID, f.facilitator, f.checker)
	require.ErrorIs(t, err, joborder.ErrInvalidAssignee)
}

func TestWorkflowService_Reject_RequiresRemarks(t *testing.T) {
	f := newWorkflowFixture(t)
	created := f.submit(t)

	_, err := f.service.Reject(f.ctx, created.ID, f.approvers[0], "   ")
	require.ErrorIs(t, err, joborder.ErrMissingReason)
}

func TestWorkflowService_Reject_AtApprovalStageIsTerminal(t *testing.T) {
	f := newWorkflowFixture(t)
	created := f.submit(t)

	rejected, err := f.service.Reject(f.ctx, created.ID, f.approvers[0], "wrong tool number")
	require.NoError(t, err)
	require.Equal(t, joborder.StepRejected, rejected.Status)

	updated, err := f.repo.GetByID(f.ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, joborder.StatusRejected, updated.Status)

	_, err = f.service.Advance(f.ctx, created.ID, f.approvers[0], "")
	require.ErrorIs(t, err, joborder.ErrAlreadyProcessed)
}

func TestWorkflowService_Complete_RequiresActionTaken(t *testing.T) {
	f := newWorkflowFixture(t)
	created := f.submitAndRoute(t)

	_, err := f.service.Complete(f.ctx, created.ID, f.maintenance, " ", "")
	require.ErrorIs(t, err, joborder.ErrMissingAction)
}

func TestWorkflowService_Complete_RoutesToConfiguredChecker(t *testing.T) {
	f := newWorkflowFixture(t)
	created := f.submitAndRoute(t)

	checkerStep, err := f.service.Complete(f.ctx, created.ID, f.maintenance, "replaced capillary", "")
	require.NoError(t, err)
	require.Equal(t, f.checker, checkerStep.ApproverID)
	require.Equal(t, int(joborder.StageChecking), checkerStep.Sequence)

	updated, err := f.repo.GetByID(f.ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, joborder.StatusCompleted, updated.Status)
	require.Equal(t, joborder.StageChecking, updated.CurrentStage)
	require.Equal(t, "replaced capillary", updated.ActionTaken)
	require.NotNil(t, updated.DateCompleted)
}

func TestWorkflowService_Reject_ByCheckerReopensExecutionStep(t *testing.T) {
	f := newWorkflowFixture(t)
	created := f.submitAndRoute(t)
	_, err := f.service.Complete(f.ctx, created.ID, f.maintenance, "replaced capillary", "")
	require.NoError(t, err)

	reopened, err := f.service.Reject(f.ctx, created.ID, f.checker, "alignment still off")
	require.NoError(t, err)
	require.Equal(t, int(joborder.StageExecution), reopened.Sequence)
	require.Equal(t, joborder.StepProcessing, reopened.Status)
	require.Equal(t, f.maintenance, reopened.ApproverID)
	require.Nil(t, reopened.ApprovedAt)

	updated, err := f.repo.GetByID(f.ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, joborder.StatusRouting, updated.Status)
	require.Equal(t, joborder.StageExecution, updated.CurrentStage)
	require.Nil(t, updated.DateCompleted)
}

func TestWorkflowService_Complete_AfterSendBackReusesCheckerStep(t *testing.T) {
	f := newWorkflowFixture(t)
	created := f.submitAndRoute(t)
	_, err := f.service.Complete(f.ctx, created.ID, f.maintenance, "replaced capillary", "")
	require.NoError(t, err)
	_, err = f.service.Reject(f.ctx, created.ID, f.checker, "alignment still off")
	require.NoError(t, err)

	before, err := f.repo.Steps(f.ctx, created.ID)
	require.NoError(t, err)

	checkerStep, err := f.service.Complete(f.ctx, created.ID, f.maintenance, "realigned stage", "")
	require.NoError(t, err)
	require.Equal(t, joborder.StepProcessing, checkerStep.Status)
	require.Equal(t, int(joborder.StageChecking), checkerStep.Sequence)

	after, err := f.repo.Steps(f.ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, after, len(before))
}

func TestWorkflowService_FullChainEndsClosed(t *testing.T) {
	f := newWorkflowFixture(t)
	created := f.submitAndRoute(t)

	_, err := f.service.Complete(f.ctx, created.ID, f.maintenance, "replaced capillary", "")
	require.NoError(t, err)

	closure, err := f.service.Advance(f.ctx, created.ID, f.checker, "verified")
	require.NoError(t, err)
	require.Equal(t, f.requester, closure.ApproverID)

	checked, err := f.repo.GetByID(f.ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, joborder.StatusChecked, checked.Status)
	require.Equal(t, joborder.StageClosure, checked.CurrentStage)

	require.NoError(t, f.service.Close(f.ctx, created.ID, f.requester, "done"))
	closed, err := f.repo.GetByID(f.ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, joborder.StatusClosed, closed.Status)

	_, err = f.repo.ProcessingStep(f.ctx, created.ID)
	require.ErrorIs(t, err, joborder.ErrNoCurrentStep)
}

func TestWorkflowService_SequenceGrowsByOnePerHop(t *testing.T) {
	f := newWorkflowFixture(t)
	created := f.submitAndRoute(t)
	_, err := f.service.Complete(f.ctx, created.ID, f.maintenance, "done", "")
	require.NoError(t, err)

	steps, err := f.repo.Steps(f.ctx, created.ID)
	require.NoError(t, err)
	for i, step := range steps {
		require.Equal(t, i, step.Sequence)
	}

	processing := 0
	for _, step := range steps {
		if step.Status == joborder.StepProcessing {
			processing++
		}
	}
	require.Equal(t, 1, processing)
}

func TestWorkflowService_Close_RequiresCheckedStatus(t *testing.T) {
	f := newWorkflowFixture(t)
	created := f.submitAndRoute(t)

	err := f.service.Close(f.ctx, created.ID, f.maintenance, "")
	require.ErrorIs(t, err, joborder.ErrInvalidAction)
}

func TestWorkflowService_Cancel_KeepsRoutingHistory(t *testing.T) {
	f := newWorkflowFixture(t)
	created := f.submit(t)
	_, err := f.service.Advance(f.ctx, created.ID, f.approvers[0], "")
	require.NoError(t, err)

	require.NoError(t, f.service.Cancel(f.ctx, created.ID, f.requester))

	updated, err := f.repo.GetByID(f.ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, joborder.StatusCancelled, updated.Status)

	steps, err := f.repo.Steps(f.ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, steps, 3)
	require.Equal(t, joborder.StepApproved, steps[1].Status)
	require.Equal(t, joborder.StepCancelled, steps[2].Status)
}

func TestWorkflowService_Cancel_RequesterOnlyWhileRouting(t *testing.T) {
	f := newWorkflowFixture(t)
	created := f.submit(t)

	err := f.service.Cancel(f.ctx, created.ID, f.approvers[0])
	require.ErrorIs(t, err, joborder.ErrNotAuthorized)

	routed := f.submitAndRoute(t)
	_, err = f.service.Complete(f.ctx, routed.ID, f.maintenance, "done", "")
	require.NoError(t, err)
	err = f.service.Cancel(f.ctx, routed.ID, f.requester)
	require.ErrorIs(t, err, joborder.ErrAlreadyProcessed)
}

func TestWorkflowService_SetTargetDate_InChargeOnly(t *testing.T) {
	f := newWorkflowFixture(t)
	created := f.submitAndRoute(t)

	target := timeMustParse(t, "2026-09-15")
	require.NoError(t, f.service.SetTargetDate(f.ctx, created.ID, f.maintenance, target, "waiting for spare parts"))

	updated, err := f.repo.GetByID(f.ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.TargetDate)
	require.Equal(t, "waiting for spare parts", updated.TargetDateReason)

	err = f.service.SetTargetDate(f.ctx, created.ID, f.requester, target, "")
	require.ErrorIs(t, err, joborder.ErrNotAuthorized)
}

func timeMustParse(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return parsed
}
