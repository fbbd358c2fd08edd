package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pdnportal/portal/modules/joborder/domain/aggregates/joborder"
	"github.com/pdnportal/portal/modules/joborder/infrastructure/persistence/models"
	"github.com/pdnportal/portal/pkg/composables"
	"github.com/pdnportal/portal/pkg/repo"
)

const jobRequestFields = `id, control_number, category, requester_id, requestor_name,
	tool, nature_of_change, details, line, status, current_stage,
	in_charge_id, date_received, target_date, target_date_reason,
	action_taken, date_completed, created_at, updated_at`

const routingStepFields = `id, request_id, requester_id, approver_id, sequence,
	status, remarks, first_approver, created_at, approved_at`

type JobOrderRepository struct{}

func NewJobOrderRepository() joborder.Repository {
	return &JobOrderRepository{}
}

func (r *JobOrderRepository) Create(ctx context.Context, jr *joborder.JobRequest) (*joborder.JobRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	row := toDBJobRequest(jr)
	now := time.Now()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now

	err = tx.QueryRow(ctx, `
		INSERT INTO joborder_requests (
			control_number, category, requester_id, requestor_name,
			tool, nature_of_change, details, line, status, current_stage,
			in_charge_id, date_received, target_date, target_date_reason,
			action_taken, date_completed, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id`,
		row.ControlNumber, row.Category, row.RequesterID, row.RequestorName,
		row.Tool, row.NatureOfChange, row.Details, row.Line, row.Status, row.CurrentStage,
		row.InChargeID, row.DateReceived, row.TargetDate, row.TargetDateReason,
		row.ActionTaken, row.DateCompleted, row.CreatedAt, row.UpdatedAt,
	).Scan(&row.ID)
	if err != nil {
		return nil, err
	}
	return toDomainJobRequest(row)
}

func (r *JobOrderRepository) Update(ctx context.Context, jr *joborder.JobRequest) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	row := toDBJobRequest(jr)
	row.UpdatedAt = time.Now()

	tag, err := tx.Exec(ctx, `
		UPDATE joborder_requests SET
			status = $2, current_stage = $3,
			in_charge_id = $4, date_received = $5,
			target_date = $6, target_date_reason = $7,
			action_taken = $8, date_completed = $9,
			updated_at = $10
		WHERE id = $1`,
		row.ID, row.Status, row.CurrentStage,
		row.InChargeID, row.DateReceived,
		row.TargetDate, row.TargetDateReason,
		row.ActionTaken, row.DateCompleted,
		row.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return joborder.ErrNotFound
	}
	jr.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *JobOrderRepository) GetByID(ctx context.Context, id int64) (*joborder.JobRequest, error) {
	return r.getOne(ctx, id, false)
}

func (r *JobOrderRepository) GetByIDForUpdate(ctx context.Context, id int64) (*joborder.JobRequest, error) {
	return r.getOne(ctx, id, true)
}

func (r *JobOrderRepository) getOne(ctx context.Context, id int64, forUpdate bool) (*joborder.JobRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + jobRequestFields + ` FROM joborder_requests WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	row, err := scanJobRequest(tx.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, joborder.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainJobRequest(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJobRequest(s rowScanner) (*models.JobRequest, error) {
	var row models.JobRequest
	err := s.Scan(
		&row.ID, &row.ControlNumber, &row.Category, &row.RequesterID, &row.RequestorName,
		&row.Tool, &row.NatureOfChange, &row.Details, &row.Line, &row.Status, &row.CurrentStage,
		&row.InChargeID, &row.DateReceived, &row.TargetDate, &row.TargetDateReason,
		&row.ActionTaken, &row.DateCompleted, &row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *JobOrderRepository) List(ctx context.Context, params *joborder.FindParams) ([]*joborder.JobRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	where, args := buildJobRequestFilters(params)
	query := repo.Join(
		`SELECT `+jobRequestFields+` FROM joborder_requests`,
		repo.JoinWhere(where...),
		`ORDER BY created_at DESC`,
	)
	if params != nil {
		query = repo.Join(query, repo.FormatLimitOffset(params.Limit, params.Offset))
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*joborder.JobRequest
	for rows.Next() {
		row, err := scanJobRequest(rows)
		if err != nil {
			return nil, err
		}
		jr, err := toDomainJobRequest(row)
		if err != nil {
			return nil, err
		}
		results = append(results, jr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *JobOrderRepository) Count(ctx context.Context, params *joborder.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args := buildJobRequestFilters(params)
	query := repo.Join(
		`SELECT COUNT(*) FROM joborder_requests`,
		repo.JoinWhere(where...),
	)
	var count int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// NextControlSequence bumps the per-category counter atomically; a single
// row per category serializes concurrent submissions of that category.
func (r *JobOrderRepository) NextControlSequence(ctx context.Context, category joborder.Category) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var value int64
	err = tx.QueryRow(ctx, `
		INSERT INTO joborder_control_counters (category, value)
		VALUES ($1, 1)
		ON CONFLICT (category)
		DO UPDATE SET value = joborder_control_counters.value + 1
		RETURNING value`,
		string(category),
	).Scan(&value)
	if err != nil {
		return 0, err
	}
	return value, nil
}

func (r *JobOrderRepository) CreateStep(ctx context.Context, s *joborder.RoutingStep) (*joborder.RoutingStep, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := toDBRoutingStep(s)
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO joborder_routing_steps (
			request_id, requester_id, approver_id, sequence,
			status, remarks, first_approver, created_at, approved_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		row.RequestID, row.RequesterID, row.ApproverID, row.Sequence,
		row.Status, row.Remarks, row.FirstApprover, row.CreatedAt, row.ApprovedAt,
	).Scan(&row.ID)
	if err != nil {
		return nil, err
	}
	return toDomainRoutingStep(row)
}

func (r *JobOrderRepository) UpdateStep(ctx context.Context, s *joborder.RoutingStep) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	row := toDBRoutingStep(s)
	tag, err := tx.Exec(ctx, `
		UPDATE joborder_routing_steps SET
			approver_id = $2, status = $3, remarks = $4, approved_at = $5
		WHERE id = $1`,
		row.ID, row.ApproverID, row.Status, row.Remarks, row.ApprovedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return joborder.ErrNotFound
	}
	return nil
}

func (r *JobOrderRepository) Steps(ctx context.Context, requestID int64) ([]*joborder.RoutingStep, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT `+routingStepFields+`
		FROM joborder_routing_steps
		WHERE request_id = $1
		ORDER BY sequence, created_at`,
		requestID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*joborder.RoutingStep
	for rows.Next() {
		var row models.RoutingStep
		if err := rows.Scan(
			&row.ID, &row.RequestID, &row.RequesterID, &row.ApproverID, &row.Sequence,
			&row.Status, &row.Remarks, &row.FirstApprover, &row.CreatedAt, &row.ApprovedAt,
		); err != nil {
			return nil, err
		}
		step, err := toDomainRoutingStep(&row)
		if err != nil {
			return nil, err
		}
		results = append(results, step)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *JobOrderRepository) ProcessingStep(ctx context.Context, requestID int64) (*joborder.RoutingStep, error) {
	return r.getStep(ctx, `request_id = $1 AND status = 'Processing'`, requestID)
}

func (r *JobOrderRepository) StepBySequence(ctx context.Context, requestID int64, sequence int) (*joborder.RoutingStep, error) {
	return r.getStep(ctx, `request_id = $1 AND sequence = $2`, requestID, sequence)
}

func (r *JobOrderRepository) getStep(ctx context.Context, condition string, args ...any) (*joborder.RoutingStep, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var row models.RoutingStep
	err = tx.QueryRow(ctx, `
		SELECT `+routingStepFields+`
		FROM joborder_routing_steps
		WHERE `+condition+`
		ORDER BY created_at DESC
		LIMIT 1`,
		args...,
	).Scan(
		&row.ID, &row.RequestID, &row.RequesterID, &row.ApproverID, &row.Sequence,
		&row.Status, &row.Remarks, &row.FirstApprover, &row.CreatedAt, &row.ApprovedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, joborder.ErrNoCurrentStep
	}
	if err != nil {
		return nil, err
	}
	return toDomainRoutingStep(&row)
}

func buildJobRequestFilters(params *joborder.FindParams) ([]string, []interface{}) {
	var where []string
	var args []interface{}
	if params == nil {
		return where, args
	}
	argPos := 1
	next := func() int { p := argPos; argPos++; return p }

	if params.PreparerID != nil {
		where = append(where, fmt.Sprintf("requester_id = $%d", next()))
		args = append(args, *params.PreparerID)
	}
	if params.InChargeID != nil {
		where = append(where, fmt.Sprintf("in_charge_id = $%d", next()))
		args = append(args, *params.InChargeID)
	}
	if params.ApproverID != nil {
		where = append(where, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM joborder_routing_steps s
			WHERE s.request_id = joborder_requests.id
			  AND s.approver_id = $%d AND s.status = 'Processing')`, next()))
		args = append(args, *params.ApproverID)
	}
	if params.ActedByID != nil {
		where = append(where, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM joborder_routing_steps s
			WHERE s.request_id = joborder_requests.id
			  AND s.approver_id = $%d AND s.status IN ('Approved', 'Rejected'))`, next()))
		args = append(args, *params.ActedByID)
	}
	if len(params.Statuses) > 0 {
		placeholders := make([]string, 0, len(params.Statuses))
		for _, status := range params.Statuses {
			placeholders = append(placeholders, fmt.Sprintf("$%d", next()))
			args = append(args, string(status))
		}
		where = append(where, "status IN ("+strings.Join(placeholders, ", ")+")")
	}
	if params.Category != nil {
		where = append(where, fmt.Sprintf("category = $%d", next()))
		args = append(args, string(*params.Category))
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		p := next()
		where = append(where, fmt.Sprintf(`(
			control_number ILIKE $%d OR requestor_name ILIKE $%d
			OR tool ILIKE $%d OR nature_of_change ILIKE $%d)`, p, p, p, p))
		args = append(args, "%"+search+"%")
	}
	if params.CreatedFrom != nil && !params.CreatedFrom.IsZero() {
		where = append(where, fmt.Sprintf("created_at >= $%d", next()))
		args = append(args, *params.CreatedFrom)
	}
	if params.CreatedTo != nil && !params.CreatedTo.IsZero() {
		where = append(where, fmt.Sprintf("created_at <= $%d", next()))
		args = append(args, *params.CreatedTo)
	}
	if params.Unassigned {
		where = append(where, "in_charge_id IS NULL")
	}
	return where, args
}
