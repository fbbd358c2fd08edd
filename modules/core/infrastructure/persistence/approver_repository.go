package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pdnportal/portal/modules/core/domain/entities/approver"
	"github.com/pdnportal/portal/modules/core/infrastructure/persistence/models"
	"github.com/pdnportal/portal/pkg/composables"
)

const assignmentFields = `id, user_id, module, role, approver_id, position, created_at`

type ApproverRepository struct{}

func NewApproverRepository() approver.Repository {
	return &ApproverRepository{}
}

func (r *ApproverRepository) ApproverFor(
	ctx context.Context,
	userID uuid.UUID,
	module, role string,
) (*approver.Assignment, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var row models.ApproverAssignment
	err = tx.QueryRow(ctx, `
		SELECT `+assignmentFields+`
		FROM approver_assignments
		WHERE user_id = $1 AND module = $2 AND role = $3
		ORDER BY position
		LIMIT 1`,
		userID, module, role,
	).Scan(&row.ID, &row.UserID, &row.Module, &row.Role, &row.ApproverID, &row.Position, &row.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, approver.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainAssignment(&row)
}

func (r *ApproverRepository) Designees(ctx context.Context, module, role string) ([]*approver.Assignment, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT `+assignmentFields+`
		FROM approver_assignments
		WHERE user_id IS NULL AND module = $1 AND role = $2
		ORDER BY position`,
		module, role,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*approver.Assignment
	for rows.Next() {
		var row models.ApproverAssignment
		if err := rows.Scan(
			&row.ID, &row.UserID, &row.Module, &row.Role, &row.ApproverID, &row.Position, &row.CreatedAt,
		); err != nil {
			return nil, err
		}
		a, err := toDomainAssignment(&row)
		if err != nil {
			return nil, err
		}
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *ApproverRepository) Create(ctx context.Context, a *approver.Assignment) (*approver.Assignment, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	var userID *string
	if a.UserID != nil {
		s := a.UserID.String()
		userID = &s
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO approver_assignments (user_id, module, role, approver_id, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		userID, a.Module, a.Role, a.ApproverID, a.Position, a.CreatedAt,
	).Scan(&a.ID)
	if err != nil {
		return nil, err
	}
	return a, nil
}
