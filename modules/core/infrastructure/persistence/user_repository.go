package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pdnportal/portal/modules/core/domain/aggregates/user"
	"github.com/pdnportal/portal/modules/core/infrastructure/persistence/models"
	"github.com/pdnportal/portal/pkg/composables"
	"github.com/pdnportal/portal/pkg/repo"
)

const userFields = `id, username, name, position, line,
	requestor, approver, checker, maintenance, facilitator,
	created_at, updated_at`

type UserRepository struct{}

func NewUserRepository() user.Repository {
	return &UserRepository{}
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.getOne(ctx, "username = $1", username)
}

func (r *UserRepository) getOne(ctx context.Context, condition string, arg any) (*user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var row models.User
	err = tx.QueryRow(ctx,
		`SELECT `+userFields+` FROM users WHERE `+condition,
		arg,
	).Scan(
		&row.ID, &row.Username, &row.Name, &row.Position, &row.Line,
		&row.Requestor, &row.Approver, &row.Checker, &row.Maintenance, &row.Facilitator,
		&row.CreatedAt, &row.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainUser(&row)
}

func (r *UserRepository) List(ctx context.Context, params *user.FindParams) ([]*user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	where, args := buildUserFilters(params)
	query := repo.Join(
		`SELECT `+userFields+` FROM users`,
		repo.JoinWhere(where...),
		`ORDER BY name`,
	)
	if params != nil {
		query = repo.Join(query, repo.FormatLimitOffset(params.Limit, params.Offset))
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*user.User
	for rows.Next() {
		var row models.User
		if err := rows.Scan(
			&row.ID, &row.Username, &row.Name, &row.Position, &row.Line,
			&row.Requestor, &row.Approver, &row.Checker, &row.Maintenance, &row.Facilitator,
			&row.CreatedAt, &row.UpdatedAt,
		); err != nil {
			return nil, err
		}
		u, err := toDomainUser(&row)
		if err != nil {
			return nil, err
		}
		results = append(results, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	dbRow := toDBUser(u)
	if dbRow.ID == uuid.Nil.String() {
		dbRow.ID = uuid.New().String()
	}
	now := time.Now()
	if dbRow.CreatedAt.IsZero() {
		dbRow.CreatedAt = now
	}
	dbRow.UpdatedAt = now

	if _, err := tx.Exec(ctx, `
		INSERT INTO users (`+userFields+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		dbRow.ID, dbRow.Username, dbRow.Name, dbRow.Position, dbRow.Line,
		dbRow.Requestor, dbRow.Approver, dbRow.Checker, dbRow.Maintenance, dbRow.Facilitator,
		dbRow.CreatedAt, dbRow.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return toDomainUser(dbRow)
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) (*user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	dbRow := toDBUser(u)
	dbRow.UpdatedAt = time.Now()

	tag, err := tx.Exec(ctx, `
		UPDATE users SET
			username = $2, name = $3, position = $4, line = $5,
			requestor = $6, approver = $7, checker = $8, maintenance = $9, facilitator = $10,
			updated_at = $11
		WHERE id = $1`,
		dbRow.ID, dbRow.Username, dbRow.Name, dbRow.Position, dbRow.Line,
		dbRow.Requestor, dbRow.Approver, dbRow.Checker, dbRow.Maintenance, dbRow.Facilitator,
		dbRow.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, user.ErrNotFound
	}
	return toDomainUser(dbRow)
}

func buildUserFilters(params *user.FindParams) ([]string, []interface{}) {
	var where []string
	var args []interface{}
	if params == nil {
		return where, args
	}
	argPos := 1
	if params.Maintenance != nil {
		where = append(where, fmt.Sprintf("maintenance = $%d", argPos))
		args = append(args, *params.Maintenance)
		argPos++
	}
	if params.Facilitator != nil {
		where = append(where, fmt.Sprintf("facilitator = $%d", argPos))
		args = append(args, *params.Facilitator)
	}
	return where, args
}
