package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pdnportal/portal/modules/notification/domain/entities/notification"
	"github.com/pdnportal/portal/modules/notification/infrastructure/persistence/models"
	"github.com/pdnportal/portal/pkg/composables"
	"github.com/pdnportal/portal/pkg/repo"
)

const notificationFields = `id, user_id, sender_id, title, message, link, read, created_at`

type NotificationRepository struct{}

func NewNotificationRepository() notification.Repository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) (*notification.Notification, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := toDBNotification(n)
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO notifications (user_id, sender_id, title, message, link, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		row.UserID, row.SenderID, row.Title, row.Message, row.Link, row.Read, row.CreatedAt,
	).Scan(&row.ID)
	if err != nil {
		return nil, err
	}
	return toDomainNotification(row)
}

func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*notification.Notification, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var row models.Notification
	err = tx.QueryRow(ctx, `
		SELECT `+notificationFields+`
		FROM notifications
		WHERE id = $1`,
		id,
	).Scan(&row.ID, &row.UserID, &row.SenderID, &row.Title, &row.Message, &row.Link, &row.Read, &row.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notification.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainNotification(&row)
}

func (r *NotificationRepository) List(ctx context.Context, params *notification.FindParams) ([]*notification.Notification, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	where := []string{"user_id = $1"}
	args := []interface{}{params.UserID}
	if params.UnreadOnly {
		where = append(where, "NOT read")
	}
	query := repo.Join(
		`SELECT `+notificationFields+` FROM notifications`,
		repo.JoinWhere(where...),
		`ORDER BY read, created_at DESC`,
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*notification.Notification
	for rows.Next() {
		var row models.Notification
		if err := rows.Scan(
			&row.ID, &row.UserID, &row.SenderID, &row.Title, &row.Message, &row.Link, &row.Read, &row.CreatedAt,
		); err != nil {
			return nil, err
		}
		n, err := toDomainNotification(&row)
		if err != nil {
			return nil, err
		}
		results = append(results, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT read`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id int64) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND NOT read`, userID)
	return err
}
