package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SAGARSINGH-1/HostelCMS/internal/domain"
)

// NotificationRepository is the durable per-recipient event log.
type NotificationRepository interface {
	Append(ctx context.Context, notification *domain.Notification) error
	// AppendMany inserts each record independently: a failed row does not
	// abort the rest. The joined error reports partial failures; callers on
	// the fan-out path log it and move on.
	AppendMany(ctx context.Context, notifications []domain.Notification) error
	ListForRecipient(ctx context.Context, recipientID string, limit int) ([]domain.Notification, error)
	// MarkRead sets readAt for the notification only when it belongs to
	// recipientID. A miss (wrong id or wrong owner) is a silent no-op so
	// existence never leaks to non-owners.
	MarkRead(ctx context.Context, id, recipientID string) error
	MarkAllRead(ctx context.Context, recipientID string) error
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository builds repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Append(ctx context.Context, notification *domain.Notification) error {
	const stmt = `
        INSERT INTO notifications (recipient_id, kind, query_id, actor_id, payload)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, stmt,
		notification.RecipientID,
		notification.Kind,
		notification.QueryID,
		notification.ActorID,
		notification.Payload,
	).Scan(&notification.ID, &notification.CreatedAt)
}

func (r *notificationRepository) AppendMany(ctx context.Context, notifications []domain.Notification) error {
	var failures []error
	for i := range notifications {
		if err := r.Append(ctx, &notifications[i]); err != nil {
			failures = append(failures, fmt.Errorf("recipient %s: %w", notifications[i].RecipientID, err))
		}
	}
	return errors.Join(failures...)
}

func (r *notificationRepository) ListForRecipient(ctx context.Context, recipientID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 10
	}
	const stmt = `
        SELECT id, recipient_id, kind, query_id, actor_id, payload, read_at, created_at
        FROM notifications WHERE recipient_id=$1
        ORDER BY created_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, stmt, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.RecipientID,
			&n.Kind,
			&n.QueryID,
			&n.ActorID,
			&n.Payload,
			&n.ReadAt,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, recipientID string) error {
	const stmt = `
        UPDATE notifications SET read_at=NOW()
        WHERE id=$1 AND recipient_id=$2 AND read_at IS NULL`
	_, err := r.pool.Exec(ctx, stmt, id, recipientID)
	return err
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID string) error {
	const stmt = `
        UPDATE notifications SET read_at=NOW()
        WHERE recipient_id=$1 AND read_at IS NULL`
	_, err := r.pool.Exec(ctx, stmt, recipientID)
	return err
}
