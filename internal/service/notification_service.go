package service

import (
	"context"

	"github.com/SAGARSINGH-1/HostelCMS/internal/config"
	"github.com/SAGARSINGH-1/HostelCMS/internal/domain"
	"github.com/SAGARSINGH-1/HostelCMS/internal/repository"
)

// NotificationService is the read/ack surface over the notification store.
type NotificationService struct {
	notifications repository.NotificationRepository
	cfg           config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(notifications repository.NotificationRepository, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{notifications: notifications, cfg: cfg}
}

// ListMine returns the recipient's newest notifications, capped at the
// configured page size.
func (n *NotificationService) ListMine(ctx context.Context, recipientID string) ([]domain.Notification, error) {
	return n.notifications.ListForRecipient(ctx, recipientID, n.cfg.ListLimit)
}

// MarkRead acknowledges one notification. Marking a notification that does
// not exist or belongs to someone else succeeds silently; ownership is
// enforced inside the store and never leaks.
func (n *NotificationService) MarkRead(ctx context.Context, id, recipientID string) error {
	return n.notifications.MarkRead(ctx, id, recipientID)
}

// MarkAllRead acknowledges every unread notification for the recipient.
func (n *NotificationService) MarkAllRead(ctx context.Context, recipientID string) error {
	return n.notifications.MarkAllRead(ctx, recipientID)
}
