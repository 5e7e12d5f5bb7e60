package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/SAGARSINGH-1/HostelCMS/internal/api/dto"
	"github.com/SAGARSINGH-1/HostelCMS/internal/auth"
	"github.com/SAGARSINGH-1/HostelCMS/internal/service"
	apperrors "github.com/SAGARSINGH-1/HostelCMS/pkg/util"
)

// NotificationsHandler exposes the notification feed and read receipts.
type NotificationsHandler struct {
	service *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notificationService *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{service: notificationService}
}

// ListMine GET /notifications.
func (h *NotificationsHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	notifications, err := h.service.ListMine(c.Context(), principal.Identity.ID)
	if err != nil {
		return err
	}

	items := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, dto.NotificationResponse{
			ID:        n.ID,
			Kind:      n.Kind,
			QueryID:   n.QueryID,
			ActorID:   n.ActorID,
			Payload:   n.Payload,
			ReadAt:    n.ReadAt,
			CreatedAt: n.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// MarkRead PATCH /notifications/:id/read. Succeeds even when the id does
// not exist or belongs to someone else.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.service.MarkRead(c.Context(), c.Params("id"), principal.Identity.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "notification marked as read"})
}

// MarkAllRead PATCH /notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.service.MarkAllRead(c.Context(), principal.Identity.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "all notifications marked as read"})
}
