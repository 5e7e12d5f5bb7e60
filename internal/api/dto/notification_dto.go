package dto

import (
	"time"

	"github.com/SAGARSINGH-1/HostelCMS/internal/domain"
)

// NotificationResponse is one notification in the caller's feed.
type NotificationResponse struct {
	ID        string                  `json:"id"`
	Kind      domain.NotificationKind `json:"kind"`
	QueryID   string                  `json:"query_id"`
	ActorID   string                  `json:"actor_id"`
	Payload   map[string]any          `json:"payload"`
	ReadAt    *time.Time              `json:"read_at"`
	CreatedAt time.Time               `json:"created_at"`
}

// BatchIdentityRequest asks for identities by id.
type BatchIdentityRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

// IdentityResponse is one directory entry.
type IdentityResponse struct {
	ID       string      `json:"id"`
	Role     domain.Role `json:"role"`
	Username string      `json:"username"`
	Name     string      `json:"name"`
}
