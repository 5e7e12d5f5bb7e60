package domain

import "time"

// NotificationKind enumerates why a notification was produced.
type NotificationKind string

const (
	NotificationKindMention      NotificationKind = "mention"
	NotificationKindStatusChange NotificationKind = "status-change"
)

// Notification is one durable per-recipient event. Created once by the
// fan-out step, mutated only to set ReadAt (null -> timestamp, once),
// never deleted by the core.
type Notification struct {
	ID          string
	RecipientID string
	Kind        NotificationKind
	QueryID     string
	ActorID     string
	Payload     map[string]any
	ReadAt      *time.Time
	CreatedAt   time.Time
}
