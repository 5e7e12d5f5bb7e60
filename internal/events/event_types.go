package events

import (
	"time"

	"github.com/SAGARSINGH-1/HostelCMS/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventQueryCreated       EventType = "query_created"
	EventQueryUpdated       EventType = "query_updated"
	EventQueryStatusChanged EventType = "query_status_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	QueryID   string      `json:"query_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// QueryMentionsPayload carries the mention set of a created or edited
// query into the notification fan-out.
type QueryMentionsPayload struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Mentions    []domain.Mention `json:"mentions"`
}

// QueryStatusChangedPayload payload.
type QueryStatusChangedPayload struct {
	StudentID string             `json:"student_id"`
	Title     string             `json:"title"`
	From      domain.QueryStatus `json:"from"`
	To        domain.QueryStatus `json:"to"`
	Note      string             `json:"note,omitempty"`
}
