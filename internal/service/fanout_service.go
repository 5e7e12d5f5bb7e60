package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/SAGARSINGH-1/HostelCMS/internal/domain"
	"github.com/SAGARSINGH-1/HostelCMS/internal/events"
	"github.com/SAGARSINGH-1/HostelCMS/internal/observability"
	"github.com/SAGARSINGH-1/HostelCMS/internal/realtime"
	"github.com/SAGARSINGH-1/HostelCMS/internal/repository"
)

const snippetLength = 140

// realtimeEvent is the event name pushed to live sessions.
const realtimeEvent = "notify"

// FanoutService converts domain events into durable notifications and
// realtime pushes. Everything here is best-effort: failures are logged,
// counted, and never propagate to the mutation that triggered them.
type FanoutService struct {
	notifications repository.NotificationRepository
	realtime      realtime.Notifier
	logger        *zap.Logger
	metrics       *observability.Metrics
}

// NewFanoutService creates the service.
func NewFanoutService(notifications repository.NotificationRepository, notifier realtime.Notifier, logger *zap.Logger, metrics *observability.Metrics) *FanoutService {
	return &FanoutService{
		notifications: notifications,
		realtime:      notifier,
		logger:        logger,
		metrics:       metrics,
	}
}

// RegisterHandlers subscribes to events.
func (f *FanoutService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventQueryCreated, f.handleQueryMentions)
	dispatcher.Subscribe(events.EventQueryUpdated, f.handleQueryMentions)
	dispatcher.Subscribe(events.EventQueryStatusChanged, f.handleStatusChanged)
}

func (f *FanoutService) handleQueryMentions(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.QueryMentionsPayload)
	if !ok {
		f.logger.Warn("unexpected fan-out payload", zap.String("event_type", string(event.Type)))
		return nil
	}
	f.FanOutMentions(ctx, event.QueryID, event.ActorID, payload.Title, payload.Description, payload.Mentions)
	return nil
}

func (f *FanoutService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.QueryStatusChangedPayload)
	if !ok {
		f.logger.Warn("unexpected fan-out payload", zap.String("event_type", string(event.Type)))
		return nil
	}
	f.FanOutStatusChange(ctx, event.QueryID, event.ActorID, payload)
	return nil
}

// FanOutMentions deduplicates the mention set by identity id and writes one
// notification plus one realtime push per unique recipient. Recipient order
// follows first occurrence in the text; a recipient mentioned several times
// keeps the metadata of the last occurrence.
func (f *FanoutService) FanOutMentions(ctx context.Context, queryID, actorID, title, description string, mentions []domain.Mention) {
	if len(mentions) == 0 {
		return
	}

	order := make([]string, 0, len(mentions))
	unique := make(map[string]domain.Mention, len(mentions))
	for _, m := range mentions {
		if _, ok := unique[m.IdentityID]; !ok {
			order = append(order, m.IdentityID)
		}
		unique[m.IdentityID] = m
	}

	snippet := stringPreview(description, snippetLength)
	batch := make([]domain.Notification, 0, len(order))
	for _, id := range order {
		m := unique[id]
		batch = append(batch, domain.Notification{
			RecipientID: m.IdentityID,
			Kind:        domain.NotificationKindMention,
			QueryID:     queryID,
			ActorID:     actorID,
			Payload: map[string]any{
				"title":    title,
				"snippet":  snippet,
				"username": m.Username,
				"role":     string(m.Role),
			},
		})
	}

	if err := f.notifications.AppendMany(ctx, batch); err != nil {
		f.metrics.RecordFanoutFailure(string(domain.NotificationKindMention))
		f.logger.Warn("mention notification write failed",
			zap.String("query_id", queryID),
			zap.Error(err))
	} else {
		f.metrics.RecordFanout(string(domain.NotificationKindMention), len(order))
	}

	for _, id := range order {
		f.realtime.Push(ctx, id, realtimeEvent, map[string]any{
			"kind":     string(domain.NotificationKindMention),
			"query_id": queryID,
			"title":    title,
		})
	}
}

// FanOutStatusChange notifies the query's author, and only the author,
// about a status transition.
func (f *FanoutService) FanOutStatusChange(ctx context.Context, queryID, actorID string, change events.QueryStatusChangedPayload) {
	notification := &domain.Notification{
		RecipientID: change.StudentID,
		Kind:        domain.NotificationKindStatusChange,
		QueryID:     queryID,
		ActorID:     actorID,
		Payload: map[string]any{
			"from": string(change.From),
			"to":   string(change.To),
			"note": change.Note,
		},
	}
	if err := f.notifications.Append(ctx, notification); err != nil {
		f.metrics.RecordFanoutFailure(string(domain.NotificationKindStatusChange))
		f.logger.Warn("status-change notification write failed",
			zap.String("query_id", queryID),
			zap.Error(err))
	} else {
		f.metrics.RecordFanout(string(domain.NotificationKindStatusChange), 1)
	}

	f.realtime.Push(ctx, change.StudentID, realtimeEvent, map[string]any{
		"kind":     string(domain.NotificationKindStatusChange),
		"query_id": queryID,
	})
}

// stringPreview caps body at max runes, never cutting through a multibyte
// sequence, so the snippet stays valid UTF-8.
func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if utf8.RuneCountInString(body) <= max {
		return body
	}
	keep := max - 3
	if max <= 3 {
		keep = max
	}
	cut := 0
	for n := 0; n < keep; n++ {
		_, size := utf8.DecodeRuneInString(body[cut:])
		cut += size
	}
	if max <= 3 {
		return body[:cut]
	}
	return body[:cut] + "..."
}
