// Package realtime pushes best-effort events to connected recipients.
package realtime

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Notifier pushes an event toward a recipient's live session. Push never
// returns an error to the caller: no connected session is a silent no-op
// and transport failures are logged and dropped.
type Notifier interface {
	Push(ctx context.Context, recipientID, event string, payload any)
}

type redisNotifier struct {
	client        *redis.Client
	channelPrefix string
	logger        *zap.Logger
}

// NewRedisNotifier publishes events on a per-recipient pub/sub channel.
// Gateway processes holding websocket sessions subscribe to their users'
// channels; with no subscriber the publish is a no-op.
func NewRedisNotifier(client *redis.Client, channelPrefix string, logger *zap.Logger) Notifier {
	return &redisNotifier{client: client, channelPrefix: channelPrefix, logger: logger}
}

type envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

func (n *redisNotifier) Push(ctx context.Context, recipientID, event string, payload any) {
	if n.client == nil || recipientID == "" {
		return
	}
	body, err := json.Marshal(envelope{Event: event, Payload: payload})
	if err != nil {
		n.logger.Warn("realtime payload encode failed", zap.String("event", event), zap.Error(err))
		return
	}
	if err := n.client.Publish(ctx, n.channelPrefix+recipientID, body).Err(); err != nil {
		n.logger.Warn("realtime push failed",
			zap.String("recipient_id", recipientID),
			zap.String("event", event),
			zap.Error(err))
	}
}

// NopNotifier discards every push.
type NopNotifier struct{}

func (NopNotifier) Push(context.Context, string, string, any) {}
