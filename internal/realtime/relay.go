// Package realtime bridges domain events onto Redis pub/sub channels for
// delivery to connected clients. Publishing is fire-and-forget: a failed
// publish is logged and dropped, never surfaced to the caller, so a
// transport outage cannot roll back persisted state. Delivery is
// at-least-once; consumers must be idempotent on message id.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	channelPrefix  = "event."
	publishTimeout = 5 * time.Second
)

// envelope is the message published to Redis for cross-instance broadcast.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	At    int64           `json:"at"`
}

// Relay publishes event-scoped notifications over Redis pub/sub.
type Relay struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRelay creates a Redis-backed relay.
func NewRelay(client *redis.Client, logger *zap.Logger) *Relay {
	return &Relay{client: client, logger: logger}
}

// ChannelName returns the pub/sub channel for an event.
func ChannelName(eventID string) string {
	return channelPrefix + eventID
}

// Publish sends a named notification with a JSON payload to the event's
// channel.
func (r *Relay) Publish(ctx context.Context, eventID, name string, payload any) error {
	if r == nil || r.client == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	body, err := json.Marshal(envelope{Event: name, Data: data, At: time.Now().Unix()})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := r.client.Publish(ctx, ChannelName(eventID), body).Err(); err != nil {
		r.logger.Warn("relay publish failed",
			zap.String("event_id", eventID),
			zap.String("notification", name),
			zap.Error(err))
		return err
	}
	return nil
}

// Subscribe listens on an event's channel and invokes handler for each
// notification. The returned cancel function stops the subscription.
func (r *Relay) Subscribe(eventID string, handler func(name string, payload []byte)) (cancel func(), err error) {
	if r == nil || r.client == nil {
		return func() {}, fmt.Errorf("relay not configured")
	}
	ctx, cancelCtx := context.WithCancel(context.Background())
	pubsub := r.client.Subscribe(ctx, ChannelName(eventID))
	if _, err := pubsub.Receive(ctx); err != nil {
		cancelCtx()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var env envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					continue
				}
				handler(env.Event, env.Data)
			}
		}
	}()
	return func() { cancelCtx() }, nil
}
