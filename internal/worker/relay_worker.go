package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/staffing-service/internal/events"
	"github.com/spec-kit/staffing-service/internal/realtime"
)

// RelayWorker republishes domain events onto per-event Redis channels.
// Subscription happens post-persist via the dispatcher, so a Redis
// outage drops notifications without touching stored state.
type RelayWorker struct {
	dispatcher events.Dispatcher
	relay      *realtime.Relay
	logger     *zap.Logger
}

// NewRelayWorker creates the worker.
func NewRelayWorker(dispatcher events.Dispatcher, relay *realtime.Relay, logger *zap.Logger) *RelayWorker {
	return &RelayWorker{dispatcher: dispatcher, relay: relay, logger: logger}
}

// Start registers relay handlers on the dispatcher.
func (w *RelayWorker) Start() {
	if w.dispatcher == nil || w.relay == nil {
		return
	}
	w.dispatcher.Subscribe(events.EventMessageSent, w.handle("message.created"))
	w.dispatcher.Subscribe(events.EventAssignmentAccepted, w.handle("staffing.changed"))
	w.dispatcher.Subscribe(events.EventAssignmentRejected, w.handle("staffing.changed"))
	w.dispatcher.Subscribe(events.EventAssignmentRemoved, w.handle("staffing.changed"))
	w.dispatcher.Subscribe(events.EventPaymentProcessed, w.handle("payment.processed"))
}

func (w *RelayWorker) handle(name string) events.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		if err := w.relay.Publish(ctx, event.EventID, name, event.Payload); err != nil {
			w.logger.Debug("relay drop",
				zap.String("event_id", event.EventID),
				zap.String("notification", name),
				zap.Error(err))
		}
		return nil
	}
}
