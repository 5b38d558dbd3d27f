package workers

import (
	"context"
	"log/slog"
	"time"

	"session-lab/contract"
	"session-lab/domain/event"
)

// EventFanout broadcasts session events to permanent in-process consumers.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// ordering, durability, or retries. EventFanout is not a message broker.
//
// It is intended for observability and side effects (logs, statistics),
// not for core domain logic: connected clients are served by the Registry.
type EventFanout struct {
	log         *slog.Logger
	events      chan event.Event
	telemetry   chan event.Event
	sinks       []contract.EventSink
	sinkTimeout time.Duration
}

func NewEventFanout(log *slog.Logger, events, telemetry chan event.Event, sinkTimeout time.Duration, sinks ...contract.EventSink) *EventFanout {
	if sinkTimeout <= 0 {
		sinkTimeout = time.Second
	}
	return &EventFanout{log: log, events: events, telemetry: telemetry, sinkTimeout: sinkTimeout, sinks: sinks}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.events:
			w.Fanout(ctx, evt)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fanout")
			return nil
		}
	}
}

// Fanout One goroutine for each sink, each bounded by the sink timeout
func (w *EventFanout) Fanout(ctx context.Context, evt event.Event) {
	for _, sink := range w.sinks {
		go func(sink contract.EventSink) {
			sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
			defer cancel()
			if err := sink.Consume(sinkCtx, evt); err != nil {
				w.log.Debug("Sink failed to consume event", "type", evt.Type, "error", err)
			}
		}(sink)
	}
}
