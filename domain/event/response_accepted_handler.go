package event

import (
	"log/slog"

	"session-lab/errors"
)

// ResponseAcceptedHandler counts accepted submissions, replacements included.
type ResponseAcceptedHandler struct {
	log     *slog.Logger
	counter *Counter
}

func NewResponseAcceptedHandler(log *slog.Logger, counter *Counter) *ResponseAcceptedHandler {
	return &ResponseAcceptedHandler{log: log, counter: counter}
}

func (h *ResponseAcceptedHandler) Handle(event Event) {
	switch event.Type {
	case ResponseAcceptedType:
		if _, ok := event.Payload.(ResponseAccepted); !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.counter.Increment(ResponseAcceptedType)
	case SubscriberDroppedType:
		payload, ok := event.Payload.(SubscriberDropped)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.counter.Increment(SubscriberDroppedType)
		h.log.Warn("slow subscriber dropped", "session_id", payload.SessionID, "subscriber_id", payload.SubscriberID)
	}
}
