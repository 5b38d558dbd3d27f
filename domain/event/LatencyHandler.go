package event

import (
	"log/slog"
	"time"
)

// LatencyHandler measures the delay between a tally change and its arrival in the telemetry chain.
type LatencyHandler struct {
	log              *slog.Logger
	latencyThreshold time.Duration
}

func NewLatencyHandler(log *slog.Logger, latencyThreshold time.Duration) *LatencyHandler {
	return &LatencyHandler{log: log, latencyThreshold: latencyThreshold}
}

func (h *LatencyHandler) Handle(e Event) {
	if payload, ok := e.Payload.(TallyUpdated); ok {
		leadTime := time.Since(payload.At)

		h.log.Debug("telemetry: broadcast latency",
			"session_id", payload.SessionID,
			"question_id", payload.Tally.QuestionID,
			"version", payload.Tally.Version,
			"lead_time_ms", leadTime.Milliseconds(),
		)

		if leadTime > h.latencyThreshold {
			h.log.Warn("high latency detected", "lead_time", leadTime)
		}
	}
}
