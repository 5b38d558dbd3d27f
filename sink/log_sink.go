package sink

import (
	"context"
	"log/slog"

	"session-lab/contract"
	"session-lab/domain/event"
)

var _ contract.EventSink = LogSink{}

// LogSink writes one structured line per session event.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) LogSink {
	return LogSink{log: log}
}

func (s LogSink) Consume(ctx context.Context, e event.Event) error {
	attrs := []any{"type", e.Type, "at", e.CreatedAt}
	switch evt := e.Payload.(type) {
	case event.SessionStateChanged:
		attrs = append(attrs, "session_id", evt.SessionID, "state", evt.State, "submodule", evt.CurrentSubmodule, "version", evt.Version)
	case event.TallyUpdated:
		attrs = append(attrs, "session_id", evt.SessionID, "question_id", evt.Tally.QuestionID,
			"responses", evt.Tally.Responses, "version", evt.Tally.Version, "closed", evt.Tally.Closed)
	case event.PresenceChanged:
		attrs = append(attrs, "session_id", evt.SessionID, "participant_id", evt.ParticipantID,
			"online", evt.Online, "online_count", evt.OnlineCount)
	case event.AlertRaised:
		attrs = append(attrs, "session_id", evt.Alert.SessionID, "alert", evt.Alert.Type, "from", evt.Alert.DisplayName)
	default:
		s.log.Debug("Not implemented event", "type", e.Type)
		return nil
	}
	s.log.DebugContext(ctx, "session event", attrs...)
	return nil
}
