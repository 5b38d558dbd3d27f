package event

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"session-lab/errors"
)

type ProcessStatsHandler struct {
	log *slog.Logger
}

func NewProcessStatsHandler(log *slog.Logger) *ProcessStatsHandler {
	return &ProcessStatsHandler{log: log}
}

func (h ProcessStatsHandler) Handle(event Event) {
	switch event.Type {
	case ProcessStatsType:
		payload, ok := event.Payload.(ProcessStats)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.log.Debug(fmt.Sprintf("[ENGINE] | PID %d | CPU %.2f%% | RSS %s | SESSIONS %d",
			payload.PID, payload.CPUPercent, humanize.Bytes(payload.RSS), payload.Sessions))
	}
}
