package workers

import (
	"log/slog"
	"time"

	"session-lab/aggregation"
	"session-lab/contract"
	"session-lab/domain"
	"session-lab/domain/event"
)

// SessionConfig holds the limits applied by every session actor.
type SessionConfig struct {
	CommandBufferSize      int
	StoreTimeout           time.Duration
	PresenceTimeout        time.Duration
	PresenceSweepInterval  time.Duration
	MaxDuration            time.Duration
	DefaultMaxParticipants int
	CapacityWarningPercent int
	AlertHistorySize       int
	WordCloudMaxWords      int
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.CommandBufferSize <= 0 {
		c.CommandBufferSize = 256
	}
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = 2 * time.Second
	}
	if c.PresenceTimeout <= 0 {
		c.PresenceTimeout = 30 * time.Second
	}
	if c.PresenceSweepInterval <= 0 {
		c.PresenceSweepInterval = 5 * time.Second
	}
	if c.CapacityWarningPercent <= 0 {
		c.CapacityWarningPercent = 80
	}
	if c.WordCloudMaxWords <= 0 {
		c.WordCloudMaxWords = 200
	}
	return c
}

// RebuildTally recomputes the tally of q outside any actor, its version ending above floor.
func (c SessionConfig) RebuildTally(q domain.Question, records []domain.ResponseRecord, floor uint64) aggregation.Snapshot {
	return aggregation.NewQuestionTally(q, c.withDefaults().WordCloudMaxWords).Resume(records, floor)
}

// SessionDeps are the collaborators shared by all session actors.
type SessionDeps struct {
	Store     contract.Store
	Registry  contract.IRegistry
	Screener  domain.Screener
	Events    chan event.Event
	Telemetry chan event.Event
	Config    SessionConfig
	Log       *slog.Logger
	Clock     func() time.Time
}
