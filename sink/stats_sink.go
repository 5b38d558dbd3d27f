package sink

import (
	"context"
	"log/slog"
	"maps"
	"sync"
	"time"

	"session-lab/contract"
	"session-lab/domain"
	"session-lab/domain/event"
)

var _ contract.EventSink = (*StatsSink)(nil)

// Stats is the aggregated activity seen by the sink since startup.
// Responses holds the latest response count per "session/question".
type Stats struct {
	Events      map[event.Type]uint64            `json:"events"`
	LastSeen    map[domain.SessionID]time.Time   `json:"lastSeen"`
	Responses   map[string]int                   `json:"responses"`
	States      map[domain.SessionID]domain.State `json:"states"`
	Flushes     uint64                           `json:"flushes"`
	LastFlushAt time.Time                        `json:"lastFlushAt"`
}

// StatsSink buffers events and folds them into Stats in batches.
// The flush is triggered either by reaching maxBatch or by bufferTimeout after
// the first buffered event, so quiet sessions are never stuck in the buffer.
type StatsSink struct {
	mu            sync.Mutex
	timer         *time.Timer
	log           *slog.Logger
	events        []event.Event
	maxBatch      int
	bufferTimeout time.Duration

	statsMu sync.RWMutex
	stats   Stats
}

func NewStatsSink(log *slog.Logger, maxBatch int, bufferTimeout time.Duration) *StatsSink {
	if maxBatch <= 0 {
		maxBatch = 100
	}
	return &StatsSink{
		log:           log,
		maxBatch:      maxBatch,
		bufferTimeout: bufferTimeout,
		stats: Stats{
			Events:    make(map[event.Type]uint64),
			LastSeen:  make(map[domain.SessionID]time.Time),
			Responses: make(map[string]int),
			States:    make(map[domain.SessionID]domain.State),
		},
	}
}

func (s *StatsSink) Consume(_ context.Context, e event.Event) error {
	s.mu.Lock()
	s.events = append(s.events, e)

	// Start a timer with the first event of a new batch.
	if len(s.events) == 1 && s.timer == nil {
		s.timer = time.AfterFunc(s.bufferTimeout, s.Flush)
	}
	isFull := len(s.events) >= s.maxBatch
	s.mu.Unlock()

	if isFull {
		s.Flush()
	}
	return nil
}

// Flush folds the buffered events into the stats. It swaps the buffer first to
// release the lock as soon as possible.
func (s *StatsSink) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if len(s.events) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.events
	s.events = make([]event.Event, 0, s.maxBatch)
	s.mu.Unlock()

	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	for _, e := range batch {
		s.stats.Events[e.Type]++
		de, ok := e.Payload.(event.DomainEvent)
		if !ok {
			continue
		}
		sid := de.Session()
		if e.CreatedAt.After(s.stats.LastSeen[sid]) {
			s.stats.LastSeen[sid] = e.CreatedAt
		}
		switch evt := de.(type) {
		case event.SessionStateChanged:
			s.stats.States[sid] = evt.State
		case event.TallyUpdated:
			// keyed by session/question, last write wins within the batch order
			s.stats.Responses[string(sid)+"/"+string(evt.Tally.QuestionID)] = evt.Tally.Responses
		}
	}
	s.stats.Flushes++
	s.stats.LastFlushAt = time.Now().UTC()
	s.log.Debug("Stats flushed", "events", len(batch))
}

// Snapshot returns a copy of the current stats.
func (s *StatsSink) Snapshot() Stats {
	s.statsMu.RLock()
	defer s.statsMu.RUnlock()
	return Stats{
		Events:      maps.Clone(s.stats.Events),
		LastSeen:    maps.Clone(s.stats.LastSeen),
		Responses:   maps.Clone(s.stats.Responses),
		States:      maps.Clone(s.stats.States),
		Flushes:     s.stats.Flushes,
		LastFlushAt: s.stats.LastFlushAt,
	}
}
