package projection

import (
	"sync"

	"session-lab/aggregation"
	"session-lab/domain"
	"session-lab/domain/event"
)

// Board is the client-side picture of a session built from pushed events.
// A tally whose version does not directly follow the last one seen is not patched:
// the question is flagged stale and the client must resync it.
type Board struct {
	mu       sync.Mutex
	State    event.SessionStateChanged
	Tallies  map[domain.QuestionID]aggregation.Snapshot
	Online   map[domain.ParticipantID]string
	Alerts   []domain.Alert
	stale    map[domain.QuestionID]struct{}
	presence uint64
}

func NewBoard() *Board {
	return &Board{
		Tallies: make(map[domain.QuestionID]aggregation.Snapshot),
		Online:  make(map[domain.ParticipantID]string),
		stale:   make(map[domain.QuestionID]struct{}),
	}
}

// Consume applies e and reports whether a resync is required.
func (b *Board) Consume(e event.DomainEvent) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch evt := e.(type) {
	case event.SessionStateChanged:
		if evt.Version >= b.State.Version {
			b.State = evt
		}
	case event.TallyUpdated:
		q := evt.Tally.QuestionID
		prev, known := b.Tallies[q]
		switch {
		case known && evt.Tally.Version <= prev.Version:
			// Duplicate or late delivery
			return false
		case known && evt.Tally.Version != prev.Version+1:
			b.stale[q] = struct{}{}
			return true
		}
		b.Tallies[q] = evt.Tally
		delete(b.stale, q)
	case event.PresenceChanged:
		if evt.Version <= b.presence {
			return false
		}
		b.presence = evt.Version
		if evt.Online {
			b.Online[evt.ParticipantID] = evt.DisplayName
		} else {
			delete(b.Online, evt.ParticipantID)
		}
	case event.AlertRaised:
		b.Alerts = append(b.Alerts, evt.Alert)
	}
	return false
}

// Reset replaces a tally with a fresh snapshot obtained from a resync.
func (b *Board) Reset(s aggregation.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if prev, ok := b.Tallies[s.QuestionID]; ok && prev.Version > s.Version {
		return
	}
	b.Tallies[s.QuestionID] = s
	delete(b.stale, s.QuestionID)
}

func (b *Board) Stale(q domain.QuestionID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.stale[q]
	return ok
}

func (b *Board) Tally(q domain.QuestionID) (aggregation.Snapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.Tallies[q]
	return s, ok
}
