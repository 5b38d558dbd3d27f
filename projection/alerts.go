// Package projection builds local views from observed events.
// Handles ordering, deduplication, and projections.
// Does not emit events or interact with UI directly.
package projection

import (
	"session-lab/domain"
	"session-lab/domain/event"
)

const DefaultAlertHistory = 5

// AlertLog keeps the most recent alerts of one session in a fixed ring.
// It is owned by the session actor; callers receive copies.
type AlertLog struct {
	ring  []domain.Alert
	next  int
	count int
}

func NewAlertLog(size int) *AlertLog {
	if size <= 0 {
		size = DefaultAlertHistory
	}
	return &AlertLog{ring: make([]domain.Alert, size)}
}

func (l *AlertLog) Consume(e event.DomainEvent) {
	if evt, ok := e.(event.AlertRaised); ok {
		l.Add(evt.Alert)
	}
}

// Add overwrites the oldest alert once the ring is full.
func (l *AlertLog) Add(a domain.Alert) {
	l.ring[l.next] = a
	l.next = (l.next + 1) % len(l.ring)
	if l.count < len(l.ring) {
		l.count++
	}
}

// Recent returns alerts oldest first.
func (l *AlertLog) Recent() []domain.Alert {
	res := make([]domain.Alert, 0, l.count)
	start := (l.next - l.count + len(l.ring)) % len(l.ring)
	for i := 0; i < l.count; i++ {
		res = append(res, l.ring[(start+i)%len(l.ring)])
	}
	return res
}

func (l *AlertLog) Len() int { return l.count }
