// Package domain contains core concepts of the training session engine.
// This file defines Participant entities and the presence roster.
package domain

import (
	"slices"
	"time"

	"github.com/samber/lo"
)

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleParticipant Role = "participant"
)

// Participant identity is chosen by the server on first join and
// presented again by the client on every rejoin.
type Participant struct {
	ID          ParticipantID
	SessionID   SessionID
	DisplayName string
	Online      bool
	LastSeen    time.Time
	JoinedAt    time.Time
}

// Roster is the in-memory participant registry of one session.
// It is owned by the session actor and is not safe for concurrent use.
type Roster struct {
	participants map[ParticipantID]*Participant
	online       int
}

func NewRoster() *Roster {
	return &Roster{participants: make(map[ParticipantID]*Participant)}
}

func (r *Roster) Get(id ParticipantID) (Participant, bool) {
	p, ok := r.participants[id]
	if !ok {
		return Participant{}, false
	}
	return *p, true
}

// Upsert inserts or replaces a participant by identity and keeps the online counter in sync.
func (r *Roster) Upsert(p Participant) {
	if prev, ok := r.participants[p.ID]; ok && prev.Online {
		r.online--
	}
	if p.Online {
		r.online++
	}
	r.participants[p.ID] = &p
}

// SetOnline flips the presence flag and reports whether it changed.
func (r *Roster) SetOnline(id ParticipantID, online bool, now time.Time) (Participant, bool) {
	p, ok := r.participants[id]
	if !ok {
		return Participant{}, false
	}
	if online {
		p.LastSeen = now
	}
	if p.Online == online {
		return *p, false
	}
	p.Online = online
	if online {
		r.online++
	} else {
		r.online--
	}
	return *p, true
}

func (r *Roster) OnlineCount() int { return r.online }

func (r *Roster) Len() int { return len(r.participants) }

// Stale returns the online participants whose last heartbeat is older than deadline.
func (r *Roster) Stale(deadline time.Time) []ParticipantID {
	var ids []ParticipantID
	for id, p := range r.participants {
		if p.Online && p.LastSeen.Before(deadline) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Online returns online participants ordered by join time, then id.
func (r *Roster) Online() []Participant {
	online := lo.FilterMap(lo.Values(r.participants), func(p *Participant, _ int) (Participant, bool) {
		return *p, p.Online
	})
	slices.SortFunc(online, compareJoined)
	return online
}

// All returns every participant ordered by join time.
func (r *Roster) All() []Participant {
	all := lo.Map(lo.Values(r.participants), func(p *Participant, _ int) Participant { return *p })
	slices.SortFunc(all, compareJoined)
	return all
}

func compareJoined(a, b Participant) int {
	if c := a.JoinedAt.Compare(b.JoinedAt); c != 0 {
		return c
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

// CapacityStatus classifies an occupancy level against a maximum.
type CapacityStatus int

const (
	CapacityOK CapacityStatus = iota
	CapacityWarning
	CapacityFull
)

// Capacity returns the status for online out of max, warning at warnPercent.
// A non-positive max means unlimited.
func Capacity(online, max, warnPercent int) CapacityStatus {
	if max <= 0 {
		return CapacityOK
	}
	if online >= max {
		return CapacityFull
	}
	if online*100 >= max*warnPercent {
		return CapacityWarning
	}
	return CapacityOK
}
