package runtime

import (
	"sort"
	"sync"

	"session-lab/contract"
	"session-lab/domain"
	"session-lab/domain/event"
)

var _ contract.IRegistry = (*Registry)(nil)

// closedSessions bounds the final events kept for late subscribers. Past it a
// late subscriber is refused by the store lookup instead.
const closedSessions = 1024

// Registry indexes connected subscribers by session so a publish only touches
// the clients of that session. A closed session keeps its final event so late
// subscribers still end on it.
type Registry struct {
	mu       sync.RWMutex
	Sessions map[domain.SessionID]map[string]contract.Subscriber
	closed   map[domain.SessionID]event.DomainEvent
	order    []domain.SessionID
}

func NewRegistry() *Registry {
	return &Registry{
		Sessions: make(map[domain.SessionID]map[string]contract.Subscriber),
		closed:   make(map[domain.SessionID]event.DomainEvent),
	}
}

// Subscribe registers a connection. A second subscription with the same id replaces
// and closes the previous one. On a closed session sub only receives the final
// event, is closed and false is returned.
func (r *Registry) Subscribe(sessionID domain.SessionID, sub contract.Subscriber) bool {
	r.mu.Lock()
	if final, ok := r.closed[sessionID]; ok {
		r.mu.Unlock()
		if final != nil && final.VisibleTo(sub.Role(), sub.ParticipantID()) {
			sub.Deliver(final)
		}
		sub.Close()
		return false
	}
	members, ok := r.Sessions[sessionID]
	if !ok {
		members = make(map[string]contract.Subscriber)
		r.Sessions[sessionID] = members
	}
	prev, replaced := members[sub.ID()]
	members[sub.ID()] = sub
	r.mu.Unlock()

	if replaced && prev != sub {
		prev.Close()
	}
	return true
}

// Unsubscribe removes sub unless its id has since been taken by a newer connection.
func (r *Registry) Unsubscribe(sessionID domain.SessionID, sub contract.Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Sessions[sessionID][sub.ID()] != sub {
		return
	}
	r.remove(sessionID, sub.ID())
}

func (r *Registry) remove(sessionID domain.SessionID, subscriberID string) contract.Subscriber {
	members, ok := r.Sessions[sessionID]
	if !ok {
		return nil
	}
	sub, ok := members[subscriberID]
	if !ok {
		return nil
	}
	delete(members, subscriberID)
	if len(members) == 0 {
		delete(r.Sessions, sessionID)
	}
	return sub
}

// Publish hands e to every subscriber allowed to see it without blocking.
// Subscribers that cannot keep up are removed and closed; their ids are returned.
func (r *Registry) Publish(e event.DomainEvent) []string {
	var dropped []contract.Subscriber
	for _, sub := range r.Subscribers(e.Session()) {
		if !e.VisibleTo(sub.Role(), sub.ParticipantID()) {
			continue
		}
		if !sub.Deliver(e) {
			dropped = append(dropped, sub)
		}
	}
	if len(dropped) == 0 {
		return nil
	}

	ids := make([]string, 0, len(dropped))
	r.mu.Lock()
	for _, sub := range dropped {
		if r.Sessions[e.Session()][sub.ID()] == sub {
			r.remove(e.Session(), sub.ID())
		}
		ids = append(ids, sub.ID())
	}
	r.mu.Unlock()
	for _, sub := range dropped {
		sub.Close()
	}
	return ids
}

// Subscribers returns the current subscribers of a session ordered by id.
func (r *Registry) Subscribers(sessionID domain.SessionID) []contract.Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.Sessions[sessionID]
	if !ok {
		return nil
	}
	subs := make([]contract.Subscriber, 0, len(members))
	for _, sub := range members {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID() < subs[j].ID() })
	return subs
}

func (r *Registry) AdminCount(sessionID domain.SessionID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, sub := range r.Sessions[sessionID] {
		if sub.Role() == domain.RoleAdmin {
			n++
		}
	}
	return n
}

// CloseSession hands final to every stream of an ended session, then closes them.
// Later subscriptions to the session are refused the same way.
func (r *Registry) CloseSession(sessionID domain.SessionID, final event.DomainEvent) {
	r.mu.Lock()
	members := r.Sessions[sessionID]
	delete(r.Sessions, sessionID)
	if _, ok := r.closed[sessionID]; !ok {
		r.order = append(r.order, sessionID)
	}
	r.closed[sessionID] = final
	for len(r.order) > closedSessions {
		delete(r.closed, r.order[0])
		r.order = r.order[1:]
	}
	r.mu.Unlock()

	for _, sub := range members {
		if final != nil && final.VisibleTo(sub.Role(), sub.ParticipantID()) {
			sub.Deliver(final)
		}
		sub.Close()
	}
}
