package sink

import (
	"sync"

	"session-lab/contract"
	"session-lab/domain"
	"session-lab/domain/event"
)

var _ contract.Subscriber = (*ChannelSubscriber)(nil)

// ChannelSubscriber buffers the events of one connected client.
// A full buffer means the client is too slow: Deliver refuses the event and the
// registry drops the subscription.
type ChannelSubscriber struct {
	id            string
	role          domain.Role
	participantID domain.ParticipantID
	events        chan event.DomainEvent
	done          chan struct{}
	once          sync.Once
}

func NewChannelSubscriber(id string, role domain.Role, participantID domain.ParticipantID, bufferSize int) *ChannelSubscriber {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &ChannelSubscriber{
		id:            id,
		role:          role,
		participantID: participantID,
		events:        make(chan event.DomainEvent, bufferSize),
		done:          make(chan struct{}),
	}
}

func (s *ChannelSubscriber) ID() string                          { return s.id }
func (s *ChannelSubscriber) Role() domain.Role                   { return s.role }
func (s *ChannelSubscriber) ParticipantID() domain.ParticipantID { return s.participantID }

// Events is never closed; select on Done to learn the stream is over.
func (s *ChannelSubscriber) Events() <-chan event.DomainEvent { return s.events }

func (s *ChannelSubscriber) Done() <-chan struct{} { return s.done }

func (s *ChannelSubscriber) Deliver(e event.DomainEvent) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.events <- e:
		return true
	default:
		return false
	}
}

func (s *ChannelSubscriber) Close() {
	s.once.Do(func() { close(s.done) })
}
