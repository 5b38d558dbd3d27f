//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"session-lab/domain"
	"session-lab/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Workers that carry their own identity (one per session) implement Named instead.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	if n, ok := w.(Named); ok {
		return n.Name()
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type Named interface {
	Name() string
}

// EventSink is a permanent consumer of every event (logs, statistics).
type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}

// Subscriber is one connected client of a session.
// Deliver must never block; it returns false when the client cannot keep up.
type Subscriber interface {
	ID() string
	Role() domain.Role
	ParticipantID() domain.ParticipantID
	Deliver(e event.DomainEvent) bool
	Close()
}

type IRegistry interface {
	// Subscribe returns false when the session is already closed.
	Subscribe(sessionID domain.SessionID, sub Subscriber) bool
	Unsubscribe(sessionID domain.SessionID, sub Subscriber)
	Publish(e event.DomainEvent) []string
	Subscribers(sessionID domain.SessionID) []Subscriber
	AdminCount(sessionID domain.SessionID) int
	CloseSession(sessionID domain.SessionID, final event.DomainEvent)
}

type SessionRepository interface {
	// SaveSession writes s together with any questions whose state changes with it.
	SaveSession(ctx context.Context, s domain.Session, questions ...domain.Question) error
	GetSession(ctx context.Context, id domain.SessionID) (domain.Session, error)
	FindSessionByCode(ctx context.Context, code string) (domain.Session, error)
	ListOpenSessions(ctx context.Context) ([]domain.Session, error)
}

type ParticipantRepository interface {
	SaveParticipant(ctx context.Context, p domain.Participant) error
	ListParticipants(ctx context.Context, sessionID domain.SessionID) ([]domain.Participant, error)
}

type QuestionRepository interface {
	SaveQuestions(ctx context.Context, questions []domain.Question) error
	ListQuestions(ctx context.Context, sessionID domain.SessionID) ([]domain.Question, error)
}

type ResponseRepository interface {
	SaveResponse(ctx context.Context, rec domain.ResponseRecord) error
	ListResponses(ctx context.Context, sessionID domain.SessionID) ([]domain.ResponseRecord, error)
}

// Store is the persistence boundary of the engine.
type Store interface {
	SessionRepository
	ParticipantRepository
	QuestionRepository
	ResponseRepository
	Close() error
}
