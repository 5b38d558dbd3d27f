package event

import (
	"slices"
	"time"

	"session-lab/aggregation"
	"session-lab/domain"
)

// Type names an event. Broadcast types are part of the subscriber wire contract.
type Type string

const (
	SessionStateChangedType Type = "session:state-changed"
	TallyUpdatedType        Type = "question:tally-updated"
	PresenceChangedType     Type = "presence:changed"
	AlertRaisedType         Type = "alert:raised"
)

// Event is the envelope passed to permanent sinks and telemetry handlers.
type Event struct {
	Type      Type
	CreatedAt time.Time
	Payload   any
}

// DomainEvent is a versioned change of one session, routed to subscribers by audience.
type DomainEvent interface {
	Session() domain.SessionID
	Kind() Type
	EventVersion() uint64
	VisibleTo(role domain.Role, participant domain.ParticipantID) bool
}

type SessionStateChanged struct {
	SessionID        domain.SessionID   `json:"sessionId"`
	State            domain.State       `json:"state"`
	CurrentSubmodule domain.SubmoduleID `json:"currentSubmodule"`
	CurrentQuestion  domain.QuestionID  `json:"currentQuestion"`
	UnlockedModules  []domain.ModuleID  `json:"unlockedModules,omitempty"`
	Version          uint64             `json:"version"`
	At               time.Time          `json:"at"`
}

func (e SessionStateChanged) Session() domain.SessionID { return e.SessionID }
func (e SessionStateChanged) Kind() Type                { return SessionStateChangedType }
func (e SessionStateChanged) EventVersion() uint64      { return e.Version }
func (e SessionStateChanged) VisibleTo(domain.Role, domain.ParticipantID) bool {
	return true
}

// NewSessionStateChanged captures the pointer of s.
func NewSessionStateChanged(s domain.Session, at time.Time) SessionStateChanged {
	return SessionStateChanged{
		SessionID:        s.ID,
		State:            s.State,
		CurrentSubmodule: s.CurrentSubmodule,
		CurrentQuestion:  s.CurrentQuestion,
		UnlockedModules:  slices.Clone(s.UnlockedModules),
		Version:          s.Version,
		At:               at,
	}
}

// TallyUpdated carries a fresh snapshot. Respondents is a shared immutable set
// used only to route after-submit visibility.
type TallyUpdated struct {
	SessionID   domain.SessionID     `json:"sessionId"`
	Visibility  domain.Visibility    `json:"visibility"`
	Tally       aggregation.Snapshot `json:"tally"`
	At          time.Time            `json:"at"`
	Respondents domain.Respondents   `json:"-"`
}

func (e TallyUpdated) Session() domain.SessionID { return e.SessionID }
func (e TallyUpdated) Kind() Type                { return TallyUpdatedType }
func (e TallyUpdated) EventVersion() uint64      { return e.Tally.Version }
func (e TallyUpdated) VisibleTo(role domain.Role, participant domain.ParticipantID) bool {
	q := domain.Question{Visibility: e.Visibility}
	return q.Visible(role, e.Respondents.Has(participant))
}

type PresenceChanged struct {
	SessionID     domain.SessionID     `json:"sessionId"`
	ParticipantID domain.ParticipantID `json:"participantId"`
	DisplayName   string               `json:"displayName"`
	Online        bool                 `json:"online"`
	OnlineCount   int                  `json:"onlineCount"`
	Version       uint64               `json:"version"`
	At            time.Time            `json:"at"`
}

func (e PresenceChanged) Session() domain.SessionID { return e.SessionID }
func (e PresenceChanged) Kind() Type                { return PresenceChangedType }
func (e PresenceChanged) EventVersion() uint64      { return e.Version }
func (e PresenceChanged) VisibleTo(domain.Role, domain.ParticipantID) bool {
	return true
}

// AlertRaised reaches admins only.
type AlertRaised struct {
	Alert   domain.Alert `json:"alert"`
	Version uint64       `json:"version"`
}

func (e AlertRaised) Session() domain.SessionID { return e.Alert.SessionID }
func (e AlertRaised) Kind() Type                { return AlertRaisedType }
func (e AlertRaised) EventVersion() uint64      { return e.Version }
func (e AlertRaised) VisibleTo(role domain.Role, _ domain.ParticipantID) bool {
	return role == domain.RoleAdmin
}

// Wrap puts a domain event in the sink envelope.
func Wrap(e DomainEvent, at time.Time) Event {
	return Event{Type: e.Kind(), CreatedAt: at, Payload: e}
}
