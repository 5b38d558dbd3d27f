package api

import (
	"time"

	"session-lab/aggregation"
	"session-lab/domain"
	"session-lab/domain/event"
)

type Empty struct{}

type AdminLoginRequest struct {
	AdminID  string `json:"adminId"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type Session struct {
	ID               domain.SessionID   `json:"id"`
	Code             string             `json:"code"`
	OwnerID          string             `json:"ownerId"`
	ModuleID         domain.ModuleID    `json:"moduleId"`
	UnlockedModules  []domain.ModuleID  `json:"unlockedModules,omitempty"`
	State            domain.State       `json:"state"`
	CurrentSubmodule domain.SubmoduleID `json:"currentSubmodule,omitempty"`
	CurrentQuestion  domain.QuestionID  `json:"currentQuestion,omitempty"`
	Version          uint64             `json:"version"`
	MaxParticipants  int                `json:"maxParticipants,omitempty"`
	CreatedAt        time.Time          `json:"createdAt"`
	StartedAt        *time.Time         `json:"startedAt,omitempty"`
	EndedAt          *time.Time         `json:"endedAt,omitempty"`
}

func FromSession(s domain.Session) Session {
	res := Session{
		ID:               s.ID,
		Code:             s.Code,
		OwnerID:          s.OwnerID,
		ModuleID:         s.ModuleID,
		UnlockedModules:  s.UnlockedModules,
		State:            s.State,
		CurrentSubmodule: s.CurrentSubmodule,
		CurrentQuestion:  s.CurrentQuestion,
		Version:          s.Version,
		MaxParticipants:  s.MaxParticipants,
		CreatedAt:        s.CreatedAt,
	}
	if !s.StartedAt.IsZero() {
		res.StartedAt = &s.StartedAt
	}
	if !s.EndedAt.IsZero() {
		res.EndedAt = &s.EndedAt
	}
	return res
}

type Participant struct {
	ID          domain.ParticipantID `json:"id"`
	DisplayName string               `json:"displayName"`
	Online      bool                 `json:"online"`
	JoinedAt    time.Time            `json:"joinedAt"`
}

func FromParticipant(p domain.Participant) Participant {
	return Participant{ID: p.ID, DisplayName: p.DisplayName, Online: p.Online, JoinedAt: p.JoinedAt}
}

func FromParticipants(ps []domain.Participant) []Participant {
	res := make([]Participant, 0, len(ps))
	for _, p := range ps {
		res = append(res, FromParticipant(p))
	}
	return res
}

type CreateSessionRequest struct {
	ModuleID        domain.ModuleID   `json:"moduleId"`
	Code            string            `json:"code,omitempty"`
	MaxParticipants int               `json:"maxParticipants,omitempty"`
	Questions       []domain.Question `json:"questions"`
}

type SessionRequest struct {
	SessionID domain.SessionID `json:"sessionId"`
}

type AdvanceRequest struct {
	SessionID domain.SessionID   `json:"sessionId"`
	Submodule domain.SubmoduleID `json:"submodule"`
}

type QuestionRequest struct {
	SessionID  domain.SessionID  `json:"sessionId"`
	QuestionID domain.QuestionID `json:"questionId"`
}

type UnlockModuleRequest struct {
	SessionID domain.SessionID `json:"sessionId"`
	ModuleID  domain.ModuleID  `json:"moduleId"`
}

type SessionResponse struct {
	Session Session `json:"session"`
}

type TallyResponse struct {
	Tally aggregation.Snapshot `json:"tally"`
}

type AlertsResponse struct {
	Alerts []domain.Alert `json:"alerts"`
}

type JoinRequest struct {
	Code          string               `json:"code"`
	DisplayName   string               `json:"displayName"`
	ParticipantID domain.ParticipantID `json:"participantId,omitempty"`
}

type JoinResponse struct {
	Token           string      `json:"token"`
	Participant     Participant `json:"participant"`
	Session         Session     `json:"session"`
	Rejoined        bool        `json:"rejoined"`
	CapacityWarning bool        `json:"capacityWarning"`
	OnlineCount     int         `json:"onlineCount"`
}

type PresenceResponse struct {
	Participant Participant `json:"participant"`
}

type SubmitRequest struct {
	QuestionID domain.QuestionID    `json:"questionId"`
	Payload    domain.PayloadRecord `json:"payload"`
}

type SubmitResponse struct {
	ResponseID string               `json:"responseId"`
	Replaced   bool                 `json:"replaced"`
	Tally      aggregation.Snapshot `json:"tally"`
}

type RaiseAlertRequest struct {
	Type domain.AlertType `json:"type"`
}

type RaiseAlertResponse struct {
	Delivered bool `json:"delivered"`
}

// ResyncRequest is sent after a reconnection. Participants are bound to the
// session of their token; admins name the session.
type ResyncRequest struct {
	SessionID    domain.SessionID  `json:"sessionId,omitempty"`
	QuestionID   domain.QuestionID `json:"questionId,omitempty"`
	KnownVersion uint64            `json:"knownVersion,omitempty"`
}

type ResyncResponse struct {
	Session             Session               `json:"session"`
	Question            *domain.Question      `json:"question,omitempty"`
	Tally               *aggregation.Snapshot `json:"tally,omitempty"`
	HasExistingResponse bool                  `json:"hasExistingResponse"`
	OnlineCount         int                   `json:"onlineCount"`
	Alerts              []domain.Alert        `json:"alerts,omitempty"`
}

type ListOnlineResponse struct {
	Participants []Participant `json:"participants"`
}

// EventMessage is one pushed event. Exactly one of the payload fields is set.
type EventMessage struct {
	Type         event.Type                 `json:"type"`
	Version      uint64                     `json:"version"`
	StateChanged *event.SessionStateChanged `json:"stateChanged,omitempty"`
	Tally        *event.TallyUpdated        `json:"tally,omitempty"`
	Presence     *event.PresenceChanged     `json:"presence,omitempty"`
	Alert        *event.AlertRaised         `json:"alert,omitempty"`
}

// ToEventMessage converts a domain event; ok is false for unknown kinds.
func ToEventMessage(e event.DomainEvent) (EventMessage, bool) {
	msg := EventMessage{Type: e.Kind(), Version: e.EventVersion()}
	switch v := e.(type) {
	case event.SessionStateChanged:
		msg.StateChanged = &v
	case event.TallyUpdated:
		msg.Tally = &v
	case event.PresenceChanged:
		msg.Presence = &v
	case event.AlertRaised:
		msg.Alert = &v
	default:
		return EventMessage{}, false
	}
	return msg, true
}
