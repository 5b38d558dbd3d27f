package repositories

import (
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/samber/lo"

	"session-lab/domain"
)

// Disk records are CBOR maps keyed by small integers, so fields can be added
// without breaking what is already on disk.

type DiskSession struct {
	ID               string   `cbor:"1,keyasint"`
	Code             string   `cbor:"2,keyasint"`
	OwnerID          string   `cbor:"3,keyasint"`
	ModuleID         string   `cbor:"4,keyasint"`
	UnlockedModules  []string `cbor:"5,keyasint,omitempty"`
	State            string   `cbor:"6,keyasint"`
	CurrentSubmodule string   `cbor:"7,keyasint,omitempty"`
	CurrentQuestion  string   `cbor:"8,keyasint,omitempty"`
	Version          uint64   `cbor:"9,keyasint"`
	MaxParticipants  int      `cbor:"10,keyasint,omitempty"`
	CreatedAt        int64    `cbor:"11,keyasint"`
	StartedAt        int64    `cbor:"12,keyasint,omitempty"`
	EndedAt          int64    `cbor:"13,keyasint,omitempty"`
}

type DiskParticipant struct {
	ID          string `cbor:"1,keyasint"`
	SessionID   string `cbor:"2,keyasint"`
	DisplayName string `cbor:"3,keyasint"`
	LastSeen    int64  `cbor:"4,keyasint"`
	JoinedAt    int64  `cbor:"5,keyasint"`
}

type DiskQuestion struct {
	ID           string                `cbor:"1,keyasint"`
	SessionID    string                `cbor:"2,keyasint"`
	SubmoduleID  string                `cbor:"3,keyasint"`
	Ordinal      int                   `cbor:"4,keyasint"`
	Type         string                `cbor:"5,keyasint"`
	Config       domain.QuestionConfig `cbor:"6,keyasint"`
	Closed       bool                  `cbor:"7,keyasint,omitempty"`
	Visibility   string                `cbor:"8,keyasint"`
	TallyVersion uint64                `cbor:"9,keyasint,omitempty"`
}

type DiskResponse struct {
	ID            string               `cbor:"1,keyasint"`
	SessionID     string               `cbor:"2,keyasint"`
	QuestionID    string               `cbor:"3,keyasint"`
	ParticipantID string               `cbor:"4,keyasint"`
	Ordinal       int                  `cbor:"5,keyasint,omitempty"`
	Payload       domain.PayloadRecord `cbor:"6,keyasint"`
	QuestionType  string               `cbor:"7,keyasint"`
	Lang          string               `cbor:"8,keyasint,omitempty"`
	SubmittedAt   int64                `cbor:"9,keyasint"`
	TallyVersion  uint64               `cbor:"10,keyasint,omitempty"`
}

func encode(v any) ([]byte, error) {
	return cbor.Marshal(v)
}

func decode[T any](data []byte) (T, error) {
	var v T
	err := cbor.Unmarshal(data, &v)
	return v, err
}

func nanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

func FromSession(s domain.Session) DiskSession {
	return DiskSession{
		ID:               string(s.ID),
		Code:             s.Code,
		OwnerID:          s.OwnerID,
		ModuleID:         string(s.ModuleID),
		UnlockedModules:  lo.Map(s.UnlockedModules, func(m domain.ModuleID, _ int) string { return string(m) }),
		State:            string(s.State),
		CurrentSubmodule: string(s.CurrentSubmodule),
		CurrentQuestion:  string(s.CurrentQuestion),
		Version:          s.Version,
		MaxParticipants:  s.MaxParticipants,
		CreatedAt:        nanos(s.CreatedAt),
		StartedAt:        nanos(s.StartedAt),
		EndedAt:          nanos(s.EndedAt),
	}
}

func (d DiskSession) ToSession() domain.Session {
	return domain.Session{
		ID:               domain.SessionID(d.ID),
		Code:             d.Code,
		OwnerID:          d.OwnerID,
		ModuleID:         domain.ModuleID(d.ModuleID),
		UnlockedModules:  lo.Map(d.UnlockedModules, func(m string, _ int) domain.ModuleID { return domain.ModuleID(m) }),
		State:            domain.State(d.State),
		CurrentSubmodule: domain.SubmoduleID(d.CurrentSubmodule),
		CurrentQuestion:  domain.QuestionID(d.CurrentQuestion),
		Version:          d.Version,
		MaxParticipants:  d.MaxParticipants,
		CreatedAt:        fromNanos(d.CreatedAt),
		StartedAt:        fromNanos(d.StartedAt),
		EndedAt:          fromNanos(d.EndedAt),
	}
}

// FromParticipant drops the online flag: presence is never durable.
func FromParticipant(p domain.Participant) DiskParticipant {
	return DiskParticipant{
		ID:          string(p.ID),
		SessionID:   string(p.SessionID),
		DisplayName: p.DisplayName,
		LastSeen:    nanos(p.LastSeen),
		JoinedAt:    nanos(p.JoinedAt),
	}
}

func (d DiskParticipant) ToParticipant() domain.Participant {
	return domain.Participant{
		ID:          domain.ParticipantID(d.ID),
		SessionID:   domain.SessionID(d.SessionID),
		DisplayName: d.DisplayName,
		LastSeen:    fromNanos(d.LastSeen),
		JoinedAt:    fromNanos(d.JoinedAt),
	}
}

func FromQuestion(q domain.Question) DiskQuestion {
	return DiskQuestion{
		ID:           string(q.ID),
		SessionID:    string(q.SessionID),
		SubmoduleID:  string(q.SubmoduleID),
		Ordinal:      q.Ordinal,
		Type:         string(q.Type),
		Config:       q.Config,
		Closed:       q.Closed,
		Visibility:   string(q.Visibility),
		TallyVersion: q.TallyVersion,
	}
}

func (d DiskQuestion) ToQuestion() domain.Question {
	return domain.Question{
		ID:           domain.QuestionID(d.ID),
		SessionID:    domain.SessionID(d.SessionID),
		SubmoduleID:  domain.SubmoduleID(d.SubmoduleID),
		Ordinal:      d.Ordinal,
		Type:         domain.QuestionType(d.Type),
		Config:       d.Config,
		Closed:       d.Closed,
		Visibility:   domain.Visibility(d.Visibility),
		TallyVersion: d.TallyVersion,
	}
}

func FromResponse(r domain.ResponseRecord) DiskResponse {
	payload := domain.ToRecord(r.Payload)
	return DiskResponse{
		ID:            r.ID,
		SessionID:     string(r.SessionID),
		QuestionID:    string(r.QuestionID),
		ParticipantID: string(r.ParticipantID),
		Ordinal:       r.Ordinal,
		Payload:       payload,
		QuestionType:  string(payload.Type),
		Lang:          r.Lang,
		SubmittedAt:   nanos(r.SubmittedAt),
		TallyVersion:  r.TallyVersion,
	}
}

func (d DiskResponse) ToResponse() (domain.ResponseRecord, error) {
	payload, err := d.Payload.Decode(domain.QuestionType(d.QuestionType))
	if err != nil {
		return domain.ResponseRecord{}, err
	}
	return domain.ResponseRecord{
		ID:            d.ID,
		SessionID:     domain.SessionID(d.SessionID),
		QuestionID:    domain.QuestionID(d.QuestionID),
		ParticipantID: domain.ParticipantID(d.ParticipantID),
		Ordinal:       d.Ordinal,
		Payload:       payload,
		Lang:          d.Lang,
		SubmittedAt:   fromNanos(d.SubmittedAt),
		TallyVersion:  d.TallyVersion,
	}, nil
}
