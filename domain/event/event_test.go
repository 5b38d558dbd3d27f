package event

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"session-lab/aggregation"
	"session-lab/domain"
)

func TestTallyUpdated_VisibleTo(t *testing.T) {
	req := require.New(t)
	respondents := domain.Respondents{"mara": {}}

	tests := []struct {
		name        string
		visibility  domain.Visibility
		role        domain.Role
		participant domain.ParticipantID
		expected    bool
	}{
		{"admin always sees never", domain.VisibilityNever, domain.RoleAdmin, "", true},
		{"participant never sees never", domain.VisibilityNever, domain.RoleParticipant, "mara", false},
		{"participant sees live", domain.VisibilityLive, domain.RoleParticipant, "leo", true},
		{"respondent sees after-submit", domain.VisibilityAfterSubmit, domain.RoleParticipant, "mara", true},
		{"non respondent waits", domain.VisibilityAfterSubmit, domain.RoleParticipant, "leo", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt := TallyUpdated{Visibility: tt.visibility, Respondents: respondents, Tally: aggregation.Snapshot{Version: 3}}
			req.Equal(tt.expected, evt.VisibleTo(tt.role, tt.participant))
			req.Equal(uint64(3), evt.EventVersion())
		})
	}
}

func TestAlertRaised_AdminOnly(t *testing.T) {
	req := require.New(t)
	evt := AlertRaised{Alert: domain.Alert{SessionID: "s1", Type: domain.AlertOverwhelmed}}

	req.True(evt.VisibleTo(domain.RoleAdmin, ""))
	req.False(evt.VisibleTo(domain.RoleParticipant, "mara"))
	req.Equal(domain.SessionID("s1"), evt.Session())
}

func TestNewSessionStateChanged_CopiesModules(t *testing.T) {
	req := require.New(t)
	s := domain.Session{ID: "s1", State: domain.StateActive, Version: 4, UnlockedModules: []domain.ModuleID{"m1"}}

	evt := NewSessionStateChanged(s, time.Now())
	s.UnlockedModules[0] = "changed"

	req.Equal(domain.ModuleID("m1"), evt.UnlockedModules[0])
	req.Equal(uint64(4), evt.EventVersion())
	req.Equal(SessionStateChangedType, Wrap(evt, time.Now()).Type)
}

func TestHandlers_CountEvents(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	counter := NewCounter()
	censored := NewCensoredHandler(log)
	handlers := []Handler{
		NewWorkerRestartedAfterPanicHandler(log, counter),
		NewResponseAcceptedHandler(log, counter),
		censored,
	}

	events := []Event{
		{Type: RestartedAfterPanicType, Payload: WorkerRestartedAfterPanic{WorkerName: "session-s1"}},
		{Type: ResponseAcceptedType, Payload: ResponseAccepted{SessionID: "s1"}},
		{Type: ResponseAcceptedType, Payload: ResponseAccepted{SessionID: "s1", Replaced: true}},
		// Wrong payload is logged and ignored
		{Type: ResponseAcceptedType, Payload: "oops"},
		{Type: ProfanityRejectedType, Payload: ProfanityRejected{SessionID: "s1", Words: []string{"darn"}}},
	}
	for _, e := range events {
		for _, h := range handlers {
			h.Handle(e)
		}
	}

	req.Equal(uint64(1), counter.Get(RestartedAfterPanicType))
	req.Equal(uint64(2), counter.Get(ResponseAcceptedType))
	req.Equal(uint64(1), censored.Hits("darn"))
}
