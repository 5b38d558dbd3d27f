package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"session-lab/aggregation"
	"session-lab/contract"
	"session-lab/domain"
	"session-lab/domain/event"
	"session-lab/mocks"
)

func subscriber(ctrl *gomock.Controller, id string, role domain.Role, pid domain.ParticipantID) *mocks.MockSubscriber {
	sub := mocks.NewMockSubscriber(ctrl)
	sub.EXPECT().ID().Return(id).AnyTimes()
	sub.EXPECT().Role().Return(role).AnyTimes()
	sub.EXPECT().ParticipantID().Return(pid).AnyTimes()
	return sub
}

func TestRegistry_Subscribe_One_Session_Multiple_Subscribers(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := NewRegistry()

	// Given no client is connected
	req.Empty(registry.Sessions)

	// When an admin and a participant subscribe
	registry.Subscribe("s1", subscriber(ctrl, "a", domain.RoleAdmin, ""))
	registry.Subscribe("s1", subscriber(ctrl, "b", domain.RoleParticipant, "p1"))

	// Then
	req.Len(registry.Sessions, 1)
	req.Len(registry.Subscribers("s1"), 2)
	req.Equal(1, registry.AdminCount("s1"))
	req.Empty(registry.Subscribers("s2"))
}

func TestRegistry_Unsubscribe_Cleans_Empty_Session(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := NewRegistry()

	sub := subscriber(ctrl, "a", domain.RoleAdmin, "")
	req.True(registry.Subscribe("s1", sub))
	registry.Unsubscribe("s1", sub)

	req.Empty(registry.Sessions)
}

func TestRegistry_Reconnect_Keeps_New_Stream(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := NewRegistry()

	// Given a participant connected once
	old := subscriber(ctrl, "participant-p1", domain.RoleParticipant, "p1")
	req.True(registry.Subscribe("s1", old))

	// When it reconnects, the old stream is closed and its handler leaves late
	fresh := subscriber(ctrl, "participant-p1", domain.RoleParticipant, "p1")
	old.EXPECT().Close()
	req.True(registry.Subscribe("s1", fresh))
	registry.Unsubscribe("s1", old)

	// Then the new stream is still registered and keeps receiving events
	req.Equal([]contract.Subscriber{fresh}, registry.Subscribers("s1"))
	evt := event.PresenceChanged{SessionID: "s1", ParticipantID: "p2", Online: true, Version: 1}
	fresh.EXPECT().Deliver(evt).Return(true)
	req.Nil(registry.Publish(evt))
}

func TestRegistry_Publish_Routes_By_Audience(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := NewRegistry()

	admin := subscriber(ctrl, "admin", domain.RoleAdmin, "")
	responded := subscriber(ctrl, "mara", domain.RoleParticipant, "mara")
	waiting := subscriber(ctrl, "leo", domain.RoleParticipant, "leo")
	registry.Subscribe("s1", admin)
	registry.Subscribe("s1", responded)
	registry.Subscribe("s1", waiting)

	tally := event.TallyUpdated{
		SessionID:   "s1",
		Visibility:  domain.VisibilityAfterSubmit,
		Tally:       aggregation.Snapshot{QuestionID: "q1", Version: 1},
		Respondents: domain.Respondents{"mara": {}},
	}
	alert := event.AlertRaised{Alert: domain.Alert{SessionID: "s1", Type: domain.AlertPauseRequest}, Version: 1}

	// Then the tally reaches the admin and the respondent only
	admin.EXPECT().Deliver(tally).Return(true)
	responded.EXPECT().Deliver(tally).Return(true)
	// And the alert reaches the admin only
	admin.EXPECT().Deliver(alert).Return(true)

	req.Nil(registry.Publish(tally))
	req.Nil(registry.Publish(alert))
}

func TestRegistry_Publish_Drops_Slow_Subscriber(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := NewRegistry()

	fast := subscriber(ctrl, "fast", domain.RoleAdmin, "")
	slow := subscriber(ctrl, "slow", domain.RoleAdmin, "")
	registry.Subscribe("s1", fast)
	registry.Subscribe("s1", slow)

	evt := event.PresenceChanged{SessionID: "s1", ParticipantID: "p1", Online: true, Version: 1}
	fast.EXPECT().Deliver(evt).Return(true)
	slow.EXPECT().Deliver(evt).Return(false)
	slow.EXPECT().Close()

	// When the slow subscriber's buffer is full
	dropped := registry.Publish(evt)

	// Then it is removed and closed, the other one keeps its stream
	req.Equal([]string{"slow"}, dropped)
	req.Len(registry.Subscribers("s1"), 1)
}

func TestRegistry_CloseSession(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := NewRegistry()

	final := event.SessionStateChanged{SessionID: "s1", State: domain.StateEnded, Version: 7}
	sub := subscriber(ctrl, "a", domain.RoleParticipant, "p1")
	registry.Subscribe("s1", sub)

	// Then the connected stream gets the final state and is closed
	sub.EXPECT().Deliver(final).Return(true)
	sub.EXPECT().Close()

	registry.CloseSession("s1", final)
	req.Empty(registry.Sessions)
}

func TestRegistry_Subscribe_After_CloseSession(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := NewRegistry()

	// Given a session already closed
	final := event.SessionStateChanged{SessionID: "s1", State: domain.StateEnded, Version: 7}
	registry.CloseSession("s1", final)

	// When a client attaches late
	late := subscriber(ctrl, "admin-late", domain.RoleAdmin, "")
	late.EXPECT().Deliver(final).Return(true)
	late.EXPECT().Close()

	// Then it ends on the final state instead of waiting forever
	req.False(registry.Subscribe("s1", late))
	req.Empty(registry.Subscribers("s1"))
}
