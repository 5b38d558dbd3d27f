// Package storetest holds the behaviour every contract.Store must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"session-lab/contract"
	"session-lab/domain"
	"session-lab/errors"
)

// Run exercises a fresh store returned by open.
func Run(t *testing.T, open func(t *testing.T) contract.Store) {
	t.Run("session round trip and code index", func(t *testing.T) { sessionRoundTrip(t, open(t)) })
	t.Run("code reuse after end", func(t *testing.T) { codeReuse(t, open(t)) })
	t.Run("participants", func(t *testing.T) { participants(t, open(t)) })
	t.Run("questions", func(t *testing.T) { questions(t, open(t)) })
	t.Run("session saved with its questions", func(t *testing.T) { sessionWithQuestions(t, open(t)) })
	t.Run("responses upsert", func(t *testing.T) { responses(t, open(t)) })
}

var at = time.Date(2026, time.March, 3, 9, 30, 0, 0, time.UTC)

func newSession(id domain.SessionID, code string) domain.Session {
	return domain.Session{
		ID:              id,
		Code:            code,
		OwnerID:         "admin",
		ModuleID:        "m1",
		UnlockedModules: []domain.ModuleID{"m1"},
		State:           domain.StateCreated,
		MaxParticipants: 30,
		CreatedAt:       at,
	}
}

func sessionRoundTrip(t *testing.T, store contract.Store) {
	req := require.New(t)
	ctx := context.Background()
	s := newSession("s1", "482913")
	req.NoError(store.SaveSession(ctx, s))

	got, err := store.GetSession(ctx, "s1")
	req.NoError(err)
	req.Equal(s, got)

	byCode, err := store.FindSessionByCode(ctx, "482913")
	req.NoError(err)
	req.Equal(domain.SessionID("s1"), byCode.ID)

	// Given another live session claiming the same code, Then it is refused
	err = store.SaveSession(ctx, newSession("s2", "482913"))
	req.ErrorIs(err, errors.ErrCodeInUse)

	_, err = store.GetSession(ctx, "unknown")
	req.ErrorIs(err, errors.ErrSessionNotFound)

	open, err := store.ListOpenSessions(ctx)
	req.NoError(err)
	req.Len(open, 1)
}

func codeReuse(t *testing.T, store contract.Store) {
	req := require.New(t)
	ctx := context.Background()
	s := newSession("s1", "111111")
	req.NoError(store.SaveSession(ctx, s))

	// When the session ends
	s.State = domain.StateEnded
	s.EndedAt = at.Add(time.Hour)
	req.NoError(store.SaveSession(ctx, s))

	// Then its code no longer resolves and can be reused
	_, err := store.FindSessionByCode(ctx, "111111")
	req.ErrorIs(err, errors.ErrSessionNotFound)
	req.NoError(store.SaveSession(ctx, newSession("s2", "111111")))

	open, err := store.ListOpenSessions(ctx)
	req.NoError(err)
	req.Len(open, 1)
	req.Equal(domain.SessionID("s2"), open[0].ID)
}

func participants(t *testing.T, store contract.Store) {
	req := require.New(t)
	ctx := context.Background()
	req.NoError(store.SaveSession(ctx, newSession("s1", "222222")))

	mara := domain.Participant{ID: "p1", SessionID: "s1", DisplayName: "Mara", Online: true, LastSeen: at, JoinedAt: at}
	req.NoError(store.SaveParticipant(ctx, mara))
	mara.LastSeen = at.Add(time.Minute)
	req.NoError(store.SaveParticipant(ctx, mara))

	list, err := store.ListParticipants(ctx, "s1")
	req.NoError(err)
	req.Len(list, 1)
	// Presence is not durable
	req.False(list[0].Online)
	req.Equal(at.Add(time.Minute), list[0].LastSeen)
	req.Equal("Mara", list[0].DisplayName)
}

func questions(t *testing.T, store contract.Store) {
	req := require.New(t)
	ctx := context.Background()
	req.NoError(store.SaveSession(ctx, newSession("s1", "333333")))

	q := domain.Question{
		ID: "q1", SessionID: "s1", SubmoduleID: "sub1", Ordinal: 1, Type: domain.SingleChoice,
		Config:     domain.QuestionConfig{Options: []string{"yes", "no"}, CorrectOptions: []int{0}},
		Visibility: domain.VisibilityAfterSubmit,
	}
	req.NoError(store.SaveQuestions(ctx, []domain.Question{q}))

	q.Closed = true
	req.NoError(store.SaveQuestions(ctx, []domain.Question{q}))

	list, err := store.ListQuestions(ctx, "s1")
	req.NoError(err)
	req.Len(list, 1)
	req.Equal(q, list[0])
}

func sessionWithQuestions(t *testing.T, store contract.Store) {
	req := require.New(t)
	ctx := context.Background()
	s := newSession("s1", "555555")
	q := domain.Question{
		ID: "q1", SessionID: "s1", SubmoduleID: "sub1", Type: domain.RatingScale,
		Config: domain.QuestionConfig{ScaleMin: 1, ScaleMax: 5},
	}
	req.NoError(store.SaveSession(ctx, s, q))

	// When the session moves on and closes the question in the same write
	s.State = domain.StateActive
	s.CurrentSubmodule = "sub2"
	s.Version = 2
	closed := q
	closed.Closed = true
	closed.TallyVersion = 12
	req.NoError(store.SaveSession(ctx, s, closed))

	// Then both changes are stored, tally version included
	got, err := store.GetSession(ctx, "s1")
	req.NoError(err)
	req.Equal(domain.SubmoduleID("sub2"), got.CurrentSubmodule)
	list, err := store.ListQuestions(ctx, "s1")
	req.NoError(err)
	req.Equal([]domain.Question{closed}, list)

	// Given a refused session write, Then its questions are not stored either
	other := domain.Question{ID: "q9", SessionID: "s2", SubmoduleID: "sub1", Type: domain.TextInput}
	err = store.SaveSession(ctx, newSession("s2", "555555"), other)
	req.ErrorIs(err, errors.ErrCodeInUse)
	list, err = store.ListQuestions(ctx, "s2")
	req.NoError(err)
	req.Empty(list)
}

func responses(t *testing.T, store contract.Store) {
	req := require.New(t)
	ctx := context.Background()
	req.NoError(store.SaveSession(ctx, newSession("s1", "444444")))

	first := domain.ResponseRecord{
		ID: "r1", SessionID: "s1", QuestionID: "q1", ParticipantID: "p1",
		Payload: domain.SingleChoiceAnswer{Option: 1}, SubmittedAt: at,
	}
	req.NoError(store.SaveResponse(ctx, first))

	// When the same participant answers again, Then the record is replaced
	second := first
	second.ID = "r2"
	second.Payload = domain.SingleChoiceAnswer{Option: 0}
	second.SubmittedAt = at.Add(time.Second)
	req.NoError(store.SaveResponse(ctx, second))

	cloud := domain.ResponseRecord{
		ID: "r3", SessionID: "s1", QuestionID: "q2", ParticipantID: "p1", Ordinal: 1,
		Payload: domain.WordCloudEntry{Text: "focus"}, Lang: "en", SubmittedAt: at.Add(2 * time.Second),
		TallyVersion: 4,
	}
	req.NoError(store.SaveResponse(ctx, cloud))

	list, err := store.ListResponses(ctx, "s1")
	req.NoError(err)
	req.Len(list, 2)
	byID := map[string]domain.ResponseRecord{}
	for _, r := range list {
		byID[r.ID] = r
	}
	req.Equal(second, byID["r2"])
	req.Equal(cloud, byID["r3"])
}
