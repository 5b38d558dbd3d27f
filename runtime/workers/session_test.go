package workers

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"session-lab/aggregation"
	"session-lab/contract"
	"session-lab/domain"
	"session-lab/domain/event"
	"session-lab/errors"
	"session-lab/mocks"
	"session-lab/repositories"
)

const (
	owner   = "admin-1"
	maxWait = time.Second
)

// published records every event the actor hands to the registry.
type published struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (p *published) add(e event.DomainEvent) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *published) kinds() []event.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	var kinds []event.Type
	for _, e := range p.events {
		kinds = append(kinds, e.Kind())
	}
	return kinds
}

func agenda(sid domain.SessionID) []domain.Question {
	return []domain.Question{
		{
			ID: "q1", SessionID: sid, SubmoduleID: "intro", Ordinal: 0,
			Type:       domain.SingleChoice,
			Config:     domain.QuestionConfig{Options: []string{"yes", "no"}, CorrectOptions: []int{0}},
			Visibility: domain.VisibilityLive,
		},
		{
			ID: "q2", SessionID: sid, SubmoduleID: "wrap-up", Ordinal: 0,
			Type:       domain.WordCloud,
			Config:     domain.QuestionConfig{MaxLength: 40},
			Visibility: domain.VisibilityAfterSubmit,
		},
	}
}

func newSession(id domain.SessionID, max int) domain.Session {
	return domain.Session{
		ID: id, Code: "123456", OwnerID: owner, ModuleID: "m1",
		State: domain.StateCreated, MaxParticipants: max,
		CreatedAt: time.Now().UTC(),
	}
}

func openStore(t *testing.T) contract.Store {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repositories.NewBadgerStore(db, slog.Default())
}

func mockRegistry(ctrl *gomock.Controller, pub *published, admins int) *mocks.MockIRegistry {
	registry := mocks.NewMockIRegistry(ctrl)
	registry.EXPECT().Publish(gomock.Any()).DoAndReturn(pub.add).AnyTimes()
	registry.EXPECT().AdminCount(gomock.Any()).Return(admins).AnyTimes()
	registry.EXPECT().CloseSession(gomock.Any(), gomock.Any()).AnyTimes()
	return registry
}

// startWorker persists the session and its agenda then runs the actor until the test ends.
func startWorker(t *testing.T, store contract.Store, registry contract.IRegistry, session domain.Session, cfg SessionConfig) *SessionWorker {
	ctx := context.Background()
	require.NoError(t, store.SaveSession(ctx, session))
	require.NoError(t, store.SaveQuestions(ctx, agenda(session.ID)))

	w := NewSessionWorker(SessionDeps{
		Store:    store,
		Registry: registry,
		Config:   cfg,
		Log:      slog.Default(),
	}, session, agenda(session.ID), nil, nil)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(runCtx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w
}

func join(t *testing.T, w *SessionWorker, name string) domain.Participant {
	res, err := Ask[JoinResult](context.Background(), w, domain.JoinCommand{SessionID: w.ID(), DisplayName: name}, maxWait)
	require.NoError(t, err)
	return res.Participant
}

func admin(sid domain.SessionID) domain.AdminCommand {
	return domain.AdminCommand{SessionID: sid, AdminID: owner}
}

func choose(sid domain.SessionID, pid domain.ParticipantID, option int) domain.SubmitCommand {
	return domain.SubmitCommand{
		SessionID: sid, QuestionID: "q1", ParticipantID: pid,
		Payload: domain.ToRecord(domain.SingleChoiceAnswer{Option: option}),
	}
}

func TestSessionWorker_ConcurrentSubmitsAreAllCounted(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	pub := &published{}
	store := openStore(t)
	w := startWorker(t, store, mockRegistry(ctrl, pub, 1), newSession("s1", 0), SessionConfig{})

	// Given two participants in a started session
	mara := join(t, w, "Mara")
	theo := join(t, w, "Theo")
	_, err := Ask[domain.Session](context.Background(), w, domain.StartCommand{AdminCommand: admin("s1")}, maxWait)
	req.NoError(err)

	// When both vote for the same option at the same time
	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, p := range []domain.Participant{mara, theo} {
		wg.Add(1)
		go func(pid domain.ParticipantID) {
			defer wg.Done()
			_, err := Ask[SubmitResult](context.Background(), w, choose("s1", pid, 0), maxWait)
			errs <- err
		}(p.ID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		req.NoError(err)
	}

	// Then the tally counts exactly two votes and both are durable
	snap, ok := w.View().Tally("q1")
	req.True(ok)
	req.Equal([]int{2, 0}, snap.Counts)
	req.Equal(2, snap.Responses)
	req.Equal(2, snap.Correct)

	stored, err := store.ListResponses(context.Background(), "s1")
	req.NoError(err)
	req.Len(stored, 2)
}

func TestSessionWorker_ResubmitReplacesPreviousAnswer(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	w := startWorker(t, openStore(t), mockRegistry(ctrl, &published{}, 1), newSession("s1", 0), SessionConfig{})

	mara := join(t, w, "Mara")
	_, err := Ask[domain.Session](context.Background(), w, domain.StartCommand{AdminCommand: admin("s1")}, maxWait)
	req.NoError(err)

	first, err := Ask[SubmitResult](context.Background(), w, choose("s1", mara.ID, 0), maxWait)
	req.NoError(err)
	req.False(first.Replaced)

	// When Mara changes her mind
	second, err := Ask[SubmitResult](context.Background(), w, choose("s1", mara.ID, 1), maxWait)
	req.NoError(err)

	// Then the old vote is retracted and the version moves forward
	req.True(second.Replaced)
	req.Equal([]int{0, 1}, second.Tally.Counts)
	req.Equal(1, second.Tally.Responses)
	req.Greater(second.Tally.Version, first.Tally.Version)
}

func TestSessionWorker_SubmitBeforeStartIsRejected(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	w := startWorker(t, openStore(t), mockRegistry(ctrl, &published{}, 1), newSession("s1", 0), SessionConfig{})

	mara := join(t, w, "Mara")
	_, err := Ask[SubmitResult](context.Background(), w, choose("s1", mara.ID, 0), maxWait)
	req.Equal(errors.CodeQuestionClosed, errors.CodeOf(err))
}

func TestSessionWorker_InvalidPayloadLeavesStateUntouched(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := openStore(t)
	w := startWorker(t, store, mockRegistry(ctrl, &published{}, 1), newSession("s1", 0), SessionConfig{})

	mara := join(t, w, "Mara")
	_, err := Ask[domain.Session](context.Background(), w, domain.StartCommand{AdminCommand: admin("s1")}, maxWait)
	req.NoError(err)
	before, _ := w.View().Tally("q1")

	// When Mara picks an option the question does not have
	_, err = Ask[SubmitResult](context.Background(), w, choose("s1", mara.ID, 5), maxWait)

	// Then the answer is refused and neither the tally nor the store saw it
	req.Equal(errors.CodeInvalidPayload, errors.CodeOf(err))
	after, _ := w.View().Tally("q1")
	req.Equal(before, after)
	req.False(w.View().Responded("q1", mara.ID))
	records, err := store.ListResponses(context.Background(), "s1")
	req.NoError(err)
	req.Empty(records)
}

func TestSessionWorker_EndKeepsTallyVersionsDurable(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := openStore(t)
	w := startWorker(t, store, mockRegistry(ctrl, &published{}, 1), newSession("s1", 0), SessionConfig{})

	mara := join(t, w, "Mara")
	theo := join(t, w, "Theo")
	_, err := Ask[domain.Session](context.Background(), w, domain.StartCommand{AdminCommand: admin("s1")}, maxWait)
	req.NoError(err)
	_, err = Ask[SubmitResult](context.Background(), w, choose("s1", mara.ID, 0), maxWait)
	req.NoError(err)
	last, err := Ask[SubmitResult](context.Background(), w, choose("s1", theo.ID, 1), maxWait)
	req.NoError(err)

	// When the session ends
	_, err = Ask[domain.Session](context.Background(), w, domain.EndCommand{AdminCommand: admin("s1")}, maxWait)
	req.NoError(err)

	// Then every question carries the version its tally reached
	questions, err := store.ListQuestions(context.Background(), "s1")
	req.NoError(err)
	for _, q := range questions {
		if q.ID == "q1" {
			req.Equal(last.Tally.Version, q.TallyVersion)
		}
	}

	// And an actor rebuilt from the store starts above it
	session, err := store.GetSession(context.Background(), "s1")
	req.NoError(err)
	records, err := store.ListResponses(context.Background(), "s1")
	req.NoError(err)
	rebuilt := NewSessionWorker(SessionDeps{Store: store, Registry: mockRegistry(ctrl, &published{}, 1), Log: slog.Default()},
		session, questions, nil, records)
	snap, _ := rebuilt.View().Tally("q1")
	req.Greater(snap.Version, last.Tally.Version)
	req.Equal(last.Tally.Counts, snap.Counts)
}

func TestSessionWorker_AdvanceClosesLeftQuestions(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	pub := &published{}
	store := openStore(t)
	w := startWorker(t, store, mockRegistry(ctrl, pub, 1), newSession("s1", 0), SessionConfig{})

	mara := join(t, w, "Mara")
	started, err := Ask[domain.Session](context.Background(), w, domain.StartCommand{AdminCommand: admin("s1")}, maxWait)
	req.NoError(err)
	req.Equal(domain.SubmoduleID("intro"), started.CurrentSubmodule)
	req.Equal(domain.QuestionID("q1"), started.CurrentQuestion)

	// When the admin moves on to the next submodule
	moved, err := Ask[domain.Session](context.Background(), w, domain.AdvanceCommand{AdminCommand: admin("s1"), Submodule: "wrap-up"}, maxWait)
	req.NoError(err)
	req.Equal(domain.QuestionID("q2"), moved.CurrentQuestion)
	req.Greater(moved.Version, started.Version)

	// Then the first question no longer accepts answers, durably
	_, err = Ask[SubmitResult](context.Background(), w, choose("s1", mara.ID, 0), maxWait)
	req.Equal(errors.CodeQuestionClosed, errors.CodeOf(err))

	questions, err := store.ListQuestions(context.Background(), "s1")
	req.NoError(err)
	for _, q := range questions {
		req.Equal(q.ID == "q1", q.Closed, q.ID)
	}
	snap, _ := w.View().Tally("q1")
	req.True(snap.Closed)
	req.Contains(pub.kinds(), event.SessionStateChangedType)
	req.Contains(pub.kinds(), event.TallyUpdatedType)
}

func TestSessionWorker_AdvanceAfterEndIsAnInvalidTransition(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	w := startWorker(t, openStore(t), mockRegistry(ctrl, &published{}, 1), newSession("s1", 0), SessionConfig{})

	_, err := Ask[domain.Session](context.Background(), w, domain.StartCommand{AdminCommand: admin("s1")}, maxWait)
	req.NoError(err)
	ended, err := Ask[domain.Session](context.Background(), w, domain.EndCommand{AdminCommand: admin("s1")}, maxWait)
	req.NoError(err)
	req.Equal(domain.StateEnded, ended.State)

	// When the admin tries to advance the ended session
	_, err = Ask[domain.Session](context.Background(), w, domain.AdvanceCommand{AdminCommand: admin("s1"), Submodule: "wrap-up"}, maxWait)

	// Then the move is refused and the pointer stays put
	req.Equal(errors.CodeInvalidTransition, errors.CodeOf(err))
	req.Equal(domain.SubmoduleID("intro"), w.View().Session.CurrentSubmodule)

	_, err = Ask[JoinResult](context.Background(), w, domain.JoinCommand{SessionID: "s1", DisplayName: "Late"}, maxWait)
	req.True(errors.Is(err, errors.ErrSessionEnded))
}

func TestSessionWorker_OnlyTheOwnerDrivesTheSession(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	w := startWorker(t, openStore(t), mockRegistry(ctrl, &published{}, 1), newSession("s1", 0), SessionConfig{})

	_, err := Ask[domain.Session](context.Background(), w,
		domain.StartCommand{AdminCommand: domain.AdminCommand{SessionID: "s1", AdminID: "intruder"}}, maxWait)
	req.Equal(errors.CodeForbidden, errors.CodeOf(err))
	req.Equal(domain.StateCreated, w.View().Session.State)
}

func TestSessionWorker_CapacityAndWarning(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	w := startWorker(t, openStore(t), mockRegistry(ctrl, &published{}, 1), newSession("s1", 2), SessionConfig{CapacityWarningPercent: 50})

	// Given a session limited to two participants
	res, err := Ask[JoinResult](context.Background(), w, domain.JoinCommand{SessionID: "s1", DisplayName: "Mara"}, maxWait)
	req.NoError(err)
	req.True(res.CapacityWarning)

	res, err = Ask[JoinResult](context.Background(), w, domain.JoinCommand{SessionID: "s1", DisplayName: "Theo"}, maxWait)
	req.NoError(err)
	req.Equal(2, res.OnlineCount)

	// When a third one tries to join
	_, err = Ask[JoinResult](context.Background(), w, domain.JoinCommand{SessionID: "s1", DisplayName: "Lena"}, maxWait)

	// Then the session is full, but a known participant can still rejoin
	req.Equal(errors.CodeCapacityExceeded, errors.CodeOf(err))
	back, err := Ask[JoinResult](context.Background(), w,
		domain.JoinCommand{SessionID: "s1", DisplayName: "Theo", ParticipantID: res.Participant.ID}, maxWait)
	req.NoError(err)
	req.True(back.Rejoined)
}

func TestSessionWorker_SweepMarksSilentParticipantsOffline(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	pub := &published{}
	w := startWorker(t, openStore(t), mockRegistry(ctrl, pub, 1), newSession("s1", 0), SessionConfig{PresenceTimeout: time.Minute})

	mara := join(t, w, "Mara")
	req.Len(w.View().Online, 1)

	// When the sweep runs long after the last heartbeat
	_, err := Ask[domain.Session](context.Background(), w, domain.SweepCommand{SessionID: "s1", Now: time.Now().Add(2 * time.Minute)}, maxWait)
	req.NoError(err)

	// Then Mara is offline but still on the roster
	req.Empty(w.View().Online)
	p, ok := w.View().Participant(mara.ID)
	req.True(ok)
	req.False(p.Online)
	req.Equal(event.PresenceChangedType, pub.kinds()[len(pub.kinds())-1])
}

func TestSessionWorker_AlertWithoutAdminIsKeptInHistory(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	pub := &published{}
	w := startWorker(t, openStore(t), mockRegistry(ctrl, pub, 0), newSession("s1", 0), SessionConfig{})

	mara := join(t, w, "Mara")
	res, err := Ask[AlertResult](context.Background(), w,
		domain.RaiseAlertCommand{SessionID: "s1", ParticipantID: mara.ID, Type: domain.AlertOverwhelmed}, maxWait)
	req.NoError(err)

	req.False(res.Delivered)
	req.Len(w.View().Alerts, 1)
	req.NotContains(pub.kinds(), event.AlertRaisedType)
}

func TestSessionWorker_StoreFailureLeavesStateUntouched(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	session := newSession("s1", 0)

	// Given a store that accepts participants but fails on responses
	store.EXPECT().SaveParticipant(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	store.EXPECT().SaveSession(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	store.EXPECT().SaveResponse(gomock.Any(), gomock.Any()).Return(stderrors.New("disk on fire")).Times(1)

	w := NewSessionWorker(SessionDeps{
		Store:    store,
		Registry: mockRegistry(ctrl, &published{}, 1),
		Log:      slog.Default(),
	}, session, agenda("s1"), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	mara := join(t, w, "Mara")
	_, err := Ask[domain.Session](ctx, w, domain.StartCommand{AdminCommand: admin("s1")}, maxWait)
	req.NoError(err)

	// When the durable write fails
	_, err = Ask[SubmitResult](ctx, w, choose("s1", mara.ID, 0), maxWait)

	// Then the caller learns it and nothing was counted
	req.Equal(errors.CodeStoreUnavailable, errors.CodeOf(err))
	snap, _ := w.View().Tally("q1")
	req.Equal(0, snap.Responses)
	req.False(w.View().Responded("q1", mara.ID))
}

func TestSessionWorker_RecomputeMatchesIncrementalTally(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	w := startWorker(t, openStore(t), mockRegistry(ctrl, &published{}, 1), newSession("s1", 0), SessionConfig{})

	mara := join(t, w, "Mara")
	theo := join(t, w, "Theo")
	_, err := Ask[domain.Session](context.Background(), w, domain.StartCommand{AdminCommand: admin("s1")}, maxWait)
	req.NoError(err)
	_, err = Ask[SubmitResult](context.Background(), w, choose("s1", mara.ID, 0), maxWait)
	req.NoError(err)
	live, err := Ask[SubmitResult](context.Background(), w, choose("s1", theo.ID, 1), maxWait)
	req.NoError(err)

	rebuilt, err := Ask[aggregation.Snapshot](context.Background(), w, domain.RecomputeCommand{SessionID: "s1", AdminID: owner, QuestionID: "q1"}, maxWait)
	req.NoError(err)

	req.Equal(live.Tally.Counts, rebuilt.Counts)
	req.Equal(2, rebuilt.Responses)
	req.Greater(rebuilt.Version, live.Tally.Version)
}

func TestSessionWorker_ReloadsFromStoreAfterRestart(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := openStore(t)
	session := newSession("s1", 0)
	req.NoError(store.SaveSession(context.Background(), session))
	req.NoError(store.SaveQuestions(context.Background(), agenda("s1")))

	w := NewSessionWorker(SessionDeps{
		Store:    store,
		Registry: mockRegistry(ctrl, &published{}, 1),
		Log:      slog.Default(),
	}, session, agenda("s1"), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		_ = w.Run(ctx)
	}()

	mara := join(t, w, "Mara")
	_, err := Ask[domain.Session](context.Background(), w, domain.StartCommand{AdminCommand: admin("s1")}, maxWait)
	req.NoError(err)
	before, err := Ask[SubmitResult](context.Background(), w, choose("s1", mara.ID, 1), maxWait)
	req.NoError(err)
	cancel()
	<-stopped

	// When the actor state is rebuilt as after a crash
	req.NoError(w.reload(context.Background()))

	// Then the durable answer is back and versions kept moving forward
	snap, _ := w.View().Tally("q1")
	req.Equal([]int{0, 1}, snap.Counts)
	req.Greater(snap.Version, before.Tally.Version)
	req.True(w.View().Responded("q1", mara.ID))
	req.Equal(domain.StateActive, w.View().Session.State)
	req.Empty(w.View().Online)
}
