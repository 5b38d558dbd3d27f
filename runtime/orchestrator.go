// Package runtime wires session actors, subscribers and the durable store together.
// It orchestrates the system without containing business logic or domain rules.
package runtime

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"session-lab/aggregation"
	"session-lab/contract"
	"session-lab/domain"
	"session-lab/domain/event"
	"session-lab/errors"
	"session-lab/moderation"
	"session-lab/runtime/workers"
)

//go:embed censored/*
var censoredFolder embed.FS

const (
	codeAttempts = 10
	// endedViews bounds the final views kept for ended sessions.
	endedViews = 256
)

type Config struct {
	JoinTimeout     time.Duration
	SubmitTimeout   time.Duration
	AdminTimeout    time.Duration
	SinkTimeout     time.Duration
	MetricInterval  time.Duration
	EventBufferSize int
	CensoredChar    rune
	Session         workers.SessionConfig
}

func (c Config) withDefaults() Config {
	if c.JoinTimeout <= 0 {
		c.JoinTimeout = 3 * time.Second
	}
	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = 2 * time.Second
	}
	if c.AdminTimeout <= 0 {
		c.AdminTimeout = 3 * time.Second
	}
	if c.SinkTimeout <= 0 {
		c.SinkTimeout = time.Second
	}
	if c.MetricInterval <= 0 {
		c.MetricInterval = 10 * time.Second
	}
	if c.EventBufferSize <= 0 {
		c.EventBufferSize = 1024
	}
	if c.CensoredChar == 0 {
		c.CensoredChar = '*'
	}
	if c.Session.StoreTimeout <= 0 {
		c.Session.StoreTimeout = 2 * time.Second
	}
	return c
}

// ResyncQuery is sent by a reconnecting client. QuestionID defaults to the
// question under the session pointer; KnownVersion is the last tally version
// the client rendered.
type ResyncQuery struct {
	SessionID     domain.SessionID
	ParticipantID domain.ParticipantID
	Role          domain.Role
	QuestionID    domain.QuestionID
	KnownVersion  uint64
}

// ResyncResult is everything a client needs to redraw. Tally is nil when the
// caller may not see it yet.
type ResyncResult struct {
	Session             domain.Session
	Question            *domain.Question
	Tally               *aggregation.Snapshot
	HasExistingResponse bool
	OnlineCount         int
	Alerts              []domain.Alert
}

type Orchestrator struct {
	mu         sync.RWMutex
	log        *slog.Logger
	cfg        Config
	store      contract.Store
	registry   contract.IRegistry
	supervisor contract.ISupervisor
	sessions   map[domain.SessionID]*workers.SessionWorker
	ended      map[domain.SessionID]*workers.View
	endedOrder []domain.SessionID
	sinks      []contract.EventSink
	handlers   []event.Handler
	screener   domain.Screener
	events     chan event.Event
	telemetry  chan event.Event
	runCtx     context.Context
	cancel     context.CancelFunc
	ready      chan struct{}
	clock      func() time.Time
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, registry contract.IRegistry,
	store contract.Store, telemetry chan event.Event, cfg Config) *Orchestrator {
	cfg = cfg.withDefaults()
	if telemetry == nil {
		telemetry = make(chan event.Event, cfg.EventBufferSize)
	}
	return &Orchestrator{
		log:        log,
		cfg:        cfg,
		store:      store,
		registry:   registry,
		supervisor: supervisor,
		sessions:   make(map[domain.SessionID]*workers.SessionWorker),
		ended:      make(map[domain.SessionID]*workers.View),
		events:     make(chan event.Event, cfg.EventBufferSize),
		telemetry:  telemetry,
		ready:      make(chan struct{}),
		clock:      func() time.Time { return time.Now().UTC() },
	}
}

// Add registers permanent sinks fed by the event fanout. Call before Start.
func (o *Orchestrator) Add(sinks ...contract.EventSink) {
	o.sinks = append(o.sinks, sinks...)
}

// Handle registers telemetry handlers. Call before Start.
func (o *Orchestrator) Handle(handlers ...event.Handler) {
	o.handlers = append(o.handlers, handlers...)
}

// Ready is closed once Start has recovered the live sessions.
func (o *Orchestrator) Ready() <-chan struct{} { return o.ready }

// Start prepares moderation, recovers every non-ended session from the store and
// runs all supervised workers until ctx is cancelled. It uses a preparation pattern
// to minimize mutex locking time.
func (o *Orchestrator) Start(ctx context.Context) error {
	// 1. Preparation phase (No Lock)
	// Heavy tasks like I/O (loading files) and CPU (Aho-Corasick build) are done here.
	screener, err := o.prepareModeration("censored")
	if err != nil {
		return err
	}
	o.screener = screener

	recovered, err := o.recover(ctx)
	if err != nil {
		return err
	}

	// 2. Critical Section (Short Lock)
	runCtx, cancel := context.WithCancel(ctx)
	o.mu.Lock()
	o.runCtx, o.cancel = runCtx, cancel
	for _, w := range recovered {
		o.sessions[w.ID()] = w
		o.supervisor.Add(w)
		go o.forgetWhenDone(runCtx, w)
	}
	o.supervisor.Add(o.backgroundWorkers()...)
	o.mu.Unlock()
	close(o.ready)

	// 3. Execution phase (No Lock)
	o.log.Info("Starting orchestrator and all supervised workers", "sessions", len(recovered))
	o.supervisor.Run(runCtx)
	return nil
}

// prepareModeration loads censored words and builds the Aho-Corasick automaton.
func (o *Orchestrator) prepareModeration(path string) (domain.Screener, error) {
	dict, err := LoadDictionary(censoredFolder, path)
	if err != nil {
		return nil, err
	}
	o.log.Info(fmt.Sprintf("%d censored files loaded [%s]",
		len(dict.Languages), strings.Join(dict.Languages, ",")))
	o.log.Info(fmt.Sprintf("%d unique censored words loaded", len(dict.Words)))

	moderator, err := moderation.NewModerator(dict.Words, o.cfg.CensoredChar, o.log)
	if err != nil {
		return nil, err
	}
	return moderator, nil
}

// recover rebuilds an actor for every session that had not ended when the process stopped.
func (o *Orchestrator) recover(ctx context.Context) ([]*workers.SessionWorker, error) {
	storeCtx, cancel := context.WithTimeout(ctx, o.cfg.Session.StoreTimeout)
	defer cancel()
	open, err := o.store.ListOpenSessions(storeCtx)
	if err != nil {
		return nil, errors.Durable(err)
	}
	res := make([]*workers.SessionWorker, 0, len(open))
	for _, s := range open {
		w, err := o.load(ctx, s)
		if err != nil {
			return nil, err
		}
		res = append(res, w)
		o.log.Info("session recovered", "session_id", s.ID, "state", s.State)
	}
	return res, nil
}

// load hydrates an actor from the store without running it.
func (o *Orchestrator) load(ctx context.Context, s domain.Session) (*workers.SessionWorker, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Session.StoreTimeout)
	defer cancel()
	questions, err := o.store.ListQuestions(ctx, s.ID)
	if err != nil {
		return nil, errors.Durable(err)
	}
	participants, err := o.store.ListParticipants(ctx, s.ID)
	if err != nil {
		return nil, errors.Durable(err)
	}
	records, err := o.store.ListResponses(ctx, s.ID)
	if err != nil {
		return nil, errors.Durable(err)
	}
	return workers.NewSessionWorker(o.deps(), s, questions, participants, records), nil
}

func (o *Orchestrator) deps() workers.SessionDeps {
	return workers.SessionDeps{
		Store:     o.store,
		Registry:  o.registry,
		Screener:  o.screener,
		Events:    o.events,
		Telemetry: o.telemetry,
		Config:    o.cfg.Session,
		Log:       o.log,
		Clock:     o.clock,
	}
}

func (o *Orchestrator) backgroundWorkers() []contract.Worker {
	return []contract.Worker{
		workers.NewEventFanout(o.log, o.events, o.telemetry, o.cfg.SinkTimeout, o.sinks...),
		workers.NewTelemetryWorker(o.log, o.telemetry, o.handlers...),
		workers.NewChannelCapacityWorker(o.log, o.Channels, o.telemetry, o.cfg.MetricInterval),
		workers.NewProcessStatsWorker(o.log, o.telemetry, o.cfg.MetricInterval, o.SessionCount),
	}
}

// spawn registers a new actor and hands it to the supervisor.
func (o *Orchestrator) spawn(ctx context.Context, w *workers.SessionWorker) (*workers.SessionWorker, error) {
	select {
	case <-o.ready:
	case <-ctx.Done():
		return nil, errors.Wrap(errors.CodeTimeout, "engine is not started", ctx.Err())
	}
	o.mu.Lock()
	if existing, ok := o.sessions[w.ID()]; ok {
		o.mu.Unlock()
		return existing, nil
	}
	o.sessions[w.ID()] = w
	runCtx := o.runCtx
	o.mu.Unlock()

	o.supervisor.Start(runCtx, w)
	go o.forgetWhenDone(runCtx, w)
	return w, nil
}

func (o *Orchestrator) forgetWhenDone(ctx context.Context, w *workers.SessionWorker) {
	select {
	case <-ctx.Done():
	case <-w.Done():
		o.mu.Lock()
		delete(o.sessions, w.ID())
		o.keepEnded(w.View())
		o.mu.Unlock()
	}
}

// keepEnded remembers the final view of an ended session, evicting the oldest one.
// Callers hold o.mu.
func (o *Orchestrator) keepEnded(v *workers.View) {
	id := v.Session.ID
	if _, ok := o.ended[id]; !ok {
		o.endedOrder = append(o.endedOrder, id)
	}
	o.ended[id] = v
	for len(o.endedOrder) > endedViews {
		delete(o.ended, o.endedOrder[0])
		o.endedOrder = o.endedOrder[1:]
	}
}

// CreateSession stores a new session with its questions and starts its actor.
// Without an explicit code a random one is drawn until it is unique among live sessions.
func (o *Orchestrator) CreateSession(ctx context.Context, cmd domain.CreateSessionCommand) (domain.Session, error) {
	if err := domain.Validate(cmd); err != nil {
		return domain.Session{}, err
	}
	id := domain.SessionID(uuid.NewString())
	questions, err := prepareQuestions(id, cmd.Questions)
	if err != nil {
		return domain.Session{}, err
	}
	session := domain.Session{
		ID:              id,
		OwnerID:         cmd.AdminID,
		ModuleID:        cmd.ModuleID,
		UnlockedModules: []domain.ModuleID{cmd.ModuleID},
		State:           domain.StateCreated,
		MaxParticipants: cmd.MaxParticipants,
		CreatedAt:       o.clock(),
	}

	attempts := codeAttempts
	if cmd.Code != "" {
		attempts = 1
	}
	for i := 0; ; i++ {
		session.Code = cmd.Code
		if session.Code == "" {
			if session.Code, err = domain.GenerateCode(); err != nil {
				return domain.Session{}, err
			}
		}
		err = o.storeWrite(ctx, func(ctx context.Context) error { return o.store.SaveSession(ctx, session) })
		if err == nil {
			break
		}
		if errors.CodeOf(err) != errors.CodeCodeInUse || i+1 >= attempts {
			return domain.Session{}, err
		}
	}
	if len(questions) > 0 {
		if err := o.storeWrite(ctx, func(ctx context.Context) error { return o.store.SaveQuestions(ctx, questions) }); err != nil {
			return domain.Session{}, err
		}
	}

	w := workers.NewSessionWorker(o.deps(), session, questions, nil, nil)
	if _, err := o.spawn(ctx, w); err != nil {
		return domain.Session{}, err
	}
	o.log.Info("session created", "session_id", id, "code", session.Code, "questions", len(questions))
	return session, nil
}

func prepareQuestions(id domain.SessionID, defs []domain.Question) ([]domain.Question, error) {
	seen := make(map[domain.QuestionID]struct{}, len(defs))
	res := make([]domain.Question, 0, len(defs))
	for _, q := range defs {
		if err := q.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[q.ID]; dup {
			return nil, errors.New(errors.CodeInvalidArgument, "question %s defined twice", q.ID)
		}
		seen[q.ID] = struct{}{}
		q = q.Clone()
		q.SessionID = id
		q.Closed = false
		res = append(res, q)
	}
	return res, nil
}

func (o *Orchestrator) storeWrite(ctx context.Context, write func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Session.StoreTimeout)
	defer cancel()
	return errors.Durable(write(ctx))
}

// Join resolves the human-entry code and registers the participant on its session.
func (o *Orchestrator) Join(ctx context.Context, cmd domain.JoinCommand) (workers.JoinResult, error) {
	if err := domain.Validate(cmd); err != nil {
		return workers.JoinResult{}, err
	}
	storeCtx, cancel := context.WithTimeout(ctx, o.cfg.Session.StoreTimeout)
	session, err := o.store.FindSessionByCode(storeCtx, cmd.Code)
	cancel()
	if err != nil {
		return workers.JoinResult{}, errors.Durable(err)
	}
	cmd.SessionID = session.ID
	return dispatch[workers.JoinResult](ctx, o, cmd, o.cfg.JoinTimeout)
}

func (o *Orchestrator) Heartbeat(ctx context.Context, sessionID domain.SessionID, participantID domain.ParticipantID) (domain.Participant, error) {
	return dispatch[domain.Participant](ctx, o, domain.PresenceCommand{SessionID: sessionID, ParticipantID: participantID, Online: true}, o.cfg.JoinTimeout)
}

func (o *Orchestrator) Leave(ctx context.Context, sessionID domain.SessionID, participantID domain.ParticipantID) (domain.Participant, error) {
	return dispatch[domain.Participant](ctx, o, domain.PresenceCommand{SessionID: sessionID, ParticipantID: participantID}, o.cfg.JoinTimeout)
}

func (o *Orchestrator) Submit(ctx context.Context, cmd domain.SubmitCommand) (workers.SubmitResult, error) {
	if err := domain.Validate(cmd); err != nil {
		return workers.SubmitResult{}, err
	}
	return dispatch[workers.SubmitResult](ctx, o, cmd, o.cfg.SubmitTimeout)
}

func (o *Orchestrator) RaiseAlert(ctx context.Context, cmd domain.RaiseAlertCommand) (workers.AlertResult, error) {
	if err := domain.Validate(cmd); err != nil {
		return workers.AlertResult{}, err
	}
	return dispatch[workers.AlertResult](ctx, o, cmd, o.cfg.SubmitTimeout)
}

func (o *Orchestrator) StartSession(ctx context.Context, cmd domain.AdminCommand) (domain.Session, error) {
	return o.admin(ctx, domain.StartCommand{AdminCommand: cmd})
}

func (o *Orchestrator) Pause(ctx context.Context, cmd domain.AdminCommand) (domain.Session, error) {
	return o.admin(ctx, domain.PauseCommand{AdminCommand: cmd})
}

func (o *Orchestrator) Resume(ctx context.Context, cmd domain.AdminCommand) (domain.Session, error) {
	return o.admin(ctx, domain.ResumeCommand{AdminCommand: cmd})
}

func (o *Orchestrator) End(ctx context.Context, cmd domain.AdminCommand) (domain.Session, error) {
	return o.admin(ctx, domain.EndCommand{AdminCommand: cmd})
}

func (o *Orchestrator) AdvanceTo(ctx context.Context, cmd domain.AdvanceCommand) (domain.Session, error) {
	return o.admin(ctx, cmd)
}

func (o *Orchestrator) UnlockModule(ctx context.Context, cmd domain.UnlockModuleCommand) (domain.Session, error) {
	return o.admin(ctx, cmd)
}

func (o *Orchestrator) CloseQuestion(ctx context.Context, cmd domain.CloseQuestionCommand) (aggregation.Snapshot, error) {
	if err := domain.Validate(cmd); err != nil {
		return aggregation.Snapshot{}, err
	}
	return dispatch[aggregation.Snapshot](ctx, o, cmd, o.cfg.AdminTimeout)
}

func (o *Orchestrator) Recompute(ctx context.Context, cmd domain.RecomputeCommand) (aggregation.Snapshot, error) {
	if cmd.AdminID == "" {
		return aggregation.Snapshot{}, errors.ErrForbidden
	}
	return dispatch[aggregation.Snapshot](ctx, o, cmd, o.cfg.AdminTimeout)
}

func (o *Orchestrator) admin(ctx context.Context, cmd domain.Command) (domain.Session, error) {
	if err := domain.Validate(cmd); err != nil {
		return domain.Session{}, err
	}
	return dispatch[domain.Session](ctx, o, cmd, o.cfg.AdminTimeout)
}

// dispatch routes a command to the live actor of its session.
func dispatch[T any](ctx context.Context, o *Orchestrator, cmd domain.Command, timeout time.Duration) (T, error) {
	var zero T
	w, err := o.live(ctx, cmd)
	if err != nil {
		return zero, err
	}
	return workers.Ask[T](ctx, w, cmd, timeout)
}

// live returns the running actor of a session, reviving it from the store when needed.
func (o *Orchestrator) live(ctx context.Context, cmd domain.Command) (*workers.SessionWorker, error) {
	id := cmd.Session()
	o.mu.RLock()
	w, ok := o.sessions[id]
	o.mu.RUnlock()
	if ok {
		return w, nil
	}
	session, err := o.stored(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.State == domain.StateEnded {
		return nil, workers.EndedError(cmd)
	}
	w, err = o.load(ctx, session)
	if err != nil {
		return nil, err
	}
	return o.spawn(ctx, w)
}

func (o *Orchestrator) stored(ctx context.Context, id domain.SessionID) (domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Session.StoreTimeout)
	defer cancel()
	session, err := o.store.GetSession(ctx, id)
	if err != nil {
		return domain.Session{}, errors.Durable(err)
	}
	return session, nil
}

// view returns the published view of a session. An ended session answers with its
// final view while it is remembered, otherwise it is rebuilt from the store above
// the tally versions saved when it ended.
func (o *Orchestrator) view(ctx context.Context, id domain.SessionID) (*workers.View, error) {
	o.mu.RLock()
	w, ok := o.sessions[id]
	final, ended := o.ended[id]
	o.mu.RUnlock()
	if ok {
		return w.View(), nil
	}
	if ended {
		return final, nil
	}
	session, err := o.stored(ctx, id)
	if err != nil {
		return nil, err
	}
	w, err = o.load(ctx, session)
	if err != nil {
		return nil, err
	}
	return w.View(), nil
}

// Resync answers a reconnecting client from the published view. A client that has
// seen a newer tally than the server triggers a rebuild before the answer.
func (o *Orchestrator) Resync(ctx context.Context, q ResyncQuery) (ResyncResult, error) {
	v, err := o.view(ctx, q.SessionID)
	if err != nil {
		return ResyncResult{}, err
	}
	if q.Role == domain.RoleParticipant {
		if _, ok := v.Participant(q.ParticipantID); !ok {
			return ResyncResult{}, errors.New(errors.CodeParticipantNotFound, "participant %s not found", q.ParticipantID)
		}
	}
	res := ResyncResult{Session: v.Session, OnlineCount: len(v.Online)}
	if q.Role == domain.RoleAdmin {
		res.Alerts = v.Alerts
	}

	qid := q.QuestionID
	if qid == "" {
		qid = v.Session.CurrentQuestion
	}
	question, ok := v.Question(qid)
	if !ok {
		if q.QuestionID != "" {
			return ResyncResult{}, errors.New(errors.CodeQuestionNotFound, "question %s not found", qid)
		}
		return res, nil
	}
	res.Question = &question
	res.HasExistingResponse = v.Responded(qid, q.ParticipantID)

	snap, _ := v.Tally(qid)
	if q.KnownVersion > snap.Version {
		o.log.Warn("client ahead of server, recomputing", "session_id", q.SessionID, "question_id", qid,
			"known", q.KnownVersion, "server", snap.Version)
		if snap, err = o.repair(ctx, v.Session, question, q.KnownVersion); err != nil {
			return ResyncResult{}, err
		}
	}
	if question.Visible(q.Role, res.HasExistingResponse) {
		res.Tally = &snap
	}
	return res, nil
}

// repair rebuilds a tally a client has seen ahead of the server so its version ends
// above known. A live session rebuilds in its actor; an ended one is rebuilt here
// and the new floor is saved with the question.
func (o *Orchestrator) repair(ctx context.Context, s domain.Session, q domain.Question, known uint64) (aggregation.Snapshot, error) {
	if s.State != domain.StateEnded {
		cmd := domain.RecomputeCommand{SessionID: s.ID, QuestionID: q.ID, Floor: known}
		snap, err := dispatch[aggregation.Snapshot](ctx, o, cmd, o.cfg.AdminTimeout)
		if !errors.Is(err, errors.ErrSessionEnded) {
			return snap, err
		}
	}

	storeCtx, cancel := context.WithTimeout(ctx, o.cfg.Session.StoreTimeout)
	defer cancel()
	stored, err := o.store.ListResponses(storeCtx, s.ID)
	if err != nil {
		return aggregation.Snapshot{}, errors.Durable(err)
	}
	records := lo.Filter(stored, func(r domain.ResponseRecord, _ int) bool { return r.QuestionID == q.ID })
	snap := o.cfg.Session.RebuildTally(q, records, known)
	q.TallyVersion = snap.Version
	if err := o.store.SaveQuestions(storeCtx, []domain.Question{q}); err != nil {
		o.log.Warn("tally version floor not saved", "session_id", s.ID, "question_id", q.ID, "error", err)
	}
	o.mu.Lock()
	delete(o.ended, s.ID)
	o.mu.Unlock()
	return snap, nil
}

// ListOnline returns the online participants ordered by join time.
func (o *Orchestrator) ListOnline(ctx context.Context, id domain.SessionID) ([]domain.Participant, error) {
	v, err := o.view(ctx, id)
	if err != nil {
		return nil, err
	}
	return v.Online, nil
}

// RecentAlerts returns the alert history of a session to its owner, oldest first.
func (o *Orchestrator) RecentAlerts(ctx context.Context, cmd domain.AdminCommand) ([]domain.Alert, error) {
	v, err := o.owned(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return v.Alerts, nil
}

// CheckOwner fails with Forbidden unless cmd.AdminID created the session.
func (o *Orchestrator) CheckOwner(ctx context.Context, cmd domain.AdminCommand) error {
	_, err := o.owned(ctx, cmd)
	return err
}

func (o *Orchestrator) owned(ctx context.Context, cmd domain.AdminCommand) (*workers.View, error) {
	v, err := o.view(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}
	if v.Session.OwnerID != cmd.AdminID {
		return nil, errors.ErrForbidden
	}
	return v, nil
}

// Snapshot reads the latest tally of a question without touching the actor.
func (o *Orchestrator) Snapshot(ctx context.Context, id domain.SessionID, qid domain.QuestionID) (aggregation.Snapshot, error) {
	v, err := o.view(ctx, id)
	if err != nil {
		return aggregation.Snapshot{}, err
	}
	snap, ok := v.Tally(qid)
	if !ok {
		return aggregation.Snapshot{}, errors.New(errors.CodeQuestionNotFound, "question %s not found", qid)
	}
	return snap, nil
}

// Subscribe attaches a connected client to a live session. A session that ends
// while the client attaches hands it the final state and closes it.
func (o *Orchestrator) Subscribe(ctx context.Context, id domain.SessionID, sub contract.Subscriber) error {
	if _, err := o.live(ctx, domain.PresenceCommand{SessionID: id}); err != nil {
		return err
	}
	if !o.registry.Subscribe(id, sub) {
		o.log.Debug("subscriber attached to an ended session", "session_id", id, "subscriber_id", sub.ID())
		return nil
	}
	o.log.Debug("subscriber attached", "session_id", id, "subscriber_id", sub.ID(), "role", sub.Role())
	return nil
}

func (o *Orchestrator) Unsubscribe(id domain.SessionID, sub contract.Subscriber) {
	o.registry.Unsubscribe(id, sub)
}

// SessionCount returns the number of live session actors.
func (o *Orchestrator) SessionCount() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.sessions)
}

// Channels lists the queues sampled by the capacity worker.
func (o *Orchestrator) Channels() []workers.NamedChannel {
	o.mu.RLock()
	defer o.mu.RUnlock()
	res := []workers.NamedChannel{
		{Name: "events", Channel: o.events},
		{Name: "telemetry", Channel: o.telemetry},
	}
	ids := lo.Keys(o.sessions)
	for _, id := range ids {
		w := o.sessions[id]
		res = append(res, workers.NamedChannel{Name: w.Name(), Channel: w.Inbox()})
	}
	return res
}

// Stop initiates a graceful shutdown of the orchestrator.
// It cancels the supervision context to signal workers to stop.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.mu.Lock()
	cancel := o.cancel
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	o.supervisor.Stop()
}
