package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"session-lab/aggregation"
	"session-lab/contract"
	"session-lab/domain"
	"session-lab/domain/event"
	"session-lab/errors"
	"session-lab/moderation"
	"session-lab/projection"
)

var (
	_ contract.Worker = (*SessionWorker)(nil)
	_ contract.Named  = (*SessionWorker)(nil)
)

// SessionWorker is the single writer of one session. Every mutation arrives as a
// command on its inbox and is applied in FIFO order: durable write first, then
// the in-memory state, then the broadcast, then the reply.
type SessionWorker struct {
	deps  SessionDeps
	cfg   SessionConfig
	log   *slog.Logger
	inbox chan envelope
	done  chan struct{}

	session   domain.Session
	agenda    domain.Agenda
	questions map[domain.QuestionID]*domain.Question
	roster    *domain.Roster
	responses *domain.ResponseIndex
	tallies   map[domain.QuestionID]*aggregation.QuestionTally
	alerts    *projection.AlertLog

	presenceVersion uint64
	alertVersion    uint64
	started         bool
	finished        atomic.Bool
	view            atomic.Pointer[View]
}

// NewSessionWorker builds an actor from persisted state. Participants start offline
// and every tally is recomputed from the records, above the durable version floors.
func NewSessionWorker(deps SessionDeps, session domain.Session, questions []domain.Question,
	participants []domain.Participant, records []domain.ResponseRecord) *SessionWorker {
	cfg := deps.Config.withDefaults()
	if deps.Clock == nil {
		deps.Clock = func() time.Time { return time.Now().UTC() }
	}
	w := &SessionWorker{
		deps:   deps,
		cfg:    cfg,
		log:    deps.Log.With("session_id", session.ID),
		inbox:  make(chan envelope, cfg.CommandBufferSize),
		done:   make(chan struct{}),
		alerts: projection.NewAlertLog(cfg.AlertHistorySize),
		// Presence is not durable: a clock seed keeps versions above those of a previous run.
		presenceVersion: uint64(deps.Clock().UnixNano()),
	}
	w.hydrate(session, questions, participants, records)
	return w
}

func (w *SessionWorker) hydrate(session domain.Session, questions []domain.Question,
	participants []domain.Participant, records []domain.ResponseRecord) {
	w.session = session.Clone()
	w.agenda = domain.NewAgenda(questions)
	w.questions = make(map[domain.QuestionID]*domain.Question, len(questions))
	w.tallies = make(map[domain.QuestionID]*aggregation.QuestionTally, len(questions))
	for _, q := range w.agenda.Questions() {
		q := q.Clone()
		w.questions[q.ID] = &q
		w.tallies[q.ID] = aggregation.NewQuestionTally(q, w.cfg.WordCloudMaxWords)
	}

	w.roster = domain.NewRoster()
	for _, p := range participants {
		p.Online = false
		w.roster.Upsert(p)
	}

	floors := make(map[domain.QuestionID]uint64, len(w.questions))
	for id, q := range w.questions {
		floors[id] = q.TallyVersion
	}
	w.responses = domain.NewResponseIndex()
	for _, rec := range records {
		if _, ok := w.questions[rec.QuestionID]; ok {
			w.responses.Put(rec)
			floors[rec.QuestionID] = max(floors[rec.QuestionID], rec.TallyVersion)
		}
	}
	for id, t := range w.tallies {
		if w.responses.Count(id) > 0 || floors[id] > 0 {
			t.Resume(w.responses.Records(id), floors[id])
		}
	}
	w.publish(true)
}

func (w *SessionWorker) Name() string { return "session-" + string(w.session.ID) }

func (w *SessionWorker) ID() domain.SessionID { return w.session.ID }

// View returns the last published picture of the session.
func (w *SessionWorker) View() *View { return w.view.Load() }

// Done is closed once the session has ended and the actor stopped.
func (w *SessionWorker) Done() <-chan struct{} { return w.done }

func (w *SessionWorker) Inbox() any { return w.inbox }

func (w *SessionWorker) Run(ctx context.Context) error {
	if w.finished.Load() {
		return nil
	}
	if w.started {
		// Restarted after a crash: the in-memory state may be half applied.
		if err := w.reload(ctx); err != nil {
			return err
		}
	}
	w.started = true
	w.log.Debug("session actor running")

	ticker := time.NewTicker(w.cfg.PresenceSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env := <-w.inbox:
			value, err := w.handle(ctx, env.cmd)
			env.reply <- result{value: value, err: err}
		case <-ticker.C:
			w.sweep(ctx, w.deps.Clock())
		}
		if w.session.State == domain.StateEnded {
			w.finish()
			return nil
		}
	}
}

func (w *SessionWorker) reload(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, w.cfg.StoreTimeout)
	defer cancel()
	store := w.deps.Store
	session, err := store.GetSession(ctx, w.session.ID)
	if err != nil {
		return errors.Durable(err)
	}
	questions, err := store.ListQuestions(ctx, w.session.ID)
	if err != nil {
		return errors.Durable(err)
	}
	participants, err := store.ListParticipants(ctx, w.session.ID)
	if err != nil {
		return errors.Durable(err)
	}
	records, err := store.ListResponses(ctx, w.session.ID)
	if err != nil {
		return errors.Durable(err)
	}
	// Tallies keep counting up from where they were so clients never see a version go back.
	previous := w.tallies
	w.hydrate(session, questions, participants, records)
	for id, t := range w.tallies {
		if old, ok := previous[id]; ok {
			t.Resume(w.responses.Records(id), old.Version())
		}
	}
	w.publish(true)
	w.log.Warn("session actor reloaded from store")
	return nil
}

// finish releases every waiter once the session has ended.
func (w *SessionWorker) finish() {
	if !w.finished.CompareAndSwap(false, true) {
		return
	}
	close(w.done)
	for {
		select {
		case env := <-w.inbox:
			env.reply <- result{err: EndedError(env.cmd)}
		default:
			w.deps.Registry.CloseSession(w.session.ID, event.NewSessionStateChanged(w.session, w.deps.Clock()))
			w.log.Info("session ended")
			return
		}
	}
}

func (w *SessionWorker) handle(ctx context.Context, cmd domain.Command) (any, error) {
	switch c := cmd.(type) {
	case domain.JoinCommand:
		return w.join(ctx, c)
	case domain.PresenceCommand:
		return w.presence(c)
	case domain.SubmitCommand:
		return w.submit(ctx, c)
	case domain.RaiseAlertCommand:
		return w.raiseAlert(c)
	case domain.StartCommand:
		return w.transition(ctx, c.AdminCommand, func(s *domain.Session) error {
			first := w.agenda.FirstSubmodule()
			return s.Start(first, w.firstQuestion(first), w.deps.Clock())
		}, nil)
	case domain.PauseCommand:
		return w.transition(ctx, c.AdminCommand, (*domain.Session).Pause, nil)
	case domain.ResumeCommand:
		return w.transition(ctx, c.AdminCommand, (*domain.Session).Resume, nil)
	case domain.EndCommand:
		return w.end(ctx, c.AdminCommand, w.deps.Clock())
	case domain.AdvanceCommand:
		return w.advance(ctx, c)
	case domain.UnlockModuleCommand:
		return w.transition(ctx, c.AdminCommand, func(s *domain.Session) error {
			return s.UnlockModule(c.ModuleID)
		}, nil)
	case domain.CloseQuestionCommand:
		return w.closeQuestion(ctx, c)
	case domain.RecomputeCommand:
		return w.recompute(ctx, c)
	case domain.SweepCommand:
		w.sweep(ctx, c.Now)
		return w.session.Clone(), nil
	}
	return nil, errors.New(errors.CodeInvalidArgument, "unsupported command %T", cmd)
}

func (w *SessionWorker) join(ctx context.Context, c domain.JoinCommand) (JoinResult, error) {
	if w.session.State == domain.StateEnded {
		return JoinResult{}, errors.ErrSessionEnded
	}
	now := w.deps.Clock()
	limit := w.maxParticipants()

	p, known := w.roster.Get(c.ParticipantID)
	if c.ParticipantID == "" || !known {
		id := c.ParticipantID
		if id == "" {
			id = domain.ParticipantID(uuid.NewString())
		}
		p = domain.Participant{ID: id, SessionID: w.session.ID, JoinedAt: now}
	}
	if !p.Online && domain.Capacity(w.roster.OnlineCount(), limit, w.cfg.CapacityWarningPercent) == domain.CapacityFull {
		return JoinResult{}, errors.New(errors.CodeCapacityExceeded, "session %s is full (%d online)", w.session.ID, limit)
	}

	wasOnline := p.Online
	p.DisplayName = c.DisplayName
	p.LastSeen = now
	p.Online = true
	if err := w.save(ctx, func(ctx context.Context) error { return w.deps.Store.SaveParticipant(ctx, p) }); err != nil {
		return JoinResult{}, err
	}
	w.roster.Upsert(p)

	online := w.roster.OnlineCount()
	res := JoinResult{
		Participant:     p,
		Session:         w.session.Clone(),
		Rejoined:        known,
		OnlineCount:     online,
		CapacityWarning: domain.Capacity(online, limit, w.cfg.CapacityWarningPercent) != domain.CapacityOK,
	}
	if res.CapacityWarning {
		w.log.Warn("session close to capacity", "online", online, "max", limit)
	}
	if !wasOnline {
		w.broadcastPresence(p)
	}
	w.publish(true)
	return res, nil
}

func (w *SessionWorker) presence(c domain.PresenceCommand) (domain.Participant, error) {
	p, ok := w.roster.Get(c.ParticipantID)
	if !ok {
		return domain.Participant{}, errors.New(errors.CodeParticipantNotFound, "participant %s not found", c.ParticipantID)
	}
	if c.Online && !p.Online &&
		domain.Capacity(w.roster.OnlineCount(), w.maxParticipants(), w.cfg.CapacityWarningPercent) == domain.CapacityFull {
		return domain.Participant{}, errors.ErrCapacityExceeded
	}
	p, changed := w.roster.SetOnline(c.ParticipantID, c.Online, w.deps.Clock())
	if changed {
		w.broadcastPresence(p)
		w.publish(true)
	}
	return p, nil
}

func (w *SessionWorker) submit(ctx context.Context, c domain.SubmitCommand) (SubmitResult, error) {
	switch w.session.State {
	case domain.StateEnded:
		return SubmitResult{}, errors.ErrSessionEnded
	case domain.StateCreated:
		return SubmitResult{}, errors.New(errors.CodeQuestionClosed, "session has not started")
	}
	q, ok := w.questions[c.QuestionID]
	if !ok {
		return SubmitResult{}, errors.New(errors.CodeQuestionNotFound, "question %s not found", c.QuestionID)
	}
	if q.Closed || q.SubmoduleID != w.session.CurrentSubmodule {
		return SubmitResult{}, errors.New(errors.CodeQuestionClosed, "question %s is not accepting responses", q.ID)
	}
	if _, ok := w.roster.Get(c.ParticipantID); !ok {
		return SubmitResult{}, errors.New(errors.CodeParticipantNotFound, "participant %s not found", c.ParticipantID)
	}

	decoded, err := c.Payload.Decode(q.Type)
	if err != nil {
		return SubmitResult{}, err
	}
	var profanity []string
	screen := screenFunc(func(text string) []string {
		if w.deps.Screener == nil {
			return nil
		}
		profanity = w.deps.Screener.Screen(text)
		return profanity
	})
	payload, err := domain.ValidatePayload(*q, decoded, screen)
	if err != nil {
		if len(profanity) > 0 {
			w.telemetry(event.ProfanityRejectedType, event.ProfanityRejected{SessionID: w.session.ID, Words: profanity})
		}
		return SubmitResult{}, err
	}

	ordinal := 0
	if q.Type == domain.WordCloud && q.Config.AllowDuplicates {
		ordinal = w.responses.NextOrdinal(q.ID, c.ParticipantID)
	}
	key := domain.ResponseKey{Question: q.ID, Participant: c.ParticipantID, Ordinal: ordinal}
	prev, replaced := w.responses.Existing(key)

	submittedAt := c.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = w.deps.Clock()
	}
	rec := domain.ResponseRecord{
		ID:            uuid.NewString(),
		SessionID:     w.session.ID,
		QuestionID:    q.ID,
		ParticipantID: c.ParticipantID,
		Ordinal:       ordinal,
		Payload:       payload,
		Lang:          lang(payload),
		SubmittedAt:   submittedAt,
		TallyVersion:  w.tallies[q.ID].Version() + 1,
	}
	if err := w.save(ctx, func(ctx context.Context) error { return w.deps.Store.SaveResponse(ctx, rec) }); err != nil {
		return SubmitResult{}, err
	}

	firstAnswer := !w.responses.Responded(q.ID, c.ParticipantID)
	w.responses.Put(rec)
	var prevPayload domain.Payload
	if replaced {
		prevPayload = prev.Payload
	}
	snap := w.tallies[q.ID].Apply(prevPayload, rec.Payload)
	if firstAnswer {
		w.publish(false)
	}
	w.broadcastTally(q)
	w.telemetry(event.ResponseAcceptedType, event.ResponseAccepted{SessionID: w.session.ID, QuestionID: q.ID, Replaced: replaced})
	return SubmitResult{Record: rec, Replaced: replaced, Tally: snap}, nil
}

func (w *SessionWorker) raiseAlert(c domain.RaiseAlertCommand) (AlertResult, error) {
	p, ok := w.roster.Get(c.ParticipantID)
	if !ok {
		return AlertResult{}, errors.New(errors.CodeParticipantNotFound, "participant %s not found", c.ParticipantID)
	}
	alert := domain.Alert{
		SessionID:     w.session.ID,
		ParticipantID: p.ID,
		DisplayName:   p.DisplayName,
		Type:          c.Type,
		RaisedAt:      w.deps.Clock(),
	}
	w.alertVersion++
	evt := event.AlertRaised{Alert: alert, Version: w.alertVersion}
	w.alerts.Consume(evt)
	w.publish(false)

	if w.deps.Registry.AdminCount(w.session.ID) == 0 {
		w.log.Debug("alert dropped, no admin connected", "type", c.Type)
		return AlertResult{Alert: alert}, nil
	}
	w.broadcast(evt)
	return AlertResult{Alert: alert, Delivered: true}, nil
}

// transition applies mutate to a copy of the session, persists the copy and only then
// adopts it. Questions are written in the same store call; closing ones have their
// tally closed once the write succeeded.
func (w *SessionWorker) transition(ctx context.Context, admin domain.AdminCommand,
	mutate func(*domain.Session) error, questions []domain.Question) (domain.Session, error) {
	if err := w.authorize(admin); err != nil {
		return domain.Session{}, err
	}
	next := w.session.Clone()
	if err := mutate(&next); err != nil {
		return domain.Session{}, err
	}
	if err := w.save(ctx, func(ctx context.Context) error {
		return w.deps.Store.SaveSession(ctx, next, questions...)
	}); err != nil {
		return domain.Session{}, err
	}
	for _, q := range questions {
		w.questions[q.ID].TallyVersion = q.TallyVersion
		if q.Closed && !w.tallies[q.ID].Closed() {
			w.closeTally(q.ID)
		}
	}
	w.session = next
	w.broadcast(event.NewSessionStateChanged(next, w.deps.Clock()))
	w.publish(false)
	w.log.Info("session transition", "state", next.State, "submodule", next.CurrentSubmodule, "version", next.Version)
	return next.Clone(), nil
}

// advance moves the pointer and closes the open questions of the submodule being left.
func (w *SessionWorker) advance(ctx context.Context, c domain.AdvanceCommand) (domain.Session, error) {
	if err := w.authorize(c.AdminCommand); err != nil {
		return domain.Session{}, err
	}
	if w.session.State.Open() && !w.agenda.HasSubmodule(c.Submodule) {
		return domain.Session{}, errors.New(errors.CodeInvalidArgument, "unknown submodule %s", c.Submodule)
	}
	var leaving []domain.Question
	if c.Submodule != w.session.CurrentSubmodule && w.session.State.Open() {
		for _, q := range w.agenda.Submodule(w.session.CurrentSubmodule) {
			if cur := w.questions[q.ID]; !cur.Closed {
				leaving = append(leaving, w.closing(cur))
			}
		}
	}
	return w.transition(ctx, c.AdminCommand, func(s *domain.Session) error {
		return s.AdvanceTo(c.Submodule, w.firstQuestion(c.Submodule))
	}, leaving)
}

// end stores every question with its current tally version so a rebuilt
// ended session never shows lower versions than its last broadcast.
func (w *SessionWorker) end(ctx context.Context, admin domain.AdminCommand, now time.Time) (domain.Session, error) {
	floors := make([]domain.Question, 0, len(w.questions))
	for _, q := range w.agenda.Questions() {
		cur := *w.questions[q.ID]
		cur.TallyVersion = w.tallies[q.ID].Version()
		floors = append(floors, cur)
	}
	return w.transition(ctx, admin, func(s *domain.Session) error { return s.End(now) }, floors)
}

// closing returns q closed, carrying the version its tally will have once closed.
func (w *SessionWorker) closing(q *domain.Question) domain.Question {
	closed := *q
	closed.Closed = true
	closed.TallyVersion = w.tallies[q.ID].Version() + 1
	return closed
}

func (w *SessionWorker) closeQuestion(ctx context.Context, c domain.CloseQuestionCommand) (aggregation.Snapshot, error) {
	if err := w.authorize(c.AdminCommand); err != nil {
		return aggregation.Snapshot{}, err
	}
	q, ok := w.questions[c.QuestionID]
	if !ok {
		return aggregation.Snapshot{}, errors.New(errors.CodeQuestionNotFound, "question %s not found", c.QuestionID)
	}
	if q.Closed {
		return w.tallies[q.ID].Snapshot(), nil
	}
	closed := w.closing(q)
	if err := w.save(ctx, func(ctx context.Context) error {
		return w.deps.Store.SaveQuestions(ctx, []domain.Question{closed})
	}); err != nil {
		return aggregation.Snapshot{}, err
	}
	q.TallyVersion = closed.TallyVersion
	w.closeTally(q.ID)
	w.publish(false)
	return w.tallies[q.ID].Snapshot(), nil
}

func (w *SessionWorker) closeTally(id domain.QuestionID) {
	q := w.questions[id]
	q.Closed = true
	if _, changed := w.tallies[id].Close(); changed {
		w.broadcastTally(q)
	}
}

// recompute rebuilds a tally from the durable records, above c.Floor. Only the new
// version floor is written back. When the store cannot be read the in-memory
// records are used instead.
func (w *SessionWorker) recompute(ctx context.Context, c domain.RecomputeCommand) (aggregation.Snapshot, error) {
	if c.AdminID != "" {
		if err := w.authorize(domain.AdminCommand{SessionID: c.SessionID, AdminID: c.AdminID}); err != nil {
			return aggregation.Snapshot{}, err
		}
	}
	q, ok := w.questions[c.QuestionID]
	if !ok {
		return aggregation.Snapshot{}, errors.New(errors.CodeQuestionNotFound, "question %s not found", c.QuestionID)
	}
	records := w.responses.Records(q.ID)
	storeCtx, cancel := context.WithTimeout(ctx, w.cfg.StoreTimeout)
	defer cancel()
	if stored, err := w.deps.Store.ListResponses(storeCtx, w.session.ID); err == nil {
		records = lo.Filter(stored, func(r domain.ResponseRecord, _ int) bool { return r.QuestionID == q.ID })
	} else {
		w.log.Warn("recompute falls back to memory", "question_id", q.ID, "error", err)
	}
	snap := w.tallies[q.ID].Resume(records, c.Floor)
	floor := *q
	floor.TallyVersion = snap.Version
	if err := w.deps.Store.SaveQuestions(storeCtx, []domain.Question{floor}); err != nil {
		w.log.Warn("tally version floor not saved", "question_id", q.ID, "error", err)
	} else {
		q.TallyVersion = snap.Version
	}
	w.broadcastTally(q)
	w.log.Info("tally recomputed", "question_id", q.ID, "version", snap.Version, "responses", snap.Responses)
	return snap, nil
}

// sweep demotes silent participants and ends sessions that outlived their maximum duration.
func (w *SessionWorker) sweep(ctx context.Context, now time.Time) {
	changed := false
	for _, id := range w.roster.Stale(now.Add(-w.cfg.PresenceTimeout)) {
		if p, ok := w.roster.SetOnline(id, false, now); ok {
			w.broadcastPresence(p)
			changed = true
		}
	}
	if changed {
		w.publish(true)
	}

	if w.cfg.MaxDuration <= 0 || w.session.State == domain.StateEnded {
		return
	}
	since := w.session.CreatedAt
	if !w.session.StartedAt.IsZero() {
		since = w.session.StartedAt
	}
	if now.Sub(since) < w.cfg.MaxDuration {
		return
	}
	owner := domain.AdminCommand{SessionID: w.session.ID, AdminID: w.session.OwnerID}
	if _, err := w.end(ctx, owner, now); err != nil {
		w.log.Error("cannot end expired session", "error", err)
		return
	}
	w.log.Info("session reached its maximum duration", "max_duration", w.cfg.MaxDuration)
}

func (w *SessionWorker) authorize(admin domain.AdminCommand) error {
	if admin.AdminID != w.session.OwnerID {
		return errors.New(errors.CodeForbidden, "admin %s does not own session %s", admin.AdminID, w.session.ID)
	}
	return nil
}

// save runs a durable write bounded by the store timeout and classifies its failure.
func (w *SessionWorker) save(ctx context.Context, write func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, w.cfg.StoreTimeout)
	defer cancel()
	if err := write(ctx); err != nil {
		w.log.Error("durable write failed", "error", err)
		return errors.Durable(err)
	}
	return nil
}

func (w *SessionWorker) maxParticipants() int {
	if w.session.MaxParticipants > 0 {
		return w.session.MaxParticipants
	}
	return w.cfg.DefaultMaxParticipants
}

func (w *SessionWorker) firstQuestion(sub domain.SubmoduleID) domain.QuestionID {
	if qs := w.agenda.Submodule(sub); len(qs) > 0 {
		return qs[0].ID
	}
	return ""
}

func (w *SessionWorker) broadcastPresence(p domain.Participant) {
	w.presenceVersion++
	w.broadcast(event.PresenceChanged{
		SessionID:     w.session.ID,
		ParticipantID: p.ID,
		DisplayName:   p.DisplayName,
		Online:        p.Online,
		OnlineCount:   w.roster.OnlineCount(),
		Version:       w.presenceVersion,
		At:            w.deps.Clock(),
	})
}

func (w *SessionWorker) broadcastTally(q *domain.Question) {
	w.broadcast(event.TallyUpdated{
		SessionID:   w.session.ID,
		Visibility:  q.Visibility,
		Tally:       w.tallies[q.ID].Snapshot(),
		At:          w.deps.Clock(),
		Respondents: w.responses.Respondents(q.ID),
	})
}

// broadcast pushes to subscribers, then best effort to permanent sinks.
func (w *SessionWorker) broadcast(e event.DomainEvent) {
	for _, id := range w.deps.Registry.Publish(e) {
		w.log.Debug("subscriber dropped", "subscriber_id", id, "event", e.Kind())
		w.telemetry(event.SubscriberDroppedType, event.SubscriberDropped{SessionID: w.session.ID, SubscriberID: id})
	}
	if w.deps.Events == nil {
		return
	}
	select {
	case w.deps.Events <- event.Wrap(e, w.deps.Clock()):
	default:
		w.log.Debug("fanout event lost", "event", e.Kind())
	}
}

func (w *SessionWorker) telemetry(t event.Type, payload any) {
	if w.deps.Telemetry == nil {
		return
	}
	select {
	case w.deps.Telemetry <- event.Event{Type: t, CreatedAt: w.deps.Clock(), Payload: payload}:
	default:
	}
}

// publish stores a fresh View. The participant list is rebuilt only when roster is true.
func (w *SessionWorker) publish(roster bool) {
	prev := w.view.Load()
	v := &View{
		Session:     w.session.Clone(),
		Agenda:      make([]domain.Question, 0, len(w.questions)),
		Respondents: make(map[domain.QuestionID]domain.Respondents, len(w.questions)),
		Alerts:      w.alerts.Recent(),
		tallies:     w.tallies,
	}
	for _, q := range w.agenda.Questions() {
		v.Agenda = append(v.Agenda, *w.questions[q.ID])
		v.Respondents[q.ID] = w.responses.Respondents(q.ID)
	}
	if roster || prev == nil {
		all := w.roster.All()
		v.Participants = lo.SliceToMap(all, func(p domain.Participant) (domain.ParticipantID, domain.Participant) {
			return p.ID, p
		})
		v.Online = w.roster.Online()
	} else {
		v.Participants = prev.Participants
		v.Online = prev.Online
	}
	w.view.Store(v)
}

type screenFunc func(text string) []string

func (f screenFunc) Screen(text string) []string { return f(text) }

// lang tags free text with its detected language.
func lang(p domain.Payload) string {
	switch v := p.(type) {
	case domain.TextAnswer:
		return moderation.DetectLang(v.Text)
	case domain.WordCloudEntry:
		return moderation.DetectLang(v.Text)
	}
	return ""
}

func (w *SessionWorker) String() string {
	return fmt.Sprintf("session %s (%s)", w.session.ID, w.session.State)
}
