//go:generate go run go.uber.org/mock/mockgen -source=session_service.go -destination=mocks/mock_session_service.go -package=mocks

package services

import (
	"context"

	"session-lab/aggregation"
	"session-lab/contract"
	"session-lab/domain"
	"session-lab/runtime"
	"session-lab/runtime/workers"
)

type ISessionService interface {
	CreateSession(ctx context.Context, cmd domain.CreateSessionCommand) (domain.Session, error)
	Join(ctx context.Context, cmd domain.JoinCommand) (workers.JoinResult, error)
	Heartbeat(ctx context.Context, sessionID domain.SessionID, participantID domain.ParticipantID) (domain.Participant, error)
	Leave(ctx context.Context, sessionID domain.SessionID, participantID domain.ParticipantID) (domain.Participant, error)
	Submit(ctx context.Context, cmd domain.SubmitCommand) (workers.SubmitResult, error)
	RaiseAlert(ctx context.Context, cmd domain.RaiseAlertCommand) (workers.AlertResult, error)
	Start(ctx context.Context, cmd domain.AdminCommand) (domain.Session, error)
	Pause(ctx context.Context, cmd domain.AdminCommand) (domain.Session, error)
	Resume(ctx context.Context, cmd domain.AdminCommand) (domain.Session, error)
	End(ctx context.Context, cmd domain.AdminCommand) (domain.Session, error)
	AdvanceTo(ctx context.Context, cmd domain.AdvanceCommand) (domain.Session, error)
	UnlockModule(ctx context.Context, cmd domain.UnlockModuleCommand) (domain.Session, error)
	CloseQuestion(ctx context.Context, cmd domain.CloseQuestionCommand) (aggregation.Snapshot, error)
	Recompute(ctx context.Context, cmd domain.RecomputeCommand) (aggregation.Snapshot, error)
	RecentAlerts(ctx context.Context, cmd domain.AdminCommand) ([]domain.Alert, error)
	CheckOwner(ctx context.Context, cmd domain.AdminCommand) error
	Resync(ctx context.Context, q runtime.ResyncQuery) (runtime.ResyncResult, error)
	ListOnline(ctx context.Context, sessionID domain.SessionID) ([]domain.Participant, error)
	Subscribe(ctx context.Context, sessionID domain.SessionID, sub contract.Subscriber) error
	Unsubscribe(sessionID domain.SessionID, sub contract.Subscriber)
}

// SessionService exposes the orchestrator to the transport layer.
type SessionService struct {
	orchestrator *runtime.Orchestrator
}

var _ ISessionService = (*SessionService)(nil)

func NewSessionService(o *runtime.Orchestrator) *SessionService {
	return &SessionService{orchestrator: o}
}

func (s *SessionService) CreateSession(ctx context.Context, cmd domain.CreateSessionCommand) (domain.Session, error) {
	return s.orchestrator.CreateSession(ctx, cmd)
}

func (s *SessionService) Join(ctx context.Context, cmd domain.JoinCommand) (workers.JoinResult, error) {
	return s.orchestrator.Join(ctx, cmd)
}

func (s *SessionService) Heartbeat(ctx context.Context, sessionID domain.SessionID, participantID domain.ParticipantID) (domain.Participant, error) {
	return s.orchestrator.Heartbeat(ctx, sessionID, participantID)
}

func (s *SessionService) Leave(ctx context.Context, sessionID domain.SessionID, participantID domain.ParticipantID) (domain.Participant, error) {
	return s.orchestrator.Leave(ctx, sessionID, participantID)
}

func (s *SessionService) Submit(ctx context.Context, cmd domain.SubmitCommand) (workers.SubmitResult, error) {
	return s.orchestrator.Submit(ctx, cmd)
}

func (s *SessionService) RaiseAlert(ctx context.Context, cmd domain.RaiseAlertCommand) (workers.AlertResult, error) {
	return s.orchestrator.RaiseAlert(ctx, cmd)
}

func (s *SessionService) Start(ctx context.Context, cmd domain.AdminCommand) (domain.Session, error) {
	return s.orchestrator.StartSession(ctx, cmd)
}

func (s *SessionService) Pause(ctx context.Context, cmd domain.AdminCommand) (domain.Session, error) {
	return s.orchestrator.Pause(ctx, cmd)
}

func (s *SessionService) Resume(ctx context.Context, cmd domain.AdminCommand) (domain.Session, error) {
	return s.orchestrator.Resume(ctx, cmd)
}

func (s *SessionService) End(ctx context.Context, cmd domain.AdminCommand) (domain.Session, error) {
	return s.orchestrator.End(ctx, cmd)
}

func (s *SessionService) AdvanceTo(ctx context.Context, cmd domain.AdvanceCommand) (domain.Session, error) {
	return s.orchestrator.AdvanceTo(ctx, cmd)
}

func (s *SessionService) UnlockModule(ctx context.Context, cmd domain.UnlockModuleCommand) (domain.Session, error) {
	return s.orchestrator.UnlockModule(ctx, cmd)
}

func (s *SessionService) CloseQuestion(ctx context.Context, cmd domain.CloseQuestionCommand) (aggregation.Snapshot, error) {
	return s.orchestrator.CloseQuestion(ctx, cmd)
}

func (s *SessionService) Recompute(ctx context.Context, cmd domain.RecomputeCommand) (aggregation.Snapshot, error) {
	return s.orchestrator.Recompute(ctx, cmd)
}

func (s *SessionService) RecentAlerts(ctx context.Context, cmd domain.AdminCommand) ([]domain.Alert, error) {
	return s.orchestrator.RecentAlerts(ctx, cmd)
}

func (s *SessionService) CheckOwner(ctx context.Context, cmd domain.AdminCommand) error {
	return s.orchestrator.CheckOwner(ctx, cmd)
}

func (s *SessionService) Resync(ctx context.Context, q runtime.ResyncQuery) (runtime.ResyncResult, error) {
	return s.orchestrator.Resync(ctx, q)
}

func (s *SessionService) ListOnline(ctx context.Context, sessionID domain.SessionID) ([]domain.Participant, error) {
	return s.orchestrator.ListOnline(ctx, sessionID)
}

func (s *SessionService) Subscribe(ctx context.Context, sessionID domain.SessionID, sub contract.Subscriber) error {
	return s.orchestrator.Subscribe(ctx, sessionID, sub)
}

func (s *SessionService) Unsubscribe(sessionID domain.SessionID, sub contract.Subscriber) {
	s.orchestrator.Unsubscribe(sessionID, sub)
}
