package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"session-lab/auth"
	"session-lab/domain"
	"session-lab/domain/event"
	"session-lab/errors"
	"session-lab/grpc/api"
	"session-lab/runtime"
	"session-lab/services"
	"session-lab/sink"
)

// Policy lists who may call each RPC. Anything missing is refused by the interceptor.
var Policy = map[string]auth.Access{
	api.SessionService_AdminLogin_FullMethodName:    auth.Public,
	api.SessionService_Join_FullMethodName:          auth.Public,
	api.SessionService_CreateSession_FullMethodName: auth.AdminOnly,
	api.SessionService_Start_FullMethodName:         auth.AdminOnly,
	api.SessionService_Pause_FullMethodName:         auth.AdminOnly,
	api.SessionService_Resume_FullMethodName:        auth.AdminOnly,
	api.SessionService_End_FullMethodName:           auth.AdminOnly,
	api.SessionService_AdvanceTo_FullMethodName:     auth.AdminOnly,
	api.SessionService_UnlockModule_FullMethodName:  auth.AdminOnly,
	api.SessionService_CloseQuestion_FullMethodName: auth.AdminOnly,
	api.SessionService_Recompute_FullMethodName:     auth.AdminOnly,
	api.SessionService_RecentAlerts_FullMethodName:  auth.AdminOnly,
	api.SessionService_Heartbeat_FullMethodName:     auth.ParticipantOnly,
	api.SessionService_Leave_FullMethodName:         auth.ParticipantOnly,
	api.SessionService_Submit_FullMethodName:        auth.ParticipantOnly,
	api.SessionService_RaiseAlert_FullMethodName:    auth.ParticipantOnly,
	api.SessionService_Resync_FullMethodName:        auth.AnyRole,
	api.SessionService_ListOnline_FullMethodName:    auth.AnyRole,
	api.SessionService_Subscribe_FullMethodName:     auth.AnyRole,
}

type SessionServer struct {
	sessions             services.ISessionService
	auth                 services.IAuthService
	connectionBufferSize int
	log                  *slog.Logger
}

var _ api.SessionServiceServer = (*SessionServer)(nil)

func NewSessionServer(log *slog.Logger, sessions services.ISessionService, authService services.IAuthService, connectionBufferSize int) *SessionServer {
	return &SessionServer{sessions: sessions, auth: authService, connectionBufferSize: connectionBufferSize, log: log}
}

func identity(ctx context.Context) (auth.Identity, error) {
	id, ok := auth.IdentityFrom(ctx)
	if !ok {
		return auth.Identity{}, status.Error(codes.Unauthenticated, "caller is not authenticated")
	}
	return id, nil
}

func (s *SessionServer) adminCommand(ctx context.Context, sessionID domain.SessionID) (domain.AdminCommand, error) {
	id, err := identity(ctx)
	if err != nil {
		return domain.AdminCommand{}, err
	}
	return domain.AdminCommand{SessionID: sessionID, AdminID: id.AdminID}, nil
}

func sessionResponse(session domain.Session, err error) (*api.SessionResponse, error) {
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &api.SessionResponse{Session: api.FromSession(session)}, nil
}

func (s *SessionServer) CreateSession(ctx context.Context, in *api.CreateSessionRequest) (*api.SessionResponse, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	return sessionResponse(s.sessions.CreateSession(ctx, domain.CreateSessionCommand{
		AdminID:         id.AdminID,
		ModuleID:        in.ModuleID,
		Code:            in.Code,
		MaxParticipants: in.MaxParticipants,
		Questions:       in.Questions,
	}))
}

func (s *SessionServer) Start(ctx context.Context, in *api.SessionRequest) (*api.SessionResponse, error) {
	cmd, err := s.adminCommand(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	return sessionResponse(s.sessions.Start(ctx, cmd))
}

func (s *SessionServer) Pause(ctx context.Context, in *api.SessionRequest) (*api.SessionResponse, error) {
	cmd, err := s.adminCommand(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	return sessionResponse(s.sessions.Pause(ctx, cmd))
}

func (s *SessionServer) Resume(ctx context.Context, in *api.SessionRequest) (*api.SessionResponse, error) {
	cmd, err := s.adminCommand(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	return sessionResponse(s.sessions.Resume(ctx, cmd))
}

func (s *SessionServer) End(ctx context.Context, in *api.SessionRequest) (*api.SessionResponse, error) {
	cmd, err := s.adminCommand(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	return sessionResponse(s.sessions.End(ctx, cmd))
}

func (s *SessionServer) AdvanceTo(ctx context.Context, in *api.AdvanceRequest) (*api.SessionResponse, error) {
	cmd, err := s.adminCommand(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	return sessionResponse(s.sessions.AdvanceTo(ctx, domain.AdvanceCommand{AdminCommand: cmd, Submodule: in.Submodule}))
}

func (s *SessionServer) UnlockModule(ctx context.Context, in *api.UnlockModuleRequest) (*api.SessionResponse, error) {
	cmd, err := s.adminCommand(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	return sessionResponse(s.sessions.UnlockModule(ctx, domain.UnlockModuleCommand{AdminCommand: cmd, ModuleID: in.ModuleID}))
}

func (s *SessionServer) CloseQuestion(ctx context.Context, in *api.QuestionRequest) (*api.TallyResponse, error) {
	cmd, err := s.adminCommand(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	snap, err := s.sessions.CloseQuestion(ctx, domain.CloseQuestionCommand{AdminCommand: cmd, QuestionID: in.QuestionID})
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &api.TallyResponse{Tally: snap}, nil
}

func (s *SessionServer) Recompute(ctx context.Context, in *api.QuestionRequest) (*api.TallyResponse, error) {
	cmd, err := s.adminCommand(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	snap, err := s.sessions.Recompute(ctx, domain.RecomputeCommand{SessionID: cmd.SessionID, AdminID: cmd.AdminID, QuestionID: in.QuestionID})
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &api.TallyResponse{Tally: snap}, nil
}

func (s *SessionServer) RecentAlerts(ctx context.Context, in *api.SessionRequest) (*api.AlertsResponse, error) {
	cmd, err := s.adminCommand(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	alerts, err := s.sessions.RecentAlerts(ctx, cmd)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &api.AlertsResponse{Alerts: alerts}, nil
}

// Join registers the participant and issues the token bound to its identity.
func (s *SessionServer) Join(ctx context.Context, in *api.JoinRequest) (*api.JoinResponse, error) {
	res, err := s.sessions.Join(ctx, domain.JoinCommand{Code: in.Code, DisplayName: in.DisplayName, ParticipantID: in.ParticipantID})
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	token, err := s.auth.ParticipantToken(res.Session.ID, res.Participant.ID)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &api.JoinResponse{
		Token:           token.String(),
		Participant:     api.FromParticipant(res.Participant),
		Session:         api.FromSession(res.Session),
		Rejoined:        res.Rejoined,
		CapacityWarning: res.CapacityWarning,
		OnlineCount:     res.OnlineCount,
	}, nil
}

func (s *SessionServer) Heartbeat(ctx context.Context, _ *api.Empty) (*api.PresenceResponse, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.sessions.Heartbeat(ctx, id.SessionID, id.ParticipantID)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &api.PresenceResponse{Participant: api.FromParticipant(p)}, nil
}

func (s *SessionServer) Leave(ctx context.Context, _ *api.Empty) (*api.PresenceResponse, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.sessions.Leave(ctx, id.SessionID, id.ParticipantID)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &api.PresenceResponse{Participant: api.FromParticipant(p)}, nil
}

func (s *SessionServer) Submit(ctx context.Context, in *api.SubmitRequest) (*api.SubmitResponse, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.sessions.Submit(ctx, domain.SubmitCommand{
		SessionID:     id.SessionID,
		QuestionID:    in.QuestionID,
		ParticipantID: id.ParticipantID,
		Payload:       in.Payload,
	})
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &api.SubmitResponse{ResponseID: res.Record.ID, Replaced: res.Replaced, Tally: res.Tally}, nil
}

func (s *SessionServer) RaiseAlert(ctx context.Context, in *api.RaiseAlertRequest) (*api.RaiseAlertResponse, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.sessions.RaiseAlert(ctx, domain.RaiseAlertCommand{SessionID: id.SessionID, ParticipantID: id.ParticipantID, Type: in.Type})
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &api.RaiseAlertResponse{Delivered: res.Delivered}, nil
}

// target returns the session a caller acts on: participants are bound to the
// session of their token, admins name it and must own it.
func target(id auth.Identity, requested domain.SessionID) domain.SessionID {
	if id.Role == domain.RoleParticipant {
		return id.SessionID
	}
	return requested
}

func (s *SessionServer) ownerCheck(ctx context.Context, id auth.Identity, sessionID domain.SessionID) error {
	if id.Role != domain.RoleAdmin {
		return nil
	}
	return s.sessions.CheckOwner(ctx, domain.AdminCommand{SessionID: sessionID, AdminID: id.AdminID})
}

func (s *SessionServer) Resync(ctx context.Context, in *api.ResyncRequest) (*api.ResyncResponse, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	sessionID := target(id, in.SessionID)
	if err := s.ownerCheck(ctx, id, sessionID); err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	res, err := s.sessions.Resync(ctx, runtime.ResyncQuery{
		SessionID:     sessionID,
		ParticipantID: id.ParticipantID,
		Role:          id.Role,
		QuestionID:    in.QuestionID,
		KnownVersion:  in.KnownVersion,
	})
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &api.ResyncResponse{
		Session:             api.FromSession(res.Session),
		Question:            res.Question,
		Tally:               res.Tally,
		HasExistingResponse: res.HasExistingResponse,
		OnlineCount:         res.OnlineCount,
		Alerts:              res.Alerts,
	}, nil
}

func (s *SessionServer) ListOnline(ctx context.Context, in *api.SessionRequest) (*api.ListOnlineResponse, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	online, err := s.sessions.ListOnline(ctx, target(id, in.SessionID))
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &api.ListOnlineResponse{Participants: api.FromParticipants(online)}, nil
}

// Subscribe streams the events of one session until the client leaves or the session ends.
// A client dropped for being too slow gets Aborted and is expected to resync.
func (s *SessionServer) Subscribe(in *api.SessionRequest, stream api.SessionService_SubscribeServer) error {
	ctx := stream.Context()
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	sessionID := target(id, in.SessionID)
	if err := s.ownerCheck(ctx, id, sessionID); err != nil {
		return errors.MapToGRPCError(err)
	}

	subscriberID := "admin-" + uuid.NewString()
	if id.Role == domain.RoleParticipant {
		// A reconnecting participant replaces its previous stream
		subscriberID = "participant-" + string(id.ParticipantID)
	}
	sub := sink.NewChannelSubscriber(subscriberID, id.Role, id.ParticipantID, s.connectionBufferSize)
	if err := s.sessions.Subscribe(ctx, sessionID, sub); err != nil {
		return errors.MapToGRPCError(err)
	}
	defer s.sessions.Unsubscribe(sessionID, sub)

	ended := false
	send := func(e event.DomainEvent) error {
		msg, ok := api.ToEventMessage(e)
		if !ok {
			return nil
		}
		if msg.StateChanged != nil && msg.StateChanged.State == domain.StateEnded {
			ended = true
		}
		if err := stream.Send(&msg); err != nil {
			s.log.Error("failed to push event to stream",
				"subscriber_id", subscriberID,
				"session_id", sessionID,
				"error", err)
			return err
		}
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			s.log.Debug(fmt.Sprintf("Client %s disconnected from %s", subscriberID, sessionID))
			return nil
		case e := <-sub.Events():
			if err := send(e); err != nil {
				return err
			}
		case <-sub.Done():
			if err := drain(sub.Events(), send); err != nil {
				return err
			}
			if ended {
				return nil
			}
			return status.Error(codes.Aborted, "stream closed, resync required")
		}
	}
}

// drain sends what was buffered before the stream was closed, such as the final state change.
func drain(events <-chan event.DomainEvent, send func(event.DomainEvent) error) error {
	for {
		select {
		case e := <-events:
			if err := send(e); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}
