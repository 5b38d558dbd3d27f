package server_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"session-lab/aggregation"
	"session-lab/auth"
	"session-lab/contract"
	"session-lab/domain"
	"session-lab/domain/event"
	"session-lab/errors"
	"session-lab/grpc/api"
	"session-lab/grpc/server"
	"session-lab/runtime"
	"session-lab/runtime/workers"
	"session-lab/services"
	"session-lab/services/mocks"
)

const (
	adminID  = "trainer"
	password = "Str0ng-Passw0rd!"
)

type harness struct {
	client   *api.SessionServiceClient
	sessions *mocks.MockISessionService
	tokens   *auth.TokenManager
}

func setup(t *testing.T) harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	sessions := mocks.NewMockISessionService(ctrl)

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	authService := services.NewAuthService(services.AdminAccount{ID: adminID, PasswordHash: hash}, tokens)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	interceptor := auth.NewInterceptor(tokens, server.Policy)
	srv := grpc.NewServer(
		grpc.UnaryInterceptor(interceptor.Unary()),
		grpc.StreamInterceptor(interceptor.Stream()),
	)
	api.RegisterSessionServiceServer(srv, server.NewSessionServer(log, sessions, authService, 8))

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return harness{client: api.NewSessionServiceClient(conn), sessions: sessions, tokens: tokens}
}

func bearer(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

func (h harness) asAdmin(t *testing.T, ctx context.Context) context.Context {
	token, err := h.tokens.AdminToken(adminID)
	require.NoError(t, err)
	return bearer(ctx, token)
}

func (h harness) asParticipant(t *testing.T, ctx context.Context, sid domain.SessionID, pid domain.ParticipantID) context.Context {
	token, err := h.tokens.ParticipantToken(sid, pid)
	require.NoError(t, err)
	return bearer(ctx, token)
}

func TestAdminLogin(t *testing.T) {
	req := require.New(t)
	h := setup(t)
	ctx := context.Background()

	// Given the configured credentials
	// When the admin logs in
	res, err := h.client.AdminLogin(ctx, &api.AdminLoginRequest{AdminID: adminID, Password: password})

	// Then a token for that admin is issued
	req.NoError(err)
	claims, err := h.tokens.ValidateToken(res.Token)
	req.NoError(err)
	req.Equal(domain.RoleAdmin, claims.Role)
	req.Equal(adminID, claims.Subject)

	// And a wrong password is refused as unauthenticated
	_, err = h.client.AdminLogin(ctx, &api.AdminLoginRequest{AdminID: adminID, Password: "not-it"})
	req.Equal(codes.Unauthenticated, status.Code(err))
}

func TestAdminRPCsRequireAdminToken(t *testing.T) {
	req := require.New(t)
	h := setup(t)
	ctx := context.Background()

	// Given no token at all
	_, err := h.client.Start(ctx, &api.SessionRequest{SessionID: "s1"})
	req.Equal(codes.Unauthenticated, status.Code(err))

	// Given a participant token
	_, err = h.client.Start(h.asParticipant(t, ctx, "s1", "p1"), &api.SessionRequest{SessionID: "s1"})
	req.Equal(codes.PermissionDenied, status.Code(err))
}

func TestStartForwardsAdminIdentity(t *testing.T) {
	req := require.New(t)
	h := setup(t)
	ctx := context.Background()

	// Given the service accepts the start of s1
	h.sessions.EXPECT().
		Start(gomock.Any(), domain.AdminCommand{SessionID: "s1", AdminID: adminID}).
		Return(domain.Session{ID: "s1", Code: "123456", OwnerID: adminID, State: domain.StateActive, Version: 2}, nil)

	// When the admin starts it
	res, err := h.client.Start(h.asAdmin(t, ctx), &api.SessionRequest{SessionID: "s1"})

	// Then the new state is returned
	req.NoError(err)
	req.Equal(domain.StateActive, res.Session.State)
	req.EqualValues(2, res.Session.Version)
}

func TestDomainErrorsKeepTheirCode(t *testing.T) {
	req := require.New(t)
	h := setup(t)
	ctx := context.Background()

	// Given a session ended before the submission arrives
	h.sessions.EXPECT().
		Submit(gomock.Any(), gomock.Any()).
		Return(workers.SubmitResult{}, errors.New(errors.CodeSessionEnded, "session %s has ended", "s1"))

	// When the participant submits
	_, err := h.client.Submit(h.asParticipant(t, ctx, "s1", "p1"), &api.SubmitRequest{
		QuestionID: "q1",
		Payload:    domain.ToRecord(domain.SingleChoiceAnswer{Option: 0}),
	})

	// Then the domain code survives the trip
	req.Equal(codes.FailedPrecondition, status.Code(err))
	req.Equal(errors.CodeSessionEnded, errors.FromGRPCError(err))
}

func TestJoinIssuesParticipantToken(t *testing.T) {
	req := require.New(t)
	h := setup(t)
	ctx := context.Background()

	// Given a live session with code 123456
	h.sessions.EXPECT().
		Join(gomock.Any(), domain.JoinCommand{Code: "123456", DisplayName: "Ada"}).
		Return(workers.JoinResult{
			Participant: domain.Participant{ID: "p1", DisplayName: "Ada", Online: true},
			Session:     domain.Session{ID: "s1", Code: "123456", State: domain.StateActive},
			OnlineCount: 1,
		}, nil)

	// When a participant joins anonymously
	res, err := h.client.Join(ctx, &api.JoinRequest{Code: "123456", DisplayName: "Ada"})

	// Then the token binds the participant to the session
	req.NoError(err)
	claims, err := h.tokens.ValidateToken(res.Token)
	req.NoError(err)
	req.Equal(domain.RoleParticipant, claims.Role)
	req.Equal(domain.SessionID("s1"), claims.SessionID)
	req.Equal(domain.ParticipantID("p1"), claims.ParticipantID)
	req.Equal(1, res.OnlineCount)
}

func TestSubmitUsesIdentityFromToken(t *testing.T) {
	req := require.New(t)
	h := setup(t)
	ctx := context.Background()

	// Given the token of p1 in s1
	h.sessions.EXPECT().
		Submit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd domain.SubmitCommand) (workers.SubmitResult, error) {
			req.Equal(domain.SessionID("s1"), cmd.SessionID)
			req.Equal(domain.ParticipantID("p1"), cmd.ParticipantID)
			return workers.SubmitResult{
				Record: domain.ResponseRecord{ID: "r1"},
				Tally:  aggregation.Snapshot{QuestionID: "q1", Responses: 1, Version: 1},
			}, nil
		})

	// When p1 submits
	res, err := h.client.Submit(h.asParticipant(t, ctx, "s1", "p1"), &api.SubmitRequest{
		QuestionID: "q1",
		Payload:    domain.ToRecord(domain.SingleChoiceAnswer{Option: 1}),
	})

	// Then the result carries the live tally
	req.NoError(err)
	req.Equal("r1", res.ResponseID)
	req.Equal(1, res.Tally.Responses)
}

func TestResyncChecksAdminOwnership(t *testing.T) {
	req := require.New(t)
	h := setup(t)
	ctx := context.Background()

	// Given s1 belongs to another admin
	h.sessions.EXPECT().
		CheckOwner(gomock.Any(), domain.AdminCommand{SessionID: "s1", AdminID: adminID}).
		Return(errors.New(errors.CodeForbidden, "not the owner"))

	// When the admin resyncs it
	_, err := h.client.Resync(h.asAdmin(t, ctx), &api.ResyncRequest{SessionID: "s1"})

	// Then it is refused
	req.Equal(codes.PermissionDenied, status.Code(err))
	req.Equal(errors.CodeForbidden, errors.FromGRPCError(err))
}

func TestSubscribeStreamsUntilSessionEnds(t *testing.T) {
	req := require.New(t)
	h := setup(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now()
	// Given the service pushes a tally then the end of the session
	h.sessions.EXPECT().
		Subscribe(gomock.Any(), domain.SessionID("s1"), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.SessionID, sub contract.Subscriber) error {
			req.Equal("participant-p1", sub.ID())
			sub.Deliver(event.TallyUpdated{SessionID: "s1", Tally: aggregation.Snapshot{QuestionID: "q1", Version: 1, Responses: 1}, At: now})
			sub.Deliver(event.NewSessionStateChanged(domain.Session{ID: "s1", State: domain.StateEnded, Version: 9}, now))
			sub.Close()
			return nil
		})
	h.sessions.EXPECT().Unsubscribe(domain.SessionID("s1"), gomock.Any()).AnyTimes()

	// When p1 subscribes naming another session
	stream, err := h.client.Subscribe(h.asParticipant(t, ctx, "s1", "p1"), &api.SessionRequest{SessionID: "other"})
	req.NoError(err)

	// Then it is bound to its own session and receives both events before a clean end
	first, err := stream.Recv()
	req.NoError(err)
	req.Equal(event.TallyUpdatedType, first.Type)
	req.Equal(domain.QuestionID("q1"), first.Tally.Tally.QuestionID)

	second, err := stream.Recv()
	req.NoError(err)
	req.Equal(domain.StateEnded, second.StateChanged.State)

	_, err = stream.Recv()
	req.ErrorIs(err, io.EOF)
}

func TestSubscribeReconnectKeepsNewStream(t *testing.T) {
	req := require.New(t)
	h := setup(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Given the service attaches streams to a real registry
	registry := runtime.NewRegistry()
	attached := make(chan struct{}, 2)
	h.sessions.EXPECT().
		Subscribe(gomock.Any(), domain.SessionID("s1"), gomock.Any()).
		DoAndReturn(func(_ context.Context, id domain.SessionID, sub contract.Subscriber) error {
			registry.Subscribe(id, sub)
			attached <- struct{}{}
			return nil
		}).Times(2)
	h.sessions.EXPECT().
		Unsubscribe(domain.SessionID("s1"), gomock.Any()).
		Do(func(id domain.SessionID, sub contract.Subscriber) { registry.Unsubscribe(id, sub) }).
		AnyTimes()

	// When p1 connects twice with the same token
	first, err := h.client.Subscribe(h.asParticipant(t, ctx, "s1", "p1"), &api.SessionRequest{SessionID: "s1"})
	req.NoError(err)
	<-attached
	second, err := h.client.Subscribe(h.asParticipant(t, ctx, "s1", "p1"), &api.SessionRequest{SessionID: "s1"})
	req.NoError(err)
	<-attached

	// Then the first stream is replaced and its handler has left
	_, err = first.Recv()
	req.Equal(codes.Aborted, status.Code(err))

	// And the second stream still receives the session events
	req.Nil(registry.Publish(event.PresenceChanged{SessionID: "s1", ParticipantID: "p2", Online: true, OnlineCount: 2, Version: 3}))
	msg, err := second.Recv()
	req.NoError(err)
	req.Equal(event.PresenceChangedType, msg.Type)
	req.Equal(domain.ParticipantID("p2"), msg.Presence.ParticipantID)
}

func TestSubscribeDroppedSlowClientMustResync(t *testing.T) {
	req := require.New(t)
	h := setup(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Given the subscriber is closed without the session ending
	h.sessions.EXPECT().CheckOwner(gomock.Any(), gomock.Any()).Return(nil)
	h.sessions.EXPECT().
		Subscribe(gomock.Any(), domain.SessionID("s1"), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.SessionID, sub contract.Subscriber) error {
			sub.Close()
			return nil
		})
	h.sessions.EXPECT().Unsubscribe(domain.SessionID("s1"), gomock.Any()).AnyTimes()

	// When the admin reads the stream
	stream, err := h.client.Subscribe(h.asAdmin(t, ctx), &api.SessionRequest{SessionID: "s1"})
	req.NoError(err)
	_, err = stream.Recv()

	// Then the stream is aborted
	req.Equal(codes.Aborted, status.Code(err))
}
