package client

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"session-lab/domain"
	"session-lab/domain/event"
	"session-lab/grpc/api"
	"session-lab/projection"
)

// SessionClient wraps the generated-style API with token handling and the
// reconnect-then-resync loop every client needs.
type SessionClient struct {
	API *api.SessionServiceClient

	log   *slog.Logger
	mu    sync.RWMutex
	token string
	join  *api.JoinRequest
}

// Dial opens a plaintext connection to target.
func Dial(log *slog.Logger, target string, opts ...grpc.DialOption) (*SessionClient, *grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, nil, err
	}
	return New(log, conn), conn, nil
}

func New(log *slog.Logger, conn grpc.ClientConnInterface) *SessionClient {
	return &SessionClient{API: api.NewSessionServiceClient(conn), log: log}
}

// Auth decorates ctx with the bearer token obtained by Login or Join.
func (c *SessionClient) Auth(ctx context.Context) context.Context {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
}

func (c *SessionClient) setToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *SessionClient) Login(ctx context.Context, adminID, password string) error {
	res, err := c.API.AdminLogin(ctx, &api.AdminLoginRequest{AdminID: adminID, Password: password})
	if err != nil {
		return err
	}
	c.setToken(res.Token)
	return nil
}

// Join enters a session. The participant id is remembered so a later Rejoin keeps the same identity.
func (c *SessionClient) Join(ctx context.Context, code, displayName string) (*api.JoinResponse, error) {
	req := &api.JoinRequest{Code: code, DisplayName: displayName}
	res, err := c.API.Join(ctx, req)
	if err != nil {
		return nil, err
	}
	req.ParticipantID = res.Participant.ID
	c.mu.Lock()
	c.token, c.join = res.Token, req
	c.mu.Unlock()
	return res, nil
}

// Rejoin presents the previously issued identity again.
func (c *SessionClient) Rejoin(ctx context.Context) (*api.JoinResponse, error) {
	c.mu.RLock()
	req := c.join
	c.mu.RUnlock()
	if req == nil {
		return nil, status.Error(codes.FailedPrecondition, "never joined")
	}
	res, err := c.API.Join(ctx, req)
	if err != nil {
		return nil, err
	}
	c.setToken(res.Token)
	return res, nil
}

func (c *SessionClient) Submit(ctx context.Context, question domain.QuestionID, payload domain.Payload) (*api.SubmitResponse, error) {
	return c.API.Submit(c.Auth(ctx), &api.SubmitRequest{QuestionID: question, Payload: domain.ToRecord(payload)})
}

func (c *SessionClient) Resync(ctx context.Context, sessionID domain.SessionID, question domain.QuestionID, known uint64) (*api.ResyncResponse, error) {
	return c.API.Resync(c.Auth(ctx), &api.ResyncRequest{SessionID: sessionID, QuestionID: question, KnownVersion: known})
}

// KeepAlive sends heartbeats until ctx ends.
func (c *SessionClient) KeepAlive(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.API.Heartbeat(c.Auth(ctx), &api.Empty{}); err != nil {
				c.log.Warn("heartbeat failed", "error", err)
			}
		}
	}
}

// Follow keeps board in sync with a session until ctx ends or the session is over.
// A broken stream is reopened with exponential backoff, and every reconnection or
// version gap is repaired with a resync. onChange is called after each applied event.
func (c *SessionClient) Follow(ctx context.Context, sessionID domain.SessionID, board *projection.Board, onChange func(*projection.Board)) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 5 * time.Second

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := c.follow(ctx, sessionID, board, onChange)
		switch {
		case err == nil, ctx.Err() != nil:
			return struct{}{}, nil
		case retryable(err):
			c.log.Warn("stream lost, reconnecting", "session_id", sessionID, "error", err)
			return struct{}{}, err
		default:
			return struct{}{}, backoff.Permanent(err)
		}
	}, backoff.WithBackOff(b), backoff.WithMaxElapsedTime(0))
	return err
}

func retryable(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.Aborted, codes.DeadlineExceeded, codes.ResourceExhausted:
		return true
	}
	return false
}

func (c *SessionClient) follow(ctx context.Context, sessionID domain.SessionID, board *projection.Board, onChange func(*projection.Board)) error {
	stream, err := c.API.Subscribe(c.Auth(ctx), &api.SessionRequest{SessionID: sessionID})
	if err != nil {
		return err
	}
	// Anything pushed while disconnected is recovered from the snapshot
	if err := c.catchUp(ctx, sessionID, board, ""); err != nil {
		return err
	}
	notify(onChange, board)

	for {
		msg, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		e := fromMessage(msg)
		if e == nil {
			continue
		}
		if board.Consume(e) {
			if err := c.catchUp(ctx, sessionID, board, msg.Tally.Tally.QuestionID); err != nil {
				return err
			}
		}
		notify(onChange, board)
	}
}

func (c *SessionClient) catchUp(ctx context.Context, sessionID domain.SessionID, board *projection.Board, question domain.QuestionID) error {
	var known uint64
	if question != "" {
		if s, ok := board.Tally(question); ok {
			known = s.Version
		}
	}
	res, err := c.Resync(ctx, sessionID, question, known)
	if err != nil {
		return err
	}
	board.Consume(event.NewSessionStateChanged(toDomainSession(res.Session), time.Now()))
	if res.Tally != nil {
		board.Reset(*res.Tally)
	}
	return nil
}

func notify(onChange func(*projection.Board), board *projection.Board) {
	if onChange != nil {
		onChange(board)
	}
}

func fromMessage(msg *api.EventMessage) event.DomainEvent {
	switch {
	case msg.StateChanged != nil:
		return *msg.StateChanged
	case msg.Tally != nil:
		return *msg.Tally
	case msg.Presence != nil:
		return *msg.Presence
	case msg.Alert != nil:
		return *msg.Alert
	}
	return nil
}

func toDomainSession(s api.Session) domain.Session {
	return domain.Session{
		ID:               s.ID,
		Code:             s.Code,
		OwnerID:          s.OwnerID,
		ModuleID:         s.ModuleID,
		UnlockedModules:  s.UnlockedModules,
		State:            s.State,
		CurrentSubmodule: s.CurrentSubmodule,
		CurrentQuestion:  s.CurrentQuestion,
		Version:          s.Version,
	}
}
