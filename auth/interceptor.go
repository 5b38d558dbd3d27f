package auth

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"session-lab/domain"
)

// Access is the caller kind a method accepts.
type Access int

const (
	Public Access = iota
	AdminOnly
	ParticipantOnly
	AnyRole
)

// Identity is the authenticated caller injected into the request context.
type Identity struct {
	Role          domain.Role
	AdminID       string
	SessionID     domain.SessionID
	ParticipantID domain.ParticipantID
}

type contextKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFrom returns the caller of an authenticated method.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// Interceptor handles JWT validation for incoming gRPC calls.
// Methods missing from the policy are refused.
type Interceptor struct {
	tokens *TokenManager
	policy map[string]Access
}

func NewInterceptor(tokens *TokenManager, policy map[string]Access) *Interceptor {
	return &Interceptor{tokens: tokens, policy: policy}
}

func (i *Interceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, err := i.authorize(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

func (i *Interceptor) Stream() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx, err := i.authorize(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}
		return handler(srv, &identityStream{ServerStream: ss, ctx: ctx})
	}
}

func (i *Interceptor) authorize(ctx context.Context, method string) (context.Context, error) {
	access, ok := i.policy[method]
	if !ok {
		return nil, status.Errorf(codes.PermissionDenied, "method %s is not exposed", method)
	}
	if access == Public {
		return ctx, nil
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "metadata is missing")
	}
	values := md.Get("authorization")
	if len(values) == 0 {
		return nil, status.Error(codes.Unauthenticated, "authorization token is missing")
	}
	// Expecting the standard "Bearer <token>" format
	claims, err := i.tokens.ValidateToken(strings.TrimPrefix(values[0], "Bearer "))
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid or expired token")
	}

	switch {
	case access == AdminOnly && claims.Role != domain.RoleAdmin,
		access == ParticipantOnly && claims.Role != domain.RoleParticipant:
		return nil, status.Errorf(codes.PermissionDenied, "%s tokens cannot call %s", claims.Role, method)
	}

	id := Identity{Role: claims.Role, SessionID: claims.SessionID, ParticipantID: claims.ParticipantID}
	if claims.Role == domain.RoleAdmin {
		id.AdminID = claims.Subject
	}
	return WithIdentity(ctx, id), nil
}

type identityStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *identityStream) Context() context.Context { return s.ctx }
