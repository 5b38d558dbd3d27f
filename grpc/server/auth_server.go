package server

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"session-lab/errors"
	"session-lab/grpc/api"
)

// AdminLogin verifies the configured admin credentials and returns an admin token.
func (s *SessionServer) AdminLogin(_ context.Context, in *api.AdminLoginRequest) (*api.TokenResponse, error) {
	token, err := s.auth.AdminLogin(in.AdminID, in.Password)
	switch {
	case err == nil:
		return &api.TokenResponse{Token: token.String()}, nil
	case errors.Is(err, errors.ErrInvalidPassword):
		return nil, status.Error(codes.Unauthenticated, err.Error())
	default:
		return nil, errors.MapToGRPCError(err)
	}
}
