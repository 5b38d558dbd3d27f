package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"session-lab/auth"
	"session-lab/domain"
	"session-lab/errors"
)

func TestAuthService_AdminLogin(t *testing.T) {
	hash, err := auth.HashPassword("ComplexPass123!")
	require.NoError(t, err)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	svc := NewAuthService(AdminAccount{ID: "admin-1", PasswordHash: hash}, tokens)

	t.Run("should login successfully with correct credentials", func(t *testing.T) {
		req := require.New(t)

		token, err := svc.AdminLogin("admin-1", "ComplexPass123!")

		req.NoError(err)
		claims, err := tokens.ValidateToken(token.String())
		req.NoError(err)
		req.Equal(domain.RoleAdmin, claims.Role)
		req.Equal("admin-1", claims.Subject)
	})

	t.Run("should fail with a wrong password", func(t *testing.T) {
		req := require.New(t)

		token, err := svc.AdminLogin("admin-1", "WrongPass123!")

		req.ErrorIs(err, errors.ErrInvalidPassword)
		req.Empty(token)
	})

	t.Run("should fail with an unknown admin id", func(t *testing.T) {
		req := require.New(t)

		_, err := svc.AdminLogin("admin-2", "ComplexPass123!")

		req.ErrorIs(err, errors.ErrInvalidPassword)
	})

	t.Run("should reject an empty request before hashing", func(t *testing.T) {
		req := require.New(t)

		_, err := svc.AdminLogin("", "")

		req.Equal(errors.CodeInvalidArgument, errors.CodeOf(err))
	})
}

func TestAuthService_ParticipantToken(t *testing.T) {
	req := require.New(t)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	svc := NewAuthService(AdminAccount{ID: "admin-1"}, tokens)

	token, err := svc.ParticipantToken("s1", "p1")
	req.NoError(err)

	claims, err := tokens.ValidateToken(token.String())
	req.NoError(err)
	req.Equal(domain.SessionID("s1"), claims.SessionID)
	req.Equal(domain.ParticipantID("p1"), claims.ParticipantID)
}
