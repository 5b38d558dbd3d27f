package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"session-lab/domain"
	"session-lab/errors"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "MonMotDePasseTr0pSûr!"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("WrongPassword", hash)
	req.NoError(err)
	req.False(match)

	_, err = ComparePassword(password, "not-a-hash")
	req.ErrorIs(err, errors.ErrMalformedHash)
}

func TestComparePasswordRejectsForeignHashes(t *testing.T) {
	req := require.New(t)
	hash, err := HashPassword("ComplexPass123!")
	req.NoError(err)

	// Given hashes from another algorithm or version, Then they are malformed rather than a mismatch
	for _, encoded := range []string{
		strings.Replace(hash, "$argon2id$", "$argon2i$", 1),
		strings.Replace(hash, "$v=19$", "$v=16$", 1),
		strings.Replace(hash, "$m=", "$x=", 1),
		hash[:strings.LastIndex(hash, "$")+1],
	} {
		_, err := ComparePassword("ComplexPass123!", encoded)
		req.ErrorIs(err, errors.ErrMalformedHash, encoded)
	}
}

func TestNewPasswordValidation(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid password", "ComplexPass123!", false},
		{"Password too short", "Short1!", true},
		{"Missing digit", "NoDigitPass!", true},
		{"Missing special char", "NoSpecialChar123", true},
		{"Missing uppercase", "nouppercase123!", true},
		{"Password too long (edge case)", strings.Repeat("a", 73), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNewPassword(NewPasswordRequest{Password: tt.password})
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestTokenManager(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour)

	t.Run("admin token round trip", func(t *testing.T) {
		req := require.New(t)
		token, err := tokens.AdminToken("admin-1")
		req.NoError(err)

		claims, err := tokens.ValidateToken(token)
		req.NoError(err)
		req.Equal(domain.RoleAdmin, claims.Role)
		req.Equal("admin-1", claims.Subject)
	})

	t.Run("participant token is bound to its session", func(t *testing.T) {
		req := require.New(t)
		token, err := tokens.ParticipantToken("s1", "p1")
		req.NoError(err)

		claims, err := tokens.ValidateToken(token)
		req.NoError(err)
		req.Equal(domain.RoleParticipant, claims.Role)
		req.Equal(domain.SessionID("s1"), claims.SessionID)
		req.Equal(domain.ParticipantID("p1"), claims.ParticipantID)
	})

	t.Run("another secret is rejected", func(t *testing.T) {
		req := require.New(t)
		token, err := NewTokenManager("other-secret", time.Hour).AdminToken("admin-1")
		req.NoError(err)

		_, err = tokens.ValidateToken(token)
		req.Error(err)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		req := require.New(t)
		expired := NewTokenManager("test-secret", time.Minute)
		expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, err := expired.AdminToken("admin-1")
		req.NoError(err)

		_, err = tokens.ValidateToken(token)
		req.Error(err)
	})
}

func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword("A-very-long-and-complex-password-for-bench-123!")
	}
}
