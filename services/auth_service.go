//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=mocks/mock_auth_service.go -package=mocks

package services

import (
	"crypto/subtle"

	"session-lab/auth"
	"session-lab/domain"
	"session-lab/errors"
)

type IAuthService interface {
	AdminLogin(adminID, password string) (Token, error)
	ParticipantToken(sessionID domain.SessionID, participantID domain.ParticipantID) (Token, error)
}

// AdminAccount is the single configured administrator.
type AdminAccount struct {
	ID           string
	PasswordHash string
}

type AuthService struct {
	admin  AdminAccount
	tokens *auth.TokenManager
}

type Token string

func (t Token) String() string {
	return string(t)
}

func NewAuthService(admin AdminAccount, tokens *auth.TokenManager) IAuthService {
	return &AuthService{admin: admin, tokens: tokens}
}

func (s *AuthService) AdminLogin(adminID, password string) (Token, error) {
	// 1. Validate the request shape before any expensive cryptographic operation
	if err := auth.ValidateLogin(auth.LoginRequest{AdminID: adminID, Password: password}); err != nil {
		return "", err
	}

	// 2. Compare both the id and the password; a single generic error prevents enumeration
	idMatch := subtle.ConstantTimeCompare([]byte(adminID), []byte(s.admin.ID)) == 1
	match, err := auth.ComparePassword(password, s.admin.PasswordHash)
	if err != nil || !match || !idMatch {
		return "", errors.ErrInvalidPassword
	}

	// 3. Issue the JWT token
	token, err := s.tokens.AdminToken(s.admin.ID)
	if err != nil {
		return "", errors.ErrInvalidToken
	}
	return Token(token), nil
}

// ParticipantToken is issued after a successful join and identifies the caller on later RPCs.
func (s *AuthService) ParticipantToken(sessionID domain.SessionID, participantID domain.ParticipantID) (Token, error) {
	token, err := s.tokens.ParticipantToken(sessionID, participantID)
	if err != nil {
		return "", errors.ErrInvalidToken
	}
	return Token(token), nil
}
