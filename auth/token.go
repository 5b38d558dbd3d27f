package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"session-lab/domain"
	"session-lab/errors"
)

const issuer = "session-lab"

// CustomClaims defines the structure of the data stored inside the JWT.
// Subject is the admin id for admin tokens and the participant id for participant tokens.
type CustomClaims struct {
	Role          domain.Role          `json:"role"`
	SessionID     domain.SessionID     `json:"session_id,omitempty"`
	ParticipantID domain.ParticipantID `json:"participant_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager signs and checks HS256 tokens with a shared secret.
type TokenManager struct {
	secret   []byte
	duration time.Duration
	now      func() time.Time
}

func NewTokenManager(secret string, duration time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), duration: duration, now: time.Now}
}

// AdminToken issues a token allowing adminID to drive the sessions it owns.
func (m *TokenManager) AdminToken(adminID string) (string, error) {
	return m.sign(CustomClaims{Role: domain.RoleAdmin}, adminID)
}

// ParticipantToken binds a participant identity to one session.
func (m *TokenManager) ParticipantToken(sessionID domain.SessionID, participantID domain.ParticipantID) (string, error) {
	return m.sign(CustomClaims{
		Role:          domain.RoleParticipant,
		SessionID:     sessionID,
		ParticipantID: participantID,
	}, string(participantID))
}

func (m *TokenManager) sign(claims CustomClaims, subject string) (string, error) {
	now := m.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(m.duration)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    issuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken parses and validates the signature, issuer and expiration of a JWT string.
func (m *TokenManager) ValidateToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, errors.ErrInvalidToken
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, errors.ErrInvalidToken
	}
	switch claims.Role {
	case domain.RoleAdmin:
		if claims.Subject == "" {
			return nil, errors.ErrInvalidToken
		}
	case domain.RoleParticipant:
		if claims.SessionID == "" || claims.ParticipantID == "" {
			return nil, errors.ErrInvalidToken
		}
	default:
		return nil, errors.ErrInvalidToken
	}
	return claims, nil
}
