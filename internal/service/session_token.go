package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ebhath/ebhath-api/internal/models"
	appErrors "github.com/ebhath/ebhath-api/pkg/errors"
)

const sessionTokenIssuer = "ebhath-api"

// SessionTokenSigner issues and verifies HS256 form session tokens.
type SessionTokenSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionTokenSigner constructs a signer.
func NewSessionTokenSigner(secret string, ttl time.Duration) (*SessionTokenSigner, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &SessionTokenSigner{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for the session.
func (s *SessionTokenSigner) Issue(sessionID, clientKey string, appType models.ApplicationType) (string, time.Time, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.ttl)
	claims := &models.FormSessionClaims{
		SessionID: sessionID,
		ClientKey: clientKey,
		Type:      appType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionTokenIssuer,
			Subject:   sessionID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies a token and returns its claims.
func (s *SessionTokenSigner) Parse(tokenString string) (*models.FormSessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.FormSessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(sessionTokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidSession.Code, appErrors.ErrInvalidSession.Status, appErrors.ErrInvalidSession.Message)
	}

	claims, ok := token.Claims.(*models.FormSessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" || !claims.Type.Valid() {
		return nil, appErrors.ErrInvalidSession
	}
	return claims, nil
}
