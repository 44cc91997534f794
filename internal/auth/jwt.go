package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Session is what a validated token tells us about the caller.
type Session struct {
	Username  string
	TokenID   string
	ExpiresAt time.Time
}

type JWTService struct {
	secretKey []byte
	ttl       time.Duration
	revoker   Revoker
	now       func() time.Time
}

func NewJWTService(secret string, ttl time.Duration, revoker Revoker) *JWTService {
	if revoker == nil {
		revoker = NewMemoryRevoker()
	}
	return &JWTService{secretKey: []byte(secret), ttl: ttl, revoker: revoker, now: time.Now}
}

func (j *JWTService) TTL() time.Duration {
	return j.ttl
}

func (j *JWTService) GenerateToken(username string) (string, Session, error) {
	now := j.now()
	session := Session{
		Username:  username,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(j.ttl),
	}
	claims := jwt.RegisteredClaims{
		Subject:   username,
		ID:        session.TokenID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", Session{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, session, nil
}

func (j *JWTService) ValidateToken(ctx context.Context, tokenStr string) (Session, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		return j.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(j.now))
	if err != nil || !token.Valid {
		return Session{}, ErrInvalidToken
	}
	if claims.Subject == "" || claims.ID == "" || claims.ExpiresAt == nil {
		return Session{}, ErrInvalidToken
	}

	revoked, err := j.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return Session{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return Session{}, ErrInvalidToken
	}

	return Session{
		Username:  claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// RevokeToken invalidates the session's token until it would have expired anyway.
func (j *JWTService) RevokeToken(ctx context.Context, s Session) error {
	ttl := s.ExpiresAt.Sub(j.now())
	if ttl <= 0 {
		return nil
	}
	return j.revoker.Revoke(ctx, s.TokenID, ttl)
}
