package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrMalformedClaims = errors.New("malformed claims")

// SessionClaims binds a token to the session it was issued for.
type SessionClaims struct {
	SessionId uuid.UUID `json:"session_id"`
	jwt.RegisteredClaims
}

type JWT struct {
	secret        []byte
	signingMethod jwt.SigningMethod
	tokenLifetime time.Duration
	now           func() time.Time
}

func NewJWT(secret string, tokenLifetime time.Duration) (*JWT, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: empty session secret", ErrInvalid)
	}
	return &JWT{
		secret:        []byte(secret),
		signingMethod: jwt.SigningMethodHS256,
		tokenLifetime: tokenLifetime,
		now:           time.Now,
	}, nil
}

func (j *JWT) Sign(sessionId uuid.UUID) (string, error) {
	now := j.now()
	claims := SessionClaims{
		SessionId: sessionId,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionId.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenLifetime)),
		},
	}
	return jwt.NewWithClaims(j.signingMethod, claims).SignedString(j.secret)
}

func (j *JWT) Parse(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&SessionClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return j.secret, nil
		},
		jwt.WithValidMethods([]string{j.signingMethod.Alg()}),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || claims.SessionId == uuid.Nil {
		return nil, ErrMalformedClaims
	}
	return claims, nil
}
