// Package auth issues and verifies bearer tokens and hashes passwords.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"docrag/internal/model"
)

// Authenticator turns a bearer token into an Actor.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (model.Actor, error)
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer signs HS256 tokens carrying the user id as subject.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

var _ Authenticator = (*TokenIssuer)(nil)

// NewTokenIssuer validates its inputs; an empty secret is refused.
func NewTokenIssuer(secret, issuer string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed token for user and its expiry.
func (t *TokenIssuer) Issue(user model.User) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := tok.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Authenticate verifies signature, issuer and expiry. Every failure is
// reported as model.ErrUnauthenticated.
func (t *TokenIssuer) Authenticate(_ context.Context, token string) (model.Actor, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid {
		return model.Actor{}, fmt.Errorf("%w: invalid token", model.ErrUnauthenticated)
	}
	if err := model.CheckID("user", c.Subject); err != nil {
		return model.Actor{}, fmt.Errorf("%w: invalid subject", model.ErrUnauthenticated)
	}
	return model.Actor{UserID: c.Subject, Email: c.Email}, nil
}
