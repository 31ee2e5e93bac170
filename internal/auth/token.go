package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the validity window of issued tokens.
const DefaultTokenTTL = 24 * time.Hour

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoSecret     = errors.New("token signing secret is empty")
)

// Identity is the authenticated caller carried by a token.
type Identity struct {
	UserID string
	Email  string
}

// Claims is the signed token payload.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 bearer tokens. It keeps no state
// beyond the secret, so tokens cannot be revoked before they expire.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option customizes a TokenManager.
type Option func(*TokenManager)

// WithTTL overrides DefaultTokenTTL.
func WithTTL(ttl time.Duration) Option {
	return func(m *TokenManager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *TokenManager) { m.now = now }
}

func NewTokenManager(secret []byte, opts ...Option) (*TokenManager, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}
	m := &TokenManager{secret: secret, ttl: DefaultTokenTTL, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Issue signs a token for the given user.
func (m *TokenManager) Issue(userID, email string) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry. Every failure is reported
// as ErrInvalidToken.
func (m *TokenManager) Verify(token string) (Identity, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	if claims.UserID == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: claims.UserID, Email: claims.Email}, nil
}
