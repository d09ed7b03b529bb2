package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"
)

var (
	// ErrInvalidToken indicates the token is malformed or its signature failed validation.
	ErrInvalidToken = errors.New("jwt: invalid token")
	// ErrExpiredToken indicates the token has expired.
	ErrExpiredToken = errors.New("jwt: token expired")
)

// SessionClaims binds a session token to exactly one account.
type SessionClaims struct {
	AccountID string `json:"uid"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and validates HS256 session tokens. Tokens carry no
// mutable state and are invalidated only by expiry.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer constructs a TokenIssuer with the provided signing secret.
func NewTokenIssuer(secret, issuer string, ttl time.Duration) (*TokenIssuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("jwt: signing secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &TokenIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock overrides the internal clock, used in tests.
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	if now != nil {
		t.now = now
	}
	return t
}

// TTL returns the configured token lifetime.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue mints a session token bound to the supplied account identifier.
// Expiry is fixed at issuance.
func (t *TokenIssuer) Issue(accountID string) (string, error) {
	if accountID == "" {
		return "", fmt.Errorf("jwt: account id is required")
	}

	now := t.now().UTC()
	claims := SessionClaims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Parse validates a session token and returns its claims.
func (t *TokenIssuer) Parse(token string) (*SessionClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithIssuer(t.issuer), jwt.WithTimeFunc(t.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if parsed == nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.AccountID) == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
