// README: JWT issuance and verification for the bearer-token auth flow,
// generalizing the teacher's Firebase ID-token verifier into a
// self-issued token since CartPilot mints its own session tokens after
// social login instead of delegating to Firebase.
package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the payload of a CartPilot-issued bearer token.
type Claims struct {
	UserID string `json:"sub"`
	jwt.RegisteredClaims
}

// TokenVerifier verifies a raw bearer token string and returns the
// identity it carries. Auth middleware depends only on this interface, so
// tests can substitute a stub without a real signing key.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// JWTIssuer both mints and verifies CartPilot's own bearer tokens, using
// HMAC signing (matching the algorithm JWTConfig.Algorithm names — only
// HS256/HS384/HS512 are supported).
type JWTIssuer struct {
	secret []byte
	method jwt.SigningMethod
	expiry time.Duration
}

func NewJWTIssuer(secret, algorithm string, expiry time.Duration) (*JWTIssuer, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("infra: unknown jwt algorithm %q", algorithm)
	}
	if secret == "" {
		return nil, errors.New("infra: jwt secret must not be empty")
	}
	return &JWTIssuer{secret: []byte(secret), method: method, expiry: expiry}, nil
}

// Issue mints a token for userID, expiring after the configured duration.
func (j *JWTIssuer) Issue(userID string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.expiry)),
		},
	}
	token := jwt.NewWithClaims(j.method, claims)
	return token.SignedString(j.secret)
}

// Verify parses and validates raw, returning ErrTokenExpired or
// ErrTokenInvalid on failure rather than the library's internal error
// types, so callers can switch on a small taxonomy.
func (j *JWTIssuer) Verify(ctx context.Context, raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != j.method.Alg() {
			return nil, ErrTokenInvalid
		}
		return j.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
