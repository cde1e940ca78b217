package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cinescore/cinescore/internal/domain"
)

var (
	// ErrMissingToken indicates the request carried no bearer credential.
	ErrMissingToken = errors.New("auth: missing bearer token")
	// ErrInvalidToken indicates the credential was malformed, tampered with or expired.
	ErrInvalidToken = errors.New("auth: invalid bearer token")
)

// TokenVerifier turns an Authorization header into a resolved principal.
// It decides identity only, never authorization.
type TokenVerifier interface {
	Resolve(authorizationHeader string) (domain.Principal, error)
}

// Claims carried in issued tokens.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 JWTs.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenService builds a TokenService from the shared secret.
func NewTokenService(secret, issuer string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// TTL reports the configured token lifetime.
func (ts *TokenService) TTL() time.Duration {
	return ts.ttl
}

// Sign issues a token for the given user.
func (ts *TokenService) Sign(user domain.User) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ts.ttl)

	claims := Claims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   user.Email,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Resolve implements TokenVerifier. An absent header maps to ErrMissingToken;
// everything else that does not verify maps to ErrInvalidToken.
func (ts *TokenService) Resolve(authorizationHeader string) (domain.Principal, error) {
	header := strings.TrimSpace(authorizationHeader)
	if header == "" {
		return domain.Principal{}, ErrMissingToken
	}

	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return domain.Principal{}, ErrInvalidToken
	}
	raw := strings.TrimSpace(header[len(prefix):])
	if raw == "" {
		return domain.Principal{}, ErrInvalidToken
	}

	claims, err := ts.parse(raw)
	if err != nil {
		return domain.Principal{}, ErrInvalidToken
	}

	role := domain.Role(claims.Role)
	if !role.Valid() {
		return domain.Principal{}, ErrInvalidToken
	}
	return domain.Principal{Subject: claims.Subject, Role: role}, nil
}

func (ts *TokenService) parse(raw string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ts.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
