// Package auth provides JWT token issuance/validation, bcrypt password
// hashing, and the HTTP middleware that turns a bearer token into a
// "current user" in the request context.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. Client calls the createUser mutation → account stored with bcrypt hash
// 2. Client calls the login mutation → server verifies the password and
//    returns a signed JWT valid for 24 hours
// 3. Client sends `Authorization: Bearer <jwt>` on subsequent requests
// 4. Middleware validates the token, looks up the user, and stores it in the
//    request context; resolvers read it from there to authorize mutations
//
// WHY JWT?
// JWT (JSON Web Token) is stateless — the server doesn't store session data.
// Everything needed (user id, username, expiry) is inside the signed token,
// and the HMAC signature ensures nobody can tamper with it without the
// secret key. Verification needs no database round trip.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the lifetime of an issued token. The original contract is
// "24 hours from issuance"; after that the client must log in again.
const TokenTTL = 24 * time.Hour

const issuer = "library-backend"

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret key used to sign and verify tokens. The same
// secret must be used for both operations — keep it safe.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Claims is the JWT payload. It embeds jwt.RegisteredClaims (Subject,
// ExpiresAt, IssuedAt, Issuer) and adds the username so clients can display
// who is logged in without an extra query.
//
// The "sub" (Subject) claim carries the user's internal id — the standard
// claim for identifying who a token belongs to.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Generate creates and signs a JWT for the given user, valid for TokenTTL.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, same key signs and
// verifies. Fine for a single-server deployment.
func (s *TokenService) Generate(userID, username string) (string, error) {
	return s.generateWithTTL(userID, username, TokenTTL)
}

// GenerateWithTTL creates a token with a custom lifetime. Used by tests to
// produce already-expired tokens.
func (s *TokenService) GenerateWithTTL(userID, username string, ttl time.Duration) (string, error) {
	return s.generateWithTTL(userID, username, ttl)
}

func (s *TokenService) generateWithTTL(userID, username string, ttl time.Duration) (string, error) {
	now := time.Now()

	c := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns its claims.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired
//   - Issuer matches (prevents tokens minted by other apps with the same lib)
//   - Algorithm is HS256 — jwt.WithValidMethods prevents the classic
//     algorithm-confusion attack where an attacker sends an unsigned token
func (s *TokenService) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("auth: token has no subject")
	}

	return c, nil
}
