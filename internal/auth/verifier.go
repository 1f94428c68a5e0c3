// Package auth verifies presented credentials and centralizes the role
// policy for privileged realtime operations.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized is returned for missing, malformed or expired credentials.
var ErrUnauthorized = errors.New("unauthorized")

// Identity is the resolved result of a successful credential check.
type Identity struct {
	UserID string
	Role   Role
}

// Verifier validates HMAC-signed JWTs issued by the auth collaborator.
type Verifier struct {
	secret []byte
}

// NewVerifier constructs a Verifier for the shared signing secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses and validates a raw token and resolves it to an Identity.
func (v *Verifier) Verify(token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrUnauthorized
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthorized
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, ErrUnauthorized
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrUnauthorized
	}

	userID, _ := claims["userId"].(string)
	roleStr, _ := claims["role"].(string)
	role := Role(roleStr)
	if userID == "" || !role.Valid() {
		return Identity{}, ErrUnauthorized
	}

	return Identity{UserID: userID, Role: role}, nil
}

// Sign issues a token for the identity. Used by tests and local tooling; the
// production issuer lives in the auth collaborator.
func (v *Verifier) Sign(identity Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": identity.UserID,
		"role":   string(identity.Role),
		"iat":    now.Unix(),
		"exp":    now.Add(ttl).Unix(),
	})
	return token.SignedString(v.secret)
}
