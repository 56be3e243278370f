// Package token mints and verifies the stateless HS256 bearer tokens the
// API hands out at login. Claims carry the user identity and role so the
// API never needs a session store.
package token

import (
	"fmt"
	"time"

	"tutelliv/pkg/types"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

type Claims struct {
	UserID string
	Email  string
	Role   types.Role
	Name   string
}

type Signer struct {
	secret []byte
	ttl    time.Duration
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl}
}

func (s *Signer) Issue(user *types.User) (string, error) {
	now := time.Now()

	tok, err := jwt.NewBuilder().
		Subject(user.ID).
		IssuedAt(now).
		Expiration(now.Add(s.ttl)).
		Claim("email", user.Email).
		Claim("role", string(user.Role)).
		Claim("name", user.Name).
		Build()
	if err != nil {
		return "", fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256(), s.secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return string(signed), nil
}

func (s *Signer) Verify(raw string) (*Claims, error) {
	tok, err := jwt.Parse(
		[]byte(raw),
		jwt.WithKey(jwa.HS256(), s.secret),
		jwt.WithValidate(true),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	userID, ok := tok.Subject()
	if !ok || userID == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	claims := &Claims{UserID: userID}

	var email, role, name string
	if err := tok.Get("email", &email); err == nil {
		claims.Email = email
	}
	if err := tok.Get("role", &role); err == nil {
		claims.Role = types.Role(role)
	}
	if err := tok.Get("name", &name); err == nil {
		claims.Name = name
	}

	return claims, nil
}
