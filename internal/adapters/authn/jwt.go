// Package authn verifies registration credentials. Claims are accepted
// at connect time only; no per-action re-check happens here.
package authn

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
)

var ErrInvalidToken = errors.New("invalid token")

// Verifier parses HMAC-signed bearer tokens into registration claims.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

type tokenClaims struct {
	DisplayName string `json:"displayName,omitempty"`
	Role        string `json:"role,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}

func (v *Verifier) Verify(token string) (*domain.Claims, error) {
	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &tc, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid || tc.Subject == "" {
		return nil, ErrInvalidToken
	}

	id, err := domain.NewIdentity(tc.Subject)
	if err != nil {
		return nil, err
	}
	return &domain.Claims{
		Identity: id,
		Profile: domain.Profile{
			DisplayName: tc.DisplayName,
			Role:        domain.Role(tc.Role),
			Avatar:      tc.Avatar,
		},
	}, nil
}
