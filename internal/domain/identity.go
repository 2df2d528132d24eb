// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	MaxIdentityLen    = 64
	MaxDisplayNameLen = 64
)

var (
	ErrIdentityEmpty   = errors.New("identity empty")
	ErrIdentityTooLong = errors.New("identity too long")
)

// Identity is the unique string key of a chat participant.
type Identity string

func NewIdentity(raw string) (Identity, error) {
	if len(raw) == 0 {
		return "", ErrIdentityEmpty
	}
	if len(raw) > MaxIdentityLen {
		return "", ErrIdentityTooLong
	}
	return Identity(raw), nil
}

var foldChain = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold returns the comparison form of an identity: combining marks
// stripped, lower-cased. Senders may address a peer with different
// casing or accents; the registry's fallback scan compares folded forms.
func (i Identity) Fold() string {
	s, _, err := transform.String(foldChain, string(i))
	if err != nil {
		s = string(i)
	}
	return strings.ToLower(s)
}

type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleCoordinator Role = "COORDINATOR"
	RoleAgent       Role = "USER"
)

// Elevated reports whether the role may administer rooms and see the
// full roster.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleCoordinator
}

// Profile is the display metadata supplied at registration. The role is
// trusted at registration time only.
type Profile struct {
	DisplayName string `json:"displayName,omitempty"`
	Role        Role   `json:"role,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
}

// Claims is what the identity provider vouches for at connect time.
type Claims struct {
	Identity Identity
	Profile  Profile
}
