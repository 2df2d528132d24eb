package domain

import "time"

type LinkType string

const (
	LinkRoom         LinkType = "room"
	LinkConversation LinkType = "conversation"
)

// EphemeralLink is a single-purpose, time-boxed join token. Held in
// memory only; a periodic sweep removes expired entries.
type EphemeralLink struct {
	Token        string     `json:"token"`
	Type         LinkType   `json:"type"`
	RoomCode     RoomCode   `json:"roomCode,omitempty"`
	Participants []Identity `json:"participants"`
	Creator      Identity   `json:"creator"`
	CreatedAt    time.Time  `json:"createdAt"`
	ExpiresAt    time.Time  `json:"expiresAt"`
	Active       bool       `json:"active"`
}

// Valid reports whether the link may still be resolved at the given
// instant.
func (l *EphemeralLink) Valid(now time.Time) bool {
	return l.Active && now.Before(l.ExpiresAt)
}
