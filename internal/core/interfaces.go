package core

import (
	"context"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
)

// Frame is a serialized outbound event.
type Frame []byte

// SignalConnection abstracts the messaging transport of one connection.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// MessageStore is the durable message collaborator. Persistence
// happens-before delivery on the happy path; on store failure the router
// still delivers without an id.
type MessageStore interface {
	Create(ctx context.Context, env *domain.MessageEnvelope) (string, error)
	Get(ctx context.Context, id string) (*domain.StoredMessage, error)
	Edit(ctx context.Context, id, text string) (*domain.StoredMessage, error)
	Delete(ctx context.Context, id string) error

	// MarkRead idempotently adds reader to the read-set; added is false
	// when the reader had already read the message.
	MarkRead(ctx context.Context, id string, reader domain.Identity) (added bool, err error)
	MarkConversationRead(ctx context.Context, reader, other domain.Identity) (int, error)
	MarkRoomRead(ctx context.Context, room domain.RoomCode, reader domain.Identity) (int, error)

	// ToggleReaction enforces at-most-one-reaction-per-reader: same emoji
	// removes, different emoji replaces, none adds. Returns the resulting
	// reaction set.
	ToggleReaction(ctx context.Context, id string, reader domain.Identity, emoji string) ([]domain.Reaction, error)
}

// RoomStore is the durable room membership collaborator.
type RoomStore interface {
	Exists(ctx context.Context, code domain.RoomCode) (bool, error)
	// AppendMember adds the identity to historical membership if absent;
	// added is false when it was already a member.
	AppendMember(ctx context.Context, code domain.RoomCode, id domain.Identity) (added bool, err error)
	Members(ctx context.Context, code domain.RoomCode) ([]domain.Identity, error)
}

// UserDirectory resolves offline identities and externally assigned
// conversations for restricted presence.
type UserDirectory interface {
	Lookup(ctx context.Context, id domain.Identity) (*domain.Profile, error)
	Assignments(ctx context.Context, id domain.Identity) ([]domain.Identity, error)
}

// IdentityProvider verifies registration credentials. Claims are trusted
// at registration time only and are not re-checked per action.
type IdentityProvider interface {
	Verify(token string) (*domain.Claims, error)
}
