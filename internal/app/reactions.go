package app

import (
	"context"
	"fmt"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/core"
	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
)

// Tracker mutates message read and reaction state through the message
// store and notifies the affected connections.
type Tracker struct {
	reg    *Registry
	rooms  *RoomManager
	groups *GroupManager
	store  core.MessageStore
	router *Router
}

func NewTracker(reg *Registry, rooms *RoomManager, groups *GroupManager, store core.MessageStore, router *Router) *Tracker {
	return &Tracker{reg: reg, rooms: rooms, groups: groups, store: store, router: router}
}

// MarkRead idempotently records the read and notifies the sender only.
// A reader marking their own message is skipped entirely.
func (t *Tracker) MarkRead(ctx context.Context, id string, reader domain.Identity) error {
	msg, err := t.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("message %s: %w", id, err)
	}
	if msg.From == reader {
		return nil
	}
	added, err := t.store.MarkRead(ctx, id, reader)
	if err != nil {
		return fmt.Errorf("mark read %s: %w", id, err)
	}
	if !added {
		return nil
	}
	if sender, ok := t.reg.Lookup(msg.From); ok {
		push(sender, struct {
			Type      string          `json:"type"`
			MessageID string          `json:"messageId"`
			Reader    domain.Identity `json:"reader"`
		}{Type: "messageRead", MessageID: id, Reader: reader})
	}
	return nil
}

// MarkConversationRead bulk-marks a direct conversation and notifies the
// counterpart.
func (t *Tracker) MarkConversationRead(ctx context.Context, reader, other domain.Identity) error {
	n, err := t.store.MarkConversationRead(ctx, reader, other)
	if err != nil {
		return fmt.Errorf("mark conversation read: %w", err)
	}
	if c, ok := t.reg.Lookup(other); ok {
		push(c, struct {
			Type   string          `json:"type"`
			Reader domain.Identity `json:"reader"`
			Count  int             `json:"count"`
		}{Type: "conversationRead", Reader: reader, Count: n})
	}
	return nil
}

// MarkRoomRead bulk-marks a room's messages and notifies the room's
// connected set.
func (t *Tracker) MarkRoomRead(ctx context.Context, room domain.RoomCode, reader domain.Identity) error {
	n, err := t.store.MarkRoomRead(ctx, room, reader)
	if err != nil {
		return fmt.Errorf("mark room read: %w", err)
	}
	event := struct {
		Type     string          `json:"type"`
		RoomCode domain.RoomCode `json:"roomCode"`
		Reader   domain.Identity `json:"reader"`
		Count    int             `json:"count"`
	}{Type: "roomMessageRead", RoomCode: room, Reader: reader, Count: n}
	t.router.deliver("room", t.rooms.Connected(room), event)
	return nil
}

// ToggleReaction applies the at-most-one-reaction-per-reader rule (the
// store enforces toggle/replace/add) and notifies the message's scope
// with the resulting set.
func (t *Tracker) ToggleReaction(ctx context.Context, id string, reader domain.Identity, emoji string) error {
	reactions, err := t.store.ToggleReaction(ctx, id, reader, emoji)
	if err != nil {
		return fmt.Errorf("toggle reaction %s: %w", id, err)
	}
	msg, err := t.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("message %s: %w", id, err)
	}
	kind, targets := t.router.scopeTargets(msg)
	t.router.deliver(kind, targets, struct {
		Type      string            `json:"type"`
		MessageID string            `json:"messageId"`
		Reactions []domain.Reaction `json:"reactions"`
	}{Type: "reactionUpdated", MessageID: id, Reactions: reactions})
	return nil
}
