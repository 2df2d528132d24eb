package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/core"
	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
	"github.com/anibaler123143423234321/backend-chat-sub000/internal/metrics"
)

var (
	ErrNotInRoom = errors.New("sender is not in a room")
	ErrNoTarget  = errors.New("no delivery target")
)

// Router persists chat messages and fans them out to the connections
// present at the instant of send. Delivery is at-most-once per connected
// recipient; offline recipients reconcile through the durable history.
type Router struct {
	reg    *Registry
	rooms  *RoomManager
	groups *GroupManager
	store  core.MessageStore

	policy Policy
	onSlow func(domain.Identity)
}

func NewRouter(reg *Registry, rooms *RoomManager, groups *GroupManager, store core.MessageStore) *Router {
	return &Router{reg: reg, rooms: rooms, groups: groups, store: store, policy: SimplePolicy{}}
}

// SetPolicy installs the backpressure policy; onSlow is invoked for
// consumers the policy wants disconnected.
func (r *Router) SetPolicy(p Policy, onSlow func(domain.Identity)) {
	r.policy = p
	r.onSlow = onSlow
}

// resolve validates the envelope and pins its discriminator. Room
// targeting is derived from the sender's current room, never from the
// payload, so a spoofed roomCode reaches neither a foreign room's live
// set nor its durable history.
func (r *Router) resolve(env *domain.MessageEnvelope) (string, error) {
	switch {
	case env.IsGroup && env.GroupName != "":
		return "group", nil
	case env.IsGroup || env.RoomCode != "":
		room, ok := r.reg.RoomOf(env.From)
		if !ok {
			return "", ErrNotInRoom
		}
		env.RoomCode = room
		return "room", nil
	default:
		if env.To == "" {
			return "", ErrNoTarget
		}
		return "direct", nil
	}
}

// targets snapshots the delivery set of a resolved envelope. Called
// after any store await so the connected sets are current.
func (r *Router) targets(kind string, env *domain.MessageEnvelope) []domain.Identity {
	switch kind {
	case "group":
		return r.groups.Members(env.GroupName)
	case "room":
		return r.rooms.Connected(env.RoomCode)
	default:
		if c, ok := r.reg.Lookup(env.To); ok {
			return []domain.Identity{c.Identity}
		}
		// Offline recipient: available later through the history pull.
		return nil
	}
}

// Route persists then delivers. The envelope is resolved before the
// store call so the durable record carries the derived room, and a
// validation failure never writes. Persistence happens-before delivery;
// if the store fails the message is still delivered without an id, an
// accepted orphan-record inconsistency that is logged and not retried.
func (r *Router) Route(ctx context.Context, env *domain.MessageEnvelope) error {
	if env.SentAt.IsZero() {
		env.SentAt = time.Now()
	}
	if env.Time == "" {
		env.Time = env.SentAt.Format("15:04")
	}

	kind, err := r.resolve(env)
	if err != nil {
		return err
	}

	id, err := r.store.Create(ctx, env)
	if err != nil {
		metrics.OrphanedMessages.Inc()
		log.Warn().Err(err).Str("module", "app.router").Str("from", string(env.From)).Msg("persist failed, delivering without id")
	} else {
		env.ID = id
	}

	r.deliver(kind, r.targets(kind, env), struct {
		Type string `json:"type"`
		domain.MessageEnvelope
	}{Type: "message", MessageEnvelope: *env})
	return nil
}

// Typing is a pure relay: no persistence, sender excluded.
func (r *Router) Typing(from, to domain.Identity, roomCode domain.RoomCode, isTyping bool) error {
	event := struct {
		Type     string          `json:"type"`
		From     domain.Identity `json:"from"`
		RoomCode domain.RoomCode `json:"roomCode,omitempty"`
		IsTyping bool            `json:"isTyping"`
	}{Type: "typing", From: from, IsTyping: isTyping}

	if roomCode != "" {
		room, ok := r.reg.RoomOf(from)
		if !ok {
			return ErrNotInRoom
		}
		event.RoomCode = room
		targets := make([]domain.Identity, 0)
		for _, id := range r.rooms.Connected(room) {
			if id != from {
				targets = append(targets, id)
			}
		}
		r.deliver("room", targets, event)
		return nil
	}

	if to == "" {
		return ErrNoTarget
	}
	if c, ok := r.reg.Lookup(to); ok {
		r.deliver("direct", []domain.Identity{c.Identity}, event)
	}
	return nil
}

// ThreadMessage relays a thread reply. Persistence of thread messages
// happens through the normal message creation path before this event is
// emitted.
func (r *Router) ThreadMessage(env *domain.MessageEnvelope) error {
	kind, err := r.resolve(env)
	if err != nil {
		return err
	}
	r.deliver(kind, r.targets(kind, env), struct {
		Type string `json:"type"`
		domain.MessageEnvelope
	}{Type: "threadMessage", MessageEnvelope: *env})
	return nil
}

func (r *Router) ThreadCountUpdated(env *domain.MessageEnvelope) error {
	kind, err := r.resolve(env)
	if err != nil {
		return err
	}
	r.deliver(kind, r.targets(kind, env), struct {
		Type        string          `json:"type"`
		From        domain.Identity `json:"from"`
		ThreadID    string          `json:"threadId"`
		ThreadCount int             `json:"threadCount"`
		RoomCode    domain.RoomCode `json:"roomCode,omitempty"`
		To          domain.Identity `json:"to,omitempty"`
	}{Type: "threadCountUpdated", From: env.From, ThreadID: env.ThreadID, ThreadCount: env.ThreadCount, RoomCode: env.RoomCode, To: env.To})
	return nil
}

// Edit updates the stored text and relays the edit to the message's
// original scope. Only the author may edit.
func (r *Router) Edit(ctx context.Context, id string, text string, from domain.Identity) error {
	msg, err := r.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("edit message %s: %w", id, err)
	}
	if msg.From != from {
		return fmt.Errorf("edit message %s: %w", id, ErrForbidden)
	}
	msg, err = r.store.Edit(ctx, id, text)
	if err != nil {
		return fmt.Errorf("edit message %s: %w", id, err)
	}
	kind, targets := r.scopeTargets(msg)
	r.deliver(kind, targets, struct {
		Type      string           `json:"type"`
		MessageID string           `json:"messageId"`
		Message   string           `json:"message"`
		From      domain.Identity  `json:"from"`
		RoomCode  domain.RoomCode  `json:"roomCode,omitempty"`
		GroupName domain.GroupName `json:"groupName,omitempty"`
		To        domain.Identity  `json:"to,omitempty"`
	}{Type: "messageEdited", MessageID: msg.ID, Message: text, From: from, RoomCode: msg.RoomCode, GroupName: msg.GroupName, To: msg.To})
	return nil
}

// scopeTargets resolves the notification set of a stored message: the
// room's connected set, the group's members, or both direct parties.
func (r *Router) scopeTargets(msg *domain.StoredMessage) (string, []domain.Identity) {
	switch {
	case msg.RoomCode != "":
		return "room", r.rooms.Connected(msg.RoomCode)
	case msg.IsGroup && msg.GroupName != "":
		return "group", r.groups.Members(msg.GroupName)
	default:
		return "direct", []domain.Identity{msg.From, msg.To}
	}
}

// deliver pushes the event to each target connected right now, at most
// once per identity.
func (r *Router) deliver(kind string, targets []domain.Identity, v any) {
	seen := make(map[domain.Identity]struct{}, len(targets))
	delivered := 0
	for _, id := range targets {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		c, ok := r.reg.Lookup(id)
		if !ok {
			continue
		}
		if push(c, v) {
			delivered++
			continue
		}
		if r.policy != nil && r.policy.OnBackPressure(c.Identity) == KickMember && r.onSlow != nil {
			r.onSlow(c.Identity)
		}
	}
	metrics.RoutedMessages.WithLabelValues(kind).Add(float64(delivered))
}
