package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/core"
	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
)

// JoinRoom connects the identity to the room: history append, connected
// set add, current-room reference, then the room-presence broadcast.
func (h *Hub) JoinRoom(ctx context.Context, id domain.Identity, code domain.RoomCode) error {
	c, ok := h.Registry.Lookup(id)
	if !ok {
		return ErrNotConnected
	}
	if c.Room != "" && c.Room != code {
		h.LeaveRoom(ctx, id, c.Room)
	}

	if err := h.Rooms.Join(ctx, code, id); err != nil {
		return err
	}
	// The store call may have suspended; the connection can be gone by
	// now, in which case the connected-set entry is rolled back.
	if !h.Registry.SetRoom(id, code) {
		h.Rooms.Leave(code, id)
		return ErrNotConnected
	}

	if c, ok := h.Registry.Lookup(id); ok {
		push(c, struct {
			Type     string          `json:"type"`
			RoomCode domain.RoomCode `json:"roomCode"`
		}{Type: "roomJoined", RoomCode: code})
	}
	h.BroadcastRoomPresence(ctx, code)
	h.Presence.BroadcastAll(ctx)
	return nil
}

// LeaveRoom is idempotent; it clears the current-room reference and
// rebroadcasts room presence.
func (h *Hub) LeaveRoom(ctx context.Context, id domain.Identity, code domain.RoomCode) {
	if h.Rooms.Leave(code, id) {
		h.Registry.ClearRoom(id)
		h.BroadcastRoomPresence(ctx, code)
		h.Presence.BroadcastAll(ctx)
	}
}

// Kick removes the target from the room on behalf of an elevated
// requester. The kicked identity gets an explicit notification; a
// non-elevated requester gets ErrForbidden.
func (h *Hub) Kick(ctx context.Context, code domain.RoomCode, target, requester domain.Identity) error {
	req, ok := h.Registry.Lookup(requester)
	if !ok || !req.Profile.Role.Elevated() {
		log.Warn().Str("module", "app.hub").Str("requester", string(requester)).Str("room", string(code)).Msg("kick denied")
		return ErrForbidden
	}
	if c, ok := h.Registry.Lookup(target); ok {
		push(c, struct {
			Type     string          `json:"type"`
			RoomCode domain.RoomCode `json:"roomCode"`
			By       domain.Identity `json:"by"`
		}{Type: "kicked", RoomCode: code, By: requester})
		push(c, struct {
			Type     string          `json:"type"`
			RoomCode domain.RoomCode `json:"roomCode"`
		}{Type: "removedFromRoom", RoomCode: code})
	}
	h.LeaveRoom(ctx, target, code)
	return nil
}

// BroadcastRoomPresence merges the room's historical member list with
// the connected set and pushes the per-member online flags to every
// connection system-wide, so administrators observing room counts stay
// current.
func (h *Hub) BroadcastRoomPresence(ctx context.Context, code domain.RoomCode) {
	hist, err := h.roomStore.Members(ctx, code)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.hub").Str("room", string(code)).Msg("historical members unavailable")
	}

	connected := make(map[domain.Identity]struct{})
	for _, id := range h.Rooms.Connected(code) {
		connected[id] = struct{}{}
	}

	users := make([]core.RoomUser, 0, len(hist))
	seen := make(map[domain.Identity]struct{}, len(hist))
	for _, id := range hist {
		_, online := connected[id]
		users = append(users, core.RoomUser{Identity: id, Online: online})
		seen[id] = struct{}{}
	}
	// Connected members missing from a stale historical read still show.
	for id := range connected {
		if _, ok := seen[id]; !ok {
			users = append(users, core.RoomUser{Identity: id, Online: true})
		}
	}

	h.broadcastAll(struct {
		Type     string          `json:"type"`
		RoomCode domain.RoomCode `json:"roomCode"`
		Users    []core.RoomUser `json:"users"`
	}{Type: "roomUsers", RoomCode: code, Users: users})
	h.broadcastAll(struct {
		Type     string          `json:"type"`
		RoomCode domain.RoomCode `json:"roomCode"`
		Online   int             `json:"online"`
	}{Type: "roomCountUpdate", RoomCode: code, Online: len(connected)})
}

// Room lifecycle notifications, driven by the room CRUD collaborator.

func (h *Hub) NotifyRoomCreated(code domain.RoomCode) {
	h.broadcastAll(struct {
		Type     string          `json:"type"`
		RoomCode domain.RoomCode `json:"roomCode"`
	}{Type: "roomCreated", RoomCode: code})
}

func (h *Hub) NotifyRoomDeleted(ctx context.Context, code domain.RoomCode) {
	for _, id := range h.Rooms.Connected(code) {
		h.LeaveRoom(ctx, id, code)
	}
	h.broadcastAll(struct {
		Type     string          `json:"type"`
		RoomCode domain.RoomCode `json:"roomCode"`
	}{Type: "roomDeleted", RoomCode: code})
}

func (h *Hub) NotifyRoomDeactivated(code domain.RoomCode) {
	h.broadcastAll(struct {
		Type     string          `json:"type"`
		RoomCode domain.RoomCode `json:"roomCode"`
	}{Type: "roomDeactivated", RoomCode: code})
}

// NotifyMemberAdded tells an identity it was appended to a room's
// durable membership by the CRUD layer.
func (h *Hub) NotifyMemberAdded(code domain.RoomCode, id domain.Identity) {
	if c, ok := h.Registry.Lookup(id); ok {
		push(c, struct {
			Type     string          `json:"type"`
			RoomCode domain.RoomCode `json:"roomCode"`
		}{Type: "addedToRoom", RoomCode: code})
	}
}
