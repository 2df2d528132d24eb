package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/core"
	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
)

// Hub coordinates the presence/routing core: it owns the lifecycle
// cascades (register, disconnect) and the broadcasts that follow
// membership changes. One inbound event is handled to completion by one
// Hub call.
type Hub struct {
	Registry *Registry
	Rooms    *RoomManager
	Groups   *GroupManager
	Links    *LinkManager
	Presence *Presence
	Router   *Router
	Tracker  *Tracker
	Calls    *CallRelay

	roomStore core.RoomStore
}

func NewHub(
	reg *Registry,
	rooms *RoomManager,
	groups *GroupManager,
	links *LinkManager,
	presence *Presence,
	router *Router,
	tracker *Tracker,
	calls *CallRelay,
	roomStore core.RoomStore,
) *Hub {
	h := &Hub{
		Registry:  reg,
		Rooms:     rooms,
		Groups:    groups,
		Links:     links,
		Presence:  presence,
		Router:    router,
		Tracker:   tracker,
		Calls:     calls,
		roomStore: roomStore,
	}
	router.SetPolicy(SimplePolicy{}, nil)
	return h
}

// Register binds the identity to its live connection, replacing any
// previous one, and recomputes presence for everyone.
func (h *Hub) Register(ctx context.Context, claims *domain.Claims, sig core.SignalConnection) *Connection {
	conn, replaced := h.Registry.Register(claims.Identity, claims.Profile, sig)
	if replaced != nil && replaced.Signal != sig {
		// Reconnect: the old transport is closed, its room seat is kept
		// by the new connection.
		h.Registry.SetRoom(claims.Identity, replaced.Room)
		replaced.Signal.Close()
	}
	push(conn, struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}{Type: "info", Message: fmt.Sprintf("connected as %s", claims.Identity)})
	h.Presence.BroadcastAll(ctx)
	return conn
}

// Disconnect is the only cancellation signal. It synchronously removes
// the connection (guarded by transport handle), detaches it from rooms
// and groups and triggers the presence recomputation.
func (h *Hub) Disconnect(ctx context.Context, id domain.Identity, sig core.SignalConnection) {
	conn, ok := h.Registry.Unregister(id, sig)
	if !ok {
		return
	}
	if conn.Room != "" {
		h.Rooms.Leave(conn.Room, id)
		h.BroadcastRoomPresence(ctx, conn.Room)
	}
	if h.Groups.LeaveAll(id) {
		h.BroadcastGroupList()
	}
	h.Presence.BroadcastAll(ctx)
	log.Info().Str("module", "app.hub").Str("identity", string(id)).Msg("disconnect cascade done")
}

// disconnectSlow force-closes a consumer the backpressure policy gave up
// on. The read pump notices the closed transport and runs the normal
// disconnect cascade.
func (h *Hub) disconnectSlow(id domain.Identity) {
	if c, ok := h.Registry.Lookup(id); ok {
		c.Signal.Close()
	}
}

// UseKickSlowPolicy switches the router to disconnecting slow consumers.
func (h *Hub) UseKickSlowPolicy() {
	h.Router.SetPolicy(KickSlowPolicy{}, h.disconnectSlow)
}

// CreateGroup, JoinGroup and LeaveGroup mutate the in-memory set only;
// the full group list is rebroadcast after each mutation.

func (h *Hub) CreateGroup(name domain.GroupName, creator domain.Identity, members ...domain.Identity) {
	h.Groups.Create(name, append(members, creator)...)
	h.BroadcastGroupList()
}

func (h *Hub) JoinGroup(name domain.GroupName, id domain.Identity) {
	h.Groups.Join(name, id)
	h.BroadcastGroupList()
}

func (h *Hub) LeaveGroup(name domain.GroupName, id domain.Identity) {
	h.Groups.Leave(name, id)
	h.BroadcastGroupList()
}

func (h *Hub) BroadcastGroupList() {
	h.broadcastAll(struct {
		Type   string           `json:"type"`
		Groups []core.GroupInfo `json:"groups"`
	}{Type: "groupList", Groups: h.Groups.Snapshot()})
}

// CreateLink issues an ephemeral link and answers the creator.
func (h *Hub) CreateLink(typ domain.LinkType, room domain.RoomCode, participants []domain.Identity, creator domain.Identity) (*domain.EphemeralLink, error) {
	link, err := h.Links.Create(typ, room, participants, creator)
	if err != nil {
		return nil, err
	}
	if c, ok := h.Registry.Lookup(creator); ok {
		push(c, struct {
			Type string                `json:"type"`
			Link *domain.EphemeralLink `json:"link"`
		}{Type: "temporaryLinkCreated", Link: link})
	}
	return link, nil
}

// JoinViaLink resolves the token and, for a conversation link,
// materializes (or adds to) the backing in-memory group. For a room link
// it is purely informative; membership comes from the room-join flow.
func (h *Hub) JoinViaLink(ctx context.Context, token string, id domain.Identity) error {
	link, err := h.Links.Resolve(token)
	if err != nil {
		return err
	}
	c, ok := h.Registry.Lookup(id)
	if !ok {
		return ErrNotConnected
	}

	if link.Type == domain.LinkConversation {
		name := domain.GroupName("tmp-" + link.Token[:8])
		h.Groups.Create(name, append(link.Participants, id)...)
		push(c, struct {
			Type         string            `json:"type"`
			GroupName    domain.GroupName  `json:"groupName"`
			Participants []domain.Identity `json:"participants"`
		}{Type: "joinedTemporaryConversation", GroupName: name, Participants: h.Groups.Members(name)})
		h.BroadcastGroupList()
		return nil
	}

	push(c, struct {
		Type     string          `json:"type"`
		RoomCode domain.RoomCode `json:"roomCode"`
	}{Type: "joinedTemporaryRoom", RoomCode: link.RoomCode})
	return nil
}

// NotifyAssignmentsChanged is the external assignment-list trigger: the
// conversation CRUD layer calls it after reassignment so restricted
// lists refresh.
func (h *Hub) NotifyAssignmentsChanged(ctx context.Context) {
	h.Presence.BroadcastAll(ctx)
}

// broadcastAll pushes one event to every live connection.
func (h *Hub) broadcastAll(v any) {
	for _, c := range h.Registry.Snapshot() {
		push(c, v)
	}
}
