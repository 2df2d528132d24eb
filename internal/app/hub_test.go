package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
)

func TestRegisterClosesReplacedTransport(t *testing.T) {
	th := newTestHub(t)

	old := th.register(t, "alice", domain.RoleAgent)
	fresh := th.register(t, "alice", domain.RoleAgent)

	assert.True(t, old.closed, "replaced transport must be closed")
	assert.False(t, fresh.closed)

	infos := fresh.eventsOfType(t, "info")
	require.NotEmpty(t, infos, "fresh connection gets the greeting")
}

func TestRegisterCarriesRoomAcrossReconnect(t *testing.T) {
	th := newTestHub(t, "R1")
	ctx := context.Background()

	th.register(t, "alice", domain.RoleAgent)
	require.NoError(t, th.hub.JoinRoom(ctx, "alice", "R1"))

	th.register(t, "alice", domain.RoleAgent)

	room, ok := th.hub.Registry.RoomOf("alice")
	require.True(t, ok)
	assert.Equal(t, domain.RoomCode("R1"), room)
	assert.True(t, th.hub.Rooms.Contains("R1", "alice"))
}

func TestDisconnectCascade(t *testing.T) {
	th := newTestHub(t, "R1")
	ctx := context.Background()

	alice := th.register(t, "alice", domain.RoleAgent)
	admin := th.register(t, "admin", domain.RoleAdmin)
	require.NoError(t, th.hub.JoinRoom(ctx, "alice", "R1"))
	th.hub.CreateGroup("g", "alice")
	admin.reset()

	th.hub.Disconnect(ctx, "alice", alice)

	_, ok := th.hub.Registry.Lookup("alice")
	assert.False(t, ok)
	assert.False(t, th.hub.Rooms.Contains("R1", "alice"))
	assert.Empty(t, th.hub.Groups.Members("g"))

	assert.NotEmpty(t, admin.eventsOfType(t, "roomUsers"))
	assert.NotEmpty(t, admin.eventsOfType(t, "groupList"))
	assert.NotEmpty(t, admin.eventsOfType(t, "userList"))
}

func TestDisconnectWithStaleHandleIsNoop(t *testing.T) {
	th := newTestHub(t)

	old := th.register(t, "alice", domain.RoleAgent)
	th.register(t, "alice", domain.RoleAgent)

	th.hub.Disconnect(context.Background(), "alice", old)

	_, ok := th.hub.Registry.Lookup("alice")
	assert.True(t, ok, "a replaced transport's late disconnect must not evict the live connection")
}

func TestKickRequiresElevatedRole(t *testing.T) {
	th := newTestHub(t, "R1")
	ctx := context.Background()

	th.register(t, "agent", domain.RoleAgent)
	bob := th.register(t, "bob", domain.RoleAgent)
	require.NoError(t, th.hub.JoinRoom(ctx, "bob", "R1"))
	bob.reset()

	err := th.hub.Kick(ctx, "R1", "bob", "agent")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.True(t, th.hub.Rooms.Contains("R1", "bob"))
	assert.Empty(t, bob.eventsOfType(t, "kicked"))
}

func TestKickByAdmin(t *testing.T) {
	th := newTestHub(t, "R1")
	ctx := context.Background()

	th.register(t, "admin", domain.RoleAdmin)
	bob := th.register(t, "bob", domain.RoleAgent)
	require.NoError(t, th.hub.JoinRoom(ctx, "bob", "R1"))
	bob.reset()

	require.NoError(t, th.hub.Kick(ctx, "R1", "bob", "admin"))

	assert.False(t, th.hub.Rooms.Contains("R1", "bob"))
	kicked := bob.eventsOfType(t, "kicked")
	require.Len(t, kicked, 1)
	assert.Equal(t, "admin", kicked[0]["by"])
	assert.Len(t, bob.eventsOfType(t, "removedFromRoom"), 1)
}

func TestJoinRoomSwitchesRooms(t *testing.T) {
	th := newTestHub(t, "R1", "R2")
	ctx := context.Background()

	th.register(t, "alice", domain.RoleAgent)
	require.NoError(t, th.hub.JoinRoom(ctx, "alice", "R1"))
	require.NoError(t, th.hub.JoinRoom(ctx, "alice", "R2"))

	assert.False(t, th.hub.Rooms.Contains("R1", "alice"))
	assert.True(t, th.hub.Rooms.Contains("R2", "alice"))
	room, _ := th.hub.Registry.RoomOf("alice")
	assert.Equal(t, domain.RoomCode("R2"), room)
}

func TestCreateLinkNotifiesCreator(t *testing.T) {
	th := newTestHub(t)
	alice := th.register(t, "alice", domain.RoleAgent)
	alice.reset()

	link, err := th.hub.CreateLink(domain.LinkConversation, "", []domain.Identity{"alice", "bob"}, "alice")
	require.NoError(t, err)

	got := alice.eventsOfType(t, "temporaryLinkCreated")
	require.Len(t, got, 1)
	payload := got[0]["link"].(map[string]any)
	assert.Equal(t, link.Token, payload["token"])
}

func TestJoinViaConversationLinkMaterializesGroup(t *testing.T) {
	th := newTestHub(t)
	th.register(t, "alice", domain.RoleAgent)
	carol := th.register(t, "carol", domain.RoleAgent)

	link, err := th.hub.CreateLink(domain.LinkConversation, "", []domain.Identity{"alice", "bob"}, "alice")
	require.NoError(t, err)
	carol.reset()

	require.NoError(t, th.hub.JoinViaLink(context.Background(), link.Token, "carol"))

	name := domain.GroupName("tmp-" + link.Token[:8])
	members := th.hub.Groups.Members(name)
	assert.ElementsMatch(t, []domain.Identity{"alice", "bob", "carol"}, members)

	got := carol.eventsOfType(t, "joinedTemporaryConversation")
	require.Len(t, got, 1)
	assert.Equal(t, string(name), got[0]["groupName"])
}

func TestJoinViaRoomLinkIsInformative(t *testing.T) {
	th := newTestHub(t, "R1")
	th.register(t, "alice", domain.RoleAgent)
	carol := th.register(t, "carol", domain.RoleAgent)

	link, err := th.hub.CreateLink(domain.LinkRoom, "R1", nil, "alice")
	require.NoError(t, err)
	carol.reset()

	require.NoError(t, th.hub.JoinViaLink(context.Background(), link.Token, "carol"))

	got := carol.eventsOfType(t, "joinedTemporaryRoom")
	require.Len(t, got, 1)
	assert.Equal(t, "R1", got[0]["roomCode"])
	assert.False(t, th.hub.Rooms.Contains("R1", "carol"),
		"room membership still goes through the join flow")
}

func TestJoinViaLinkRejectsBadToken(t *testing.T) {
	th := newTestHub(t)
	th.register(t, "carol", domain.RoleAgent)

	err := th.hub.JoinViaLink(context.Background(), "deadbeefdeadbeefdeadbeefdeadbeef", "carol")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredLink)
}

func TestNotifyRoomDeletedEvictsConnected(t *testing.T) {
	th := newTestHub(t, "R1")
	ctx := context.Background()

	alice := th.register(t, "alice", domain.RoleAgent)
	require.NoError(t, th.hub.JoinRoom(ctx, "alice", "R1"))
	alice.reset()

	th.hub.NotifyRoomDeleted(ctx, "R1")

	assert.False(t, th.hub.Rooms.Contains("R1", "alice"))
	assert.Len(t, alice.eventsOfType(t, "roomDeleted"), 1)
}

func TestSlowConsumerKickPolicy(t *testing.T) {
	th := newTestHub(t, "R1")
	ctx := context.Background()
	th.hub.UseKickSlowPolicy()

	th.register(t, "alice", domain.RoleAgent)
	slow := th.register(t, "slow", domain.RoleAgent)
	require.NoError(t, th.hub.JoinRoom(ctx, "alice", "R1"))
	require.NoError(t, th.hub.JoinRoom(ctx, "slow", "R1"))
	slow.full = true

	require.NoError(t, th.hub.Router.Route(ctx, &domain.MessageEnvelope{
		From:     "alice",
		Message:  "hi",
		IsGroup:  true,
		RoomCode: "R1",
	}))

	assert.True(t, slow.closed, "the kick policy closes the transport of a full consumer")
}
