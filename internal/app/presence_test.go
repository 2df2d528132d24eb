package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
)

func TestRestrictedPresenceWithOfflineCounterpart(t *testing.T) {
	th := newTestHub(t)
	ctx := context.Background()

	th.dir.assigns["alice"] = []domain.Identity{"bob"}
	th.dir.profiles["bob"] = domain.Profile{DisplayName: "Bob R", Role: domain.RoleAgent}
	th.register(t, "alice", domain.RoleAgent)

	entries, err := th.hub.Presence.Restricted(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, domain.Identity("alice"), entries[0].Identity)
	assert.True(t, entries[0].Online)

	assert.Equal(t, domain.Identity("bob"), entries[1].Identity)
	assert.False(t, entries[1].Online)
	assert.Equal(t, "Bob R", entries[1].DisplayName, "offline attributes come from the directory")
}

func TestRestrictedPresenceOnlineCounterpart(t *testing.T) {
	th := newTestHub(t)
	ctx := context.Background()

	th.dir.assigns["alice"] = []domain.Identity{"bob"}
	th.register(t, "alice", domain.RoleAgent)
	th.register(t, "bob", domain.RoleAgent)

	entries, err := th.hub.Presence.Restricted(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[1].Online, "registered counterpart resolves against the registry first")
}

func TestRestrictedPresenceDeduplicates(t *testing.T) {
	th := newTestHub(t)
	ctx := context.Background()

	// bob appears in two assigned conversations.
	th.dir.assigns["alice"] = []domain.Identity{"bob", "bob"}
	th.dir.profiles["bob"] = domain.Profile{DisplayName: "Bob R"}
	th.register(t, "alice", domain.RoleAgent)

	entries, err := th.hub.Presence.Restricted(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, entries, 2, "an identity appears at most once")
}

func TestRosterPagination(t *testing.T) {
	th := newTestHub(t)
	for _, id := range []domain.Identity{"a", "b", "c", "d", "e"} {
		th.register(t, id, domain.RoleAgent)
	}

	page := th.hub.Presence.Roster(2, 2)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Users, 2)
	assert.Equal(t, domain.Identity("c"), page.Users[0].Identity)
	assert.Equal(t, domain.Identity("d"), page.Users[1].Identity)

	last := th.hub.Presence.Roster(3, 2)
	require.Len(t, last.Users, 1)
	assert.Equal(t, domain.Identity("e"), last.Users[0].Identity)

	beyond := th.hub.Presence.Roster(9, 2)
	assert.Empty(t, beyond.Users)
}

func TestRosterOnlyConnected(t *testing.T) {
	th := newTestHub(t)
	th.dir.profiles["ghost"] = domain.Profile{DisplayName: "Ghost"}
	th.register(t, "alice", domain.RoleAdmin)

	page := th.hub.Presence.Roster(1, 10)
	require.Len(t, page.Users, 1)
	assert.Equal(t, domain.Identity("alice"), page.Users[0].Identity)
	assert.True(t, page.Users[0].Online, "full roster never includes offline identities")
}

func TestPresencePushedOnRegister(t *testing.T) {
	th := newTestHub(t)

	admin := th.register(t, "admin", domain.RoleAdmin)
	admin.reset()

	// A second registration triggers a recomputation pushed to everyone,
	// not merely to the initiating connection.
	th.register(t, "bob", domain.RoleAgent)

	lists := admin.eventsOfType(t, "userList")
	require.NotEmpty(t, lists)
	users := lists[len(lists)-1]["users"].([]any)
	assert.Len(t, users, 2)
}

func TestPushToFollowsReplacedConnection(t *testing.T) {
	th := newTestHub(t)
	ctx := context.Background()

	// alice reconnects while a presence push computed against the old
	// connection is still in flight; the push must land on the live
	// transport, not the captured one.
	stale := &fakeConn{}
	fresh := &fakeConn{}
	staleConn, _ := th.hub.Registry.Register("alice", domain.Profile{Role: domain.RoleAgent}, stale)
	th.hub.Registry.Register("alice", domain.Profile{Role: domain.RoleAgent}, fresh)

	th.hub.Presence.PushTo(ctx, staleConn)

	assert.Empty(t, stale.eventsOfType(t, "userList"))
	assert.Len(t, fresh.eventsOfType(t, "userList"), 1)
}

func TestPresencePushedOnDisconnect(t *testing.T) {
	th := newTestHub(t)

	admin := th.register(t, "admin", domain.RoleAdmin)
	bob := th.register(t, "bob", domain.RoleAgent)
	admin.reset()

	th.hub.Disconnect(context.Background(), "bob", bob)

	lists := admin.eventsOfType(t, "userList")
	require.NotEmpty(t, lists)
	users := lists[len(lists)-1]["users"].([]any)
	assert.Len(t, users, 1)
}
