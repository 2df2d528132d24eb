package app

import (
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
)

func TestCallOfferRelayed(t *testing.T) {
	th := newTestHub(t)
	th.register(t, "alice", domain.RoleAgent)
	bob := th.register(t, "bob", domain.RoleAgent)
	bob.reset()

	sdp := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "v=0"}
	require.NoError(t, th.hub.Calls.Offer("alice", "bob", sdp))

	got := bob.eventsOfType(t, "callUser")
	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0]["from"])
	payload := got[0]["sdp"].(map[string]any)
	assert.Equal(t, "v=0", payload["sdp"])
}

func TestCallToOfflineTargetFails(t *testing.T) {
	th := newTestHub(t)
	alice := th.register(t, "alice", domain.RoleAgent)
	alice.reset()

	err := th.hub.Calls.Offer("alice", "bob", webrtc.SessionDescription{})
	assert.ErrorIs(t, err, ErrUnavailable)

	got := alice.eventsOfType(t, "callFailed")
	require.Len(t, got, 1)
	assert.Equal(t, "bob", got[0]["to"])
	assert.Equal(t, "unavailable", got[0]["reason"])
}

func TestCallAnswerAndCandidates(t *testing.T) {
	th := newTestHub(t)
	alice := th.register(t, "alice", domain.RoleAgent)
	bob := th.register(t, "bob", domain.RoleAgent)
	alice.reset()
	bob.reset()

	require.NoError(t, th.hub.Calls.Answer("bob", "alice", webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer}))
	require.Len(t, alice.eventsOfType(t, "callAccepted"), 1)

	require.NoError(t, th.hub.Calls.Candidate("alice", "bob", webrtc.ICECandidateInit{Candidate: "candidate:1"}))
	cands := bob.eventsOfType(t, "iceCandidate")
	require.Len(t, cands, 1)
	cand := cands[0]["candidate"].(map[string]any)
	assert.Equal(t, "candidate:1", cand["candidate"])
}

func TestCallRejectAndEnd(t *testing.T) {
	th := newTestHub(t)
	alice := th.register(t, "alice", domain.RoleAgent)
	th.register(t, "bob", domain.RoleAgent)
	alice.reset()

	require.NoError(t, th.hub.Calls.Reject("bob", "alice", "busy"))
	rejects := alice.eventsOfType(t, "callRejected")
	require.Len(t, rejects, 1)
	assert.Equal(t, "busy", rejects[0]["reason"])

	require.NoError(t, th.hub.Calls.End("bob", "alice"))
	assert.Len(t, alice.eventsOfType(t, "callEnded"), 1)
}

func TestCallRelayKeepsNoState(t *testing.T) {
	th := newTestHub(t)
	th.register(t, "alice", domain.RoleAgent)
	bob := th.register(t, "bob", domain.RoleAgent)

	// An end without a preceding offer is relayed as-is: the relay never
	// tracks call sessions.
	bob.reset()
	require.NoError(t, th.hub.Calls.End("alice", "bob"))
	assert.Len(t, bob.eventsOfType(t, "callEnded"), 1)
}
