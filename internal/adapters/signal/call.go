package signal

import (
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/app"
	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
)

// Call signaling is a stateless pass-through: the payloads are typed but
// never inspected, and nothing is retained between operations.

func (ctl *Controller) handleCallUser(c *WsConn, data []byte) {
	type payload struct {
		Type string                    `json:"type"`
		To   string                    `json:"to" validate:"required,max=64"`
		SDP  webrtc.SessionDescription `json:"sdp"`
	}
	var p payload
	if err := decode(data, &p); err != nil {
		ctl.fail(c, "bad_payload", "invalid callUser event")
		return
	}
	ctl.relayResult(c, ctl.Hub.Calls.Offer(c.Identity(), domain.Identity(p.To), p.SDP))
}

func (ctl *Controller) handleAnswerCall(c *WsConn, data []byte) {
	type payload struct {
		Type string                    `json:"type"`
		To   string                    `json:"to" validate:"required,max=64"`
		SDP  webrtc.SessionDescription `json:"sdp"`
	}
	var p payload
	if err := decode(data, &p); err != nil {
		ctl.fail(c, "bad_payload", "invalid answerCall event")
		return
	}
	ctl.relayResult(c, ctl.Hub.Calls.Answer(c.Identity(), domain.Identity(p.To), p.SDP))
}

func (ctl *Controller) handleCallRejected(c *WsConn, data []byte) {
	type payload struct {
		Type   string `json:"type"`
		To     string `json:"to" validate:"required,max=64"`
		Reason string `json:"reason,omitempty" validate:"max=128"`
	}
	var p payload
	if err := decode(data, &p); err != nil {
		ctl.fail(c, "bad_payload", "invalid callRejected event")
		return
	}
	ctl.relayResult(c, ctl.Hub.Calls.Reject(c.Identity(), domain.Identity(p.To), p.Reason))
}

func (ctl *Controller) handleIceCandidate(c *WsConn, data []byte) {
	type payload struct {
		Type      string                  `json:"type"`
		To        string                  `json:"to" validate:"required,max=64"`
		Candidate webrtc.ICECandidateInit `json:"candidate"`
	}
	var p payload
	if err := decode(data, &p); err != nil {
		ctl.fail(c, "bad_payload", "invalid iceCandidate event")
		return
	}
	ctl.relayResult(c, ctl.Hub.Calls.Candidate(c.Identity(), domain.Identity(p.To), p.Candidate))
}

func (ctl *Controller) handleCallEnded(c *WsConn, data []byte) {
	type payload struct {
		Type string `json:"type"`
		To   string `json:"to" validate:"required,max=64"`
	}
	var p payload
	if err := decode(data, &p); err != nil {
		ctl.fail(c, "bad_payload", "invalid callEnded event")
		return
	}
	ctl.relayResult(c, ctl.Hub.Calls.End(c.Identity(), domain.Identity(p.To)))
}

// relayResult: an offline target already produced a callFailed event for
// the caller inside the relay, so it is only logged here.
func (ctl *Controller) relayResult(c *WsConn, err error) {
	if err != nil && err != app.ErrUnavailable {
		ctl.failErr(c, err)
	} else if err != nil {
		log.Info().Str("module", "signal").Str("identity", string(c.Identity())).Msg("call relay to offline target")
	}
}
