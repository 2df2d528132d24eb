package app

import (
	"errors"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
)

var ErrUnavailable = errors.New("call target unavailable")

// CallRelay passes WebRTC signaling between two connections. It retains
// no state between operations and never queues: both parties must be
// online simultaneously for a call to be established.
type CallRelay struct {
	reg *Registry
}

func NewCallRelay(reg *Registry) *CallRelay {
	return &CallRelay{reg: reg}
}

func (r *CallRelay) Offer(from, to domain.Identity, sdp webrtc.SessionDescription) error {
	return r.relay(from, to, struct {
		Type string                    `json:"type"`
		From domain.Identity           `json:"from"`
		SDP  webrtc.SessionDescription `json:"sdp"`
	}{Type: "callUser", From: from, SDP: sdp})
}

func (r *CallRelay) Answer(from, to domain.Identity, sdp webrtc.SessionDescription) error {
	return r.relay(from, to, struct {
		Type string                    `json:"type"`
		From domain.Identity           `json:"from"`
		SDP  webrtc.SessionDescription `json:"sdp"`
	}{Type: "callAccepted", From: from, SDP: sdp})
}

func (r *CallRelay) Reject(from, to domain.Identity, reason string) error {
	return r.relay(from, to, struct {
		Type   string          `json:"type"`
		From   domain.Identity `json:"from"`
		Reason string          `json:"reason,omitempty"`
	}{Type: "callRejected", From: from, Reason: reason})
}

func (r *CallRelay) Candidate(from, to domain.Identity, cand webrtc.ICECandidateInit) error {
	return r.relay(from, to, struct {
		Type      string                  `json:"type"`
		From      domain.Identity         `json:"from"`
		Candidate webrtc.ICECandidateInit `json:"candidate"`
	}{Type: "iceCandidate", From: from, Candidate: cand})
}

func (r *CallRelay) End(from, to domain.Identity) error {
	return r.relay(from, to, struct {
		Type string          `json:"type"`
		From domain.Identity `json:"from"`
	}{Type: "callEnded", From: from})
}

// relay delivers to the target if connected; otherwise the caller gets a
// callFailed with reason unavailable instead of any queuing.
func (r *CallRelay) relay(from, to domain.Identity, v any) error {
	target, ok := r.reg.Lookup(to)
	if !ok {
		if caller, ok := r.reg.Lookup(from); ok {
			push(caller, struct {
				Type   string          `json:"type"`
				To     domain.Identity `json:"to"`
				Reason string          `json:"reason"`
			}{Type: "callFailed", To: to, Reason: "unavailable"})
		}
		log.Info().Str("module", "app.calls").Str("from", string(from)).Str("to", string(to)).Msg("call target offline")
		return ErrUnavailable
	}
	push(target, v)
	return nil
}
