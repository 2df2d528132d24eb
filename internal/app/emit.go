package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/core"
	"github.com/anibaler123143423234321/backend-chat-sub000/internal/metrics"
)

// ErrorEvent answers a recoverable failure without tearing the
// connection down. Reason is a stable machine-readable string.
type ErrorEvent struct {
	Type    string `json:"type"`
	Reason  string `json:"reason"`
	Message string `json:"message,omitempty"`
}

func errorEvent(reason, msg string) ErrorEvent {
	return ErrorEvent{Type: "error", Reason: reason, Message: msg}
}

// push marshals and hands one event to a connection. A full send buffer
// drops the frame; the policy layer decides what happens to the slow
// consumer.
func push(c *Connection, v any) bool {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app").Msg("event marshal")
		return false
	}
	if err := c.Signal.TrySend(core.Frame(b)); err != nil {
		metrics.DroppedSends.Inc()
		log.Warn().Str("module", "app").Str("identity", string(c.Identity)).Msg("dropped frame on backpressure")
		return false
	}
	return true
}
