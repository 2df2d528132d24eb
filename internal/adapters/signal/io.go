package signal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/app"
)

var validate = validator.New()

func (ctl *Controller) writePump(ctx context.Context, c *WsConn) {
	ticker := time.NewTicker(ctl.pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Info().Err(err).Str("module", "signal").Msg("writePump ping failed")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, c *WsConn) {
	defer func() {
		id := c.Identity()
		log.Info().Str("module", "signal").Str("identity", string(id)).Msg("readPump closing")
		if id != "" {
			ctl.Hub.Disconnect(ctx, id, c)
			ctl.limiter.Forget(id)
		}
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Msg("readPump read error")
				return
			}
			ctl.handleEvent(ctx, c, data)
		}
	}
}

func (ctl *Controller) handleEvent(ctx context.Context, c *WsConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		ctl.fail(c, "bad_payload", "malformed event")
		return
	}

	if env.Type != "register" {
		id := c.Identity()
		if id == "" {
			ctl.fail(c, "not_registered", "register first")
			return
		}
		if !ctl.limiter.Allow(id) {
			ctl.fail(c, "rate_limited", "slow down")
			return
		}
	}

	switch env.Type {
	case "register":
		ctl.handleRegister(ctx, c, data)
	case "joinRoom":
		ctl.handleJoinRoom(ctx, c, data)
	case "leaveRoom":
		ctl.handleLeaveRoom(ctx, c, data)
	case "kickUser":
		ctl.handleKickUser(ctx, c, data)
	case "createGroup":
		ctl.handleCreateGroup(c, data)
	case "joinGroup":
		ctl.handleJoinGroup(c, data)
	case "leaveGroup":
		ctl.handleLeaveGroup(c, data)
	case "createTemporaryLink":
		ctl.handleCreateLink(c, data)
	case "joinTemporaryLink":
		ctl.handleJoinLink(ctx, c, data)
	case "message":
		ctl.handleMessage(ctx, c, data)
	case "typing":
		ctl.handleTyping(c, data)
	case "editMessage":
		ctl.handleEditMessage(ctx, c, data)
	case "markAsRead":
		ctl.handleMarkAsRead(ctx, c, data)
	case "markConversationAsRead":
		ctl.handleMarkConversationAsRead(ctx, c, data)
	case "markRoomMessageAsRead":
		ctl.handleMarkRoomMessageAsRead(ctx, c, data)
	case "toggleReaction":
		ctl.handleToggleReaction(ctx, c, data)
	case "threadMessage":
		ctl.handleThreadMessage(c, data)
	case "threadCountUpdated":
		ctl.handleThreadCountUpdated(c, data)
	case "userListPage":
		ctl.handleUserListPage(c, data)
	case "callUser":
		ctl.handleCallUser(c, data)
	case "answerCall":
		ctl.handleAnswerCall(c, data)
	case "callRejected":
		ctl.handleCallRejected(c, data)
	case "iceCandidate":
		ctl.handleIceCandidate(c, data)
	case "callEnded":
		ctl.handleCallEnded(c, data)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown event")
		ctl.fail(c, "unknown_event", env.Type)
	}
}

// decode unmarshals and validates an inbound payload before it touches
// the core.
func decode[T any](data []byte, p *T) error {
	if err := json.Unmarshal(data, p); err != nil {
		return err
	}
	return validate.Struct(p)
}

func (ctl *Controller) sendJSON(c *WsConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *Controller) fail(c *WsConn, reason, msg string) {
	ctl.sendJSON(c, map[string]any{
		"type":    "error",
		"reason":  reason,
		"message": msg,
	})
}

// failErr maps core sentinel errors onto stable error-event reasons.
func (ctl *Controller) failErr(c *WsConn, err error) {
	reason := "internal"
	switch {
	case errors.Is(err, app.ErrInvalidOrExpiredLink):
		reason = "InvalidOrExpiredLink"
	case errors.Is(err, app.ErrRoomNotFound):
		reason = "RoomNotFound"
	case errors.Is(err, app.ErrForbidden):
		reason = "forbidden"
	case errors.Is(err, app.ErrNotConnected):
		reason = "NotConnected"
	case errors.Is(err, app.ErrNotInRoom):
		reason = "NotInRoom"
	case errors.Is(err, app.ErrNoTarget):
		reason = "BadTarget"
	}
	ctl.fail(c, reason, err.Error())
}
