package signal

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/app"
	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
)

// handleMessage routes one chat message. The envelope's from field is
// overwritten with the registered identity so a client cannot speak for
// someone else.
func (ctl *Controller) handleMessage(ctx context.Context, c *WsConn, data []byte) {
	var env domain.MessageEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad message payload")
		ctl.fail(c, "bad_payload", "invalid message event")
		return
	}
	env.ID = ""
	env.From = c.Identity()
	if err := ctl.Hub.Router.Route(ctx, &env); err != nil {
		ctl.failErr(c, err)
	}
}

func (ctl *Controller) handleTyping(c *WsConn, data []byte) {
	type payload struct {
		Type     string `json:"type"`
		To       string `json:"to,omitempty" validate:"max=64"`
		RoomCode string `json:"roomCode,omitempty" validate:"max=36"`
		IsTyping bool   `json:"isTyping"`
	}
	var p payload
	if err := decode(data, &p); err != nil {
		ctl.fail(c, "bad_payload", "invalid typing event")
		return
	}
	err := ctl.Hub.Router.Typing(c.Identity(), domain.Identity(p.To), domain.RoomCode(p.RoomCode), p.IsTyping)
	if err != nil {
		ctl.failErr(c, err)
	}
}

func (ctl *Controller) handleEditMessage(ctx context.Context, c *WsConn, data []byte) {
	type payload struct {
		Type      string `json:"type"`
		MessageID string `json:"messageId" validate:"required"`
		Message   string `json:"message" validate:"required"`
	}
	var p payload
	if err := decode(data, &p); err != nil {
		ctl.fail(c, "bad_payload", "invalid editMessage event")
		return
	}
	if err := ctl.Hub.Router.Edit(ctx, p.MessageID, p.Message, c.Identity()); err != nil {
		if errors.Is(err, app.ErrForbidden) {
			ctl.failErr(c, err)
			return
		}
		ctl.fail(c, "MessageNotFound", err.Error())
	}
}

func (ctl *Controller) handleThreadMessage(c *WsConn, data []byte) {
	var env domain.MessageEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		ctl.fail(c, "bad_payload", "invalid threadMessage event")
		return
	}
	env.From = c.Identity()
	if err := ctl.Hub.Router.ThreadMessage(&env); err != nil {
		ctl.failErr(c, err)
	}
}

func (ctl *Controller) handleThreadCountUpdated(c *WsConn, data []byte) {
	var env domain.MessageEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		ctl.fail(c, "bad_payload", "invalid threadCountUpdated event")
		return
	}
	env.From = c.Identity()
	if err := ctl.Hub.Router.ThreadCountUpdated(&env); err != nil {
		ctl.failErr(c, err)
	}
}
