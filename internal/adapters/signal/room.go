package signal

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
)

func (ctl *Controller) handleJoinRoom(ctx context.Context, c *WsConn, data []byte) {
	type payload struct {
		Type     string `json:"type"`
		RoomCode string `json:"roomCode" validate:"required,max=36"`
	}
	var p payload
	if err := decode(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad joinRoom payload")
		ctl.fail(c, "bad_payload", "invalid joinRoom event")
		return
	}
	code, err := domain.NewRoomCode(p.RoomCode)
	if err != nil {
		ctl.fail(c, "bad_payload", err.Error())
		return
	}
	if err := ctl.Hub.JoinRoom(ctx, c.Identity(), code); err != nil {
		ctl.failErr(c, err)
	}
}

func (ctl *Controller) handleLeaveRoom(ctx context.Context, c *WsConn, data []byte) {
	type payload struct {
		Type     string `json:"type"`
		RoomCode string `json:"roomCode" validate:"required,max=36"`
	}
	var p payload
	if err := decode(data, &p); err != nil {
		ctl.fail(c, "bad_payload", "invalid leaveRoom event")
		return
	}
	ctl.Hub.LeaveRoom(ctx, c.Identity(), domain.RoomCode(p.RoomCode))
}

func (ctl *Controller) handleKickUser(ctx context.Context, c *WsConn, data []byte) {
	type payload struct {
		Type     string `json:"type"`
		RoomCode string `json:"roomCode" validate:"required,max=36"`
		Target   string `json:"target" validate:"required,max=64"`
	}
	var p payload
	if err := decode(data, &p); err != nil {
		ctl.fail(c, "bad_payload", "invalid kickUser event")
		return
	}
	err := ctl.Hub.Kick(ctx, domain.RoomCode(p.RoomCode), domain.Identity(p.Target), c.Identity())
	if err != nil {
		ctl.failErr(c, err)
	}
}
