package signal

import (
	"context"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
)

func (ctl *Controller) handleMarkAsRead(ctx context.Context, c *WsConn, data []byte) {
	type payload struct {
		Type      string `json:"type"`
		MessageID string `json:"messageId" validate:"required"`
	}
	var p payload
	if err := decode(data, &p); err != nil {
		ctl.fail(c, "bad_payload", "invalid markAsRead event")
		return
	}
	if err := ctl.Hub.Tracker.MarkRead(ctx, p.MessageID, c.Identity()); err != nil {
		ctl.fail(c, "MessageNotFound", err.Error())
	}
}

func (ctl *Controller) handleMarkConversationAsRead(ctx context.Context, c *WsConn, data []byte) {
	type payload struct {
		Type  string `json:"type"`
		Other string `json:"other" validate:"required,max=64"`
	}
	var p payload
	if err := decode(data, &p); err != nil {
		ctl.fail(c, "bad_payload", "invalid markConversationAsRead event")
		return
	}
	if err := ctl.Hub.Tracker.MarkConversationRead(ctx, c.Identity(), domain.Identity(p.Other)); err != nil {
		ctl.failErr(c, err)
	}
}

func (ctl *Controller) handleMarkRoomMessageAsRead(ctx context.Context, c *WsConn, data []byte) {
	type payload struct {
		Type     string `json:"type"`
		RoomCode string `json:"roomCode" validate:"required,max=36"`
	}
	var p payload
	if err := decode(data, &p); err != nil {
		ctl.fail(c, "bad_payload", "invalid markRoomMessageAsRead event")
		return
	}
	if err := ctl.Hub.Tracker.MarkRoomRead(ctx, domain.RoomCode(p.RoomCode), c.Identity()); err != nil {
		ctl.failErr(c, err)
	}
}

func (ctl *Controller) handleToggleReaction(ctx context.Context, c *WsConn, data []byte) {
	type payload struct {
		Type      string `json:"type"`
		MessageID string `json:"messageId" validate:"required"`
		Emoji     string `json:"emoji" validate:"required,max=16"`
	}
	var p payload
	if err := decode(data, &p); err != nil {
		ctl.fail(c, "bad_payload", "invalid toggleReaction event")
		return
	}
	if err := ctl.Hub.Tracker.ToggleReaction(ctx, p.MessageID, c.Identity(), p.Emoji); err != nil {
		ctl.fail(c, "MessageNotFound", err.Error())
	}
}
