package signal

import (
	"context"

	"github.com/samber/lo"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
)

func (ctl *Controller) handleCreateLink(c *WsConn, data []byte) {
	type payload struct {
		Type         string   `json:"type"`
		LinkType     string   `json:"linkType" validate:"required,oneof=room conversation"`
		RoomCode     string   `json:"roomCode,omitempty" validate:"max=36"`
		Participants []string `json:"participants,omitempty" validate:"max=256,dive,max=64"`
	}
	var p payload
	if err := decode(data, &p); err != nil {
		ctl.fail(c, "bad_payload", "invalid createTemporaryLink event")
		return
	}
	participants := lo.Map(p.Participants, func(m string, _ int) domain.Identity { return domain.Identity(m) })
	_, err := ctl.Hub.CreateLink(domain.LinkType(p.LinkType), domain.RoomCode(p.RoomCode), participants, c.Identity())
	if err != nil {
		ctl.failErr(c, err)
	}
}

func (ctl *Controller) handleJoinLink(ctx context.Context, c *WsConn, data []byte) {
	type payload struct {
		Type  string `json:"type"`
		Token string `json:"token" validate:"required,len=32,hexadecimal"`
	}
	var p payload
	if err := decode(data, &p); err != nil {
		ctl.fail(c, "bad_payload", "invalid joinTemporaryLink event")
		return
	}
	if err := ctl.Hub.JoinViaLink(ctx, p.Token, c.Identity()); err != nil {
		ctl.failErr(c, err)
	}
}
