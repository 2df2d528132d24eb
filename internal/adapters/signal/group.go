package signal

import (
	"github.com/samber/lo"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
)

func (ctl *Controller) handleCreateGroup(c *WsConn, data []byte) {
	type payload struct {
		Type    string   `json:"type"`
		Name    string   `json:"groupName" validate:"required,max=64"`
		Members []string `json:"members,omitempty" validate:"max=256,dive,max=64"`
	}
	var p payload
	if err := decode(data, &p); err != nil {
		ctl.fail(c, "bad_payload", "invalid createGroup event")
		return
	}
	members := lo.Map(p.Members, func(m string, _ int) domain.Identity { return domain.Identity(m) })
	ctl.Hub.CreateGroup(domain.GroupName(p.Name), c.Identity(), members...)
}

func (ctl *Controller) handleJoinGroup(c *WsConn, data []byte) {
	type payload struct {
		Type string `json:"type"`
		Name string `json:"groupName" validate:"required,max=64"`
	}
	var p payload
	if err := decode(data, &p); err != nil {
		ctl.fail(c, "bad_payload", "invalid joinGroup event")
		return
	}
	ctl.Hub.JoinGroup(domain.GroupName(p.Name), c.Identity())
}

func (ctl *Controller) handleLeaveGroup(c *WsConn, data []byte) {
	type payload struct {
		Type string `json:"type"`
		Name string `json:"groupName" validate:"required,max=64"`
	}
	var p payload
	if err := decode(data, &p); err != nil {
		ctl.fail(c, "bad_payload", "invalid leaveGroup event")
		return
	}
	ctl.Hub.LeaveGroup(domain.GroupName(p.Name), c.Identity())
}
