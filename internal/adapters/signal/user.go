package signal

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
)

// handleRegister binds the connection to an identity. A bearer token is
// preferred when present; otherwise the payload claims are trusted as-is
// (registration-time trust, not re-checked per action).
func (ctl *Controller) handleRegister(ctx context.Context, c *WsConn, data []byte) {
	type payload struct {
		Type        string `json:"type"`
		Identity    string `json:"identity" validate:"required,max=64"`
		Token       string `json:"token,omitempty"`
		DisplayName string `json:"displayName,omitempty" validate:"max=64"`
		Role        string `json:"role,omitempty"`
		Avatar      string `json:"avatar,omitempty"`
	}
	var p payload
	if err := decode(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad register payload")
		ctl.fail(c, "bad_payload", "invalid register event")
		return
	}

	var claims *domain.Claims
	if p.Token != "" && ctl.Auth != nil {
		verified, err := ctl.Auth.Verify(p.Token)
		if err != nil {
			log.Warn().Err(err).Str("module", "signal").Msg("token rejected")
			ctl.fail(c, "unauthorized", "invalid token")
			return
		}
		claims = verified
	} else {
		id, err := domain.NewIdentity(p.Identity)
		if err != nil {
			ctl.fail(c, "bad_payload", err.Error())
			return
		}
		claims = &domain.Claims{
			Identity: id,
			Profile: domain.Profile{
				DisplayName: p.DisplayName,
				Role:        domain.Role(p.Role),
				Avatar:      p.Avatar,
			},
		}
	}
	if claims.Profile.Role == "" {
		claims.Profile.Role = domain.RoleAgent
	}

	c.bind(claims.Identity)
	ctl.Hub.Register(ctx, claims, c)
	log.Info().Str("module", "signal").Str("identity", string(claims.Identity)).Msg("registered")
}

// handleUserListPage answers an explicit roster page request from an
// elevated identity.
func (ctl *Controller) handleUserListPage(c *WsConn, data []byte) {
	type payload struct {
		Type     string `json:"type"`
		Page     int    `json:"page" validate:"min=1"`
		PageSize int    `json:"pageSize" validate:"min=0,max=500"`
	}
	var p payload
	if err := decode(data, &p); err != nil {
		ctl.fail(c, "bad_payload", "invalid userListPage event")
		return
	}
	conn, ok := ctl.Hub.Registry.Lookup(c.Identity())
	if !ok {
		ctl.fail(c, "NotConnected", "no registered connection")
		return
	}
	ctl.Hub.Presence.PushPage(conn, p.Page, p.PageSize)
}
