package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/core"
	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
)

const DefaultPageSize = 50

// Presence computes and pushes role-scoped visibility lists. Elevated
// roles see the paginated full roster of connected identities;
// everyone else sees self plus the counterparts of their assigned
// conversations, offline ones resolved through the user directory.
type Presence struct {
	reg      *Registry
	dir      core.UserDirectory
	pageSize int
}

func NewPresence(reg *Registry, dir core.UserDirectory, pageSize int) *Presence {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Presence{reg: reg, dir: dir, pageSize: pageSize}
}

// Roster returns one page of the currently connected identities. The
// full roster never includes offline identities.
func (p *Presence) Roster(page, pageSize int) core.RosterPage {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = p.pageSize
	}

	conns := p.reg.Snapshot()
	entries := lo.Map(conns, func(c *Connection, _ int) core.PresenceEntry {
		return core.PresenceEntry{
			Identity:    c.Identity,
			DisplayName: c.Profile.DisplayName,
			Role:        c.Profile.Role,
			Online:      true,
		}
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].Identity < entries[j].Identity })

	total := len(entries)
	totalPages := (total + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return core.RosterPage{
		Users:      entries[start:end],
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Restricted builds the non-elevated list: self plus the other
// participant of each assigned conversation, online state from the
// registry and offline attributes from the directory. An identity
// appears at most once.
func (p *Presence) Restricted(ctx context.Context, id domain.Identity) ([]core.PresenceEntry, error) {
	self, ok := p.reg.Lookup(id)
	if !ok {
		return nil, ErrNotConnected
	}

	entries := []core.PresenceEntry{{
		Identity:    self.Identity,
		DisplayName: self.Profile.DisplayName,
		Role:        self.Profile.Role,
		Online:      true,
	}}

	others, err := p.dir.Assignments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("assignments of %s: %w", id, err)
	}
	for _, other := range others {
		if other == id {
			continue
		}
		if c, ok := p.reg.Lookup(other); ok {
			entries = append(entries, core.PresenceEntry{
				Identity:    c.Identity,
				DisplayName: c.Profile.DisplayName,
				Role:        c.Profile.Role,
				Online:      true,
			})
			continue
		}
		entry := core.PresenceEntry{Identity: other, Online: false}
		if prof, err := p.dir.Lookup(ctx, other); err == nil && prof != nil {
			entry.DisplayName = prof.DisplayName
			entry.Role = prof.Role
		} else if err != nil {
			log.Warn().Err(err).Str("module", "app.presence").Str("identity", string(other)).Msg("directory lookup failed")
		}
		entries = append(entries, entry)
	}

	return lo.UniqBy(entries, func(e core.PresenceEntry) domain.Identity { return e.Identity }), nil
}

// BroadcastAll recomputes and pushes the visibility list of every
// connected identity. Triggered on register, unregister, room
// join/leave and external assignment updates; push-based, no polling.
func (p *Presence) BroadcastAll(ctx context.Context) {
	for _, c := range p.reg.Snapshot() {
		p.PushTo(ctx, c)
	}
}

// PushTo sends the list appropriate for one connection. The directory
// call may suspend; the connection is re-checked afterwards rather than
// assumed still present.
func (p *Presence) PushTo(ctx context.Context, c *Connection) {
	if c.Profile.Role.Elevated() {
		page := p.Roster(1, p.pageSize)
		push(c, struct {
			Type string `json:"type"`
			core.RosterPage
		}{Type: "userList", RosterPage: page})
		return
	}

	entries, err := p.Restricted(ctx, c.Identity)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.presence").Str("identity", string(c.Identity)).Msg("restricted presence")
		return
	}
	// The directory call may have suspended; push to whichever connection
	// holds the identity now, not the captured one.
	cur, ok := p.reg.Lookup(c.Identity)
	if !ok {
		return
	}
	push(cur, struct {
		Type  string               `json:"type"`
		Users []core.PresenceEntry `json:"users"`
	}{Type: "userList", Users: entries})
}

// PushPage answers an explicit page request from an elevated identity.
func (p *Presence) PushPage(c *Connection, page, pageSize int) {
	if !c.Profile.Role.Elevated() {
		push(c, errorEvent("forbidden", "full roster requires an elevated role"))
		return
	}
	push(c, struct {
		Type string `json:"type"`
		core.RosterPage
	}{Type: "userListPage", RosterPage: p.Roster(page, pageSize)})
}
