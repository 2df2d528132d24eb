package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/core"
	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
	"github.com/anibaler123143423234321/backend-chat-sub000/internal/metrics"
)

// GroupManager holds the ad hoc in-memory groups. Membership is never
// persisted and is lost on process restart.
type GroupManager struct {
	mu     sync.RWMutex
	groups map[domain.GroupName]map[domain.Identity]struct{}
}

func NewGroupManager() *GroupManager {
	return &GroupManager{groups: make(map[domain.GroupName]map[domain.Identity]struct{})}
}

// Create makes the group if absent and seeds it with the given members.
func (m *GroupManager) Create(name domain.GroupName, members ...domain.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.groups[name]
	if !ok {
		set = make(map[domain.Identity]struct{})
		m.groups[name] = set
	}
	for _, id := range members {
		set[id] = struct{}{}
	}
	metrics.Groups.Set(float64(len(m.groups)))
	log.Info().Str("module", "app.groups").Str("group", string(name)).Int("members", len(set)).Msg("group created")
}

func (m *GroupManager) Join(name domain.GroupName, id domain.Identity) {
	m.Create(name, id)
}

// Leave removes the identity; an emptied group is pruned.
func (m *GroupManager) Leave(name domain.GroupName, id domain.Identity) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.groups[name]
	if !ok {
		return false
	}
	if _, ok := set[id]; !ok {
		return false
	}
	delete(set, id)
	if len(set) == 0 {
		delete(m.groups, name)
	}
	metrics.Groups.Set(float64(len(m.groups)))
	return true
}

// LeaveAll detaches the identity from every group it is in, returning
// whether anything changed. Used by the disconnect cascade.
func (m *GroupManager) LeaveAll(id domain.Identity) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	changed := false
	for name, set := range m.groups {
		if _, ok := set[id]; !ok {
			continue
		}
		delete(set, id)
		changed = true
		if len(set) == 0 {
			delete(m.groups, name)
		}
	}
	if changed {
		metrics.Groups.Set(float64(len(m.groups)))
	}
	return changed
}

func (m *GroupManager) Members(name domain.GroupName) []domain.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	set := m.groups[name]
	out := make([]domain.Identity, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

func (m *GroupManager) Snapshot() []core.GroupInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]core.GroupInfo, 0, len(m.groups))
	for name, set := range m.groups {
		members := make([]domain.Identity, 0, len(set))
		for id := range set {
			members = append(members, id)
		}
		out = append(out, core.GroupInfo{Name: name, Members: members})
	}
	return out
}
