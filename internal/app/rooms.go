package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/core"
	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
	"github.com/anibaler123143423234321/backend-chat-sub000/internal/metrics"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrForbidden    = errors.New("forbidden")
)

// RoomManager tracks the connected subset of each durable room. Entries
// are created lazily on first join and pruned when their connected set
// empties; historical membership stays with the room store.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[domain.RoomCode]map[domain.Identity]struct{}
	store core.RoomStore
}

func NewRoomManager(store core.RoomStore) *RoomManager {
	return &RoomManager{
		rooms: make(map[domain.RoomCode]map[domain.Identity]struct{}),
		store: store,
	}
}

// Join idempotently adds the identity to the room's connected set.
// History is appended before the in-memory connect so the connected set
// stays a subset of the historical member list.
func (m *RoomManager) Join(ctx context.Context, code domain.RoomCode, id domain.Identity) error {
	ok, err := m.store.Exists(ctx, code)
	if err != nil {
		return fmt.Errorf("room lookup: %w", err)
	}
	if !ok {
		return ErrRoomNotFound
	}
	if _, err := m.store.AppendMember(ctx, code, id); err != nil {
		return fmt.Errorf("append member: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.rooms[code]
	if !ok {
		set = make(map[domain.Identity]struct{})
		m.rooms[code] = set
	}
	set[id] = struct{}{}
	metrics.Rooms.Set(float64(len(m.rooms)))
	log.Info().Str("module", "app.rooms").Str("room", string(code)).Str("identity", string(id)).Msg("joined room")
	return nil
}

// Leave idempotently removes the identity; an empty connected set is
// discarded (historical data remains in the store).
func (m *RoomManager) Leave(code domain.RoomCode, id domain.Identity) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.rooms[code]
	if !ok {
		return false
	}
	if _, ok := set[id]; !ok {
		return false
	}
	delete(set, id)
	if len(set) == 0 {
		delete(m.rooms, code)
	}
	metrics.Rooms.Set(float64(len(m.rooms)))
	log.Info().Str("module", "app.rooms").Str("room", string(code)).Str("identity", string(id)).Msg("left room")
	return true
}

func (m *RoomManager) Contains(code domain.RoomCode, id domain.Identity) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.rooms[code][id]
	return ok
}

// Connected snapshots the identities connected to the room right now.
func (m *RoomManager) Connected(code domain.RoomCode) []domain.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	set := m.rooms[code]
	out := make([]domain.Identity, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

func (m *RoomManager) Counts() []core.RoomInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(m.rooms))
	for code, set := range m.rooms {
		out = append(out, core.RoomInfo{Code: code, MemberCount: len(set)})
	}
	return out
}
