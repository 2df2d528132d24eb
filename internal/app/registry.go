package app

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/core"
	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
	"github.com/anibaler123143423234321/backend-chat-sub000/internal/metrics"
)

var ErrNotConnected = errors.New("identity not connected")

// Connection is the single live entry per identity. Owned exclusively by
// the Registry; Room is mutated through SetRoom/ClearRoom only.
type Connection struct {
	Identity domain.Identity
	Profile  domain.Profile
	Room     domain.RoomCode
	Signal   core.SignalConnection
}

// Registry tracks the one live connection per identity.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.Identity]*Connection
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.Identity]*Connection)}
}

// Register inserts or replaces the connection for the identity. Last
// writer wins on rapid reconnects; the replaced entry is returned so the
// caller can close its transport.
func (r *Registry) Register(id domain.Identity, profile domain.Profile, sig core.SignalConnection) (*Connection, *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	replaced := r.conns[id]
	c := &Connection{Identity: id, Profile: profile, Signal: sig}
	r.conns[id] = c
	metrics.Connections.Set(float64(len(r.conns)))
	log.Info().Str("module", "app.registry").Str("identity", string(id)).Str("role", string(profile.Role)).Msg("registered connection")
	return c, replaced
}

// Unregister removes the entry only if it still refers to the
// disconnecting transport handle, so a disconnect of an old connection
// never evicts the newer one that replaced it.
func (r *Registry) Unregister(id domain.Identity, sig core.SignalConnection) (*Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[id]
	if !ok || c.Signal != sig {
		return nil, false
	}
	delete(r.conns, id)
	metrics.Connections.Set(float64(len(r.conns)))
	log.Info().Str("module", "app.registry").Str("identity", string(id)).Msg("unregistered connection")
	return c, true
}

// Lookup returns the connection for the identity, falling back to a scan
// over folded forms when the exact key is absent.
func (r *Registry) Lookup(id domain.Identity) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.conns[id]; ok {
		return c, true
	}
	folded := id.Fold()
	for key, c := range r.conns {
		if key.Fold() == folded {
			return c, true
		}
	}
	return nil, false
}

func (r *Registry) RoomOf(id domain.Identity) (domain.RoomCode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[id]
	if !ok || c.Room == "" {
		return "", false
	}
	return c.Room, true
}

func (r *Registry) SetRoom(id domain.Identity, code domain.RoomCode) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[id]
	if !ok {
		return false
	}
	c.Room = code
	return true
}

func (r *Registry) ClearRoom(id domain.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.conns[id]; ok {
		c.Room = ""
	}
}

// Snapshot returns the connected set at this instant. Fan-out happens on
// the snapshot, outside the registry lock.
func (r *Registry) Snapshot() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Connection, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
