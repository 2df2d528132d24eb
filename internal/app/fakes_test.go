package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/core"
	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
)

// fakeConn records every frame the core pushes at it.
type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
	full   bool
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("connection closed")
	}
	if c.full {
		return errors.New("backpressure")
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	c.frames = nil
	c.mu.Unlock()
}

func (c *fakeConn) events(t *testing.T) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.frames))
	for _, f := range c.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(f, &m))
		out = append(out, m)
	}
	return out
}

func (c *fakeConn) eventsOfType(t *testing.T, typ string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, e := range c.events(t) {
		if e["type"] == typ {
			out = append(out, e)
		}
	}
	return out
}

// memMessageStore mirrors the collaborator contract in memory.
type memMessageStore struct {
	mu         sync.Mutex
	msgs       map[string]*domain.StoredMessage
	seq        int
	failCreate bool
}

func newMemMessageStore() *memMessageStore {
	return &memMessageStore{msgs: make(map[string]*domain.StoredMessage)}
}

func (s *memMessageStore) Create(_ context.Context, env *domain.MessageEnvelope) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate {
		return "", errors.New("store down")
	}
	s.seq++
	id := fmt.Sprintf("m-%d", s.seq)
	s.msgs[id] = &domain.StoredMessage{
		ID:        id,
		From:      env.From,
		To:        env.To,
		IsGroup:   env.IsGroup,
		GroupName: env.GroupName,
		RoomCode:  env.RoomCode,
		Message:   env.Message,
		SentAt:    env.SentAt,
	}
	return id, nil
}

func (s *memMessageStore) seed(msg domain.StoredMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := msg
	s.msgs[msg.ID] = &cp
}

func (s *memMessageStore) Get(_ context.Context, id string) (*domain.StoredMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.msgs[id]
	if !ok {
		return nil, errors.New("message not found")
	}
	cp := *m
	return &cp, nil
}

func (s *memMessageStore) Edit(_ context.Context, id, text string) (*domain.StoredMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.msgs[id]
	if !ok {
		return nil, errors.New("message not found")
	}
	m.Message = text
	cp := *m
	return &cp, nil
}

func (s *memMessageStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.msgs, id)
	return nil
}

func (s *memMessageStore) MarkRead(_ context.Context, id string, reader domain.Identity) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.msgs[id]
	if !ok {
		return false, errors.New("message not found")
	}
	for _, r := range m.ReadBy {
		if r == reader {
			return false, nil
		}
	}
	m.ReadBy = append(m.ReadBy, reader)
	m.IsRead = true
	return true, nil
}

func (s *memMessageStore) MarkConversationRead(_ context.Context, reader, other domain.Identity) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.msgs {
		if m.IsGroup || m.RoomCode != "" || m.From != other || m.To != reader {
			continue
		}
		if !containsIdentity(m.ReadBy, reader) {
			m.ReadBy = append(m.ReadBy, reader)
			m.IsRead = true
			n++
		}
	}
	return n, nil
}

func (s *memMessageStore) MarkRoomRead(_ context.Context, room domain.RoomCode, reader domain.Identity) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.msgs {
		if m.RoomCode != room || m.From == reader {
			continue
		}
		if !containsIdentity(m.ReadBy, reader) {
			m.ReadBy = append(m.ReadBy, reader)
			m.IsRead = true
			n++
		}
	}
	return n, nil
}

func (s *memMessageStore) ToggleReaction(_ context.Context, id string, reader domain.Identity, emoji string) ([]domain.Reaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.msgs[id]
	if !ok {
		return nil, errors.New("message not found")
	}
	for i, r := range m.Reactions {
		if r.By != reader {
			continue
		}
		if r.Emoji == emoji {
			m.Reactions = append(m.Reactions[:i], m.Reactions[i+1:]...)
		} else {
			m.Reactions[i].Emoji = emoji
		}
		return append([]domain.Reaction(nil), m.Reactions...), nil
	}
	m.Reactions = append(m.Reactions, domain.Reaction{By: reader, Emoji: emoji})
	return append([]domain.Reaction(nil), m.Reactions...), nil
}

func containsIdentity(ids []domain.Identity, id domain.Identity) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// memRoomStore holds historical membership and counts appends so tests
// can assert single-append on repeated joins.
type memRoomStore struct {
	mu      sync.Mutex
	rooms   map[domain.RoomCode][]domain.Identity
	appends int
}

func newMemRoomStore(codes ...domain.RoomCode) *memRoomStore {
	s := &memRoomStore{rooms: make(map[domain.RoomCode][]domain.Identity)}
	for _, c := range codes {
		s.rooms[c] = nil
	}
	return s
}

func (s *memRoomStore) Exists(_ context.Context, code domain.RoomCode) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rooms[code]
	return ok, nil
}

func (s *memRoomStore) AppendMember(_ context.Context, code domain.RoomCode, id domain.Identity) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if containsIdentity(s.rooms[code], id) {
		return false, nil
	}
	s.rooms[code] = append(s.rooms[code], id)
	s.appends++
	return true, nil
}

func (s *memRoomStore) Members(_ context.Context, code domain.RoomCode) ([]domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Identity(nil), s.rooms[code]...), nil
}

type memDirectory struct {
	mu       sync.Mutex
	profiles map[domain.Identity]domain.Profile
	assigns  map[domain.Identity][]domain.Identity
}

func newMemDirectory() *memDirectory {
	return &memDirectory{
		profiles: make(map[domain.Identity]domain.Profile),
		assigns:  make(map[domain.Identity][]domain.Identity),
	}
}

func (d *memDirectory) Lookup(_ context.Context, id domain.Identity) (*domain.Profile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.profiles[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return &p, nil
}

func (d *memDirectory) Assignments(_ context.Context, id domain.Identity) ([]domain.Identity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.Identity(nil), d.assigns[id]...), nil
}

// testHub bundles a fully wired core over in-memory collaborators.
type testHub struct {
	hub   *Hub
	msgs  *memMessageStore
	rooms *memRoomStore
	dir   *memDirectory
}

func newTestHub(t *testing.T, roomCodes ...domain.RoomCode) *testHub {
	t.Helper()
	msgs := newMemMessageStore()
	roomStore := newMemRoomStore(roomCodes...)
	dir := newMemDirectory()

	reg := NewRegistry()
	rooms := NewRoomManager(roomStore)
	groups := NewGroupManager()
	links := NewLinkManager(30*time.Minute, 5*time.Minute)
	presence := NewPresence(reg, dir, 50)
	router := NewRouter(reg, rooms, groups, msgs)
	tracker := NewTracker(reg, rooms, groups, msgs, router)
	calls := NewCallRelay(reg)
	hub := NewHub(reg, rooms, groups, links, presence, router, tracker, calls, roomStore)

	return &testHub{hub: hub, msgs: msgs, rooms: roomStore, dir: dir}
}

func (th *testHub) register(t *testing.T, id domain.Identity, role domain.Role) *fakeConn {
	t.Helper()
	conn := &fakeConn{}
	th.hub.Register(context.Background(), &domain.Claims{
		Identity: id,
		Profile:  domain.Profile{DisplayName: string(id), Role: role},
	}, conn)
	return conn
}
