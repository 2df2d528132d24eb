package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
	"github.com/anibaler123143423234321/backend-chat-sub000/internal/metrics"
)

var ErrInvalidOrExpiredLink = errors.New("invalid or expired link")

const (
	DefaultLinkTTL    = 30 * time.Minute
	DefaultSweepEvery = 5 * time.Minute
)

// LinkManager issues and expires short-lived join tokens for ad hoc
// rooms and conversations. Links live in memory only; a periodic sweep
// bounds memory independent of lookup traffic.
type LinkManager struct {
	mu    sync.Mutex
	links map[string]*domain.EphemeralLink

	ttl        time.Duration
	sweepEvery time.Duration
	now        func() time.Time
}

func NewLinkManager(ttl, sweepEvery time.Duration) *LinkManager {
	if ttl <= 0 {
		ttl = DefaultLinkTTL
	}
	if sweepEvery <= 0 {
		sweepEvery = DefaultSweepEvery
	}
	return &LinkManager{
		links:      make(map[string]*domain.EphemeralLink),
		ttl:        ttl,
		sweepEvery: sweepEvery,
		now:        time.Now,
	}
}

func newToken() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("token entropy: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}

// Create issues a link with a fixed TTL. An identical request (same
// creator, type and participant set) returns the first existing active
// link instead of minting another.
func (m *LinkManager) Create(typ domain.LinkType, room domain.RoomCode, participants []domain.Identity, creator domain.Identity) (*domain.EphemeralLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for _, l := range m.links {
		if l.Valid(now) && l.Type == typ && l.Creator == creator && l.RoomCode == room &&
			len(lo.Without(l.Participants, participants...)) == 0 &&
			len(lo.Without(participants, l.Participants...)) == 0 {
			return l, nil
		}
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}
	l := &domain.EphemeralLink{
		Token:        token,
		Type:         typ,
		RoomCode:     room,
		Participants: participants,
		Creator:      creator,
		CreatedAt:    now,
		ExpiresAt:    now.Add(m.ttl),
		Active:       true,
	}
	m.links[token] = l
	metrics.ActiveLinks.Set(float64(len(m.links)))
	log.Info().Str("module", "app.links").Str("type", string(typ)).Str("creator", string(creator)).Msg("ephemeral link created")
	return l, nil
}

// Resolve succeeds iff the token exists, is active and has not expired.
func (m *LinkManager) Resolve(token string) (*domain.EphemeralLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[token]
	if !ok || !l.Valid(m.now()) {
		return nil, ErrInvalidOrExpiredLink
	}
	return l, nil
}

func (m *LinkManager) Deactivate(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[token]
	if !ok {
		return false
	}
	l.Active = false
	return true
}

func (m *LinkManager) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for token, l := range m.links {
		if !now.Before(l.ExpiresAt) {
			delete(m.links, token)
			removed++
		}
	}
	metrics.ActiveLinks.Set(float64(len(m.links)))
	if removed > 0 {
		log.Info().Str("module", "app.links").Int("removed", removed).Msg("swept expired links")
	}
}

// Run drives the periodic sweep until the context is canceled.
func (m *LinkManager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *LinkManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.links)
}
