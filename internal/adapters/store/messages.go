package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
)

func msgKey(id string) []byte { return []byte("msg|" + id) }

var msgPrefix = []byte("msg|")

func (s *Badger) Create(_ context.Context, env *domain.MessageEnvelope) (string, error) {
	id := uuid.NewString()
	rec := domain.StoredMessage{
		ID:        id,
		From:      env.From,
		To:        env.To,
		IsGroup:   env.IsGroup,
		GroupName: env.GroupName,
		RoomCode:  env.RoomCode,
		Message:   env.Message,
		SentAt:    env.SentAt,
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	if err := s.set(msgKey(id), b); err != nil {
		return "", fmt.Errorf("create message: %w", err)
	}
	return id, nil
}

func (s *Badger) Get(_ context.Context, id string) (*domain.StoredMessage, error) {
	b, err := s.get(msgKey(id))
	if err != nil {
		return nil, fmt.Errorf("message %s: %w", id, err)
	}
	var rec domain.StoredMessage
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Badger) Edit(ctx context.Context, id, text string) (*domain.StoredMessage, error) {
	var rec *domain.StoredMessage
	err := s.mutate(id, func(m *domain.StoredMessage) bool {
		m.Message = text
		rec = m
		return true
	})
	return rec, err
}

func (s *Badger) Delete(_ context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(msgKey(id))
	})
}

// MarkRead is idempotent: a reader already in the read-set is a no-op.
func (s *Badger) MarkRead(_ context.Context, id string, reader domain.Identity) (bool, error) {
	added := false
	err := s.mutate(id, func(m *domain.StoredMessage) bool {
		for _, r := range m.ReadBy {
			if r == reader {
				return false
			}
		}
		m.ReadBy = append(m.ReadBy, reader)
		m.IsRead = true
		added = true
		return true
	})
	return added, err
}

func (s *Badger) MarkConversationRead(ctx context.Context, reader, other domain.Identity) (int, error) {
	return s.markAll(func(m *domain.StoredMessage) bool {
		return !m.IsGroup && m.RoomCode == "" && m.From == other && m.To == reader
	}, reader)
}

func (s *Badger) MarkRoomRead(ctx context.Context, room domain.RoomCode, reader domain.Identity) (int, error) {
	return s.markAll(func(m *domain.StoredMessage) bool {
		return m.RoomCode == room && m.From != reader
	}, reader)
}

// ToggleReaction keeps at most one reaction per reader: same emoji
// removes it, a different emoji replaces it, none adds it.
func (s *Badger) ToggleReaction(_ context.Context, id string, reader domain.Identity, emoji string) ([]domain.Reaction, error) {
	var out []domain.Reaction
	err := s.mutate(id, func(m *domain.StoredMessage) bool {
		for i, r := range m.Reactions {
			if r.By != reader {
				continue
			}
			if r.Emoji == emoji {
				m.Reactions = append(m.Reactions[:i], m.Reactions[i+1:]...)
			} else {
				m.Reactions[i].Emoji = emoji
			}
			out = m.Reactions
			return true
		}
		m.Reactions = append(m.Reactions, domain.Reaction{By: reader, Emoji: emoji})
		out = m.Reactions
		return true
	})
	return out, err
}

// mutate loads, transforms and rewrites one message record in a single
// transaction. The fn returns false to skip the write.
func (s *Badger) mutate(id string, fn func(*domain.StoredMessage) bool) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(msgKey(id))
		if err != nil {
			return err
		}
		b, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		var rec domain.StoredMessage
		if err := json.Unmarshal(b, &rec); err != nil {
			return err
		}
		if !fn(&rec) {
			return nil
		}
		nb, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return txn.Set(msgKey(id), nb)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("message %s: %w", id, ErrNotFound)
	}
	return err
}

func (s *Badger) markAll(match func(*domain.StoredMessage) bool, reader domain.Identity) (int, error) {
	marked := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = msgPrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			b, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			var rec domain.StoredMessage
			if err := json.Unmarshal(b, &rec); err != nil {
				return err
			}
			if !match(&rec) {
				continue
			}
			already := false
			for _, r := range rec.ReadBy {
				if r == reader {
					already = true
					break
				}
			}
			if already {
				continue
			}
			rec.ReadBy = append(rec.ReadBy, reader)
			rec.IsRead = true
			nb, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := txn.Set(item.KeyCopy(nil), nb); err != nil {
				return err
			}
			marked++
		}
		return nil
	})
	return marked, err
}
