package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
)

func roomKey(code domain.RoomCode) []byte {
	return []byte("room|" + string(code))
}

func roomMemberKey(code domain.RoomCode, id domain.Identity) []byte {
	return []byte("roommember|" + string(code) + "|" + string(id))
}

func roomMemberPrefix(code domain.RoomCode) []byte {
	return []byte("roommember|" + string(code) + "|")
}

// CreateRoom seeds a durable room; room CRUD proper lives outside this
// core, this exists so the bundled store can be provisioned.
func (s *Badger) CreateRoom(_ context.Context, room domain.Room) error {
	b, err := json.Marshal(room)
	if err != nil {
		return err
	}
	return s.set(roomKey(room.Code), b)
}

func (s *Badger) Exists(_ context.Context, code domain.RoomCode) (bool, error) {
	_, err := s.get(roomKey(code))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("room %s: %w", code, err)
	}
	return true, nil
}

// AppendMember adds to historical membership; added is false when the
// identity was already recorded.
func (s *Badger) AppendMember(_ context.Context, code domain.RoomCode, id domain.Identity) (bool, error) {
	added := false
	err := s.db.Update(func(txn *badger.Txn) error {
		key := roomMemberKey(code, id)
		_, err := txn.Get(key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		added = true
		return txn.Set(key, []byte{})
	})
	if err != nil {
		return false, fmt.Errorf("append member %s to %s: %w", id, code, err)
	}
	return added, nil
}

func (s *Badger) Members(_ context.Context, code domain.RoomCode) ([]domain.Identity, error) {
	prefix := roomMemberPrefix(code)
	var out []domain.Identity
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			id := strings.TrimPrefix(key, string(prefix))
			out = append(out, domain.Identity(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("members of %s: %w", code, err)
	}
	return out, nil
}
