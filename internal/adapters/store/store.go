// Package store bundles badger-backed implementations of the durable
// collaborators (message store, room store, user directory) so the
// server runs stand-alone. The core only ever sees the core interfaces.
package store

import (
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"
)

var ErrNotFound = errors.New("not found")

// Key layout: one keyspace, pipe-separated prefixes.
//
//	msg|<id>                 -> StoredMessage JSON
//	room|<code>              -> Room JSON
//	roommember|<code>|<id>   -> empty (historical membership)
//	user|<identity>          -> Profile JSON
//	assign|<identity>        -> []Identity JSON
type Badger struct {
	db *badger.DB
}

func Open(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}
	log.Info().Str("module", "adapters.store").Str("dir", dir).Msg("store opened")
	return &Badger{db: db}, nil
}

func (s *Badger) Close() error {
	return s.db.Close()
}

func (s *Badger) get(key []byte) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return out, err
}

func (s *Badger) set(key, val []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	})
}
