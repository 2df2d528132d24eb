package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
)

func userKey(id domain.Identity) []byte {
	return []byte("user|" + string(id))
}

func assignKey(id domain.Identity) []byte {
	return []byte("assign|" + string(id))
}

// Lookup returns the directory-sourced attributes of an identity,
// whether or not it is online.
func (s *Badger) Lookup(_ context.Context, id domain.Identity) (*domain.Profile, error) {
	b, err := s.get(userKey(id))
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", id, err)
	}
	var p domain.Profile
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Badger) PutProfile(_ context.Context, id domain.Identity, p domain.Profile) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.set(userKey(id), b)
}

// Assignments returns the conversation counterparts assigned to the
// identity; absence means no assignments, not an error.
func (s *Badger) Assignments(_ context.Context, id domain.Identity) ([]domain.Identity, error) {
	b, err := s.get(assignKey(id))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("assignments of %s: %w", id, err)
	}
	var out []domain.Identity
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Badger) PutAssignments(_ context.Context, id domain.Identity, others []domain.Identity) error {
	b, err := json.Marshal(others)
	if err != nil {
		return err
	}
	return s.set(assignKey(id), b)
}
