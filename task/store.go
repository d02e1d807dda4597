package task

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amonks/pv/internal/kv"
)

// KeyPrefix namespaces each user's local task list.
const KeyPrefix = "pv_todos:"

// Key returns the storage key of username's task list.
func Key(username string) string {
	return KeyPrefix + username
}

// Store reads and writes one user's local task list.
type Store struct {
	kv       kv.Store
	username string
	now      func() time.Time
}

// NewStore returns the task store for username.
func NewStore(store kv.Store, username string) *Store {
	return &Store{kv: store, username: username, now: time.Now}
}

// Username returns the owner of the list.
func (s *Store) Username() string {
	return s.username
}

// Load returns the stored list. A missing or unparsable value is an empty list.
func (s *Store) Load() (List, error) {
	data, ok, err := s.kv.Get(Key(s.username))
	if err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}
	if !ok {
		return List{}, nil
	}

	tasks, err := DecodeList(data, Fallbacks{Now: s.now()})
	if errors.Is(err, ErrNotArray) {
		slog.Debug("task_list_unparsable", "user", s.username)
		return List{}, nil
	}
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// Save replaces the stored list with tasks.
func (s *Store) Save(tasks List) error {
	if tasks == nil {
		tasks = List{}
	}
	if err := kv.SetJSON(s.kv, Key(s.username), tasks); err != nil {
		return fmt.Errorf("write tasks: %w", err)
	}
	return nil
}
