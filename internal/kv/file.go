package kv

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
)

// FileStore keeps every entry in a single JSON document.
// Writers are serialized with an exclusive flock; readers rely on the
// document being replaced by rename.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store in dir. The directory is created on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) storePath() string {
	return filepath.Join(s.dir, "store.json")
}

func (s *FileStore) corruptPath() string {
	return filepath.Join(s.dir, "store.json.corrupt")
}

// errCorrupt marks a store document that is not a JSON object.
var errCorrupt = errors.New("corrupt store file")

func (s *FileStore) lockPath() string {
	return filepath.Join(s.dir, "store.lock")
}

// Get implements Store. A corrupt document reads as empty.
func (s *FileStore) Get(key string) ([]byte, bool, error) {
	entries, err := s.load()
	if errors.Is(err, errCorrupt) {
		slog.Warn("store_file_corrupt", "path", s.storePath(), "error", err)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	value, ok := entries[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(value), true, nil
}

// Set implements Store.
func (s *FileStore) Set(key string, value []byte) error {
	if err := checkValue(value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return s.update(func(entries map[string]json.RawMessage) {
		entries[key] = append(json.RawMessage(nil), value...)
	})
}

// Delete implements Store.
func (s *FileStore) Delete(key string) error {
	return s.update(func(entries map[string]json.RawMessage) {
		delete(entries, key)
	})
}

// Close implements Store.
func (s *FileStore) Close() error {
	return nil
}

// load reads the document. A missing file is an empty store.
func (s *FileStore) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.storePath())
	if os.IsNotExist(err) {
		return make(map[string]json.RawMessage), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}

	entries := make(map[string]json.RawMessage)
	if len(bytes.TrimSpace(data)) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorrupt, err)
	}
	if entries == nil {
		entries = make(map[string]json.RawMessage)
	}
	return entries, nil
}

// save writes the document atomically, skipping the write when nothing changed.
func (s *FileStore) save(entries map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	if existing, err := os.ReadFile(s.storePath()); err == nil {
		if bytes.Equal(existing, data) {
			return nil
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read store file: %w", err)
	}

	tmpFile, err := os.CreateTemp(s.dir, filepath.Base(s.storePath())+".tmp")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	name := tmpFile.Name()
	_, err = tmpFile.Write(data)
	if err1 := tmpFile.Close(); err1 != nil && err == nil {
		err = err1
	}
	if err != nil {
		os.Remove(name)
		return fmt.Errorf("write temp store file: %w", err)
	}

	if err := os.Rename(name, s.storePath()); err != nil {
		os.Remove(name)
		return fmt.Errorf("rename store file: %w", err)
	}

	return nil
}

// update reads, modifies, and writes the document under the lock.
func (s *FileStore) update(fn func(entries map[string]json.RawMessage)) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	lockFile, err := os.OpenFile(s.lockPath(), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer lockFile.Close()

	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer syscall.Flock(int(lockFile.Fd()), syscall.LOCK_UN)

	entries, err := s.load()
	if errors.Is(err, errCorrupt) {
		// Keep the unreadable document next to the fresh one.
		if err := os.Rename(s.storePath(), s.corruptPath()); err != nil {
			return fmt.Errorf("move corrupt store file: %w", err)
		}
		slog.Warn("store_file_replaced", "path", s.storePath(), "backup", s.corruptPath())
		entries = make(map[string]json.RawMessage)
	} else if err != nil {
		return err
	}

	fn(entries)

	return s.save(entries)
}
