// Package kv provides the key-value storage the task list persists into.
//
// Values are JSON documents. Each Set replaces one key atomically; there is
// no cross-key transaction. Backends are safe for use from several goroutines
// and, for the file and sqlite backends, several processes.
package kv

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/amonks/pv/internal/validation"
)

var (
	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")

	// ErrInvalidValue is returned when a value is not a JSON document.
	ErrInvalidValue = errors.New("value is not valid JSON")

	// ErrMalformed is returned by GetJSON when a stored value does not decode.
	ErrMalformed = errors.New("malformed stored value")
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Store is a namespace of JSON values addressed by string keys.
type Store interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(key string) (value []byte, ok bool, err error)

	// Set replaces the value for key.
	Set(key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	// Close releases backend resources.
	Close() error
}

// Backends returns the supported backend names.
func Backends() []string {
	return []string{BackendFile, BackendSQLite}
}

// Open opens the named backend rooted at dir.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(dir), nil
	case BackendSQLite:
		return NewSQLiteStore(filepath.Join(dir, "store.db"))
	default:
		return nil, validation.FormatInvalidValueError(ErrUnknownBackend, backend, Backends())
	}
}

// GetJSON decodes the value for key into dest.
// It returns false when the key is absent. Decode failures wrap ErrMalformed.
func GetJSON(store Store, key string, dest any) (bool, error) {
	data, ok, err := store.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return true, fmt.Errorf("%w: %s: %v", ErrMalformed, key, err)
	}
	return true, nil
}

// SetJSON encodes value and stores it under key.
func SetJSON(store Store, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return store.Set(key, data)
}

func checkValue(value []byte) error {
	if !json.Valid(value) {
		return ErrInvalidValue
	}
	return nil
}
