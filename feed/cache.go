package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amonks/pv/internal/kv"
	"github.com/amonks/pv/task"
)

// CacheKey holds the last successfully fetched snapshot, shared by all users.
const CacheKey = "pv_external"

// Cache stores the external task snapshot.
type Cache struct {
	kv  kv.Store
	now func() time.Time
}

// NewCache returns the snapshot cache backed by store.
func NewCache(store kv.Store) *Cache {
	return &Cache{kv: store, now: time.Now}
}

// Load returns the cached snapshot. A missing or unparsable value is empty.
func (c *Cache) Load() (task.List, error) {
	data, ok, err := c.kv.Get(CacheKey)
	if err != nil {
		return nil, fmt.Errorf("read feed cache: %w", err)
	}
	if !ok {
		return task.List{}, nil
	}
	tasks, err := task.DecodeList(data, task.Fallbacks{Now: c.now()})
	if errors.Is(err, task.ErrNotArray) {
		slog.Debug("feed_cache_unparsable")
		return task.List{}, nil
	}
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// Replace overwrites the snapshot with tasks.
// It reports whether the stored content changed.
func (c *Cache) Replace(tasks task.List) (bool, error) {
	if tasks == nil {
		tasks = task.List{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return false, fmt.Errorf("marshal feed cache: %w", err)
	}

	previous, ok, err := c.kv.Get(CacheKey)
	if err != nil {
		return false, fmt.Errorf("read feed cache: %w", err)
	}
	if ok && bytes.Equal(previous, data) {
		return false, nil
	}
	if err := c.kv.Set(CacheKey, data); err != nil {
		return false, fmt.Errorf("write feed cache: %w", err)
	}
	return true, nil
}

// Refresh fetches once and replaces the snapshot on success.
// On any error the snapshot is left untouched.
func (c *Cache) Refresh(ctx context.Context, f Fetcher) (bool, error) {
	tasks, err := f.Fetch(ctx)
	if err != nil {
		return false, err
	}
	return c.Replace(tasks)
}
