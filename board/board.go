// Package board merges a user's local tasks with the external feed snapshot
// and applies validated mutations to the local list.
//
// A Board is owned by one goroutine at a time.
package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/amonks/pv/feed"
	"github.com/amonks/pv/task"
)

var (
	// ErrReadOnly is returned when a mutation targets an external task.
	ErrReadOnly = errors.New("external tasks are read-only")

	// ErrCancelled is returned by prompts the user dismissed.
	ErrCancelled = errors.New("cancelled")
)

// Source says which collection a view item came from.
type Source string

const (
	// SourceLocal marks tasks owned by the current user.
	SourceLocal Source = "local"

	// SourceExternal marks tasks mirrored from the feed.
	SourceExternal Source = "external"
)

// Item is one row of the merged view.
type Item struct {
	Task     task.Task
	Source   Source
	Editable bool
}

// Options configures Open.
type Options struct {
	// Tasks is the current user's local task store. Required.
	Tasks *task.Store

	// Cache is the external snapshot. Required.
	Cache *feed.Cache

	// Fetcher refreshes the cache. Nil disables refreshing.
	Fetcher feed.Fetcher

	// Prompter confirms destructive actions and asks for edited text.
	// If nil, StdioPrompter is used.
	Prompter Prompter

	// Now overrides the clock.
	Now func() time.Time

	// Logger receives debug output. Defaults to slog.Default().
	Logger *slog.Logger
}

// Board holds the loaded local and external tasks.
type Board struct {
	tasks    *task.Store
	cache    *feed.Cache
	fetcher  feed.Fetcher
	prompter Prompter
	now      func() time.Time
	logger   *slog.Logger

	local    task.List
	external task.List
}

// Open loads the local list and the cached snapshot.
func Open(opts Options) (*Board, error) {
	if opts.Tasks == nil || opts.Cache == nil {
		return nil, errors.New("board: task store and cache are required")
	}
	if opts.Prompter == nil {
		opts.Prompter = StdioPrompter{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	b := &Board{
		tasks:    opts.Tasks,
		cache:    opts.Cache,
		fetcher:  opts.Fetcher,
		prompter: opts.Prompter,
		now:      opts.Now,
		logger:   opts.Logger,
	}
	if err := b.Reload(); err != nil {
		return nil, err
	}
	return b, nil
}

// Username returns the owner of the local list.
func (b *Board) Username() string {
	return b.tasks.Username()
}

// SetPrompter replaces the prompter.
func (b *Board) SetPrompter(p Prompter) {
	b.prompter = p
}

// Fetcher returns the configured fetcher, or nil.
func (b *Board) Fetcher() feed.Fetcher {
	return b.fetcher
}

// Reload rereads both collections from storage.
func (b *Board) Reload() error {
	local, err := b.tasks.Load()
	if err != nil {
		return err
	}
	external, err := b.cache.Load()
	if err != nil {
		return err
	}
	b.local = local
	b.external = external
	return nil
}

// Local returns a copy of the local tasks in stored order.
func (b *Board) Local() task.List {
	return b.local.Clone()
}

// External returns a copy of the external snapshot.
func (b *Board) External() task.List {
	return b.external.Clone()
}

// LocalTask returns the local task with id. External ids fail with
// ErrReadOnly.
func (b *Board) LocalTask(id int64) (task.Task, error) {
	if err := b.checkLocal(id); err != nil {
		return task.Task{}, err
	}
	return b.local[b.local.Index(id)], nil
}

// Validate checks text against the current local and external tasks.
func (b *Board) Validate(text string, ignoreID int64) error {
	return task.Validate(text, ignoreID, b.local, b.external)
}

// View returns local and external tasks, newest createdAt first.
// Ties keep locals before externals, each in stored order.
func (b *Board) View() []Item {
	items := make([]Item, 0, len(b.local)+len(b.external))
	for _, t := range b.local {
		items = append(items, Item{Task: t, Source: SourceLocal, Editable: true})
	}
	for _, t := range b.external {
		items = append(items, Item{Task: t, Source: SourceExternal})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Task.CreatedAt.After(items[j].Task.CreatedAt)
	})
	return items
}

// Create validates text and prepends a new local task.
func (b *Board) Create(text string) (task.Task, error) {
	if err := b.Validate(text, task.NoID); err != nil {
		return task.Task{}, err
	}
	created := b.local.New(text, b.now())
	next := b.local.Prepend(created)
	if err := b.tasks.Save(next); err != nil {
		return task.Task{}, err
	}
	b.local = next
	return created, nil
}

// Toggle flips done on a local task.
func (b *Board) Toggle(id int64) (task.Task, error) {
	if err := b.checkLocal(id); err != nil {
		return task.Task{}, err
	}
	next := b.local.Clone()
	toggled, err := next.Toggle(id, b.now())
	if err != nil {
		return task.Task{}, err
	}
	if err := b.tasks.Save(next); err != nil {
		return task.Task{}, err
	}
	b.local = next
	return toggled, nil
}

// Edit validates text and replaces the text of a local task.
func (b *Board) Edit(id int64, text string) (task.Task, error) {
	if err := b.checkLocal(id); err != nil {
		return task.Task{}, err
	}
	if err := b.Validate(text, id); err != nil {
		return task.Task{}, err
	}
	next := b.local.Clone()
	edited, err := next.SetText(id, text, b.now())
	if err != nil {
		return task.Task{}, err
	}
	if err := b.tasks.Save(next); err != nil {
		return task.Task{}, err
	}
	b.local = next
	return edited, nil
}

// EditInteractive asks the prompter for new text, seeded with the current
// text. A dismissed prompt returns false and changes nothing.
func (b *Board) EditInteractive(id int64) (task.Task, bool, error) {
	current, err := b.LocalTask(id)
	if err != nil {
		return task.Task{}, false, err
	}
	text, ok, err := b.prompter.Input("Edit task", current.Text)
	if errors.Is(err, ErrCancelled) {
		return task.Task{}, false, nil
	}
	if err != nil {
		return task.Task{}, false, err
	}
	if !ok {
		return task.Task{}, false, nil
	}
	edited, err := b.Edit(id, text)
	if err != nil {
		return task.Task{}, false, err
	}
	return edited, true, nil
}

// Delete removes a local task after confirmation.
// It returns false when the user declines.
func (b *Board) Delete(id int64) (bool, error) {
	if err := b.checkLocal(id); err != nil {
		return false, err
	}
	confirmed, err := b.prompter.Confirm("Delete this task?")
	if err != nil {
		return false, err
	}
	if !confirmed {
		return false, nil
	}
	next, err := b.local.Remove(id)
	if err != nil {
		return false, err
	}
	if err := b.tasks.Save(next); err != nil {
		return false, err
	}
	b.local = next
	return true, nil
}

// ClearAll empties the local list after confirmation.
// External tasks are untouched.
func (b *Board) ClearAll() (bool, error) {
	confirmed, err := b.prompter.Confirm("Delete all local tasks?")
	if err != nil {
		return false, err
	}
	if !confirmed {
		return false, nil
	}
	if err := b.tasks.Save(task.List{}); err != nil {
		return false, err
	}
	b.local = task.List{}
	return true, nil
}

// Refresh fetches the feed once and applies the result.
// Fetch failures are logged at debug level and otherwise ignored.
func (b *Board) Refresh(ctx context.Context) bool {
	if b.fetcher == nil {
		return false
	}
	tasks, err := b.fetcher.Fetch(ctx)
	return b.ApplyFetch(tasks, err)
}

// ApplyFetch stores a completed fetch in the cache and the board.
// It reports whether the external snapshot changed.
func (b *Board) ApplyFetch(tasks task.List, fetchErr error) bool {
	if fetchErr != nil {
		b.logger.Debug("feed_fetch_failed", "error", fetchErr)
		return false
	}
	changed, err := b.cache.Replace(tasks)
	if err != nil {
		b.logger.Debug("feed_cache_write_failed", "error", err)
		return false
	}
	external, err := b.cache.Load()
	if err != nil {
		b.logger.Debug("feed_cache_read_failed", "error", err)
		return false
	}
	b.external = external
	return changed
}

func (b *Board) checkLocal(id int64) error {
	if b.local.Contains(id) {
		return nil
	}
	if b.external.Contains(id) {
		return fmt.Errorf("%w: %d", ErrReadOnly, id)
	}
	return fmt.Errorf("%w: %d", task.ErrNotFound, id)
}
