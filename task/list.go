package task

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no task in the list has the given id.
var ErrNotFound = errors.New("task not found")

// List is an ordered collection of tasks, newest insertion first.
type List []Task

// Index returns the position of the task with id, or -1.
func (l List) Index(id int64) int {
	for i := range l {
		if l[i].ID == id {
			return i
		}
	}
	return -1
}

// Contains reports whether a task with id is in the list.
func (l List) Contains(id int64) bool {
	return l.Index(id) >= 0
}

// NextID returns an id derived from now in Unix milliseconds, bumped past
// the largest id in the list when it would not be greater.
func (l List) NextID(now time.Time) int64 {
	id := now.UnixMilli()
	for _, t := range l {
		if t.ID >= id {
			id = t.ID + 1
		}
	}
	return id
}

// New builds a task with trimmed text and both timestamps set to now.
func (l List) New(text string, now time.Time) Task {
	return Task{
		ID:        l.NextID(now),
		Text:      NormalizeText(text),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Prepend returns a new list with t first.
func (l List) Prepend(t Task) List {
	out := make(List, 0, len(l)+1)
	out = append(out, t)
	return append(out, l...)
}

// Toggle flips Done on the task with id and stamps UpdatedAt.
func (l List) Toggle(id int64, now time.Time) (Task, error) {
	i := l.Index(id)
	if i < 0 {
		return Task{}, ErrNotFound
	}
	l[i].Done = !l[i].Done
	l[i].UpdatedAt = now
	return l[i], nil
}

// SetText replaces the text of the task with id and stamps UpdatedAt.
// The id and CreatedAt are left unchanged.
func (l List) SetText(id int64, text string, now time.Time) (Task, error) {
	i := l.Index(id)
	if i < 0 {
		return Task{}, ErrNotFound
	}
	l[i].Text = NormalizeText(text)
	l[i].UpdatedAt = now
	return l[i], nil
}

// Remove returns a new list without the task with id.
func (l List) Remove(id int64) (List, error) {
	i := l.Index(id)
	if i < 0 {
		return l, ErrNotFound
	}
	out := make(List, 0, len(l)-1)
	out = append(out, l[:i]...)
	return append(out, l[i+1:]...), nil
}

// Clone returns a copy that can be modified independently.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	return append(List(nil), l...)
}
