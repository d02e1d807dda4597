// Package task models the to-do items of the task list.
//
// Local tasks are owned by one user and mutable; external tasks mirror the
// remote feed and are never mutated. Both share the Task shape, the tolerant
// decoding in Decode, and the text rules in Validate.
package task

import "time"

// Task is a single to-do item.
type Task struct {
	// ID identifies the task. Unique within the local list; external ids are not checked.
	ID int64 `json:"id"`

	// Text is the trimmed task text.
	Text string `json:"text"`

	// Done marks the task as completed.
	Done bool `json:"done"`

	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is when the task was last modified.
	UpdatedAt time.Time `json:"updatedAt"`
}

// NoID is passed to Validate when no task should be excluded from the duplicate check.
const NoID int64 = -1 << 63
