package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/amonks/pv/board"
	"github.com/amonks/pv/internal/ui"
)

const taskDetailWidth = 80

func formatTaskTable(items []board.Item, now time.Time) string {
	builder := ui.NewTableBuilder([]string{"ID", "DONE", "TEXT", "CREATED", "SOURCE"}, len(items))
	for _, item := range items {
		text := ui.TruncateTableCell(item.Task.Text)
		if item.Task.Done {
			text = ui.Done(text)
		}
		source := ""
		if item.Source == board.SourceExternal {
			source = ui.External("external")
		}
		builder.AddRow([]string{
			strconv.FormatInt(item.Task.ID, 10),
			doneBox(item.Task.Done),
			text,
			ui.FormatTimeAgo(item.Task.CreatedAt, now),
			source,
		})
	}
	return builder.String()
}

func doneBox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func formatTaskDetail(item board.Item, render func(width, indent int, input string) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d\n", ui.Header("Task"), item.Task.ID)
	fmt.Fprintf(&b, "Done:     %s\n", doneBox(item.Task.Done))
	fmt.Fprintf(&b, "Source:   %s\n", item.Source)
	fmt.Fprintf(&b, "Editable: %t\n", item.Editable)
	fmt.Fprintf(&b, "Created:  %s\n", ui.FormatTimestamp(item.Task.CreatedAt))
	fmt.Fprintf(&b, "Updated:  %s\n", ui.FormatTimestamp(item.Task.UpdatedAt))
	b.WriteString("\n")

	text := render(taskDetailWidth, 2, item.Task.Text)
	if text == "" {
		text = "  -"
	}
	b.WriteString(text)
	b.WriteString("\n")
	return b.String()
}

// taskItemJSON is the --json shape of one view item.
type taskItemJSON struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Source    string    `json:"source"`
	Editable  bool      `json:"editable"`
}

func itemJSON(item board.Item) taskItemJSON {
	return taskItemJSON{
		ID:        item.Task.ID,
		Text:      item.Task.Text,
		Done:      item.Task.Done,
		CreatedAt: item.Task.CreatedAt,
		UpdatedAt: item.Task.UpdatedAt,
		Source:    string(item.Source),
		Editable:  item.Editable,
	}
}

func itemsJSON(items []board.Item) []taskItemJSON {
	out := make([]taskItemJSON, 0, len(items))
	for _, item := range items {
		out = append(out, itemJSON(item))
	}
	return out
}
