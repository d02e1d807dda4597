package editor

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/BurntSushi/toml"
	"github.com/amonks/pv/task"
)

// TaskData is rendered into the editor buffer.
type TaskData struct {
	// IsUpdate is true when editing an existing task.
	IsUpdate bool
	// ID is the task id (only for updates).
	ID int64
	// Done is the completion flag (only for updates).
	Done bool
	// Text is the task text.
	Text string
}

// DataFromTask creates TaskData from an existing task.
func DataFromTask(t task.Task) TaskData {
	return TaskData{IsUpdate: true, ID: t.ID, Done: t.Done, Text: t.Text}
}

var taskTemplate = template.Must(template.New("task").Parse(`
{{- if .IsUpdate -}}
# task {{ .ID }}
done = {{ .Done }}
{{ else -}}
# new task
{{ end -}}
# Write the task text below the line. Leave it empty to cancel.
---
{{ .Text }}
`))

// RenderTaskTOML renders data as the editor buffer.
func RenderTaskTOML(data TaskData) (string, error) {
	var buf bytes.Buffer
	if err := taskTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}

// ParsedTask is the result of an editing session.
type ParsedTask struct {
	Done *bool `toml:"done"`
	Text string
}

// Empty reports whether the text was cleared.
func (p *ParsedTask) Empty() bool {
	return strings.TrimSpace(p.Text) == ""
}

// ParseTaskTOML parses an edited buffer.
func ParseTaskTOML(content string) (*ParsedTask, error) {
	frontmatter, body := splitFrontmatter(content)

	var parsed ParsedTask
	if _, err := toml.Decode(frontmatter, &parsed); err != nil {
		return nil, fmt.Errorf("parse TOML: %w", err)
	}
	parsed.Text = strings.TrimSpace(body)
	return &parsed, nil
}

func splitFrontmatter(content string) (string, string) {
	content = strings.TrimLeft(content, "\n")
	if content == "" {
		return "", ""
	}

	lines := strings.Split(content, "\n")
	separator := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			separator = i
			break
		}
	}
	if separator == -1 {
		return "", content
	}
	return strings.Join(lines[:separator], "\n"), strings.Join(lines[separator+1:], "\n")
}

func createTaskTempFile() (*os.File, error) {
	return os.CreateTemp("", "pv-task-*.toml")
}

// EditTask opens the editor for a task and returns the parsed result.
// Pass nil to write a new task.
func EditTask(existing *task.Task) (*ParsedTask, error) {
	data := TaskData{}
	if existing != nil {
		data = DataFromTask(*existing)
	}
	return EditTaskWithData(data)
}

// EditTaskWithData opens the editor with pre-populated data.
func EditTaskWithData(data TaskData) (*ParsedTask, error) {
	content, err := RenderTaskTOML(data)
	if err != nil {
		return nil, err
	}

	tmpfile, err := createTaskTempFile()
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpfile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpfile.WriteString(content); err != nil {
		tmpfile.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpfile.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	if err := Edit(tmpPath); err != nil {
		return nil, err
	}

	edited, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("read edited file: %w", err)
	}
	return ParseTaskTOML(string(edited))
}
