package editor

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amonks/pv/task"
)

func TestRenderTaskTOMLCreate(t *testing.T) {
	content, err := RenderTaskTOML(TaskData{})
	if err != nil {
		t.Fatalf("RenderTaskTOML failed: %v", err)
	}
	if strings.Contains(content, "done =") {
		t.Error("done should not be present for create")
	}
	if !strings.Contains(content, "---") {
		t.Error("expected frontmatter separator")
	}
}

func TestRenderTaskTOMLUpdateRoundTrip(t *testing.T) {
	content, err := RenderTaskTOML(DataFromTask(task.Task{ID: 42, Text: "Buy groceries today", Done: true}))
	if err != nil {
		t.Fatalf("RenderTaskTOML failed: %v", err)
	}
	if !strings.Contains(content, "# task 42") {
		t.Errorf("expected id comment, got:\n%s", content)
	}

	parsed, err := ParseTaskTOML(content)
	if err != nil {
		t.Fatalf("ParseTaskTOML failed: %v", err)
	}
	if parsed.Text != "Buy groceries today" {
		t.Errorf("unexpected text %q", parsed.Text)
	}
	if parsed.Done == nil || !*parsed.Done {
		t.Errorf("expected done = true, got %v", parsed.Done)
	}
}

func TestParseTaskTOML(t *testing.T) {
	cases := []struct {
		name     string
		content  string
		wantText string
		wantDone *bool
		wantErr  bool
	}{
		{name: "body only", content: "  Walk the dog twice \n", wantText: "Walk the dog twice"},
		{name: "empty", content: "", wantText: ""},
		{name: "comment header", content: "# new task\n---\nCall the plumber\n", wantText: "Call the plumber"},
		{name: "done false", content: "done = false\n---\nCall the plumber\n", wantText: "Call the plumber", wantDone: boolPtr(false)},
		{name: "bad toml", content: "done = maybe\n---\ntext\n", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := ParseTaskTOML(tc.content)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTaskTOML failed: %v", err)
			}
			if parsed.Text != tc.wantText {
				t.Errorf("expected text %q, got %q", tc.wantText, parsed.Text)
			}
			if (parsed.Done == nil) != (tc.wantDone == nil) {
				t.Fatalf("expected done %v, got %v", tc.wantDone, parsed.Done)
			}
			if tc.wantDone != nil && *parsed.Done != *tc.wantDone {
				t.Errorf("expected done %v, got %v", *tc.wantDone, *parsed.Done)
			}
			if parsed.Empty() != (tc.wantText == "") {
				t.Errorf("unexpected Empty() = %v", parsed.Empty())
			}
		})
	}
}

func TestEditTaskUsesEditor(t *testing.T) {
	script := filepath.Join(t.TempDir(), "fake-editor")
	body := "#!/bin/sh\nprintf 'done = true\\n---\\nBuy groceries tomorrow\\n' > \"$1\"\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write editor script: %v", err)
	}
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", script)

	parsed, err := EditTask(&task.Task{ID: 1, Text: "Buy groceries today"})
	if err != nil {
		t.Fatalf("EditTask failed: %v", err)
	}
	if parsed.Text != "Buy groceries tomorrow" {
		t.Errorf("unexpected text %q", parsed.Text)
	}
	if parsed.Done == nil || !*parsed.Done {
		t.Errorf("expected done = true")
	}
}

func TestEditReportsExitStatus(t *testing.T) {
	script := filepath.Join(t.TempDir(), "failing-editor")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nexit 3\n"), 0o755); err != nil {
		t.Fatalf("write editor script: %v", err)
	}
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", script)

	err := Edit(filepath.Join(t.TempDir(), "file"))
	if !errors.Is(err, ErrEditorFailed) || !strings.Contains(err.Error(), "status 3") {
		t.Fatalf("expected exit status error, got %v", err)
	}
}

func TestCommand(t *testing.T) {
	tests := []struct {
		name   string
		visual string
		editor string
		want   []string
	}{
		{name: "default", want: []string{"vi"}},
		{name: "editor", editor: "nano", want: []string{"nano"}},
		{name: "visual wins", visual: "code --wait", editor: "nano", want: []string{"code", "--wait"}},
		{name: "blank visual", visual: "  ", editor: "nano", want: []string{"nano"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("VISUAL", tt.visual)
			t.Setenv("EDITOR", tt.editor)
			got := Command()
			if strings.Join(got, " ") != strings.Join(tt.want, " ") {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCreateTaskTempFileExtension(t *testing.T) {
	f, err := createTaskTempFile()
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	defer os.Remove(f.Name())
	f.Close()
	if filepath.Ext(f.Name()) != ".toml" {
		t.Fatalf("expected .toml extension, got %s", f.Name())
	}
}

func boolPtr(b bool) *bool {
	return &b
}
