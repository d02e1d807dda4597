package markdown

import (
	"errors"
	"strings"
	"testing"
)

type panicRenderer struct{}

func (panicRenderer) Render(string) (string, error) {
	panic("boom")
}

type failingRenderer struct{}

func (failingRenderer) Render(string) (string, error) {
	return "", errors.New("nope")
}

func withRenderer(t *testing.T, width int, r renderer) {
	t.Helper()
	rendererMu.Lock()
	prev, hadPrev := renderers[width]
	renderers[width] = r
	rendererMu.Unlock()

	t.Cleanup(func() {
		rendererMu.Lock()
		if hadPrev {
			renderers[width] = prev
		} else {
			delete(renderers, width)
		}
		rendererMu.Unlock()
	})
}

func TestRenderRecoversFromRendererPanic(t *testing.T) {
	withRenderer(t, 20, panicRenderer{})

	if out := Render(20, 0, "hello\n"); out != "hello" {
		t.Fatalf("expected fallback to original markdown, got %q", out)
	}
}

func TestRenderFallsBackOnError(t *testing.T) {
	withRenderer(t, 18, failingRenderer{})

	if out := Render(20, 2, "hello"); out != "  hello" {
		t.Fatalf("expected indented original text, got %q", out)
	}
}

func TestRenderBlank(t *testing.T) {
	if out := Render(40, 0, " \n\n"); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}

func TestRenderKeepsWords(t *testing.T) {
	out := Render(40, 4, "Buy **groceries** today")
	if !strings.Contains(out, "groceries") {
		t.Fatalf("expected rendered text to keep words, got %q", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if line != "" && !strings.HasPrefix(line, "    ") {
			t.Fatalf("expected every line indented, got %q", line)
		}
	}
}
