// Package markdown renders task text for the terminal.
package markdown

import (
	"strings"
	"sync"

	internalstrings "github.com/amonks/pv/internal/strings"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

type renderer interface {
	Render(string) (string, error)
}

var (
	rendererMu sync.Mutex
	renderers  = map[int]renderer{}
)

// Render formats markdown text at width columns, indenting every line by
// indent spaces. If the renderer fails or panics the input is returned as is.
func Render(width, indent int, input string) string {
	value := strings.ReplaceAll(input, "\r\n", "\n")
	value = internalstrings.TrimTrailingNewlines(value)
	if strings.TrimSpace(value) == "" {
		return ""
	}
	if width < 1 {
		width = 1
	}
	if indent < 0 {
		indent = 0
	}
	renderWidth := width - indent
	if renderWidth < 1 {
		renderWidth = 1
	}

	rendered := safeRender(markdownRenderer(renderWidth), value)
	rendered = internalstrings.TrimTrailingNewlines(rendered)
	if strings.TrimSpace(rendered) == "" {
		return ""
	}
	return indentBlock(rendered, indent)
}

func safeRender(r renderer, value string) (out string) {
	if r == nil {
		return value
	}
	defer func() {
		if recover() != nil {
			out = value
		}
	}()
	formatted, err := r.Render(value)
	if err != nil {
		return value
	}
	return formatted
}

func markdownRenderer(width int) renderer {
	rendererMu.Lock()
	defer rendererMu.Unlock()
	if cached, ok := renderers[width]; ok {
		return cached
	}
	style := styles.ASCIIStyleConfig
	style.Item.BlockPrefix = "- "
	created, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	renderers[width] = created
	return created
}

func indentBlock(value string, spaces int) string {
	if spaces <= 0 {
		return value
	}
	prefix := strings.Repeat(" ", spaces)
	lines := strings.Split(value, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
