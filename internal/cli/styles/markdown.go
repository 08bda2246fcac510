package styles

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// Renderers are expensive to build, keep one per wrap width
var rendererCache sync.Map // map[int]*glamour.TermRenderer

func getRenderer(width int) (*glamour.TermRenderer, error) {
	if cached, ok := rendererCache.Load(width); ok {
		return cached.(*glamour.TermRenderer), nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}

	rendererCache.Store(width, renderer)
	return renderer, nil
}

// RenderMarkdown renders recipe instructions for the terminal. The raw text
// is returned when rendering fails.
func RenderMarkdown(text string, width int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	renderer, err := getRenderer(width)
	if err != nil {
		return text
	}
	out, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimSpace(out)
}
