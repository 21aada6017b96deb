package formatter

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders assistant replies. A zero renderer passes text
// through unchanged, which is what non-interactive output uses.
type MarkdownRenderer struct {
	tr *glamour.TermRenderer
}

// NewMarkdownRenderer returns a glamour-backed renderer wrapping at width.
// It falls back to plain text when glamour cannot be initialized.
func NewMarkdownRenderer(width int) *MarkdownRenderer {
	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return &MarkdownRenderer{}
	}
	return &MarkdownRenderer{tr: tr}
}

// PlainRenderer returns a renderer that leaves text untouched.
func PlainRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

func (m *MarkdownRenderer) Render(text string) string {
	if m == nil || m.tr == nil {
		return text
	}
	out, err := m.tr.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}
