package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ideaforge/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// ClarityStyle colors a clarity score: red below 33, yellow below 66.
func ClarityStyle(score int) lipgloss.Style {
	switch {
	case score < 33:
		return StyleRed
	case score < 66:
		return StyleYellow
	default:
		return StyleGreen
	}
}

// ModeBadge returns a styled conversation mode indicator.
func ModeBadge(mode domain.Mode) string {
	if mode == domain.ModeGeneral {
		return StyleBlue.Render("◆ GENERAL") + Dim(" · open conversation")
	}
	return StyleGreen.Render("● REFINEMENT") + Dim(" · shaping your venture profile")
}

// ModeLabel is the compact mode label used in tables.
func ModeLabel(mode domain.Mode) string {
	if mode == domain.ModeGeneral {
		return StyleBlue.Render("general")
	}
	return StyleGreen.Render("refine")
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
