package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/ideaforge/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderClarityBar(t *testing.T) {
	tests := []struct {
		name   string
		score  int
		width  int
		filled int
		pct    string
	}{
		{"empty", 0, 10, 0, "  0%"},
		{"half", 50, 10, 5, " 50%"},
		{"full", 100, 10, 10, "100%"},
		{"clamps high", 140, 10, 10, "100%"},
		{"clamps low", -5, 10, 0, "  0%"},
		{"tiny width", 50, 1, 1, " 50%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderClarityBar(tt.score, tt.width)
			assert.Equal(t, tt.filled, strings.Count(got, filledBlock))
			assert.True(t, strings.HasSuffix(got, tt.pct), got)
		})
	}
}

func TestRenderClarity_GeneralModeHasNoScore(t *testing.T) {
	s := &domain.SessionState{Mode: domain.ModeGeneral, ClarityScore: 70}
	assert.Contains(t, RenderClarity(s, 10), "general mode")

	s.Mode = domain.ModeRefinement
	assert.Contains(t, RenderClarity(s, 10), "70%")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "collapse spaces", Truncate("  collapse \n spaces ", 40))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	assert.Equal(t, "héllo wö…", Truncate("héllo wörld", 9))
}

func TestHumanTimestamp(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "Just now", HumanTimestamp(now.Add(-10*time.Second), now))
	assert.Equal(t, "5m ago", HumanTimestamp(now.Add(-5*time.Minute), now))
	assert.Equal(t, "3h ago", HumanTimestamp(now.Add(-3*time.Hour), now))
	assert.Equal(t, "Yesterday", HumanTimestamp(now.Add(-30*time.Hour), now))
	assert.Equal(t, "Jun 1, 2025", HumanTimestamp(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), now))
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := RenderTable([]string{"ID", "NAME"}, [][]string{
		{"a", "first"},
		{"abcdef", StyleGreen.Render("second")},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	// The second column starts at the same visible offset on every row.
	offset := strings.Index(lines[0], "NAME")
	assert.Equal(t, offset, strings.Index(lines[2], "first"))
	assert.Equal(t, lipgloss.Width(lines[2]), offset+len("first"))
}

func TestFormatProfile(t *testing.T) {
	p := &domain.VentureProfile{
		Title:        "Crux Exchange",
		Summary:      "Used climbing gear, inspected.",
		RevenueModel: domain.StrPtr("Commission"),
	}
	out := FormatProfile(p, domain.StrPtr("Route setter"))

	assert.Contains(t, out, "VENTURE PROFILE")
	assert.Contains(t, out, "Crux Exchange")
	assert.Contains(t, out, "Revenue Model:")
	assert.Contains(t, out, "Commission")
	assert.Contains(t, out, "Route setter")
	assert.Less(t, strings.Index(out, "Title:"), strings.Index(out, "Key Roadmap Step:"))

	assert.Contains(t, FormatProfile(nil, nil), "No venture profile yet")
}

func TestFormatTranscript_HidesDirectives(t *testing.T) {
	s := &domain.SessionState{Messages: []domain.Message{
		{Sender: domain.SenderUser, Kind: domain.MessageDirective, Text: "Bootstrap idea from name: Crux"},
		{Sender: domain.SenderAssistant, Kind: domain.MessageNormal, Text: "Here is **Crux**."},
		{Sender: domain.SenderUser, Kind: domain.MessageNormal, Text: "Nice"},
		{Sender: domain.SenderAssistant, Kind: domain.MessageError, Text: "Sorry, try again."},
	}}
	out := FormatTranscript(s, PlainRenderer())

	assert.NotContains(t, out, "Bootstrap idea")
	assert.Contains(t, out, "Forge: Here is **Crux**.")
	assert.Contains(t, out, "You: Nice")
	assert.Contains(t, out, "! Sorry, try again.")
}

func TestFormatSessionList_MarksActiveAndFavorite(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	sessions := []domain.SessionState{
		{ID: "11111111-aaaa", Name: "Crux", Favorite: true, Mode: domain.ModeRefinement, ClarityScore: 40, UpdatedAt: now},
		{ID: "22222222-bbbb", Name: "Pawsome", Mode: domain.ModeGeneral, UpdatedAt: now.Add(-2 * time.Hour)},
	}
	out := FormatSessionList("Sessions", sessions, "22222222-bbbb", now)

	assert.Contains(t, out, "★")
	assert.Contains(t, out, "▸")
	assert.Contains(t, out, "11111111")
	assert.NotContains(t, out, "11111111-aaaa")
	assert.Contains(t, out, "40%")
	assert.Contains(t, out, "2h ago")

	assert.Contains(t, FormatSessionList("Sessions", nil, "", now), "No sessions")
}

func TestMarkdownRenderer(t *testing.T) {
	assert.Equal(t, "**bold**", PlainRenderer().Render("**bold**"))

	var nilRenderer *MarkdownRenderer
	assert.Equal(t, "x", nilRenderer.Render("x"))

	out := NewMarkdownRenderer(60).Render("Some **bold** idea")
	assert.Contains(t, out, "bold")
}
