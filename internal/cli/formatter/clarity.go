package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ideaforge/internal/domain"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderClarity renders the clarity meter of a session, e.g.
// "[████░░░░] 45% clarity". Sessions in general mode have no score.
func RenderClarity(s *domain.SessionState, width int) string {
	score, ok := s.Clarity()
	if !ok {
		return Dim("clarity paused in general mode")
	}
	return RenderClarityBar(score, width) + Dim(" clarity")
}

// RenderClarityBar renders a 0-100 score as a colored bar with percentage.
func RenderClarityBar(score, width int) string {
	score = min(max(score, 0), 100)
	width = max(width, 2)

	filled := score * width / 100
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)
	return fmt.Sprintf("[%s] %3d%%", ClarityStyle(score).Render(bar), score)
}
