package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/ideaforge/internal/domain"
)

// FormatSessionList renders sessions as a table, marking the active one.
func FormatSessionList(title string, sessions []domain.SessionState, activeID string, now time.Time) string {
	if len(sessions) == 0 {
		return Dim("No sessions.") + "\n"
	}
	headers := []string{"", "ID", "NAME", "MODE", "CLARITY", "UPDATED"}
	rows := make([][]string, 0, len(sessions))
	for i := range sessions {
		s := &sessions[i]
		marker := " "
		if s.Favorite {
			marker = StyleYellow.Render("★")
		}
		name := Truncate(s.Name, 40)
		if s.ID == activeID {
			marker = StyleHeader.Render("▸")
			name = Bold(name)
		}
		clarity := Dim("--")
		if score, ok := s.Clarity(); ok {
			clarity = ClarityStyle(score).Render(fmt.Sprintf("%d%%", score))
		}
		if s.SummaryFinalized {
			clarity += StyleGreen.Render(" ✔")
		}
		rows = append(rows, []string{
			marker,
			TruncID(s.ID),
			name,
			ModeLabel(s.Mode),
			clarity,
			HumanTimestamp(s.UpdatedAt, now),
		})
	}
	return RenderBox(title, RenderTable(headers, rows))
}

// FormatSessionHeader is the one-line status shown above a transcript.
func FormatSessionHeader(s *domain.SessionState) string {
	return fmt.Sprintf("%s  %s\n%s", Bold(s.Name), Dim(ShortID(s.ID)), ModeBadge(s.Mode)+"  "+RenderClarity(s, 20))
}

// FormatTranscript renders the visible transcript. Assistant messages go
// through md.
func FormatTranscript(s *domain.SessionState, md *MarkdownRenderer) string {
	var b strings.Builder
	for _, m := range s.VisibleMessages() {
		b.WriteString(FormatMessage(m, md))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// FormatMessage renders one transcript entry.
func FormatMessage(m domain.Message, md *MarkdownRenderer) string {
	switch {
	case m.Sender == domain.SenderUser:
		return StyleBlue.Render("You: ") + m.Text
	case m.Kind == domain.MessageError:
		return StyleRed.Render("! ") + m.Text
	default:
		return StylePurple.Render("Forge: ") + md.Render(m.Text)
	}
}

// FormatProfile renders a venture profile card. Missing fields render as a
// dim dash.
func FormatProfile(p *domain.VentureProfile, founderBackground *string) string {
	if p == nil {
		return Dim("No venture profile yet. Keep chatting, or edit a field to start one.") + "\n"
	}
	fields := append(domain.CoreFields(), domain.AuxiliaryFields()...)
	labelWidth := 0
	for _, f := range fields {
		labelWidth = max(labelWidth, len(f))
	}

	var b strings.Builder
	for _, f := range fields {
		value, ok := p.Get(f)
		if f == domain.FieldFounderAngle {
			value, ok = domain.StrValue(founderBackground), founderBackground != nil
		}
		if !ok || strings.TrimSpace(value) == "" {
			value = Dim("-")
		}
		label := string(f) + ":"
		b.WriteString(StyleHeader.Render(label))
		b.WriteString(strings.Repeat(" ", labelWidth+2-len(label)))
		b.WriteString(value)
		b.WriteString("\n")
	}
	return RenderBox("Venture Profile", strings.TrimRight(b.String(), "\n"))
}

// FormatCelebration announces a freshly generated profile.
func FormatCelebration() string {
	return StyleGreen.Bold(true).Render("✦ Your venture profile is ready ✦")
}
