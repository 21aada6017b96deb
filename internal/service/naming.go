package service

import (
	"strings"
	"unicode/utf8"

	"github.com/alexanderramin/ideaforge/internal/domain"
	"github.com/alexanderramin/ideaforge/internal/intelligence"
)

const autoNameMaxRunes = 40

// applyAutoName derives the display name of an auto-named session. A
// final profile title (finalized, or carried into a continued session) wins
// over the first substantive user message. Sessions with neither keep their
// current name.
func applyAutoName(s *domain.SessionState, userName string) {
	if !s.NameIsAuto {
		return
	}
	if name, ok := autoName(s, userName); ok {
		s.Name = name
	}
}

func autoName(s *domain.SessionState, userName string) (string, bool) {
	finalTitle := s.SummaryFinalized || s.Origin == domain.OriginContinued
	if finalTitle && s.Profile != nil && !intelligence.IsPlaceholder(domain.FieldTitle, s.Profile.Title, userName) {
		return truncateName(s.Profile.Title), true
	}
	for _, m := range s.Messages {
		if m.Sender != domain.SenderUser || m.Kind != domain.MessageNormal {
			continue
		}
		if substantive(m.Text) {
			return truncateName(m.Text), true
		}
	}
	return "", false
}

// substantive rejects greetings and one-word nudges like "hi" or "ok".
func substantive(text string) bool {
	text = strings.TrimSpace(text)
	return len(strings.Fields(text)) >= 3 || utf8.RuneCountInString(text) >= 20
}

func truncateName(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= autoNameMaxRunes {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:autoNameMaxRunes])
	if i := strings.LastIndexByte(cut, ' '); i > autoNameMaxRunes/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:-") + "…"
}
