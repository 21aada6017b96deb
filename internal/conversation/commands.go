package conversation

import (
	"strings"

	"github.com/alexanderramin/ideaforge/internal/domain"
)

// Command is the closed set of responder command guesses the machine acts on.
type Command string

const (
	CommandNormal             Command = "normal"
	CommandAcknowledgeMemory  Command = "acknowledge_memory"
	CommandSwitchToGeneral    Command = "switch_to_general"
	CommandSwitchToRefinement Command = "switch_to_refinement"
	CommandProceed            Command = "proceed"
	CommandBootstrap          Command = "bootstrap"
)

var knownCommands = map[Command]bool{
	CommandNormal:             true,
	CommandAcknowledgeMemory:  true,
	CommandSwitchToGeneral:    true,
	CommandSwitchToRefinement: true,
	CommandProceed:            true,
	CommandBootstrap:          true,
}

// ParseCommand normalizes a guess ("Switch-To General" -> switch_to_general).
// Anything outside the closed set is CommandNormal.
func ParseCommand(s string) Command {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	if c := Command(norm); knownCommands[c] {
		return c
	}
	return CommandNormal
}

// switchTarget returns the mode a switch command selects.
func (c Command) switchTarget() (domain.Mode, bool) {
	switch c {
	case CommandSwitchToGeneral:
		return domain.ModeGeneral, true
	case CommandSwitchToRefinement:
		return domain.ModeRefinement, true
	}
	return "", false
}

// celebrates reports whether a summary landing on this command gets the
// celebratory closing line.
func (c Command) celebrates() bool {
	return c == CommandProceed || c == CommandBootstrap
}

// factFromText derives a fact from a "remember that ..." request when the
// responder acknowledged memory without echoing the fact.
func factFromText(text string) string {
	t := strings.TrimSpace(text)
	lower := strings.ToLower(t)
	for _, prefix := range []string{"please remember that", "remember that", "please remember", "remember:", "remember"} {
		if strings.HasPrefix(lower, prefix) {
			t = strings.TrimSpace(t[len(prefix):])
			break
		}
	}
	return strings.TrimSpace(strings.TrimRight(t, ".!"))
}
