package intelligence

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ideaforge/internal/domain"
)

// bootstrapDirectivePrefix starts the special first-turn payload that asks for
// an immediate profile from a venture name alone.
const bootstrapDirectivePrefix = "Bootstrap idea from name:"

// BootstrapDirective formats the directive for name.
func BootstrapDirective(name string) string {
	return bootstrapDirectivePrefix + " " + strings.TrimSpace(name)
}

// ParseBootstrapDirective returns the venture name when text is a bootstrap
// directive. Matching is case-insensitive on the prefix.
func ParseBootstrapDirective(text string) (string, bool) {
	t := strings.TrimSpace(text)
	if len(t) < len(bootstrapDirectivePrefix) || !strings.EqualFold(t[:len(bootstrapDirectivePrefix)], bootstrapDirectivePrefix) {
		return "", false
	}
	name := strings.TrimSpace(t[len(bootstrapDirectivePrefix):])
	if name == "" {
		return "", false
	}
	return name, true
}

const envelopeInstructions = `You MUST output ONLY a JSON object with exactly these fields:
{
  "reply": "your conversational message to the user (markdown allowed)",
  "command": "normal" | "acknowledge_memory" | "switch_to_general" | "switch_to_refinement" | "proceed" | "bootstrap",
  "fact": "the fact to remember when command is acknowledge_memory, else empty",
  "mode": "refinement" | "general",
  "clarity": 0-100
}`

const refinementSystemPromptTemplate = `You are a venture intake coach helping %USER% turn a rough idea into a clear venture profile.

Ask one focused question at a time. Estimate in "clarity" how complete the profile is (0-100).
On the very first turn with no history, greet %USER% warmly, ask what they want to build, and report clarity 5.

When the user says "remember that ...", set command to "acknowledge_memory" and put the fact in "fact".
When the user wants to chat freely, set command to "switch_to_general".
When the user asks to skip ahead ("proceed", "just summarize"), set command to "proceed" and produce the summary now.

When the profile is clear enough, or the user asks to proceed, include inside "reply" a block exactly like:
%MARKERS%

Rules for the summary block:
1. Reproduce the markers and field labels exactly, each label followed by a colon.
2. Only write what the user actually told you. Leave a field out rather than invent it.
3. Never write filler such as "not specified", "to be determined" or "let's define this core concept".
4. Do not mention that you are an AI.

%FACTS%
Current turn: %TURN%

` + envelopeInstructions

const generalSystemPromptTemplate = `You are a friendly, knowledgeable startup mentor chatting openly with %USER%.
Answer questions directly. Do not produce a summary block in this mode.

When the user says "remember that ...", set command to "acknowledge_memory" and put the fact in "fact".
When the user wants to get back to shaping their venture, set command to "switch_to_refinement".

%FACTS%
Current turn: %TURN%

` + envelopeInstructions

const bootstrapSystemPromptTemplate = `You are a venture intake coach. %USER% has given you only a venture name.
Do not ask clarifying questions. Imagine the most plausible venture behind the name and reply with
one short enthusiastic sentence followed immediately by a complete summary block:
%MARKERS%

Fill every field with concrete content. Set command to "bootstrap" and clarity to 100.

` + envelopeInstructions

// buildVentureSystemPrompt renders the system prompt for a turn.
func buildVentureSystemPrompt(req ResponderRequest, bootstrap bool) string {
	tmpl := refinementSystemPromptTemplate
	switch {
	case bootstrap:
		tmpl = bootstrapSystemPromptTemplate
	case req.Mode == domain.ModeGeneral:
		tmpl = generalSystemPromptTemplate
	}
	user := strings.TrimSpace(req.UserName)
	if user == "" {
		user = "the user"
	}
	r := strings.NewReplacer(
		"%USER%", user,
		"%MARKERS%", summaryTemplate(),
		"%FACTS%", formatFacts(req.Facts),
		"%TURN%", fmt.Sprintf("%d", req.TurnCount),
	)
	return r.Replace(tmpl)
}

func summaryTemplate() string {
	var b strings.Builder
	b.WriteString(SummaryStartMarker)
	b.WriteByte('\n')
	for _, label := range domain.AllFieldLabels() {
		b.WriteString(label)
		b.WriteString(": ...\n")
	}
	b.WriteString(SummaryEndMarker)
	return b.String()
}

func formatFacts(facts []string) string {
	if len(facts) == 0 {
		return "Remembered facts: none."
	}
	var b strings.Builder
	b.WriteString("Remembered facts about the user (use them, never repeat them back verbatim):\n")
	for _, f := range facts {
		b.WriteString("- ")
		b.WriteString(f)
		b.WriteByte('\n')
	}
	return b.String()
}
