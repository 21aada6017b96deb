package intelligence

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ideaforge/internal/domain"
)

// BoilerplateMaxLen is the length below which a value containing a
// boilerplate phrase is treated as filler. Longer values may quote a
// phrase in passing and are kept.
const BoilerplateMaxLen = 90

// boilerplatePhrases are lowercase fragments the responder emits when it has
// nothing real to say. They mirror the placeholder templates below and the
// filler the system prompt warns against. Keep the list narrow and literal.
var boilerplatePhrases = []string{
	"let's define this core concept",
	"we'll identify the key problem",
	"identifying the key problem",
	"defining the target audience",
	"outlining the solution",
	"what makes this unique for",
	"exploring revenue streams",
	"mapping out the first milestone",
	"founder's angle is still",
	"awesome new venture for",
	"not specified",
	"to be determined",
	"[insert",
	"as an ai",
	"i'm just an ai",
}

// IsBoilerplate reports whether value is placeholder filler: it contains a
// known phrase (case-insensitive) and is shorter than BoilerplateMaxLen.
func IsBoilerplate(value string) bool {
	v := strings.TrimSpace(value)
	if len(v) >= BoilerplateMaxLen {
		return false
	}
	lower := strings.ToLower(v)
	for _, phrase := range boilerplatePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// PlaceholderFor returns the default text shown for field when the
// conversation has not produced real content for it.
func PlaceholderFor(field domain.ProfileField, userName string) string {
	name := strings.TrimSpace(userName)
	if name == "" {
		name = "you"
	}
	switch field {
	case domain.FieldTitle:
		return fmt.Sprintf("An awesome new venture for %s", name)
	case domain.FieldSummary:
		return fmt.Sprintf("Let's define this core concept together, %s.", name)
	case domain.FieldTargetAudience:
		return fmt.Sprintf("Defining the target audience for %s's idea comes next.", name)
	case domain.FieldProblem:
		return fmt.Sprintf("Identifying the key problem for %s is crucial.", name)
	case domain.FieldSolution:
		return fmt.Sprintf("Outlining the solution %s will offer is the next step.", name)
	case domain.FieldUniqueness:
		return fmt.Sprintf("What makes this unique for %s is still taking shape.", name)
	case domain.FieldRevenueModel:
		return fmt.Sprintf("Exploring revenue streams for %s comes later.", name)
	case domain.FieldRoadmapStep:
		return fmt.Sprintf("Mapping out the first milestone for %s is up next.", name)
	case domain.FieldFounderAngle:
		return fmt.Sprintf("The founder's angle is still to be explored with %s.", name)
	case domain.FieldSuggestedName:
		return "Venture name not specified yet."
	case domain.FieldSuggestedTagline:
		return "Tagline not specified yet."
	default:
		return "Not specified yet."
	}
}

// IsPlaceholder reports whether value is the default for field or generic
// boilerplate. Equality is checked explicitly because a long user name can
// push a generated placeholder past BoilerplateMaxLen.
func IsPlaceholder(field domain.ProfileField, value, userName string) bool {
	v := strings.TrimSpace(value)
	if v == "" {
		return true
	}
	if strings.EqualFold(v, PlaceholderFor(field, userName)) {
		return true
	}
	return IsBoilerplate(v)
}
