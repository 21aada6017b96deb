package intelligence

import (
	"strings"
	"testing"

	"github.com/alexanderramin/ideaforge/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestIsBoilerplate(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"blacklisted phrase", "Not specified", true},
		{"mixed case phrase", "We'll Identify The Key Problem soon", true},
		{"self reference", "As an AI, I cannot know your market.", true},
		{"real content", "Dog owners who work long hours", false},
		{"empty", "", false},
		{"long value quoting a phrase", "The founder said the pricing was not specified in the first pitch, so we anchored it on per-walk fees and subscriptions.", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBoilerplate(tt.value))
		})
	}
}

func TestIsBoilerplate_LengthCeiling(t *testing.T) {
	short := "to be determined " + strings.Repeat("x", BoilerplateMaxLen-len("to be determined ")-1)
	long := short + "xx"
	assert.True(t, IsBoilerplate(short))
	assert.False(t, IsBoilerplate(long))
}

func TestPlaceholderFor_IsPureAndNamed(t *testing.T) {
	assert.Equal(t, "Identifying the key problem for Ada is crucial.", PlaceholderFor(domain.FieldProblem, "Ada"))
	assert.Equal(t, PlaceholderFor(domain.FieldProblem, "Ada"), PlaceholderFor(domain.FieldProblem, "Ada"))
	assert.Equal(t, "An awesome new venture for you", PlaceholderFor(domain.FieldTitle, "  "))
}

func TestPlaceholderFor_EveryFieldIsItsOwnPlaceholder(t *testing.T) {
	name := "Bartholomew Montgomery-Fitzgerald the Third of Westchester"
	for _, f := range append(domain.CoreFields(), domain.AuxiliaryFields()...) {
		p := PlaceholderFor(f, name)
		assert.NotEmpty(t, p)
		assert.True(t, IsPlaceholder(f, p, name), "field %s", f)
	}
}

func TestIsPlaceholder_RealValue(t *testing.T) {
	assert.False(t, IsPlaceholder(domain.FieldTitle, "Pawsome", "Ada"))
	assert.True(t, IsPlaceholder(domain.FieldTitle, "   ", "Ada"))
}
