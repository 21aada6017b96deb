package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ideaforge/internal/cli/formatter"
	"github.com/alexanderramin/ideaforge/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// forgeHuhTheme returns a huh theme matching the formatter palette.
func forgeHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// profileDraft holds editable copies of every profile field, keyed by field.
type profileDraft struct {
	fields []domain.ProfileField
	values map[domain.ProfileField]*string
	before map[domain.ProfileField]string
}

func newProfileDraft(p *domain.VentureProfile, founderBackground *string) *profileDraft {
	d := &profileDraft{
		fields: append(domain.CoreFields(), domain.AuxiliaryFields()...),
		values: make(map[domain.ProfileField]*string),
		before: make(map[domain.ProfileField]string),
	}
	for _, f := range d.fields {
		var v string
		switch {
		case f == domain.FieldFounderAngle:
			v = domain.StrValue(founderBackground)
		case p != nil:
			v, _ = p.Get(f)
		}
		d.before[f] = v
		d.values[f] = &v
	}
	return d
}

// changed returns the fields whose value differs from the snapshot.
func (d *profileDraft) changed() []domain.ProfileField {
	var out []domain.ProfileField
	for _, f := range d.fields {
		if strings.TrimSpace(*d.values[f]) != strings.TrimSpace(d.before[f]) {
			out = append(out, f)
		}
	}
	return out
}

// profileForm builds the editor form: core fields first, then the
// founder and naming extras.
func profileForm(d *profileDraft) *huh.Form {
	input := func(f domain.ProfileField) huh.Field {
		if f == domain.FieldSummary || f == domain.FieldSolution || f == domain.FieldFounderAngle {
			return huh.NewText().Title(string(f)).Lines(3).Value(d.values[f])
		}
		in := huh.NewInput().Title(string(f)).Value(d.values[f])
		if f.IsRequired() {
			in = in.Validate(requiredField(f))
		}
		return in
	}

	var core, extra []huh.Field
	for _, f := range domain.CoreFields() {
		core = append(core, input(f))
	}
	for _, f := range domain.AuxiliaryFields() {
		extra = append(extra, input(f))
	}
	return huh.NewForm(
		huh.NewGroup(core...).Title("Venture Profile"),
		huh.NewGroup(extra...).Title("Founder & Naming"),
	).WithTheme(forgeHuhTheme()).WithShowHelp(true)
}

func requiredField(f domain.ProfileField) func(string) error {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s cannot be empty", f)
		}
		return nil
	}
}
