package intelligence

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/ideaforge/internal/domain"
)

// ErrSummaryMalformed is returned when a delimited summary block cannot be
// turned into a valid profile. Callers recover by asking the user to restate.
var ErrSummaryMalformed = errors.New("summary block malformed")

// AssembleOptions controls how gaps in a summary block are resolved.
type AssembleOptions struct {
	UserName string

	// Prior is the current editable profile. Its non-placeholder values fill
	// fields the new block leaves empty, so manual edits survive a re-summary.
	Prior *domain.VentureProfile

	// Final fills every missing field with its placeholder instead of leaving
	// optional fields absent.
	Final bool

	// Bootstrapped lets the suggested name fall back to the title.
	Bootstrapped bool
}

// Assembly is the result of assembling one summary block.
type Assembly struct {
	Profile      *domain.VentureProfile
	FounderAngle *string
}

// AssembleProfile parses raw (the text between the summary markers) into a
// VentureProfile. Title and Summary always resolve, to a placeholder when the
// block has no usable value for them; optional fields are absent unless
// extracted, carried over from Prior, or opts.Final is set.
func AssembleProfile(raw string, opts AssembleOptions) (*Assembly, error) {
	values := NewFieldScanner(domain.AllFieldLabels()...).Scan(raw)

	a := &assembler{values: values, opts: opts}
	profile := &domain.VentureProfile{}
	for _, field := range domain.CoreFields() {
		if v, ok := a.resolve(field, field.IsRequired() || opts.Final); ok {
			if err := profile.Set(field, v); err != nil {
				return nil, fmt.Errorf("set %s: %w", field, err)
			}
		}
	}

	name, ok := a.extracted(domain.FieldSuggestedName)
	if !ok {
		name, ok = a.prior(domain.FieldSuggestedName)
	}
	if !ok && opts.Bootstrapped && !IsPlaceholder(domain.FieldTitle, profile.Title, opts.UserName) {
		name, ok = profile.Title, true
	}
	if !ok && opts.Final {
		name, ok = PlaceholderFor(domain.FieldSuggestedName, opts.UserName), true
	}
	if ok {
		_ = profile.Set(domain.FieldSuggestedName, name)
	}

	if v, ok := a.resolve(domain.FieldSuggestedTagline, opts.Final); ok {
		_ = profile.Set(domain.FieldSuggestedTagline, v)
	}

	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrSummaryMalformed)
	}

	out := &Assembly{Profile: profile}
	if angle, ok := a.extracted(domain.FieldFounderAngle); ok {
		out.FounderAngle = &angle
	}
	return out, nil
}

// FinalizeProfile returns a copy of p with every missing field set to its
// placeholder, the shape consumers of a committed profile expect.
func FinalizeProfile(p *domain.VentureProfile, userName string) *domain.VentureProfile {
	out := p.Clone()
	if out == nil {
		out = &domain.VentureProfile{}
	}
	for _, field := range append(domain.CoreFields(), domain.FieldSuggestedName, domain.FieldSuggestedTagline) {
		if _, ok := out.Get(field); !ok {
			_ = out.Set(field, PlaceholderFor(field, userName))
		}
	}
	return out
}

type assembler struct {
	values map[string]string
	opts   AssembleOptions
}

// resolve picks the extracted value, then the prior value, then the
// placeholder when withDefault is set.
func (a *assembler) resolve(field domain.ProfileField, withDefault bool) (string, bool) {
	if v, ok := a.extracted(field); ok {
		return v, true
	}
	if v, ok := a.prior(field); ok {
		return v, true
	}
	if withDefault {
		return PlaceholderFor(field, a.opts.UserName), true
	}
	return "", false
}

func (a *assembler) extracted(field domain.ProfileField) (string, bool) {
	v := a.values[string(field)]
	if IsPlaceholder(field, v, a.opts.UserName) {
		return "", false
	}
	return v, true
}

func (a *assembler) prior(field domain.ProfileField) (string, bool) {
	if a.opts.Prior == nil {
		return "", false
	}
	v, ok := a.opts.Prior.Get(field)
	if !ok || IsPlaceholder(field, v, a.opts.UserName) {
		return "", false
	}
	return v, true
}
