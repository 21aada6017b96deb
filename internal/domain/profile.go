package domain

import (
	"fmt"
	"strings"
)

// ProfileField is the label a field carries inside a summary block.
// The string value is wire vocabulary: the responder is instructed to
// reproduce it exactly.
type ProfileField string

const (
	FieldTitle          ProfileField = "Title"
	FieldSummary        ProfileField = "Summary"
	FieldTargetAudience ProfileField = "Target Audience"
	FieldProblem        ProfileField = "Problem"
	FieldSolution       ProfileField = "Solution"
	FieldUniqueness     ProfileField = "Uniqueness"
	FieldRevenueModel   ProfileField = "Revenue Model"
	FieldRoadmapStep    ProfileField = "Key Roadmap Step"

	FieldFounderAngle     ProfileField = "Founder's Angle"
	FieldSuggestedName    ProfileField = "Suggested Name"
	FieldSuggestedTagline ProfileField = "Suggested Tagline"
)

// CoreFields returns the eight canonical profile fields in summary order.
func CoreFields() []ProfileField {
	return []ProfileField{
		FieldTitle,
		FieldSummary,
		FieldTargetAudience,
		FieldProblem,
		FieldSolution,
		FieldUniqueness,
		FieldRevenueModel,
		FieldRoadmapStep,
	}
}

// AuxiliaryFields returns the fields extracted alongside the core set.
func AuxiliaryFields() []ProfileField {
	return []ProfileField{FieldFounderAngle, FieldSuggestedName, FieldSuggestedTagline}
}

// AllFieldLabels returns every label that may appear in a summary block.
func AllFieldLabels() []string {
	fields := append(CoreFields(), AuxiliaryFields()...)
	labels := make([]string, len(fields))
	for i, f := range fields {
		labels[i] = string(f)
	}
	return labels
}

// IsRequired reports whether the field must always hold a value.
func (f ProfileField) IsRequired() bool {
	return f == FieldTitle || f == FieldSummary
}

// ParseProfileField resolves a user-supplied field name (case-insensitive,
// spaces, dashes or underscores) to a ProfileField.
func ParseProfileField(s string) (ProfileField, error) {
	norm := normalizeFieldKey(s)
	for _, f := range append(CoreFields(), AuxiliaryFields()...) {
		if normalizeFieldKey(string(f)) == norm {
			return f, nil
		}
	}
	switch norm {
	case "audience":
		return FieldTargetAudience, nil
	case "revenue":
		return FieldRevenueModel, nil
	case "roadmap", "roadmapstep":
		return FieldRoadmapStep, nil
	case "name":
		return FieldSuggestedName, nil
	case "founder", "background", "founderbackground":
		return FieldFounderAngle, nil
	case "tagline":
		return FieldSuggestedTagline, nil
	}
	return "", fmt.Errorf("unknown profile field %q", s)
}

func normalizeFieldKey(s string) string {
	r := strings.NewReplacer(" ", "", "-", "", "_", "", "'", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(s)))
}

// VentureProfile is the structured record the intake conversation produces.
// Title and Summary are always populated once assembled; nil optional
// fields mean "ask about it later".
type VentureProfile struct {
	Title            string  `json:"title"`
	Summary          string  `json:"summary"`
	TargetAudience   *string `json:"target_audience,omitempty"`
	Problem          *string `json:"problem,omitempty"`
	Solution         *string `json:"solution,omitempty"`
	Uniqueness       *string `json:"uniqueness,omitempty"`
	RevenueModel     *string `json:"revenue_model,omitempty"`
	RoadmapStep      *string `json:"roadmap_step,omitempty"`
	SuggestedName    *string `json:"suggested_name,omitempty"`
	SuggestedTagline *string `json:"suggested_tagline,omitempty"`
}

// Get returns the value of field and whether it is present.
func (p *VentureProfile) Get(field ProfileField) (string, bool) {
	switch field {
	case FieldTitle:
		return p.Title, p.Title != ""
	case FieldSummary:
		return p.Summary, p.Summary != ""
	}
	ptr := p.optional(field)
	if ptr == nil || *ptr == nil {
		return "", false
	}
	return **ptr, true
}

// Set assigns value to field. A blank value clears an optional field.
func (p *VentureProfile) Set(field ProfileField, value string) error {
	value = strings.TrimSpace(value)
	switch field {
	case FieldTitle:
		p.Title = value
		return nil
	case FieldSummary:
		p.Summary = value
		return nil
	}
	ptr := p.optional(field)
	if ptr == nil {
		return fmt.Errorf("field %q is not part of the venture profile", field)
	}
	if value == "" {
		*ptr = nil
		return nil
	}
	*ptr = &value
	return nil
}

func (p *VentureProfile) optional(field ProfileField) **string {
	switch field {
	case FieldTargetAudience:
		return &p.TargetAudience
	case FieldProblem:
		return &p.Problem
	case FieldSolution:
		return &p.Solution
	case FieldUniqueness:
		return &p.Uniqueness
	case FieldRevenueModel:
		return &p.RevenueModel
	case FieldRoadmapStep:
		return &p.RoadmapStep
	case FieldSuggestedName:
		return &p.SuggestedName
	case FieldSuggestedTagline:
		return &p.SuggestedTagline
	}
	return nil
}

// Validate checks the required-field invariant.
func (p *VentureProfile) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(p.Summary) == "" {
		return fmt.Errorf("summary is required")
	}
	return nil
}

// Clone returns a deep copy of the profile.
func (p *VentureProfile) Clone() *VentureProfile {
	if p == nil {
		return nil
	}
	c := &VentureProfile{Title: p.Title, Summary: p.Summary}
	for _, f := range append(CoreFields()[2:], FieldSuggestedName, FieldSuggestedTagline) {
		if v, ok := p.Get(f); ok {
			_ = c.Set(f, v)
		}
	}
	return c
}
