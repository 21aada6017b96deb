package importer

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxValueRunes bounds a single field value.
const maxValueRunes = 4000

// ValidateProfileFile checks a profile file before conversion.
// Returns a slice of all validation errors found.
func ValidateProfileFile(pf *ProfileFile) []error {
	var errs []error

	if pf.Version != ProfileFileVersion {
		errs = append(errs, fmt.Errorf("version %d is not supported (expected %d)", pf.Version, ProfileFileVersion))
	}

	errs = append(errs, validateRequired("profile.title", pf.Profile.Title)...)
	errs = append(errs, validateRequired("profile.summary", pf.Profile.Summary)...)

	optional := []struct {
		key string
		val *string
	}{
		{"profile.target_audience", pf.Profile.TargetAudience},
		{"profile.problem", pf.Profile.Problem},
		{"profile.solution", pf.Profile.Solution},
		{"profile.uniqueness", pf.Profile.Uniqueness},
		{"profile.revenue_model", pf.Profile.RevenueModel},
		{"profile.key_roadmap_step", pf.Profile.RoadmapStep},
		{"profile.suggested_name", pf.Profile.SuggestedName},
		{"profile.suggested_tagline", pf.Profile.SuggestedTagline},
		{"founder_background", pf.FounderBackground},
	}
	for _, o := range optional {
		errs = append(errs, validateOptional(o.key, o.val)...)
	}

	errs = append(errs, validateFacts(pf.Facts)...)

	return errs
}

func validateRequired(key, v string) []error {
	if strings.TrimSpace(v) == "" {
		return []error{fmt.Errorf("%s is required", key)}
	}
	return validateLength(key, v)
}

// validateOptional rejects a present but blank value; omit the key instead.
func validateOptional(key string, v *string) []error {
	if v == nil {
		return nil
	}
	if strings.TrimSpace(*v) == "" {
		return []error{fmt.Errorf("%s: must not be blank when present", key)}
	}
	return validateLength(key, *v)
}

func validateLength(key, v string) []error {
	if n := utf8.RuneCountInString(v); n > maxValueRunes {
		return []error{fmt.Errorf("%s: %d characters exceeds the limit of %d", key, n, maxValueRunes)}
	}
	return nil
}

func validateFacts(facts []string) []error {
	var errs []error
	seen := make(map[string]bool, len(facts))
	for i, f := range facts {
		f = strings.TrimSpace(f)
		if f == "" {
			errs = append(errs, fmt.Errorf("facts[%d]: must not be blank", i))
			continue
		}
		if seen[f] {
			errs = append(errs, fmt.Errorf("facts[%d]: duplicate fact %q", i, f))
		}
		seen[f] = true
	}
	return errs
}
