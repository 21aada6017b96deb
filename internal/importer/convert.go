package importer

import (
	"errors"
	"strings"

	"github.com/alexanderramin/ideaforge/internal/domain"
)

// ErrNoProfile is returned when exporting a session that has no profile yet.
var ErrNoProfile = errors.New("session has no venture profile to export")

// Imported is a converted profile file, ready to seed a continued session.
type Imported struct {
	Profile           *domain.VentureProfile
	FounderBackground *string
	Facts             []string
}

// Convert transforms a validated ProfileFile into domain values.
// Call ValidateProfileFile first; Convert assumes the file is valid.
func Convert(pf *ProfileFile) *Imported {
	p := pf.Profile
	out := &Imported{
		Profile: &domain.VentureProfile{
			Title:            strings.TrimSpace(p.Title),
			Summary:          strings.TrimSpace(p.Summary),
			TargetAudience:   trimmed(p.TargetAudience),
			Problem:          trimmed(p.Problem),
			Solution:         trimmed(p.Solution),
			Uniqueness:       trimmed(p.Uniqueness),
			RevenueModel:     trimmed(p.RevenueModel),
			RoadmapStep:      trimmed(p.RoadmapStep),
			SuggestedName:    trimmed(p.SuggestedName),
			SuggestedTagline: trimmed(p.SuggestedTagline),
		},
		FounderBackground: trimmed(pf.FounderBackground),
	}
	for _, f := range pf.Facts {
		out.Facts = append(out.Facts, strings.TrimSpace(f))
	}
	return out
}

// FromSession builds the export document for a session.
func FromSession(s domain.SessionState) (*ProfileFile, error) {
	if s.Profile == nil {
		return nil, ErrNoProfile
	}
	p := s.Profile.Clone()
	pf := &ProfileFile{
		Version: ProfileFileVersion,
		Profile: ProfileImport{
			Title:            p.Title,
			Summary:          p.Summary,
			TargetAudience:   p.TargetAudience,
			Problem:          p.Problem,
			Solution:         p.Solution,
			Uniqueness:       p.Uniqueness,
			RevenueModel:     p.RevenueModel,
			RoadmapStep:      p.RoadmapStep,
			SuggestedName:    p.SuggestedName,
			SuggestedTagline: p.SuggestedTagline,
		},
		FounderBackground: trimmed(s.FounderBackground),
		Facts:             append([]string(nil), s.Facts...),
	}
	return pf, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	return domain.StrPtr(*s)
}
