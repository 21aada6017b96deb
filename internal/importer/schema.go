package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ProfileFileVersion is the only file version this package reads and writes.
const ProfileFileVersion = 1

// ProfileFile is the JSON document used to move a venture profile between
// installations or out of another tool.
type ProfileFile struct {
	Version           int           `json:"version"`
	Profile           ProfileImport `json:"profile"`
	FounderBackground *string       `json:"founder_background,omitempty"`
	Facts             []string      `json:"facts,omitempty"`
}

// ProfileImport mirrors the venture profile fields.
type ProfileImport struct {
	Title            string  `json:"title"`
	Summary          string  `json:"summary"`
	TargetAudience   *string `json:"target_audience,omitempty"`
	Problem          *string `json:"problem,omitempty"`
	Solution         *string `json:"solution,omitempty"`
	Uniqueness       *string `json:"uniqueness,omitempty"`
	RevenueModel     *string `json:"revenue_model,omitempty"`
	RoadmapStep      *string `json:"key_roadmap_step,omitempty"`
	SuggestedName    *string `json:"suggested_name,omitempty"`
	SuggestedTagline *string `json:"suggested_tagline,omitempty"`
}

// LoadProfileFile reads and parses a profile file from disk.
func LoadProfileFile(path string) (*ProfileFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseProfileFile(f)
}

// ParseProfileFile decodes a profile file. Unknown keys are rejected so a
// typo in a field name is reported instead of silently dropped.
func ParseProfileFile(r io.Reader) (*ProfileFile, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var pf ProfileFile
	if err := dec.Decode(&pf); err != nil {
		return nil, fmt.Errorf("parsing profile file: %w", err)
	}
	return &pf, nil
}

// WriteProfileFile encodes pf as indented JSON.
func WriteProfileFile(w io.Writer, pf *ProfileFile) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(pf); err != nil {
		return fmt.Errorf("writing profile file: %w", err)
	}
	return nil
}
