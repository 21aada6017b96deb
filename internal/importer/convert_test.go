package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alexanderramin/ideaforge/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_TrimsValues(t *testing.T) {
	pf := validMinimalFile()
	pf.Profile.Title = "  Crux Exchange "
	pf.Profile.Problem = ptrStr(" Used gear is hard to trust\n")
	pf.FounderBackground = ptrStr(" Route setter ")
	pf.Facts = []string{" I live in Berlin "}

	imp := Convert(pf)

	assert.Equal(t, "Crux Exchange", imp.Profile.Title)
	assert.Equal(t, "Used gear is hard to trust", *imp.Profile.Problem)
	assert.Nil(t, imp.Profile.Solution)
	assert.Equal(t, "Route setter", *imp.FounderBackground)
	assert.Equal(t, []string{"I live in Berlin"}, imp.Facts)
	assert.NoError(t, imp.Profile.Validate())
}

func TestFromSession_NoProfile(t *testing.T) {
	_, err := FromSession(domain.SessionState{})
	assert.ErrorIs(t, err, ErrNoProfile)
}

func TestExportImport_RoundTrip(t *testing.T) {
	s := domain.SessionState{
		Profile: &domain.VentureProfile{
			Title:        "Crux Exchange",
			Summary:      "Used climbing gear marketplace",
			RevenueModel: domain.StrPtr("Commission on each sale"),
		},
		FounderBackground: domain.StrPtr("Route setter"),
		Facts:             []string{"I live in Berlin"},
	}

	pf, err := FromSession(s)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteProfileFile(&buf, pf))
	assert.Contains(t, buf.String(), `"revenue_model": "Commission on each sale"`)
	assert.NotContains(t, buf.String(), "problem")

	parsed, err := ParseProfileFile(&buf)
	require.NoError(t, err)
	require.Empty(t, ValidateProfileFile(parsed))

	imp := Convert(parsed)
	if diff := cmp.Diff(s.Profile, imp.Profile); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, s.Facts, imp.Facts)
	assert.Equal(t, "Route setter", *imp.FounderBackground)
}

func TestParseProfileFile_RejectsUnknownKeys(t *testing.T) {
	_, err := ParseProfileFile(strings.NewReader(`{"version":1,"profile":{"title":"x","summary":"y","colour":"red"}}`))
	assert.Error(t, err)
}

func TestParseProfileFile_InvalidJSON(t *testing.T) {
	_, err := ParseProfileFile(strings.NewReader(`{"version":`))
	assert.ErrorContains(t, err, "parsing profile file")
}
