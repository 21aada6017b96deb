package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptrStr(s string) *string { return &s }

func validMinimalFile() *ProfileFile {
	return &ProfileFile{
		Version: ProfileFileVersion,
		Profile: ProfileImport{
			Title:   "Crux Exchange",
			Summary: "A marketplace for used climbing gear with safety checks.",
		},
	}
}

func TestValidateProfileFile_ValidMinimal(t *testing.T) {
	assert.Empty(t, ValidateProfileFile(validMinimalFile()))
}

func TestValidateProfileFile_ValidFull(t *testing.T) {
	pf := validMinimalFile()
	pf.Profile.TargetAudience = ptrStr("Climbers on a budget")
	pf.Profile.Problem = ptrStr("Used gear is hard to trust")
	pf.Profile.RevenueModel = ptrStr("Commission on each sale")
	pf.Profile.SuggestedTagline = ptrStr("Climb on trusted gear")
	pf.FounderBackground = ptrStr("Route setter for ten years")
	pf.Facts = []string{"I live in Berlin", "I have two dogs"}

	assert.Empty(t, ValidateProfileFile(pf))
}

func TestValidateProfileFile_WrongVersion(t *testing.T) {
	pf := validMinimalFile()
	pf.Version = 2

	errs := ValidateProfileFile(pf)
	assert.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "version 2")
}

func TestValidateProfileFile_MissingRequired(t *testing.T) {
	pf := validMinimalFile()
	pf.Profile.Title = "  "
	pf.Profile.Summary = ""

	errs := ValidateProfileFile(pf)
	assert.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "profile.title is required")
	assert.Contains(t, errs[1].Error(), "profile.summary is required")
}

func TestValidateProfileFile_BlankOptional(t *testing.T) {
	pf := validMinimalFile()
	pf.Profile.Problem = ptrStr(" ")
	pf.FounderBackground = ptrStr("")

	errs := ValidateProfileFile(pf)
	assert.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "profile.problem")
	assert.Contains(t, errs[1].Error(), "founder_background")
}

func TestValidateProfileFile_TooLong(t *testing.T) {
	pf := validMinimalFile()
	pf.Profile.Summary = strings.Repeat("a", maxValueRunes+1)

	errs := ValidateProfileFile(pf)
	assert.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "exceeds the limit")
}

func TestValidateProfileFile_Facts(t *testing.T) {
	pf := validMinimalFile()
	pf.Facts = []string{"I live in Berlin", " ", "I live in Berlin "}

	errs := ValidateProfileFile(pf)
	assert.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "facts[1]")
	assert.Contains(t, errs[1].Error(), "duplicate")
}
