package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRecord_FullyDefined(t *testing.T) {
	r := DefaultRecord()

	assert.NotNil(t, r.Education)
	assert.NotNil(t, r.WorkExperience)
	assert.NotNil(t, r.HardSkills)
	assert.NotNil(t, r.SoftSkills)
	assert.NotNil(t, r.Certifications)
	assert.NotNil(t, r.Projects)
	assert.NotNil(t, r.Organizations)
	assert.NotNil(t, r.Languages)
	assert.NotNil(t, r.References)
	assert.NotNil(t, r.SectionHeadings)

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{
		"personalInfo", "profileSummary", "education", "workExperience", "hardSkills", "softSkills",
		"certifications", "projects", "organizations", "languages", "references", "sectionHeadings",
	} {
		assert.Contains(t, raw, key)
		assert.NotNil(t, raw[key], key)
	}
}

func TestNormalize_DefaultsProficiency(t *testing.T) {
	r := Record{Languages: []Language{{ID: "1", Name: "English"}}}
	r.Normalize()

	assert.Equal(t, ProficiencyBasic, r.Languages[0].Proficiency)
	assert.Equal(t, []Education{}, r.Education)
}

func TestClone_IsDeep(t *testing.T) {
	r := DefaultRecord()
	r.HardSkills = []string{"Go"}
	r.Education = []Education{{ID: "1", Institution: "MIT"}}
	r.SectionHeadings[SectionSkills] = "Toolbox"

	c := r.Clone()
	c.HardSkills[0] = "Rust"
	c.Education[0].Institution = "CMU"
	c.SectionHeadings[SectionSkills] = "Other"

	assert.Equal(t, "Go", r.HardSkills[0])
	assert.Equal(t, "MIT", r.Education[0].Institution)
	assert.Equal(t, "Toolbox", r.SectionHeadings[SectionSkills])
}

func TestValidate_Proficiency(t *testing.T) {
	r := DefaultRecord()
	r.Languages = []Language{{ID: "1", Name: "French", Proficiency: ProficiencyNative}}
	assert.NoError(t, r.Validate())

	r.Languages[0].Proficiency = "Fluent"
	assert.Error(t, r.Validate())
}

func TestParseProficiency(t *testing.T) {
	for _, p := range Proficiencies {
		got, err := ParseProficiency(string(p))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	_, err := ParseProficiency("basic")
	assert.Error(t, err)
}

func TestIsEmpty(t *testing.T) {
	r := DefaultRecord()
	for _, key := range SectionKeys {
		assert.True(t, r.IsEmpty(key), key)
	}

	r.SoftSkills = []string{"Listening"}
	assert.False(t, r.IsEmpty(SectionSkills))
	r.ProfileSummary = "Engineer"
	assert.False(t, r.IsEmpty(SectionProfile))
}

func TestAssignMissingIDs(t *testing.T) {
	r := DefaultRecord()
	r.Education = []Education{{Institution: "A"}, {ID: "7", Institution: "B"}, {ID: "7", Institution: "C"}}
	r.References = []Reference{{Name: "Jane"}}

	r.AssignMissingIDs(SequentialIDs(100))

	ids := map[string]bool{}
	for _, e := range r.Education {
		require.NotEmpty(t, e.ID)
		assert.False(t, ids[e.ID], "duplicate id %s", e.ID)
		ids[e.ID] = true
	}
	assert.Equal(t, "7", r.Education[1].ID)
	assert.NotEmpty(t, r.References[0].ID)
	assert.Equal(t, []string{"A", "B", "C"}, []string{r.Education[0].Institution, r.Education[1].Institution, r.Education[2].Institution})
}

func TestParseSectionKey(t *testing.T) {
	k, err := ParseSectionKey("workExperience")
	require.NoError(t, err)
	assert.Equal(t, SectionExperience, k)

	_, err = ParseSectionKey("hobbies")
	assert.Error(t, err)
}

func TestCoerceProficiency(t *testing.T) {
	tests := map[string]Proficiency{
		"Native":          ProficiencyNative,
		"  mother tongue": ProficiencyNative,
		"Fluent":          ProficiencyAdvanced,
		"intermediate":    ProficiencyIntermediate,
		"Conversational":  ProficiencyIntermediate,
		"beginner":        ProficiencyBasic,
		"":                ProficiencyBasic,
		"C2":              ProficiencyBasic,
	}

	for in, want := range tests {
		assert.Equal(t, want, CoerceProficiency(in), "input %q", in)
	}
}

func TestCoerceProficiencies_OnlyTouchesInvalidLevels(t *testing.T) {
	r := Record{Languages: []Language{
		{ID: "1", Name: "French", Proficiency: "Fluent"},
		{ID: "2", Name: "German", Proficiency: ProficiencyIntermediate},
		{ID: "3", Name: "Latin", Proficiency: "dead"},
	}}

	r.CoerceProficiencies()

	assert.Equal(t, ProficiencyAdvanced, r.Languages[0].Proficiency)
	assert.Equal(t, ProficiencyIntermediate, r.Languages[1].Proficiency)
	assert.Equal(t, ProficiencyBasic, r.Languages[2].Proficiency)
	assert.Equal(t, "French", r.Languages[0].Name)
	require.NoError(t, r.Validate())
}
