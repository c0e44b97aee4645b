package types

// SampleRecord returns a record with one entry in every section and every
// optional field populated. The CLI uses it to preview templates.
func SampleRecord() Record {
	return Record{
		PersonalInfo: PersonalInfo{
			FullName: "Ada Lovelace",
			Address:  "12 St James's Square, London",
			Phone:    "+44 20 7946 0000",
			Email:    "ada@example.com",
			LinkedIn: "https://linkedin.com/in/ada",
			GitHub:   "https://github.com/ada",
		},
		ProfileSummary: "Mathematician working on the Analytical Engine and its programs.",
		Education: []Education{
			{ID: "1", Institution: "Private tutoring", Degree: "Mathematics", StartYear: "1828", EndYear: "1835", GPA: "4.0"},
		},
		WorkExperience: []WorkExperience{
			{ID: "1", Company: "Analytical Engine Project", Position: "Analyst", StartDate: "1842", EndDate: "1843", Description: "Translated and annotated Menabrea's memoir.\nWrote the first published algorithm."},
		},
		HardSkills: []string{"Mathematics", "Algorithms"},
		SoftSkills: []string{"Writing"},
		Certifications: []Certification{
			{ID: "1", Name: "Fellow", Issuer: "Royal Society", Date: "1843"},
		},
		Projects: []Project{
			{ID: "1", Title: "Note G", Description: "Bernoulli number computation", Role: "Author", Achievements: "First computer program", DemoLink: "https://example.com/note-g"},
		},
		Organizations: []Organization{
			{ID: "1", Name: "London Mathematical Circle", Role: "Member", StartDate: "1834", EndDate: "1852", Activities: "Correspondence with Babbage and De Morgan"},
		},
		Languages: []Language{
			{ID: "1", Name: "English", Proficiency: ProficiencyNative},
		},
		References: []Reference{
			{ID: "1", Name: "Charles Babbage", Position: "Lucasian Professor", Contact: "babbage@example.com"},
		},
		SectionHeadings: map[SectionKey]string{},
	}
}
