package types

import "fmt"

// PersonalField identifies one PersonalInfo field
type PersonalField string

// Personal info fields
const (
	PersonalFullName PersonalField = "fullName"
	PersonalAddress  PersonalField = "address"
	PersonalPhone    PersonalField = "phone"
	PersonalEmail    PersonalField = "email"
	PersonalLinkedIn PersonalField = "linkedin"
	PersonalGitHub   PersonalField = "github"
)

// PersonalFields lists the header fields in display order.
var PersonalFields = []PersonalField{PersonalFullName, PersonalAddress, PersonalPhone, PersonalEmail, PersonalLinkedIn, PersonalGitHub}

// EducationField identifies one Education field
type EducationField string

// Education fields
const (
	EducationInstitution EducationField = "institution"
	EducationDegree      EducationField = "degree"
	EducationStartYear   EducationField = "startYear"
	EducationEndYear     EducationField = "endYear"
	EducationGPA         EducationField = "gpa"
)

// EducationFields lists the editable education fields.
var EducationFields = []EducationField{EducationInstitution, EducationDegree, EducationStartYear, EducationEndYear, EducationGPA}

// WorkExperienceField identifies one WorkExperience field
type WorkExperienceField string

// Work experience fields
const (
	WorkCompany     WorkExperienceField = "company"
	WorkPosition    WorkExperienceField = "position"
	WorkStartDate   WorkExperienceField = "startDate"
	WorkEndDate     WorkExperienceField = "endDate"
	WorkDescription WorkExperienceField = "description"
)

// WorkExperienceFields lists the editable work experience fields.
var WorkExperienceFields = []WorkExperienceField{WorkCompany, WorkPosition, WorkStartDate, WorkEndDate, WorkDescription}

// CertificationField identifies one Certification field
type CertificationField string

// Certification fields
const (
	CertificationName   CertificationField = "name"
	CertificationIssuer CertificationField = "issuer"
	CertificationDate   CertificationField = "date"
)

// CertificationFields lists the editable certification fields.
var CertificationFields = []CertificationField{CertificationName, CertificationIssuer, CertificationDate}

// ProjectField identifies one Project field
type ProjectField string

// Project fields
const (
	ProjectTitle        ProjectField = "title"
	ProjectDescription  ProjectField = "description"
	ProjectRole         ProjectField = "role"
	ProjectAchievements ProjectField = "achievements"
	ProjectDemoLink     ProjectField = "demoLink"
)

// ProjectFields lists the editable project fields.
var ProjectFields = []ProjectField{ProjectTitle, ProjectDescription, ProjectRole, ProjectAchievements, ProjectDemoLink}

// OrganizationField identifies one Organization field
type OrganizationField string

// Organization fields
const (
	OrganizationName       OrganizationField = "name"
	OrganizationRole       OrganizationField = "role"
	OrganizationStartDate  OrganizationField = "startDate"
	OrganizationEndDate    OrganizationField = "endDate"
	OrganizationActivities OrganizationField = "activities"
)

// OrganizationFields lists the editable organization fields.
var OrganizationFields = []OrganizationField{OrganizationName, OrganizationRole, OrganizationStartDate, OrganizationEndDate, OrganizationActivities}

// LanguageField identifies one Language field
type LanguageField string

// Language fields
const (
	LanguageName        LanguageField = "name"
	LanguageProficiency LanguageField = "proficiency"
)

// LanguageFields lists the editable language fields.
var LanguageFields = []LanguageField{LanguageName, LanguageProficiency}

// ReferenceField identifies one Reference field
type ReferenceField string

// Reference fields
const (
	ReferenceName     ReferenceField = "name"
	ReferencePosition ReferenceField = "position"
	ReferenceContact  ReferenceField = "contact"
)

// ReferenceFields lists the editable reference fields.
var ReferenceFields = []ReferenceField{ReferenceName, ReferencePosition, ReferenceContact}

// UnknownFieldError is returned when a field name does not belong to an entity.
type UnknownFieldError struct {
	Entity string
	Field  string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown %s field %q", e.Entity, e.Field)
}

func parseField[F ~string](entity, s string, fields []F) (F, error) {
	for _, f := range fields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", &UnknownFieldError{Entity: entity, Field: s}
}

// ParsePersonalField parses a personal info field name.
func ParsePersonalField(s string) (PersonalField, error) {
	return parseField("personalInfo", s, PersonalFields)
}

// ParseEducationField parses an education field name.
func ParseEducationField(s string) (EducationField, error) {
	return parseField("education", s, EducationFields)
}

// ParseWorkExperienceField parses a work experience field name.
func ParseWorkExperienceField(s string) (WorkExperienceField, error) {
	return parseField("workExperience", s, WorkExperienceFields)
}

// ParseCertificationField parses a certification field name.
func ParseCertificationField(s string) (CertificationField, error) {
	return parseField("certifications", s, CertificationFields)
}

// ParseProjectField parses a project field name.
func ParseProjectField(s string) (ProjectField, error) {
	return parseField("projects", s, ProjectFields)
}

// ParseOrganizationField parses an organization field name.
func ParseOrganizationField(s string) (OrganizationField, error) {
	return parseField("organizations", s, OrganizationFields)
}

// ParseLanguageField parses a language field name.
func ParseLanguageField(s string) (LanguageField, error) {
	return parseField("languages", s, LanguageFields)
}

// ParseReferenceField parses a reference field name.
func ParseReferenceField(s string) (ReferenceField, error) {
	return parseField("references", s, ReferenceFields)
}

// With returns a copy of p with one field replaced.
func (p PersonalInfo) With(field PersonalField, value string) PersonalInfo {
	switch field {
	case PersonalFullName:
		p.FullName = value
	case PersonalAddress:
		p.Address = value
	case PersonalPhone:
		p.Phone = value
	case PersonalEmail:
		p.Email = value
	case PersonalLinkedIn:
		p.LinkedIn = value
	case PersonalGitHub:
		p.GitHub = value
	}
	return p
}

// Get returns the value of one field.
func (p PersonalInfo) Get(field PersonalField) string {
	switch field {
	case PersonalFullName:
		return p.FullName
	case PersonalAddress:
		return p.Address
	case PersonalPhone:
		return p.Phone
	case PersonalEmail:
		return p.Email
	case PersonalLinkedIn:
		return p.LinkedIn
	case PersonalGitHub:
		return p.GitHub
	}
	return ""
}

// With returns a copy of e with one field replaced.
func (e Education) With(field EducationField, value string) Education {
	switch field {
	case EducationInstitution:
		e.Institution = value
	case EducationDegree:
		e.Degree = value
	case EducationStartYear:
		e.StartYear = value
	case EducationEndYear:
		e.EndYear = value
	case EducationGPA:
		e.GPA = value
	}
	return e
}

// With returns a copy of e with one field replaced.
func (e WorkExperience) With(field WorkExperienceField, value string) WorkExperience {
	switch field {
	case WorkCompany:
		e.Company = value
	case WorkPosition:
		e.Position = value
	case WorkStartDate:
		e.StartDate = value
	case WorkEndDate:
		e.EndDate = value
	case WorkDescription:
		e.Description = value
	}
	return e
}

// With returns a copy of e with one field replaced.
func (e Certification) With(field CertificationField, value string) Certification {
	switch field {
	case CertificationName:
		e.Name = value
	case CertificationIssuer:
		e.Issuer = value
	case CertificationDate:
		e.Date = value
	}
	return e
}

// With returns a copy of e with one field replaced.
func (e Project) With(field ProjectField, value string) Project {
	switch field {
	case ProjectTitle:
		e.Title = value
	case ProjectDescription:
		e.Description = value
	case ProjectRole:
		e.Role = value
	case ProjectAchievements:
		e.Achievements = value
	case ProjectDemoLink:
		e.DemoLink = value
	}
	return e
}

// With returns a copy of e with one field replaced.
func (e Organization) With(field OrganizationField, value string) Organization {
	switch field {
	case OrganizationName:
		e.Name = value
	case OrganizationRole:
		e.Role = value
	case OrganizationStartDate:
		e.StartDate = value
	case OrganizationEndDate:
		e.EndDate = value
	case OrganizationActivities:
		e.Activities = value
	}
	return e
}

// With returns a copy of e with one field replaced. A proficiency outside the
// closed set is rejected and e is returned unchanged with an error.
func (e Language) With(field LanguageField, value string) (Language, error) {
	switch field {
	case LanguageName:
		e.Name = value
	case LanguageProficiency:
		p, err := ParseProficiency(value)
		if err != nil {
			return e, err
		}
		e.Proficiency = p
	}
	return e, nil
}

// With returns a copy of e with one field replaced.
func (e Reference) With(field ReferenceField, value string) Reference {
	switch field {
	case ReferenceName:
		e.Name = value
	case ReferencePosition:
		e.Position = value
	case ReferenceContact:
		e.Contact = value
	}
	return e
}
