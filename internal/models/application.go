package models

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ApplicationType distinguishes the two application tracks.
type ApplicationType string

const (
	ApplicationTypeMember ApplicationType = "member"
	ApplicationTypeMentor ApplicationType = "mentor"
)

// Valid reports whether t is a known track.
func (t ApplicationType) Valid() bool {
	return t == ApplicationTypeMember || t == ApplicationTypeMentor
}

// ApplicationStatus is the lifecycle stage of a remote application document.
type ApplicationStatus string

const (
	ApplicationStatusDraft   ApplicationStatus = "draft"
	ApplicationStatusPending ApplicationStatus = "pending"
)

// SubmittedFromWeb tags documents produced by the web wizard.
const SubmittedFromWeb = "web"

// Field names as exchanged with clients.
const (
	FieldFirstName          = "firstName"
	FieldLastName           = "lastName"
	FieldDateOfBirth        = "dateOfBirth"
	FieldGender             = "gender"
	FieldEmail              = "email"
	FieldCitizenship        = "citizenship"
	FieldPhoneNumber        = "phoneNumber"
	FieldCollegeName        = "collegeName"
	FieldGradeLevel         = "gradeLevel"
	FieldFirstChoice        = "firstChoice"
	FieldSecondChoice       = "secondChoice"
	FieldThirdChoice        = "thirdChoice"
	FieldResearchExperience = "researchExperience"
	FieldCommitments        = "commitments"
	FieldHoursPerWeek       = "hoursPerWeek"
	FieldWorkSample         = "workSample"
	FieldEssay              = "essay"
)

// WorkSample is an attached file held only in the live session.
type WorkSample struct {
	Filename string `json:"filename"`
	MimeType string `json:"type"`
	Size     int64  `json:"size"`
	Content  []byte `json:"-"`
}

// ApplicationDraft is the working form state of one applicant.
type ApplicationDraft struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"`
	Gender      string `json:"gender"`
	Email       string `json:"email"`
	Citizenship string `json:"citizenship"`
	PhoneNumber string `json:"phoneNumber"`
	CollegeName string `json:"collegeName"`
	GradeLevel  string `json:"gradeLevel"`

	FirstChoice        string `json:"firstChoice"`
	SecondChoice       string `json:"secondChoice"`
	ThirdChoice        string `json:"thirdChoice"`
	ResearchExperience string `json:"researchExperience"`

	Commitments  string      `json:"commitments"`
	HoursPerWeek string      `json:"hoursPerWeek"`
	WorkSample   *WorkSample `json:"workSample"`

	Essay string `json:"essay"`
}

// Field returns the text value of a named field. The work sample is not a text field.
func (d *ApplicationDraft) Field(name string) (string, bool) {
	if ptr := d.textField(name); ptr != nil {
		return *ptr, true
	}
	return "", false
}

// SetField assigns a text field by name.
func (d *ApplicationDraft) SetField(name, value string) error {
	ptr := d.textField(name)
	if ptr == nil {
		return fmt.Errorf("unknown field %q", name)
	}
	*ptr = value
	return nil
}

func (d *ApplicationDraft) textField(name string) *string {
	switch name {
	case FieldFirstName:
		return &d.FirstName
	case FieldLastName:
		return &d.LastName
	case FieldDateOfBirth:
		return &d.DateOfBirth
	case FieldGender:
		return &d.Gender
	case FieldEmail:
		return &d.Email
	case FieldCitizenship:
		return &d.Citizenship
	case FieldPhoneNumber:
		return &d.PhoneNumber
	case FieldCollegeName:
		return &d.CollegeName
	case FieldGradeLevel:
		return &d.GradeLevel
	case FieldFirstChoice:
		return &d.FirstChoice
	case FieldSecondChoice:
		return &d.SecondChoice
	case FieldThirdChoice:
		return &d.ThirdChoice
	case FieldResearchExperience:
		return &d.ResearchExperience
	case FieldCommitments:
		return &d.Commitments
	case FieldHoursPerWeek:
		return &d.HoursPerWeek
	case FieldEssay:
		return &d.Essay
	default:
		return nil
	}
}

// WithoutFile returns a copy with the work sample stripped.
func (d ApplicationDraft) WithoutFile() ApplicationDraft {
	d.WorkSample = nil
	return d
}

// PersonalInfo is the personal section of an application document.
type PersonalInfo struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`
	Email       string `json:"email"`
	Citizenship string `json:"citizenship"`
	PhoneNumber string `json:"phone_number"`
	CollegeName string `json:"college_name"`
	GradeLevel  string `json:"grade_level"`
}

// ResearchPreferences is the research section of an application document.
type ResearchPreferences struct {
	FirstChoice        string `json:"first_choice"`
	SecondChoice       string `json:"second_choice"`
	ThirdChoice        string `json:"third_choice"`
	ResearchExperience string `json:"research_experience"`
}

// EncodedWorkSample is a work sample in transportable form.
type EncodedWorkSample struct {
	Filename string `json:"filename"`
	Type     string `json:"type"`
	Data     string `json:"data"`
}

// Commitments is the availability section of an application document.
type Commitments struct {
	Details      string             `json:"details"`
	HoursPerWeek float64            `json:"hours_per_week"`
	WorkSample   *EncodedWorkSample `json:"work_sample"`
}

// DocumentMetadata tracks provenance and lifecycle of an application document.
type DocumentMetadata struct {
	ApplicationType ApplicationType   `json:"application_type"`
	SubmittedFrom   string            `json:"submitted_from"`
	Status          ApplicationStatus `json:"status"`
	CurrentStep     int               `json:"current_step,omitempty"`
	LastModified    *time.Time        `json:"last_modified,omitempty"`
	SubmittedAt     *time.Time        `json:"submitted_at,omitempty"`
	CreatedAt       *time.Time        `json:"created_at,omitempty"`
}

// ApplicationDocument is the remote document keyed by applicant email. Drafts and
// terminal submissions share this schema.
type ApplicationDocument struct {
	PersonalInfo        PersonalInfo        `json:"personal_info"`
	ResearchPreferences ResearchPreferences `json:"research_preferences"`
	Commitments         Commitments         `json:"commitments"`
	Essay               string              `json:"essay"`
	Metadata            DocumentMetadata    `json:"metadata"`
}

// Application is a row of the relational intake table.
type Application struct {
	ID                  string         `db:"id" json:"id"`
	PersonalInfo        types.JSONText `db:"personal_info" json:"personal_info"`
	ResearchPreferences types.JSONText `db:"research_preferences" json:"research_preferences"`
	Commitments         types.JSONText `db:"commitments" json:"commitments"`
	Essay               string         `db:"essay" json:"essay"`
	Metadata            types.JSONText `db:"metadata" json:"metadata"`
	CreatedAt           time.Time      `db:"created_at" json:"created_at"`
}
