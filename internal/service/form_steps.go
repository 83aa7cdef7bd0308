package service

import "github.com/ebhath/ebhath-api/internal/models"

// StepCount is the number of steps of the application wizard.
const StepCount = 4

// FormStep describes one page of the application wizard.
type FormStep struct {
	Number int      `json:"number"`
	Title  string   `json:"title"`
	Fields []string `json:"fields"`
}

var formSteps = []FormStep{
	{
		Number: 1,
		Title:  "Personal Information",
		Fields: []string{
			models.FieldFirstName, models.FieldLastName, models.FieldDateOfBirth, models.FieldGender,
			models.FieldEmail, models.FieldCitizenship, models.FieldPhoneNumber, models.FieldCollegeName,
			models.FieldGradeLevel,
		},
	},
	{
		Number: 2,
		Title:  "Research Preferences",
		Fields: []string{
			models.FieldFirstChoice, models.FieldSecondChoice, models.FieldThirdChoice, models.FieldResearchExperience,
		},
	},
	{
		Number: 3,
		Title:  "Commitments",
		Fields: []string{models.FieldCommitments, models.FieldHoursPerWeek, models.FieldWorkSample},
	},
	{
		Number: 4,
		Title:  "Additional Information",
		Fields: []string{models.FieldEssay},
	},
}

var optionalFields = map[string]struct{}{
	models.FieldSecondChoice: {},
	models.FieldThirdChoice:  {},
	models.FieldWorkSample:   {},
}

var fieldLabels = map[string]string{
	models.FieldFirstName:          "First Name",
	models.FieldLastName:           "Last Name",
	models.FieldDateOfBirth:        "Date of Birth",
	models.FieldGender:             "Gender",
	models.FieldEmail:              "Email",
	models.FieldCitizenship:        "Citizenship",
	models.FieldPhoneNumber:        "Phone Number",
	models.FieldCollegeName:        "School/College Name",
	models.FieldGradeLevel:         "Grade Level",
	models.FieldFirstChoice:        "First Choice",
	models.FieldSecondChoice:       "Second Choice",
	models.FieldThirdChoice:        "Third Choice",
	models.FieldResearchExperience: "Research Experience",
	models.FieldCommitments:        "Current Commitments",
	models.FieldHoursPerWeek:       "Hours per Week",
	models.FieldWorkSample:         "Work Sample",
	models.FieldEssay:              "Essay",
}

var fieldDescriptions = map[string]string{
	models.FieldFirstName:          "Enter your legal first name",
	models.FieldLastName:           "Enter your legal last name",
	models.FieldDateOfBirth:        "Must be at least 15 years old",
	models.FieldGender:             "Select your gender identity",
	models.FieldEmail:              "Enter a valid email address",
	models.FieldCitizenship:        "Enter your country of citizenship",
	models.FieldPhoneNumber:        "Include country code (e.g., +1 for USA)",
	models.FieldCollegeName:        "Enter the full name of your School/university",
	models.FieldGradeLevel:         "Select your current academic level",
	models.FieldFirstChoice:        "Select your primary research area of interest",
	models.FieldSecondChoice:       "Select your secondary research area of interest (optional)",
	models.FieldThirdChoice:        "Select your tertiary research area of interest (optional)",
	models.FieldResearchExperience: "Describe any previous research experience (if none, write \"None\")",
	models.FieldCommitments:        "List any other academic or professional commitments",
	models.FieldHoursPerWeek:       "Number of hours you can commit per week (10-40)",
	models.FieldWorkSample:         "Upload a relevant work sample (PDF, DOC, or DOCX, max 10MB)",
	models.FieldEssay:              "Explain why you want to join and what you hope to achieve (minimum 200 words)",
}

var genderOptions = []string{"Male", "Female", "Other", "Prefer not to say"}

var gradeLevelOptions = []string{"G9", "G10", "G11", "G12", "Undergraduate"}

// ResearchCategory groups research areas offered in the choice fields.
type ResearchCategory struct {
	Category string   `json:"category"`
	Areas    []string `json:"areas"`
}

var researchAreas = []ResearchCategory{
	{Category: "Biology", Areas: []string{"General Biology", "Computational Biology", "Biochemistry", "Biochemical Engineering"}},
	{Category: "Physics", Areas: []string{"General Physics", "Computational Physics", "Fluid Dynamics", "Astronomy"}},
	{Category: "Mathematics", Areas: []string{"Mathematics", "Number Theory"}},
	{Category: "Engineering", Areas: []string{"Engineering", "Combustion"}},
	{Category: "Computer Science", Areas: []string{"Machine Learning", "Data Science", "Computer Science"}},
	{Category: "Other Sciences", Areas: []string{"Chemistry", "Environmental Science", "Social Sciences", "Business"}},
}

// FieldSchema describes one wizard field for clients rendering the form.
type FieldSchema struct {
	Name        string             `json:"name"`
	Label       string             `json:"label"`
	Description string             `json:"description,omitempty"`
	Required    bool               `json:"required"`
	Options     []string           `json:"options,omitempty"`
	Groups      []ResearchCategory `json:"groups,omitempty"`
}

// StepSchema is a wizard step with its field metadata.
type StepSchema struct {
	Number int           `json:"number"`
	Title  string        `json:"title"`
	Fields []FieldSchema `json:"fields"`
}

// FormSchema is the static description of the application wizard.
type FormSchema struct {
	Steps              []StepSchema `json:"steps"`
	AllowedFileTypes   []string     `json:"allowed_file_types"`
	MaxWorkSampleBytes int64        `json:"max_work_sample_bytes"`
	MinEssayWords      int          `json:"min_essay_words"`
}

// StepFields returns the field names of a step, or nil when out of range.
func StepFields(step int) []string {
	if step < 1 || step > len(formSteps) {
		return nil
	}
	return formSteps[step-1].Fields
}

// IsOptionalField reports whether a field may be left blank.
func IsOptionalField(name string) bool {
	_, ok := optionalFields[name]
	return ok
}

// BuildFormSchema assembles the wizard description served to clients.
func BuildFormSchema(maxWorkSampleBytes int64) FormSchema {
	schema := FormSchema{
		Steps:              make([]StepSchema, 0, len(formSteps)),
		AllowedFileTypes:   append([]string(nil), allowedWorkSampleTypes...),
		MaxWorkSampleBytes: maxWorkSampleBytes,
		MinEssayWords:      minEssayWords,
	}
	for _, step := range formSteps {
		s := StepSchema{Number: step.Number, Title: step.Title, Fields: make([]FieldSchema, 0, len(step.Fields))}
		for _, name := range step.Fields {
			f := FieldSchema{
				Name:        name,
				Label:       fieldLabels[name],
				Description: fieldDescriptions[name],
				Required:    !IsOptionalField(name),
			}
			switch name {
			case models.FieldGender:
				f.Options = genderOptions
			case models.FieldGradeLevel:
				f.Options = gradeLevelOptions
			case models.FieldFirstChoice, models.FieldSecondChoice, models.FieldThirdChoice:
				f.Groups = researchAreas
			}
			s.Fields = append(s.Fields, f)
		}
		schema.Steps = append(schema.Steps, s)
	}
	return schema
}
