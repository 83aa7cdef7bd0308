package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ebhath/ebhath-api/internal/models"
)

// Validation messages surfaced to applicants.
const (
	MsgRequired        = "This field is required"
	MsgInvalidEmail    = "Invalid email format"
	MsgInvalidPhone    = "Invalid phone number format"
	MsgHoursOutOfRange = "Hours must be between 10 and 40"
	MsgInvalidFileType = "Please upload a PDF, DOC, or DOCX file"
	MsgStepIncomplete  = "Please fill in all required fields."
)

const (
	minEssayWords = 200
	minHours      = 10
	maxHours      = 40

	defaultMaxWorkSampleBytes int64 = 10 * 1024 * 1024
)

var allowedWorkSampleTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s-]{8,}$`)
)

// FormValidator applies the per-field rules of the application wizard.
type FormValidator struct {
	validate           *validator.Validate
	maxWorkSampleBytes int64
	fileTypeTag        string
}

// NewFormValidator registers the wizard rules on validate and returns a validator bound to it.
func NewFormValidator(validate *validator.Validate, maxWorkSampleBytes int64) *FormValidator {
	if validate == nil {
		validate = validator.New()
	}
	if maxWorkSampleBytes <= 0 {
		maxWorkSampleBytes = defaultMaxWorkSampleBytes
	}
	mustRegister(validate, "appemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	mustRegister(validate, "appphone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	mustRegister(validate, "minwords", func(fl validator.FieldLevel) bool {
		want, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return CountWords(fl.Field().String()) >= want
	})
	return &FormValidator{
		validate:           validate,
		maxWorkSampleBytes: maxWorkSampleBytes,
		fileTypeTag:        "oneof=" + strings.Join(allowedWorkSampleTypes, " "),
	}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// Validator exposes the underlying validator so DTO validation shares the registered tags.
func (v *FormValidator) Validator() *validator.Validate {
	return v.validate
}

// MaxWorkSampleBytes is the upload limit enforced on work samples.
func (v *FormValidator) MaxWorkSampleBytes() int64 {
	return v.maxWorkSampleBytes
}

// ValidateField checks one value and returns the message to show, or "" when valid.
// Text fields take a string; the work sample takes a *models.WorkSample.
func (v *FormValidator) ValidateField(name string, value interface{}) string {
	if name == models.FieldWorkSample {
		sample, _ := value.(*models.WorkSample)
		return v.validateWorkSample(sample)
	}

	text, _ := value.(string)
	switch name {
	case models.FieldEmail:
		if v.validate.Var(text, "appemail") != nil {
			return MsgInvalidEmail
		}
	case models.FieldPhoneNumber:
		if v.validate.Var(text, "appphone") != nil {
			return MsgInvalidPhone
		}
	case models.FieldHoursPerWeek:
		hours, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil || v.validate.Var(hours, fmt.Sprintf("gte=%d,lte=%d", minHours, maxHours)) != nil {
			return MsgHoursOutOfRange
		}
	case models.FieldEssay:
		if v.validate.Var(text, fmt.Sprintf("minwords=%d", minEssayWords)) != nil {
			return fmt.Sprintf("Essay must be at least %d words (currently: %d words)", minEssayWords, CountWords(text))
		}
	default:
		if v.validate.Var(text, "required") != nil {
			return MsgRequired
		}
	}
	return ""
}

func (v *FormValidator) validateWorkSample(sample *models.WorkSample) string {
	if sample == nil {
		return ""
	}
	if v.validate.Var(sample.MimeType, v.fileTypeTag) != nil {
		return MsgInvalidFileType
	}
	if v.validate.Var(sample.Size, fmt.Sprintf("lte=%d", v.maxWorkSampleBytes)) != nil {
		return fmt.Sprintf("File size (%.1fMB) exceeds the %sMB limit", mebibytes(sample.Size), strconv.FormatFloat(mebibytes(v.maxWorkSampleBytes), 'f', -1, 64))
	}
	return ""
}

// FieldErrors returns the failing fields of a step keyed by field name.
// Blank optional choices are not reported.
func (v *FormValidator) FieldErrors(step int, draft *models.ApplicationDraft) map[string]string {
	errs := make(map[string]string)
	if draft == nil {
		return errs
	}
	for _, name := range StepFields(step) {
		var msg string
		if name == models.FieldWorkSample {
			msg = v.ValidateField(name, draft.WorkSample)
		} else {
			value, _ := draft.Field(name)
			if value == "" && IsOptionalField(name) {
				continue
			}
			msg = v.ValidateField(name, value)
		}
		if msg != "" {
			errs[name] = msg
		}
	}
	return errs
}

// ValidateStep reports whether every required field of the step passes, and the gate
// message to show otherwise.
func (v *FormValidator) ValidateStep(step int, draft *models.ApplicationDraft) (bool, string) {
	if len(v.FieldErrors(step, draft)) > 0 {
		return false, MsgStepIncomplete
	}
	return true, ""
}

// CountWords counts whitespace-separated tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

func mebibytes(n int64) float64 {
	return float64(n) / (1024 * 1024)
}
