// internal/workers/application/validate-application-data/handler.go
package validateapplicationdata

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"student-intake/internal/common/logger"
	"student-intake/internal/models"
)

const (
	TaskType = "validate-application-data"
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// Execute validates the submitted record. An invalid record is a normal
// result, never an error.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	now := time.Now()
	if h.config.Now != nil {
		now = h.config.Now()
	}

	errs := Validate(input.ApplicationData, now, h.config.EarliestBirthDate)

	isValid := len(errs) == 0
	h.logger.Info("validation completed", map[string]interface{}{
		"isValid":    isValid,
		"errorCount": len(errs),
	})

	return &Output{
		IsValid:          isValid,
		ValidationErrors: errs,
	}, nil
}

// Validate checks every rule and collects all failures in rule order.
func Validate(d models.ApplicationData, now, earliest time.Time) []ValidationError {
	errs := []ValidationError{}
	add := func(field, code, message string) {
		errs = append(errs, ValidationError{Field: field, Code: code, Message: message})
	}

	if !minLength(d.FirstName, minNameLength) {
		add("firstName", CodeInvalidLength, "First name must be at least 2 characters long")
	}
	if !minLength(d.LastName, minNameLength) {
		add("lastName", CodeInvalidLength, "Last name must be at least 2 characters long")
	}
	if code := checkBirthDate(d.DateOfBirth, now, earliest); code != "" {
		add("dateOfBirth", code, "Valid date of birth is required")
	}
	if !validGenders[d.Gender] {
		add("gender", CodeInvalidValue, "Valid gender selection is required")
	}
	if !validGrades[d.Grade] {
		add("grade", CodeInvalidValue, "Valid grade selection is required")
	}
	if !minLength(d.ParentName, minNameLength) {
		add("parentName", CodeInvalidLength, "Parent/Guardian name must be at least 2 characters long")
	}
	if !emailRegex.MatchString(d.ParentEmail) {
		add("parentEmail", CodeInvalidFormat, "Valid parent email address is required")
	}
	if !validPhone(d.ParentPhone) {
		add("parentPhone", CodeInvalidFormat, "Valid parent phone number is required")
	}
	if !validRelationships[d.Relationship] {
		add("relationship", CodeInvalidValue, "Valid relationship selection is required")
	}
	if !minLength(d.Address, minAddressLength) {
		add("address", CodeInvalidLength, "Complete home address is required")
	}
	if !minLength(d.EmergencyName, minNameLength) {
		add("emergencyName", CodeInvalidLength, "Emergency contact name is required")
	}
	if !validPhone(d.EmergencyPhone) {
		add("emergencyPhone", CodeInvalidFormat, "Valid emergency contact phone is required")
	}

	parent, emergency := NormalizePhone(d.ParentPhone), NormalizePhone(d.EmergencyPhone)
	if parent != "" && parent == emergency {
		add("emergencyPhone", CodeMustDiffer, "Emergency contact phone should be different from parent phone")
	}

	return errs
}

func minLength(s string, n int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= n
}

func validPhone(phone string) bool {
	return phoneRegex.MatchString(NormalizePhone(phone))
}

// checkBirthDate returns an error code, or "" when the date is plausible:
// parseable, not in the future and not before earliest.
func checkBirthDate(raw string, now, earliest time.Time) string {
	raw = strings.TrimSpace(raw)
	dob, err := time.Parse("2006-01-02", raw)
	if err != nil {
		parsed, rfcErr := time.Parse(time.RFC3339, raw)
		if rfcErr != nil {
			return CodeInvalidFormat
		}
		dob = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if dob.After(today) || dob.Before(earliest) {
		return CodeOutOfRange
	}
	return ""
}
