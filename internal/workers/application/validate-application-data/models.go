// internal/workers/application/validate-application-data/models.go
package validateapplicationdata

import (
	"regexp"

	"student-intake/internal/models"
)

type Input struct {
	ApplicationData models.ApplicationData `json:"applicationData"`
}

type Output struct {
	IsValid          bool              `json:"isValid"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

// Messages returns the human-readable error list in rule order.
func (o *Output) Messages() []string {
	out := make([]string, 0, len(o.ValidationErrors))
	for _, e := range o.ValidationErrors {
		out = append(out, e.Message)
	}
	return out
}

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	CodeInvalidLength = "INVALID_LENGTH"
	CodeInvalidFormat = "INVALID_FORMAT"
	CodeInvalidValue  = "INVALID_VALUE"
	CodeOutOfRange    = "OUT_OF_RANGE"
	CodeMustDiffer    = "MUST_DIFFER"
)

const (
	minNameLength    = 2
	minAddressLength = 10
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// optional +, leading 1-9, at most 16 digits in total
	phoneRegex    = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
	phoneStripper = regexp.MustCompile(`[\s\-()]`)
)

var (
	validGenders = map[string]bool{"male": true, "female": true, "other": true}

	validGrades = map[string]bool{
		"kindergarten": true,
		"grade1":       true, "grade2": true, "grade3": true, "grade4": true,
		"grade5": true, "grade6": true, "grade7": true, "grade8": true,
		"grade9": true, "grade10": true, "grade11": true, "grade12": true,
	}

	validRelationships = map[string]bool{"father": true, "mother": true, "guardian": true, "other": true}
)

// NormalizePhone removes spaces, hyphens and parentheses.
func NormalizePhone(phone string) string {
	return phoneStripper.ReplaceAllString(phone, "")
}
