package validation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"student-intake/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

// JSONSchema defines the structure for input schemas
type JSONSchema struct {
	Type                 string              `json:"type"`
	Properties           map[string]Property `json:"properties,omitempty"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties *bool               `json:"additionalProperties,omitempty"`
	PatternProperties    map[string]Property `json:"patternProperties,omitempty"`
}

type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	MaxLength   *int     `json:"maxLength,omitempty"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Messages returns "field: message" for every error.
func (r *ValidationResult) Messages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return out
}

// maxFieldLength bounds every submitted value.
const maxFieldLength = 2000

// SubmissionSchema describes the flat record the form client submits: an
// object whose values are all strings, with the required form keys present.
// Rule checks on the values belong to the field validator.
func SubmissionSchema() JSONSchema {
	maxLen := maxFieldLength
	props := make(map[string]Property, len(models.FormFields))
	for _, f := range models.FormFields {
		props[f] = Property{Type: "string", MaxLength: &maxLen}
	}
	return JSONSchema{
		Type:       "object",
		Properties: props,
		Required:   append([]string(nil), models.RequiredFormFields...),
		PatternProperties: map[string]Property{
			".*": {Type: "string"},
		},
	}
}

// ValidateDocument checks a JSON document against schema. The returned error
// is set only when the document or schema cannot be read.
func ValidateDocument(doc []byte, schema JSONSchema) (*ValidationResult, error) {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewBytesLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if p, ok := desc.Details()["property"].(string); ok && p != "" {
			field = p
		}
		errs = append(errs, ValidationError{
			Field:   field,
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })

	return &ValidationResult{
		Valid:  result.Valid(),
		Errors: errs,
	}, nil
}

// ParseSubmission validates doc against SubmissionSchema and decodes it into
// a flat record.
func ParseSubmission(doc []byte) (map[string]string, *ValidationResult, error) {
	result, err := ValidateDocument(doc, SubmissionSchema())
	if err != nil {
		return nil, nil, err
	}
	if !result.Valid {
		return nil, result, nil
	}

	var record map[string]string
	if err := json.Unmarshal(doc, &record); err != nil {
		return nil, nil, fmt.Errorf("decode submission: %w", err)
	}
	return record, result, nil
}
