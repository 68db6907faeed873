package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submission(t *testing.T, overrides map[string]interface{}, drop ...string) []byte {
	t.Helper()
	doc := map[string]interface{}{
		"firstName":      "Ada",
		"lastName":       "Lovelace",
		"dateOfBirth":    "2016-05-14",
		"gender":         "female",
		"grade":          "grade3",
		"parentName":     "Anne Byron",
		"parentEmail":    "anne@example.com",
		"parentPhone":    "555 123 4567",
		"relationship":   "mother",
		"address":        "12 St James Square, London",
		"emergencyName":  "Mary Somerville",
		"emergencyPhone": "+1 555 987 6543",
	}
	for k, v := range overrides {
		doc[k] = v
	}
	for _, k := range drop {
		delete(doc, k)
	}
	b, err := json.Marshal(doc)
	require.NoError(t, err)
	return b
}

func TestParseSubmission_Valid(t *testing.T) {
	record, result, err := ParseSubmission(submission(t, map[string]interface{}{"medicalInfo": "asthma", "utm_source": "flyer"}))
	require.NoError(t, err)
	require.True(t, result.Valid)
	assert.Equal(t, "Ada", record["firstName"])
	assert.Equal(t, "asthma", record["medicalInfo"])
	assert.Equal(t, "flyer", record["utm_source"], "unknown string keys are allowed")
}

func TestParseSubmission_MissingRequired(t *testing.T) {
	record, result, err := ParseSubmission(submission(t, nil, "firstName", "grade"))
	require.NoError(t, err)
	assert.Nil(t, record)
	require.False(t, result.Valid)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "firstName", result.Errors[0].Field)
	assert.Equal(t, "REQUIRED", result.Errors[0].Code)
	assert.Equal(t, "grade", result.Errors[1].Field)
}

func TestParseSubmission_NonStringValues(t *testing.T) {
	_, result, err := ParseSubmission(submission(t, map[string]interface{}{
		"grade": 3,
		"notes": []string{"a"},
	}))
	require.NoError(t, err)
	require.False(t, result.Valid)
	assert.NotEmpty(t, result.Messages())
	for _, e := range result.Errors {
		assert.Equal(t, "INVALID_TYPE", e.Code)
	}
}

func TestParseSubmission_NotAnObject(t *testing.T) {
	_, result, err := ParseSubmission([]byte(`["firstName"]`))
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestParseSubmission_MalformedJSON(t *testing.T) {
	_, _, err := ParseSubmission([]byte(`{"firstName":`))
	assert.Error(t, err)
}

func TestSubmissionSchema(t *testing.T) {
	s := SubmissionSchema()
	assert.Equal(t, "object", s.Type)
	assert.Len(t, s.Required, 12)
	assert.Contains(t, s.Properties, "previousSchool")
	assert.NotContains(t, s.Required, "previousSchool")
}
