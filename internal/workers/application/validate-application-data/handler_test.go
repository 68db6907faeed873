// internal/workers/application/validate-application-data/handler_test.go
package validateapplicationdata

import (
	"context"
	"testing"
	"time"

	"student-intake/internal/common/logger"
	"student-intake/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var fixedNow = time.Date(2024, 3, 8, 15, 30, 0, 0, time.UTC)

func createTestConfig() *Config {
	cfg := LoadConfig()
	cfg.Now = func() time.Time { return fixedNow }
	return cfg
}

func validData() models.ApplicationData {
	return models.ApplicationData{
		FirstName:      "Ada",
		LastName:       "Lovelace",
		DateOfBirth:    "2016-05-14",
		Gender:         "female",
		Grade:          "grade3",
		ParentName:     "Anne Byron",
		ParentEmail:    "anne@example.com",
		ParentPhone:    "(555) 123-4567",
		Relationship:   "mother",
		Address:        "12 St James Square, London",
		EmergencyName:  "Mary Somerville",
		EmergencyPhone: "+1 555 987 6543",
	}
}

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func newTestLogger(t *testing.T) logger.Logger {
	return &testLogger{t: t}
}

func fields(errs []ValidationError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Valid(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{ApplicationData: validData()})
	require.NoError(t, err)
	assert.True(t, output.IsValid)
	assert.Empty(t, output.ValidationErrors)
	assert.Empty(t, output.Messages())
}

func TestHandler_Execute_CollectsAllErrors(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{ApplicationData: models.ApplicationData{}})
	require.NoError(t, err)
	assert.False(t, output.IsValid)

	assert.Equal(t, []string{
		"First name must be at least 2 characters long",
		"Last name must be at least 2 characters long",
		"Valid date of birth is required",
		"Valid gender selection is required",
		"Valid grade selection is required",
		"Parent/Guardian name must be at least 2 characters long",
		"Valid parent email address is required",
		"Valid parent phone number is required",
		"Valid relationship selection is required",
		"Complete home address is required",
		"Emergency contact name is required",
		"Valid emergency contact phone is required",
	}, output.Messages())
}

func TestValidate_TwoIndependentFailures(t *testing.T) {
	d := validData()
	d.FirstName = "A"
	d.ParentEmail = "not-an-email"

	errs := Validate(d, fixedNow, LoadConfig().EarliestBirthDate)
	require.Len(t, errs, 2)
	assert.Equal(t, []string{"firstName", "parentEmail"}, fields(errs))
	assert.Equal(t, CodeInvalidLength, errs[0].Code)
	assert.Equal(t, CodeInvalidFormat, errs[1].Code)
}

// ==========================
// Rule Tests
// ==========================

func TestValidate_Rules(t *testing.T) {
	earliest := LoadConfig().EarliestBirthDate

	tests := []struct {
		name       string
		mutate     func(*models.ApplicationData)
		wantFields []string
	}{
		{"names are trimmed", func(d *models.ApplicationData) { d.LastName = "  L  " }, []string{"lastName"}},
		{"two characters are enough", func(d *models.ApplicationData) { d.FirstName = "Jo" }, nil},
		{"dob today is accepted", func(d *models.ApplicationData) { d.DateOfBirth = "2024-03-08" }, nil},
		{"dob tomorrow is rejected", func(d *models.ApplicationData) { d.DateOfBirth = "2024-03-09" }, []string{"dateOfBirth"}},
		{"dob before 1950 is rejected", func(d *models.ApplicationData) { d.DateOfBirth = "1949-12-31" }, []string{"dateOfBirth"}},
		{"dob in 1950 is accepted", func(d *models.ApplicationData) { d.DateOfBirth = "1950-01-01" }, nil},
		{"dob RFC3339 is accepted", func(d *models.ApplicationData) { d.DateOfBirth = "2016-05-14T00:00:00Z" }, nil},
		{"dob garbage is rejected", func(d *models.ApplicationData) { d.DateOfBirth = "14/05/2016" }, []string{"dateOfBirth"}},
		{"unknown gender", func(d *models.ApplicationData) { d.Gender = "unknown" }, []string{"gender"}},
		{"kindergarten grade", func(d *models.ApplicationData) { d.Grade = "kindergarten" }, nil},
		{"grade12", func(d *models.ApplicationData) { d.Grade = "grade12" }, nil},
		{"grade13", func(d *models.ApplicationData) { d.Grade = "grade13" }, []string{"grade"}},
		{"email without tld", func(d *models.ApplicationData) { d.ParentEmail = "anne@example" }, []string{"parentEmail"}},
		{"email with space", func(d *models.ApplicationData) { d.ParentEmail = "an ne@example.com" }, []string{"parentEmail"}},
		{"phone with leading zero", func(d *models.ApplicationData) { d.ParentPhone = "0555 123" }, []string{"parentPhone"}},
		{"phone with letters", func(d *models.ApplicationData) { d.ParentPhone = "555-CALL-NOW" }, []string{"parentPhone"}},
		{"phone too long", func(d *models.ApplicationData) { d.ParentPhone = "12345678901234567" }, []string{"parentPhone"}},
		{"short phone is fine", func(d *models.ApplicationData) { d.ParentPhone = "7" }, nil},
		{"relationship", func(d *models.ApplicationData) { d.Relationship = "uncle" }, []string{"relationship"}},
		{"ten character address", func(d *models.ApplicationData) { d.Address = " 10 Main St " }, nil},
		{"too short address", func(d *models.ApplicationData) { d.Address = "1 Main St" }, []string{"address"}},
		{"emergency name", func(d *models.ApplicationData) { d.EmergencyName = "M" }, []string{"emergencyName"}},
		{"emergency phone", func(d *models.ApplicationData) { d.EmergencyPhone = "" }, []string{"emergencyPhone"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validData()
			tt.mutate(&d)
			errs := Validate(d, fixedNow, earliest)
			if tt.wantFields == nil {
				assert.Empty(t, errs)
				return
			}
			assert.Equal(t, tt.wantFields, fields(errs))
		})
	}
}

func TestValidate_SamePhoneRejected(t *testing.T) {
	tests := []struct {
		name      string
		parent    string
		emergency string
		wantDiff  bool
	}{
		{"identical", "5551234567", "5551234567", true},
		{"identical after stripping", "(555) 123-4567", "555 123 4567", true},
		{"different", "5551234567", "5559876543", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validData()
			d.ParentPhone = tt.parent
			d.EmergencyPhone = tt.emergency

			errs := Validate(d, fixedNow, LoadConfig().EarliestBirthDate)
			if !tt.wantDiff {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Equal(t, "emergencyPhone", errs[0].Field)
			assert.Equal(t, CodeMustDiffer, errs[0].Code)
			assert.Equal(t, "Emergency contact phone should be different from parent phone", errs[0].Message)
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+15551234567", NormalizePhone("+1 (555) 123-4567"))
	assert.Equal(t, "", NormalizePhone(" - ( ) "))
}
