// internal/workers/application/check-duplicate-application/models.go
package checkduplicateapplication

import "student-intake/internal/models"

type Input struct {
	ApplicationData models.ApplicationData `json:"applicationData"`
}

type Output struct {
	IsDuplicate           bool   `json:"isDuplicate"`
	ExistingApplicationID string `json:"existingApplicationId,omitempty"`
}
