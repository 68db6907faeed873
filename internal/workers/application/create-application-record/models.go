// internal/workers/application/create-application-record/models.go
package createapplicationrecord

import "student-intake/internal/models"

type Input struct {
	ApplicationData models.ApplicationData `json:"applicationData"`
	// Priority is computed by the caller; blank means compute it here.
	Priority models.Priority `json:"priority,omitempty"`
}

type Output struct {
	ApplicationID     string                   `json:"applicationId"`
	ApplicationStatus models.ApplicationStatus `json:"applicationStatus"`
	Priority          models.Priority          `json:"priority"`
	// AuditErr is set when the record was stored but APPLICATION_CREATED was not.
	AuditErr error `json:"-"`
}
