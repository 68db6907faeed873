// internal/workers/application/check-priority-routing/models.go
package checkpriorityrouting

import "student-intake/internal/models"

type Input struct {
	ApplicationData models.ApplicationData `json:"applicationData"`
}

type Output struct {
	Priority        models.Priority `json:"priority"`
	AssignedOfficer string          `json:"assignedOfficer"`
}

// Grades handled with high priority because they are the earliest entry points.
var earlyGrades = map[string]bool{
	"kindergarten": true,
	"grade1":       true,
}
