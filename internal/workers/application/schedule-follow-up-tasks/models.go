// internal/workers/application/schedule-follow-up-tasks/models.go
package schedulefollowuptasks

import "student-intake/internal/models"

type Input struct {
	ApplicationID   string                 `json:"applicationId"`
	ApplicationData models.ApplicationData `json:"applicationData"`
}

type Output struct {
	Tasks []models.FollowUpTask `json:"tasks"`
}

// TaskTypes returns the task types in scheduling order.
func (o *Output) TaskTypes() []string {
	types := make([]string, 0, len(o.Tasks))
	for _, t := range o.Tasks {
		types = append(types, string(t.Type))
	}
	return types
}
