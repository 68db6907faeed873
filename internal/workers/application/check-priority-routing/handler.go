// internal/workers/application/check-priority-routing/handler.go
package checkpriorityrouting

import (
	"context"
	"strings"

	"student-intake/internal/common/logger"
	"student-intake/internal/models"
)

const (
	TaskType = "check-priority-routing"
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	priority := DeterminePriority(input.ApplicationData)
	officer := h.AssignedOfficer(input.ApplicationData.Grade)

	h.logger.Debug("priority routing determined", map[string]interface{}{
		"grade":    input.ApplicationData.Grade,
		"priority": priority,
		"officer":  officer,
	})

	return &Output{
		Priority:        priority,
		AssignedOfficer: officer,
	}, nil
}

// DeterminePriority applies the first matching rule: early grade, then
// special needs, then medical information.
func DeterminePriority(d models.ApplicationData) models.Priority {
	switch {
	case earlyGrades[d.Grade]:
		return models.PriorityHigh
	case strings.TrimSpace(d.SpecialNeeds) != "":
		return models.PriorityHigh
	case strings.TrimSpace(d.MedicalInfo) != "":
		return models.PriorityMedium
	default:
		return models.PriorityNormal
	}
}

// AssignedOfficer returns the admissions officer for grade, or the default
// mailbox for unknown grades.
func (h *Handler) AssignedOfficer(grade string) string {
	if officer, ok := h.config.OfficersByGrade[grade]; ok {
		return officer
	}
	return h.config.DefaultOfficer
}
