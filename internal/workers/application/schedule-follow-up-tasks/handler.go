// internal/workers/application/schedule-follow-up-tasks/handler.go
package schedulefollowuptasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"student-intake/internal/common/latency"
	"student-intake/internal/common/logger"
	"student-intake/internal/models"
)

const (
	TaskType = "schedule-follow-up-tasks"
)

var (
	ErrTaskSchedulingFailed = errors.New("TASK_SCHEDULING_FAILED")
)

type AuditAppender interface {
	Append(ctx context.Context, applicationID string, eventType models.AuditEventType, payload map[string]interface{}) (models.AuditEntry, error)
}

// OfficerRouter resolves the admissions officer responsible for a grade.
type OfficerRouter interface {
	AssignedOfficer(grade string) string
}

type Handler struct {
	config *Config
	router OfficerRouter
	audit  AuditAppender
	logger logger.Logger
}

func NewHandler(config *Config, router OfficerRouter, audit AuditAppender, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	if config.Now == nil {
		config.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Handler{
		config: config,
		router: router,
		audit:  audit,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := latency.Simulate(ctx, h.config.Delay); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTaskSchedulingFailed, err)
	}

	out := &Output{Tasks: h.Plan(input.ApplicationID, input.ApplicationData)}

	if _, err := h.audit.Append(ctx, input.ApplicationID, models.EventTasksScheduled, map[string]interface{}{
		"tasks":     len(out.Tasks),
		"taskTypes": out.TaskTypes(),
	}); err != nil {
		return nil, fmt.Errorf("%w: audit append failed: %v", ErrTaskSchedulingFailed, err)
	}

	h.logger.Info("follow-up tasks scheduled", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"tasks":         len(out.Tasks),
	})
	return out, nil
}

// Plan builds the review and decision tasks without recording them.
func (h *Handler) Plan(applicationID string, d models.ApplicationData) []models.FollowUpTask {
	now := h.config.Now()
	return []models.FollowUpTask{
		{
			Type:          models.TaskReviewApplication,
			ApplicationID: applicationID,
			DueDate:       AddBusinessDays(now, h.config.ReviewOffsetDays, h.config.Weekend),
			Priority:      models.PriorityHigh,
			AssignedTo:    h.router.AssignedOfficer(d.Grade),
		},
		{
			Type:          models.TaskSendDecisionEmail,
			ApplicationID: applicationID,
			DueDate:       AddBusinessDays(now, h.config.DecisionOffsetDays, h.config.Weekend),
			Priority:      models.PriorityMedium,
			AssignedTo:    h.config.DecisionAssignee,
		},
	}
}

// AddBusinessDays advances from one calendar day at a time until n days not
// in weekend have been counted. The time of day is kept.
func AddBusinessDays(from time.Time, n int, weekend []time.Weekday) time.Time {
	skip := make(map[time.Weekday]bool, len(weekend))
	for _, d := range weekend {
		skip[d] = true
	}
	if len(skip) == 7 {
		return from
	}

	result := from
	for added := 0; added < n; {
		result = result.AddDate(0, 0, 1)
		if !skip[result.Weekday()] {
			added++
		}
	}
	return result
}
