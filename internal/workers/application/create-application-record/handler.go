// internal/workers/application/create-application-record/handler.go
package createapplicationrecord

import (
	"context"
	stderrors "errors"
	"fmt"

	"student-intake/internal/common/errors"
	"student-intake/internal/common/latency"
	"student-intake/internal/common/logger"
	"student-intake/internal/models"
	checkpriorityrouting "student-intake/internal/workers/application/check-priority-routing"
)

const (
	TaskType = "create-application-record"
)

var (
	ErrDatabaseInsertFailed = stderrors.New("DATABASE_INSERT_FAILED")
	ErrAuditAppendFailed    = stderrors.New("AUDIT_APPEND_FAILED")
)

// ApplicationCreator persists a new record and returns its id.
type ApplicationCreator interface {
	Create(ctx context.Context, rec models.ApplicationRecord) (string, error)
}

type AuditAppender interface {
	Append(ctx context.Context, applicationID string, eventType models.AuditEventType, payload map[string]interface{}) (models.AuditEntry, error)
}

type Handler struct {
	config *Config
	store  ApplicationCreator
	audit  AuditAppender
	logger logger.Logger
}

func NewHandler(config *Config, store ApplicationCreator, audit AuditAppender, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	return &Handler{
		config: config,
		store:  store,
		audit:  audit,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	priority := input.Priority
	if priority == "" {
		priority = checkpriorityrouting.DeterminePriority(input.ApplicationData)
	}

	if err := latency.Simulate(ctx, h.config.Delay); err != nil {
		return nil, errors.NewDatabaseInsertFailedError(fmt.Errorf("%w: %v", ErrDatabaseInsertFailed, err))
	}

	appID, err := h.store.Create(ctx, models.ApplicationRecord{
		ApplicationData: input.ApplicationData,
		Status:          models.StatusPending,
		Stage:           models.StageSubmitted,
		Priority:        priority,
		Documents:       []models.Document{},
		Notes:           []models.Note{},
	})
	if err != nil {
		return nil, errors.NewDatabaseInsertFailedError(fmt.Errorf("%w: insert failed: %v", ErrDatabaseInsertFailed, err))
	}

	_, err = h.audit.Append(ctx, appID, models.EventApplicationCreated, input.ApplicationData.ToMap())
	var auditErr error
	if err != nil {
		auditErr = fmt.Errorf("%w: %v", ErrAuditAppendFailed, err)
		h.logger.Warn("audit log append failed", map[string]interface{}{
			"error":         err,
			"applicationId": appID,
		})
	}

	h.logger.Info("application record created", map[string]interface{}{
		"applicationId": appID,
		"grade":         input.ApplicationData.Grade,
		"priority":      priority,
	})

	return &Output{
		ApplicationID:     appID,
		ApplicationStatus: models.StatusPending,
		Priority:          priority,
		AuditErr:          auditErr,
	}, nil
}
