// internal/workers/application/process-application/handler.go
package processapplication

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"student-intake/internal/common/errors"
	"student-intake/internal/common/latency"
	"student-intake/internal/common/logger"
	"student-intake/internal/common/metrics"
	"student-intake/internal/common/observability"
	"student-intake/internal/models"
	"student-intake/internal/store"
	checkduplicateapplication "student-intake/internal/workers/application/check-duplicate-application"
	createapplicationrecord "student-intake/internal/workers/application/create-application-record"
	schedulefollowuptasks "student-intake/internal/workers/application/schedule-follow-up-tasks"
	sendnotification "student-intake/internal/workers/application/send-notification"
	validateapplicationdata "student-intake/internal/workers/application/validate-application-data"
)

const (
	TaskType = "process-application"
)

type Validator interface {
	Execute(ctx context.Context, input *validateapplicationdata.Input) (*validateapplicationdata.Output, error)
}

type DuplicateChecker interface {
	Execute(ctx context.Context, input *checkduplicateapplication.Input) (*checkduplicateapplication.Output, error)
}

type RecordCreator interface {
	Execute(ctx context.Context, input *createapplicationrecord.Input) (*createapplicationrecord.Output, error)
}

type Notifier interface {
	SendConfirmation(ctx context.Context, email, applicationID string, data models.ApplicationData) (*sendnotification.Output, error)
	NotifyAdmin(ctx context.Context, applicationID string, data models.ApplicationData) (*sendnotification.Output, error)
}

type TaskScheduler interface {
	Execute(ctx context.Context, input *schedulefollowuptasks.Input) (*schedulefollowuptasks.Output, error)
}

type ApplicationRepository interface {
	FindByID(ctx context.Context, id string) (models.ApplicationRecord, bool, error)
	Update(ctx context.Context, id string, mutate func(*models.ApplicationRecord) error) (models.ApplicationRecord, error)
}

type AuditLog interface {
	Append(ctx context.Context, applicationID string, eventType models.AuditEventType, payload map[string]interface{}) (models.AuditEntry, error)
	History(ctx context.Context, applicationID string) ([]models.AuditEntry, error)
}

// Dependencies are the collaborators the pipeline sequences.
type Dependencies struct {
	Validator        Validator
	DuplicateChecker DuplicateChecker
	RecordCreator    RecordCreator
	Notifier         Notifier
	Scheduler        TaskScheduler
	Applications     ApplicationRepository
	Audit            AuditLog
	// Observability is optional.
	Observability *observability.Observability
}

type Handler struct {
	config     *Config
	deps       Dependencies
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, deps Dependencies, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	if config.Now == nil {
		config.Now = func() time.Time { return time.Now().UTC() }
	}
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		deps:       deps,
		errHandler: errors.NewErrorHandler(scoped),
		logger:     scoped,
	}
}

// Submit runs one submission through validate, duplicate check, create,
// confirmation, admin notification and scheduling. Failures of the last
// three are reported in Result.SideEffects and never change the outcome.
func (h *Handler) Submit(ctx context.Context, data models.ApplicationData) *Result {
	var validation *validateapplicationdata.Output
	err := h.step(ctx, StepValidate, "", func(ctx context.Context) error {
		var err error
		validation, err = h.deps.Validator.Execute(ctx, &validateapplicationdata.Input{ApplicationData: data})
		return err
	})
	if err != nil {
		return h.failed(StepValidate, "", err)
	}
	if !validation.IsValid {
		h.logger.Info("submission rejected", map[string]interface{}{
			"reason": ReasonValidation,
			"errors": len(validation.ValidationErrors),
		})
		return ValidationRejected(validation.Messages())
	}

	var dup *checkduplicateapplication.Output
	err = h.step(ctx, StepCheckDuplicate, "", func(ctx context.Context) error {
		var err error
		dup, err = h.deps.DuplicateChecker.Execute(ctx, &checkduplicateapplication.Input{ApplicationData: data})
		return err
	})
	if err != nil {
		return h.failed(StepCheckDuplicate, "", err)
	}
	if dup.IsDuplicate {
		h.logger.Info("submission rejected", map[string]interface{}{
			"reason":                ReasonDuplicate,
			"existingApplicationId": dup.ExistingApplicationID,
		})
		return DuplicateRejected(dup.ExistingApplicationID)
	}

	var created *createapplicationrecord.Output
	err = h.step(ctx, StepCreateRecord, "", func(ctx context.Context) error {
		var err error
		created, err = h.deps.RecordCreator.Execute(ctx, &createapplicationrecord.Input{ApplicationData: data})
		return err
	})
	if err != nil {
		return h.failed(StepCreateRecord, "", err)
	}
	appID := created.ApplicationID

	result := &Result{
		Success:                 true,
		Outcome:                 OutcomeAccepted,
		Message:                 MessageAccepted,
		ApplicationID:           appID,
		EstimatedProcessingTime: h.config.EstimatedProcessingTime,
	}
	if created.AuditErr != nil {
		result.SideEffects = append(result.SideEffects, h.sideEffectFailed(StepCreateRecord, appID, created.AuditErr))
	}

	result.SideEffects = append(result.SideEffects,
		h.bestEffort(ctx, StepSendConfirmation, appID, func(ctx context.Context) error {
			_, err := h.deps.Notifier.SendConfirmation(ctx, data.ParentEmail, appID, data)
			return err
		}),
		h.bestEffort(ctx, StepNotifyAdmin, appID, func(ctx context.Context) error {
			_, err := h.deps.Notifier.NotifyAdmin(ctx, appID, data)
			return err
		}),
		h.bestEffort(ctx, StepScheduleTasks, appID, func(ctx context.Context) error {
			_, err := h.deps.Scheduler.Execute(ctx, &schedulefollowuptasks.Input{ApplicationID: appID, ApplicationData: data})
			return err
		}),
	)

	metrics.RecordSubmission(string(OutcomeAccepted), "")
	h.logger.Info("application submitted", map[string]interface{}{
		"applicationId": appID,
		"priority":      created.Priority,
	})
	return result
}

// GetStatus returns the record and its audit history.
func (h *Handler) GetStatus(ctx context.Context, applicationID string) (*StatusView, error) {
	var view *StatusView
	err := h.step(ctx, StepGetStatus, applicationID, func(ctx context.Context) error {
		if err := latency.Simulate(ctx, h.config.StatusDelay); err != nil {
			return err
		}
		rec, found, err := h.deps.Applications.FindByID(ctx, applicationID)
		if err != nil {
			return err
		}
		if !found {
			return errors.NewApplicationNotFoundError(applicationID)
		}

		history, err := h.deps.Audit.History(ctx, applicationID)
		if err != nil {
			return err
		}
		view = &StatusView{Application: rec, StatusHistory: history}
		return nil
	})
	if err != nil {
		return nil, errors.Normalize(err)
	}
	return view, nil
}

// UpdateStatus sets a new status, appends an admin note and records
// STATUS_UPDATED with the status read before the change.
func (h *Handler) UpdateStatus(ctx context.Context, applicationID string, status models.ApplicationStatus, note string) (*StatusUpdate, error) {
	if !status.IsValid() {
		return nil, errors.NewInvalidStatusError(string(status))
	}

	var (
		oldStatus models.ApplicationStatus
		updated   models.ApplicationRecord
	)
	err := h.step(ctx, StepUpdateStatus, applicationID, func(ctx context.Context) error {
		if err := latency.Simulate(ctx, h.config.UpdateDelay); err != nil {
			return err
		}
		var err error
		updated, err = h.deps.Applications.Update(ctx, applicationID, func(rec *models.ApplicationRecord) error {
			oldStatus = rec.Status
			rec.Status = status
			rec.Notes = append(rec.Notes, models.Note{
				Text:      note,
				Timestamp: h.config.Now(),
				Author:    AdminAuthor,
			})
			return nil
		})
		return err
	})
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.NewApplicationNotFoundError(applicationID)
		}
		return nil, errors.Normalize(err)
	}

	if _, err := h.deps.Audit.Append(ctx, applicationID, models.EventStatusUpdated, map[string]interface{}{
		"oldStatus": string(oldStatus),
		"newStatus": string(status),
		"notes":     note,
	}); err != nil {
		return nil, errors.NewInternalError(fmt.Errorf("status changed but audit append failed: %w", err))
	}

	h.logger.Info("application status updated", map[string]interface{}{
		"applicationId": applicationID,
		"oldStatus":     oldStatus,
		"newStatus":     status,
	})
	return &StatusUpdate{
		Success:     true,
		Message:     MessageStatusUpdated,
		OldStatus:   oldStatus,
		NewStatus:   status,
		Application: updated,
	}, nil
}

// step runs fn inside a span and records its duration and failure.
func (h *Handler) step(ctx context.Context, name, applicationID string, fn func(ctx context.Context) error) error {
	ctx, span := h.deps.Observability.StartStep(ctx, name, applicationID)
	started := time.Now()

	err := fn(ctx)

	h.deps.Observability.EndStep(ctx, span, name, started, err)
	metrics.ObserveStep(name, time.Since(started))
	if err != nil {
		metrics.RecordStepFailure(name, string(errors.Normalize(err).Code))
	}
	return err
}

func (h *Handler) bestEffort(ctx context.Context, name, applicationID string, fn func(ctx context.Context) error) StepOutcome {
	if err := h.step(ctx, name, applicationID, fn); err != nil {
		return h.sideEffectFailed(name, applicationID, err)
	}
	return StepOutcome{Step: name, Success: true}
}

func (h *Handler) sideEffectFailed(name, applicationID string, err error) StepOutcome {
	stdErr := h.errHandler.HandleStepError(name, applicationID, err)
	return StepOutcome{
		Step:      name,
		Success:   false,
		ErrorCode: string(stdErr.Code),
		Message:   stdErr.Message,
	}
}

func (h *Handler) failed(name, applicationID string, err error) *Result {
	stdErr := h.errHandler.HandleStepError(name, applicationID, err)
	metrics.RecordSubmission(string(OutcomeFailed), string(ReasonInternal))
	return &Result{
		Outcome:   OutcomeFailed,
		Reason:    ReasonInternal,
		Message:   MessageInternal,
		ErrorCode: string(stdErr.Code),
		Detail:    fmt.Sprintf("%s: %s", stdErr.Code, stdErr.Details),
	}
}

// ValidationRejected builds the rejected/validation result for messages.
func ValidationRejected(messages []string) *Result {
	stdErr := errors.NewApplicationValidationFailedError(strings.Join(messages, "; "))
	metrics.RecordSubmission(string(OutcomeRejected), string(ReasonValidation))
	return &Result{
		Outcome:   OutcomeRejected,
		Reason:    ReasonValidation,
		Message:   MessageInvalid,
		ErrorCode: string(stdErr.Code),
		Errors:    messages,
	}
}

// DuplicateRejected builds the rejected/duplicate result pointing at existingID.
func DuplicateRejected(existingID string) *Result {
	stdErr := errors.NewDuplicateApplicationError(existingID)
	metrics.RecordSubmission(string(OutcomeRejected), string(ReasonDuplicate))
	return &Result{
		Outcome:               OutcomeRejected,
		Reason:                ReasonDuplicate,
		Message:               MessageDuplicate,
		ErrorCode:             string(stdErr.Code),
		ExistingApplicationID: existingID,
	}
}
