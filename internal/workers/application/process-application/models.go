// internal/workers/application/process-application/models.go
package processapplication

import (
	"student-intake/internal/models"
)

type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeRejected Outcome = "rejected"
	OutcomeFailed   Outcome = "failed"
)

type Reason string

const (
	ReasonValidation Reason = "validation"
	ReasonDuplicate  Reason = "duplicate"
	ReasonInternal   Reason = "internal"
)

// Step names, shared with the per-step configuration keys.
const (
	StepValidate         = "validate"
	StepCheckDuplicate   = "check_duplicate"
	StepCreateRecord     = "create_record"
	StepSendConfirmation = "send_confirmation"
	StepNotifyAdmin      = "notify_admin"
	StepScheduleTasks    = "schedule_tasks"
	StepUpdateStatus     = "update_status"
	StepGetStatus        = "get_status"
)

// User-facing messages
const (
	MessageAccepted      = "Application submitted successfully"
	MessageInvalid       = "Validation failed"
	MessageDuplicate     = "A similar application already exists for this student"
	MessageInternal      = "Internal server error. Please try again later."
	MessageStatusUpdated = "Application status updated successfully"
)

// AdminAuthor is the author of notes added through UpdateStatus.
const AdminAuthor = "admin"

// Result is the outcome of one submission. Outcome and Reason discriminate
// which of the remaining fields are set.
type Result struct {
	Success bool    `json:"success"`
	Outcome Outcome `json:"outcome"`
	Reason  Reason  `json:"reason,omitempty"`
	Message string  `json:"message"`
	// ErrorCode is the StandardError code of a rejected or failed submission.
	ErrorCode string `json:"errorCode,omitempty"`

	// rejected/validation
	Errors []string `json:"errors,omitempty"`
	// rejected/duplicate
	ExistingApplicationID string `json:"existingApplicationId,omitempty"`
	// accepted
	ApplicationID           string `json:"applicationId,omitempty"`
	EstimatedProcessingTime string `json:"estimatedProcessingTime,omitempty"`
	// failed/internal
	Detail string `json:"detail,omitempty"`

	// SideEffects reports the best-effort steps run after the record was created.
	SideEffects []StepOutcome `json:"sideEffects,omitempty"`
}

// StepOutcome records how a best-effort step ended.
type StepOutcome struct {
	Step      string `json:"step"`
	Success   bool   `json:"success"`
	ErrorCode string `json:"errorCode,omitempty"`
	Message   string `json:"message,omitempty"`
}

type StatusView struct {
	Application   models.ApplicationRecord `json:"application"`
	StatusHistory []models.AuditEntry      `json:"statusHistory"`
}

type StatusUpdate struct {
	Success     bool                     `json:"success"`
	Message     string                   `json:"message"`
	OldStatus   models.ApplicationStatus `json:"oldStatus"`
	NewStatus   models.ApplicationStatus `json:"newStatus"`
	Application models.ApplicationRecord `json:"application"`
}
