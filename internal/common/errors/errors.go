// Package errors provides the standardized error taxonomy of the intake pipeline.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Outcome-level codes
const (
	ErrCodeApplicationValidationFailed ErrorCode = "APPLICATION_VALIDATION_FAILED"
	ErrCodeDuplicateApplication        ErrorCode = "DUPLICATE_APPLICATION"
	ErrCodeApplicationNotFound         ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeInternal                    ErrorCode = "INTERNAL_ERROR"
)

// Detail codes carried by internal failures
const (
	ErrCodeInvalidSubmission      ErrorCode = "INVALID_SUBMISSION"
	ErrCodeInvalidStatus          ErrorCode = "INVALID_STATUS"
	ErrCodeDatabaseInsertFailed   ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeStoreReadFailed        ErrorCode = "STORE_READ_FAILED"
	ErrCodeStoreWriteFailed       ErrorCode = "STORE_WRITE_FAILED"
	ErrCodeRecordInvariantBroken  ErrorCode = "RECORD_INVARIANT_VIOLATED"
	ErrCodeAuditAppendFailed      ErrorCode = "AUDIT_APPEND_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeTaskSchedulingFailed   ErrorCode = "TASK_SCHEDULING_FAILED"
)

// Category groups codes by how a caller is expected to react.
type Category string

const (
	CategoryValidation Category = "validation"
	CategoryBusiness   Category = "business"
	CategoryNotFound   Category = "not_found"
	CategoryInternal   Category = "internal"
)

// StandardError represents a structured pipeline error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches another StandardError by code.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Category returns the category of the error's code.
func (e *StandardError) Category() Category {
	return GetErrorCategory(e.Code)
}

// WithMetadata returns the error with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewApplicationValidationFailedError creates a non-retryable application validation error.
func NewApplicationValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeApplicationValidationFailed,
		Message:   "Application data validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateApplicationError creates a non-retryable duplicate application error.
func NewDuplicateApplicationError(applicationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateApplication,
		Message:   "Application already exists",
		Details:   fmt.Sprintf("applicationId: %s", applicationID),
		Retryable: false,
		Metadata:  map[string]interface{}{"existingApplicationId": applicationID},
		Timestamp: time.Now().UTC(),
	}
}

func NewApplicationNotFoundError(applicationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeApplicationNotFound,
		Message:   "Application not found",
		Details:   fmt.Sprintf("applicationId: %s", applicationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidStatusError(status string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidStatus,
		Message:   "Invalid application status",
		Details:   fmt.Sprintf("status: %s", status),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidSubmissionError reports a payload that is not a flat record of strings.
func NewInvalidSubmissionError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidSubmission,
		Message:   "Submission payload is malformed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. Normalization
// ==========================

var codeMessages = map[ErrorCode]string{
	ErrCodeApplicationValidationFailed: "Application data validation failed",
	ErrCodeDuplicateApplication:        "Application already exists",
	ErrCodeApplicationNotFound:         "Application not found",
	ErrCodeInvalidSubmission:           "Submission payload is malformed",
	ErrCodeInvalidStatus:               "Invalid application status",
	ErrCodeDatabaseInsertFailed:        "Database insert operation failed",
	ErrCodeStoreReadFailed:             "Application store read failed",
	ErrCodeStoreWriteFailed:            "Application store write failed",
	ErrCodeRecordInvariantBroken:       "Record update violates record invariants",
	ErrCodeAuditAppendFailed:           "Audit log append failed",
	ErrCodeNotificationSendFailed:      "Notification delivery failed",
	ErrCodeTaskSchedulingFailed:        "Follow-up task scheduling failed",
	ErrCodeInternal:                    "Unexpected error",
}

// Normalize maps any error onto a StandardError. Sentinel errors whose text is
// a known code (errors.New("DATABASE_INSERT_FAILED") wrapped with %w) keep
// that code; everything else becomes INTERNAL_ERROR.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}

	code := ErrCodeInternal
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		if msg, ok := codeMessages[ErrorCode(e.Error())]; ok && msg != "" {
			code = ErrorCode(e.Error())
			break
		}
	}

	return &StandardError{
		Code:      code,
		Message:   codeMessages[code],
		Details:   err.Error(),
		Retryable: IsRetryableErrorCode(code),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 4. Utility Functions
// ==========================

// IsRetryableErrorCode reports whether a retry of the same call may succeed.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeDatabaseInsertFailed,
		ErrCodeStoreReadFailed,
		ErrCodeStoreWriteFailed,
		ErrCodeAuditAppendFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeTaskSchedulingFailed:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) Category {
	switch code {
	case ErrCodeApplicationValidationFailed, ErrCodeInvalidSubmission, ErrCodeInvalidStatus:
		return CategoryValidation
	case ErrCodeDuplicateApplication:
		return CategoryBusiness
	case ErrCodeApplicationNotFound:
		return CategoryNotFound
	default:
		return CategoryInternal
	}
}

// HasCode reports whether err normalizes to code.
func HasCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	return Normalize(err).Code == code
}
