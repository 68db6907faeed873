// internal/common/errors/handler.go
package errors

// ErrorHandler logs failures of best-effort pipeline steps in one place.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleStepError normalizes err, logs it and returns the normalized value.
// Retryable failures are logged at warn level; the rest at error level.
func (h *ErrorHandler) HandleStepError(step, applicationID string, err error) *StandardError {
	if err == nil {
		return nil
	}
	stdErr := Normalize(err)
	h.logError(step, applicationID, stdErr)
	return stdErr
}

func (h *ErrorHandler) logError(step, applicationID string, stdErr *StandardError) {
	fields := map[string]interface{}{
		"step":          step,
		"applicationId": applicationID,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": string(stdErr.Category()),
	}
	if stdErr.Retryable {
		h.logger.Warn("Pipeline step failed", fields)
		return
	}
	h.logger.Error("Pipeline step failed", fields)
}
