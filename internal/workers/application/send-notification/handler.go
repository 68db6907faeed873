// internal/workers/application/send-notification/handler.go
package sendnotification

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html"
	"strings"
	"time"

	"student-intake/internal/common/errors"
	"student-intake/internal/common/latency"
	"student-intake/internal/common/logger"
	"student-intake/internal/models"
	checkpriorityrouting "student-intake/internal/workers/application/check-priority-routing"

	"github.com/google/uuid"
)

const (
	TaskType = "send-notification"
)

var (
	ErrNotificationSendFailed = stderrors.New("NOTIFICATION_SEND_FAILED")
	ErrAuditAppendFailed      = stderrors.New("AUDIT_APPEND_FAILED")
	ErrUnknownKind            = stderrors.New("unknown notification kind")
)

type AuditAppender interface {
	Append(ctx context.Context, applicationID string, eventType models.AuditEventType, payload map[string]interface{}) (models.AuditEntry, error)
}

// OfficerRouter resolves the admissions officer responsible for a grade.
type OfficerRouter interface {
	AssignedOfficer(grade string) string
}

type Handler struct {
	config  *Config
	channel Channel
	router  OfficerRouter
	audit   AuditAppender
	logger  logger.Logger
}

func NewHandler(config *Config, channel Channel, router OfficerRouter, audit AuditAppender, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	if config.Now == nil {
		config.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Handler{
		config:  config,
		channel: channel,
		router:  router,
		audit:   audit,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	switch input.Kind {
	case models.NotificationConfirmationEmail:
		return h.SendConfirmation(ctx, input.ApplicationData.ParentEmail, input.ApplicationID, input.ApplicationData)
	case models.NotificationAdminAlert:
		return h.NotifyAdmin(ctx, input.ApplicationID, input.ApplicationData)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, input.Kind)
	}
}

// SendConfirmation emails the guardian and records CONFIRMATION_EMAIL_SENT.
func (h *Handler) SendConfirmation(ctx context.Context, email, applicationID string, data models.ApplicationData) (*Output, error) {
	now := h.config.Now()
	vars := map[string]interface{}{
		"firstName":      data.FirstName,
		"lastName":       data.LastName,
		"parentName":     data.ParentName,
		"grade":          data.Grade,
		"applicationId":  applicationID,
		"submissionDate": now.Format("January 2, 2006"),
		"schoolName":     h.config.SchoolName,
		"fromEmail":      h.config.FromEmail,
	}

	n := models.Notification{
		ID:        uuid.New().String(),
		Kind:      models.NotificationConfirmationEmail,
		To:        email,
		Subject:   renderTemplate(confirmationSubject, vars, false),
		Body:      renderTemplate(confirmationBody, vars, true),
		Metadata:  map[string]interface{}{"applicationId": applicationID},
		CreatedAt: now,
	}

	out, err := h.deliver(ctx, n, h.config.ConfirmationDelay)
	if err != nil {
		return out, err
	}

	if _, err := h.audit.Append(ctx, applicationID, models.EventConfirmationEmailSent, map[string]interface{}{
		"email": email,
	}); err != nil {
		return out, fmt.Errorf("%w: %v", ErrAuditAppendFailed, err)
	}
	return out, nil
}

// NotifyAdmin alerts the officer responsible for the grade and records
// ADMIN_NOTIFIED with the alert payload.
func (h *Handler) NotifyAdmin(ctx context.Context, applicationID string, data models.ApplicationData) (*Output, error) {
	now := h.config.Now()
	officer := h.router.AssignedOfficer(data.Grade)
	priority := checkpriorityrouting.DeterminePriority(data)

	payload := map[string]interface{}{
		"type":          AdminNotificationType,
		"applicationId": applicationID,
		"studentName":   data.StudentName(),
		"grade":         data.Grade,
		"priority":      string(priority),
		"timestamp":     now.Format(time.RFC3339),
		"assignTo":      officer,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encode payload: %v", ErrNotificationSendFailed, err)
	}

	n := models.Notification{
		ID:        uuid.New().String(),
		Kind:      models.NotificationAdminAlert,
		To:        officer,
		Subject:   renderTemplate(adminSubject, payload, false),
		Body:      string(body),
		Metadata:  payload,
		CreatedAt: now,
	}

	out, err := h.deliver(ctx, n, h.config.AdminDelay)
	if err != nil {
		return out, err
	}

	if _, err := h.audit.Append(ctx, applicationID, models.EventAdminNotified, payload); err != nil {
		return out, fmt.Errorf("%w: %v", ErrAuditAppendFailed, err)
	}
	return out, nil
}

func (h *Handler) deliver(ctx context.Context, n models.Notification, delay time.Duration) (*Output, error) {
	out := &Output{
		NotificationID: n.ID,
		Status:         StatusSent,
		Recipient:      n.To,
		SentAt:         n.CreatedAt,
	}

	err := latency.Simulate(ctx, delay)
	if err == nil {
		err = h.channel.Deliver(ctx, n)
	}
	if err != nil {
		h.logger.Error("notification send failed", map[string]interface{}{
			"error":          err,
			"kind":           string(n.Kind),
			"notificationId": n.ID,
		})
		out.Status = StatusFailed
		return out, errors.NewNotificationSendFailedError(string(n.Kind), fmt.Errorf("%w: %v", ErrNotificationSendFailed, err))
	}

	h.logger.Info("notification sent", map[string]interface{}{
		"kind":           string(n.Kind),
		"notificationId": n.ID,
		"recipient":      n.To,
	})
	return out, nil
}

// renderTemplate replaces {{key}} placeholders; unknown placeholders are
// removed. With escape set, values are HTML-escaped.
func renderTemplate(tmpl string, data map[string]interface{}, escape bool) string {
	var b strings.Builder
	rest := tmpl

	// Substituted values are written out verbatim and never rescanned.
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(rest[start:], "}}")
		if end == -1 {
			break
		}
		end += start

		b.WriteString(rest[:start])
		if v, ok := data[rest[start+2:end]]; ok {
			b.WriteString(templateValue(v, escape))
		}
		rest = rest[end+2:]
	}
	b.WriteString(rest)

	return b.String()
}

func templateValue(v interface{}, escape bool) string {
	value := ""
	if s, ok := v.(string); ok {
		value = s
	} else if v != nil {
		value = fmt.Sprintf("%v", v)
	}
	if escape {
		value = html.EscapeString(value)
	}
	return value
}
