// internal/models/audit.go
package models

import "time"

type AuditEventType string

const (
	EventApplicationCreated    AuditEventType = "APPLICATION_CREATED"
	EventConfirmationEmailSent AuditEventType = "CONFIRMATION_EMAIL_SENT"
	EventAdminNotified         AuditEventType = "ADMIN_NOTIFIED"
	EventTasksScheduled        AuditEventType = "TASKS_SCHEDULED"
	EventStatusUpdated         AuditEventType = "STATUS_UPDATED"
)

// AuditEntry is one append-only event in an application's history.
type AuditEntry struct {
	ApplicationID string                 `json:"applicationId"`
	EventType     AuditEventType         `json:"eventType"`
	Payload       map[string]interface{} `json:"payload"`
	Timestamp     time.Time              `json:"timestamp"`
}
