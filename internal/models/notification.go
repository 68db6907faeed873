// internal/models/notification.go
package models

import "time"

type NotificationKind string

const (
	NotificationConfirmationEmail NotificationKind = "confirmation_email"
	NotificationAdminAlert        NotificationKind = "admin_alert"
)

type Notification struct {
	ID        string                 `json:"id"`
	Kind      NotificationKind       `json:"kind"`
	To        string                 `json:"to"`
	Subject   string                 `json:"subject"`
	Body      string                 `json:"body"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

type TaskType string

const (
	TaskReviewApplication TaskType = "REVIEW_APPLICATION"
	TaskSendDecisionEmail TaskType = "SEND_DECISION_EMAIL"
)

// FollowUpTask is produced while scheduling and is not persisted.
type FollowUpTask struct {
	Type          TaskType  `json:"type"`
	ApplicationID string    `json:"applicationId"`
	DueDate       time.Time `json:"dueDate"`
	Priority      Priority  `json:"priority"`
	AssignedTo    string    `json:"assignedTo"`
}
