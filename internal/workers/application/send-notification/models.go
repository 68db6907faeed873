// internal/workers/application/send-notification/models.go
package sendnotification

import (
	"time"

	"student-intake/internal/models"
)

type Input struct {
	Kind            models.NotificationKind `json:"kind"`
	ApplicationID   string                  `json:"applicationId"`
	ApplicationData models.ApplicationData  `json:"applicationData"`
}

type Output struct {
	NotificationID string    `json:"notificationId"`
	Status         string    `json:"status"` // "sent" or "failed"
	Recipient      string    `json:"recipient"`
	SentAt         time.Time `json:"sentAt"`
}

// Statuses
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// AdminNotificationType tags the admin alert payload.
const AdminNotificationType = "NEW_APPLICATION"

const confirmationSubject = "Application Confirmation - {{firstName}} {{lastName}}"

const confirmationBody = `<h2>{{schoolName}} - Application Received</h2>
<p>Dear {{parentName}},</p>
<p>Thank you for submitting an application for <strong>{{firstName}} {{lastName}}</strong>.</p>
<div style="background: #f8f9fa; padding: 20px; border-radius: 8px; margin: 20px 0;">
<h3>Application Details:</h3>
<p><strong>Application ID:</strong> {{applicationId}}</p>
<p><strong>Student Name:</strong> {{firstName}} {{lastName}}</p>
<p><strong>Grade Applied:</strong> {{grade}}</p>
<p><strong>Submission Date:</strong> {{submissionDate}}</p>
</div>
<h3>Next Steps:</h3>
<ol>
<li>Our admissions team will review your application within 2-3 business days</li>
<li>You will receive an email with the admission decision</li>
<li>If accepted, enrollment instructions will be provided</li>
</ol>
<p>If you have any questions, please contact us at {{fromEmail}}</p>
<p>Best regards,<br>{{schoolName}} Admissions Team</p>`

const adminSubject = "New Application: {{studentName}} ({{grade}})"
