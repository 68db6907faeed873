// internal/store/audit.go
package store

import (
	"context"
	"sync"
	"time"

	"student-intake/internal/common/database"
	"student-intake/internal/models"
)

// AuditLog is the append-only event history of all applications.
type AuditLog struct {
	ns  database.Namespace
	mu  sync.Mutex
	now func() time.Time
}

func NewAuditLog(ns database.Namespace, opts ...Option) *AuditLog {
	o := buildOptions(opts)
	return &AuditLog{ns: ns, now: o.now}
}

// Append records one event for applicationID and returns it.
func (a *AuditLog) Append(ctx context.Context, applicationID string, eventType models.AuditEventType, payload map[string]interface{}) (models.AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	entries, err := loadCollection[models.AuditEntry](ctx, a.ns, AuditLogKey)
	if err != nil {
		return models.AuditEntry{}, err
	}

	if payload == nil {
		payload = map[string]interface{}{}
	}
	entry := models.AuditEntry{
		ApplicationID: applicationID,
		EventType:     eventType,
		Payload:       payload,
		Timestamp:     a.now(),
	}

	entries = append(entries, entry)
	if err := saveCollection(ctx, a.ns, AuditLogKey, entries); err != nil {
		return models.AuditEntry{}, err
	}
	return entry, nil
}

// History returns the entries of applicationID in insertion order.
func (a *AuditLog) History(ctx context.Context, applicationID string) ([]models.AuditEntry, error) {
	entries, err := loadCollection[models.AuditEntry](ctx, a.ns, AuditLogKey)
	if err != nil {
		return nil, err
	}

	out := make([]models.AuditEntry, 0)
	for _, e := range entries {
		if e.ApplicationID == applicationID {
			out = append(out, e)
		}
	}
	return out, nil
}
