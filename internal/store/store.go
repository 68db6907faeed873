// Package store keeps applications and their audit trail as JSON collections
// inside a key-value namespace.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"student-intake/internal/common/database"

	"github.com/google/uuid"
)

// Collection keys inside the namespace.
const (
	ApplicationsKey = "applications"
	AuditLogKey     = "auditLog"
)

var (
	ErrNotFound          = errors.New("APPLICATION_NOT_FOUND")
	ErrStoreRead         = errors.New("STORE_READ_FAILED")
	ErrStoreWrite        = errors.New("STORE_WRITE_FAILED")
	ErrInvariantViolated = errors.New("RECORD_INVARIANT_VIOLATED")
)

type options struct {
	now   func() time.Time
	newID func(time.Time) string
}

type Option func(*options)

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator replaces NewApplicationID.
func WithIDGenerator(gen func(time.Time) string) Option {
	return func(o *options) { o.newID = gen }
}

func buildOptions(opts []Option) options {
	o := options{
		now:   func() time.Time { return time.Now().UTC() },
		newID: NewApplicationID,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewApplicationID returns "APP" + epoch milliseconds + five random upper-case
// alphanumerics. Uniqueness is probabilistic.
func NewApplicationID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:5]
	return "APP" + strconv.FormatInt(now.UnixMilli(), 10) + suffix
}

// loadCollection reads a JSON array stored under key. An absent, empty or
// null value is an empty collection.
func loadCollection[T any](ctx context.Context, ns database.Namespace, key string) ([]T, error) {
	raw, found, err := ns.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStoreRead, key, err)
	}
	raw = bytes.TrimSpace(raw)
	if !found || len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrStoreRead, key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func saveCollection[T any](ctx context.Context, ns database.Namespace, key string, items []T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrStoreWrite, key, err)
	}
	if err := ns.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrStoreWrite, key, err)
	}
	return nil
}
