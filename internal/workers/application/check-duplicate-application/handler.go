// internal/workers/application/check-duplicate-application/handler.go
package checkduplicateapplication

import (
	"context"
	"errors"
	"fmt"

	"student-intake/internal/common/latency"
	"student-intake/internal/common/logger"
	"student-intake/internal/models"
)

const (
	TaskType = "check-duplicate-application"
)

var (
	ErrDuplicateCheckFailed = errors.New("STORE_READ_FAILED")
)

// ApplicationLister returns every stored application in insertion order.
type ApplicationLister interface {
	ListAll(ctx context.Context) ([]models.ApplicationRecord, error)
}

type Handler struct {
	config *Config
	store  ApplicationLister
	logger logger.Logger
}

func NewHandler(config *Config, store ApplicationLister, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	return &Handler{
		config: config,
		store:  store,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	existing, err := h.FindDuplicate(ctx, input.ApplicationData)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return &Output{IsDuplicate: false}, nil
	}

	h.logger.Info("duplicate application found", map[string]interface{}{
		"existingApplicationId": existing.ID,
	})
	return &Output{
		IsDuplicate:           true,
		ExistingApplicationID: existing.ID,
	}, nil
}

// FindDuplicate returns the first stored record with the same first name,
// last name, date of birth and parent email, or nil. Values are compared
// exactly as submitted.
func (h *Handler) FindDuplicate(ctx context.Context, d models.ApplicationData) (*models.ApplicationRecord, error) {
	if err := latency.Simulate(ctx, h.config.Delay); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDuplicateCheckFailed, err)
	}

	records, err := h.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: duplicate check failed: %v", ErrDuplicateCheckFailed, err)
	}

	for i := range records {
		if IsSameApplicant(records[i].ApplicationData, d) {
			rec := records[i]
			return &rec, nil
		}
	}
	return nil, nil
}

// IsSameApplicant is the duplicate identity rule.
func IsSameApplicant(a, b models.ApplicationData) bool {
	return a.FirstName == b.FirstName &&
		a.LastName == b.LastName &&
		a.DateOfBirth == b.DateOfBirth &&
		a.ParentEmail == b.ParentEmail
}
