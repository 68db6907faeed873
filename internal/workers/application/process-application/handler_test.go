// internal/workers/application/process-application/handler_test.go
package processapplication

import (
	"context"
	stderrors "errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"student-intake/internal/common/database"
	"student-intake/internal/common/errors"
	"student-intake/internal/common/logger"
	"student-intake/internal/common/observability"
	"student-intake/internal/models"
	"student-intake/internal/store"
	checkduplicateapplication "student-intake/internal/workers/application/check-duplicate-application"
	checkpriorityrouting "student-intake/internal/workers/application/check-priority-routing"
	createapplicationrecord "student-intake/internal/workers/application/create-application-record"
	schedulefollowuptasks "student-intake/internal/workers/application/schedule-follow-up-tasks"
	sendnotification "student-intake/internal/workers/application/send-notification"
	validateapplicationdata "student-intake/internal/workers/application/validate-application-data"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// ==========================
// Test Helper Functions
// ==========================

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

var appIDPattern = regexp.MustCompile(`^APP\d+[0-9A-F]{5}$`)

func clock() time.Time { return fixedNow }

func validData() models.ApplicationData {
	return models.ApplicationData{
		FirstName:      "Ada",
		LastName:       "Lovelace",
		DateOfBirth:    "2016-05-14",
		Gender:         "female",
		Grade:          "grade3",
		ParentName:     "Anne Byron",
		ParentEmail:    "anne@example.com",
		ParentPhone:    "(555) 123-4567",
		Relationship:   "mother",
		Address:        "12 St James Square, London",
		EmergencyName:  "Mary Somerville",
		EmergencyPhone: "+1 555 987 6543",
		MedicalInfo:    "asthma",
	}
}

type failingChannel struct{}

func (failingChannel) Deliver(context.Context, models.Notification) error {
	return stderrors.New("mail relay unavailable")
}

type fixture struct {
	handler *Handler
	apps    *store.ApplicationStore
	audit   *store.AuditLog
	outbox  *sendnotification.OutboxChannel
}

// newFixture wires the real workers over an in-memory namespace. A nil
// channel selects the simulated outbox.
func newFixture(t *testing.T, channel sendnotification.Channel, obs *observability.Observability) *fixture {
	t.Helper()
	log := logger.NewTestLogger(t)
	ns := database.NewMemory()
	apps := store.NewApplicationStore(ns, store.WithClock(clock))
	audit := store.NewAuditLog(ns, store.WithClock(clock))
	router := checkpriorityrouting.NewHandler(nil, log)

	outbox := sendnotification.NewOutboxChannel()
	if channel == nil {
		channel = outbox
	}

	notifyCfg := sendnotification.LoadConfig()
	notifyCfg.Now = clock
	scheduleCfg := schedulefollowuptasks.LoadConfig()
	scheduleCfg.Now = clock
	validateCfg := validateapplicationdata.LoadConfig()
	validateCfg.Now = clock
	cfg := LoadConfig()
	cfg.Now = clock

	h := NewHandler(cfg, Dependencies{
		Validator:        validateapplicationdata.NewHandler(validateCfg, log),
		DuplicateChecker: checkduplicateapplication.NewHandler(nil, apps, log),
		RecordCreator:    createapplicationrecord.NewHandler(nil, apps, audit, log),
		Notifier:         sendnotification.NewHandler(notifyCfg, channel, router, audit, log),
		Scheduler:        schedulefollowuptasks.NewHandler(scheduleCfg, router, audit, log),
		Applications:     apps,
		Audit:            audit,
		Observability:    obs,
	}, log)

	return &fixture{handler: h, apps: apps, audit: audit, outbox: outbox}
}

func eventTypes(entries []models.AuditEntry) []models.AuditEventType {
	out := make([]models.AuditEventType, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.EventType)
	}
	return out
}

type mockCreator struct {
	mock.Mock
}

func (m *mockCreator) Execute(ctx context.Context, input *createapplicationrecord.Input) (*createapplicationrecord.Output, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*createapplicationrecord.Output), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendConfirmation(ctx context.Context, email, applicationID string, data models.ApplicationData) (*sendnotification.Output, error) {
	args := m.Called(ctx, email, applicationID, data)
	return nil, args.Error(0)
}

func (m *mockNotifier) NotifyAdmin(ctx context.Context, applicationID string, data models.ApplicationData) (*sendnotification.Output, error) {
	args := m.Called(ctx, applicationID, data)
	return nil, args.Error(0)
}

type failingLister struct{}

func (failingLister) ListAll(context.Context) ([]models.ApplicationRecord, error) {
	return nil, stderrors.New("connection reset")
}

// ==========================
// Submit Tests
// ==========================

func TestHandler_Submit_EndToEnd(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	result := f.handler.Submit(ctx, validData())
	require.True(t, result.Success, "unexpected result: %+v", result)
	assert.Equal(t, OutcomeAccepted, result.Outcome)
	assert.Equal(t, MessageAccepted, result.Message)
	assert.Equal(t, "2-3 business days", result.EstimatedProcessingTime)
	assert.Regexp(t, appIDPattern, result.ApplicationID)

	require.Len(t, result.SideEffects, 3)
	for _, se := range result.SideEffects {
		assert.True(t, se.Success, se.Step)
	}

	all, err := f.apps.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, result.ApplicationID, all[0].ID)
	assert.Equal(t, models.StatusPending, all[0].Status)
	assert.Equal(t, models.PriorityMedium, all[0].Priority)

	history, err := f.audit.History(ctx, result.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, []models.AuditEventType{
		models.EventApplicationCreated,
		models.EventConfirmationEmailSent,
		models.EventAdminNotified,
		models.EventTasksScheduled,
	}, eventTypes(history))

	msgs := f.outbox.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "anne@example.com", msgs[0].To)
	assert.Equal(t, "michael.brown@brightfutureacademy.edu", msgs[1].To)
}

func TestHandler_Submit_ValidationRejected(t *testing.T) {
	f := newFixture(t, nil, nil)

	data := validData()
	data.FirstName = "A"
	data.ParentEmail = "not-an-email"
	data.EmergencyPhone = data.ParentPhone

	result := f.handler.Submit(context.Background(), data)
	assert.False(t, result.Success)
	assert.Equal(t, OutcomeRejected, result.Outcome)
	assert.Equal(t, ReasonValidation, result.Reason)
	assert.Equal(t, MessageInvalid, result.Message)
	assert.Equal(t, string(errors.ErrCodeApplicationValidationFailed), result.ErrorCode)
	assert.Len(t, result.Errors, 3)
	assert.Empty(t, result.ApplicationID)

	all, err := f.apps.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, f.outbox.Messages())
}

func TestHandler_Submit_DuplicateRejected(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	first := f.handler.Submit(ctx, validData())
	require.True(t, first.Success)

	again := validData()
	again.Grade = "grade4"
	second := f.handler.Submit(ctx, again)
	assert.False(t, second.Success)
	assert.Equal(t, OutcomeRejected, second.Outcome)
	assert.Equal(t, ReasonDuplicate, second.Reason)
	assert.Equal(t, MessageDuplicate, second.Message)
	assert.Equal(t, string(errors.ErrCodeDuplicateApplication), second.ErrorCode)
	assert.Equal(t, first.ApplicationID, second.ExistingApplicationID)

	all, err := f.apps.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestHandler_Submit_PriorityRuleOrder(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.ApplicationData)
		want   models.Priority
	}{
		{"grade1 with medical info", func(d *models.ApplicationData) { d.Grade = "grade1" }, models.PriorityHigh},
		{"special needs", func(d *models.ApplicationData) { d.SpecialNeeds = "hearing aid" }, models.PriorityHigh},
		{"medical info only", func(d *models.ApplicationData) {}, models.PriorityMedium},
		{"nothing", func(d *models.ApplicationData) { d.MedicalInfo = "" }, models.PriorityNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, nil)
			data := validData()
			tt.mutate(&data)

			result := f.handler.Submit(context.Background(), data)
			require.True(t, result.Success)

			rec, found, err := f.apps.FindByID(context.Background(), result.ApplicationID)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, tt.want, rec.Priority)
		})
	}
}

func TestHandler_Submit_NotificationFailureIsBestEffort(t *testing.T) {
	f := newFixture(t, failingChannel{}, nil)
	ctx := context.Background()

	result := f.handler.Submit(ctx, validData())
	require.True(t, result.Success)
	assert.Equal(t, OutcomeAccepted, result.Outcome)

	require.Len(t, result.SideEffects, 3)
	assert.Equal(t, StepSendConfirmation, result.SideEffects[0].Step)
	assert.False(t, result.SideEffects[0].Success)
	assert.Equal(t, string(errors.ErrCodeNotificationSendFailed), result.SideEffects[0].ErrorCode)
	assert.False(t, result.SideEffects[1].Success)
	assert.True(t, result.SideEffects[2].Success)

	history, err := f.audit.History(ctx, result.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, []models.AuditEventType{
		models.EventApplicationCreated,
		models.EventTasksScheduled,
	}, eventTypes(history))
}

func TestHandler_Submit_CreateFailure(t *testing.T) {
	creator := &mockCreator{}
	creator.On("Execute", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: disk full", createapplicationrecord.ErrDatabaseInsertFailed))
	notifier := &mockNotifier{}

	ns := database.NewMemory()
	apps := store.NewApplicationStore(ns)
	audit := store.NewAuditLog(ns)
	log := logger.NewNoOpLogger()
	h := NewHandler(nil, Dependencies{
		Validator:        validateapplicationdata.NewHandler(nil, log),
		DuplicateChecker: checkduplicateapplication.NewHandler(nil, apps, log),
		RecordCreator:    creator,
		Notifier:         notifier,
		Applications:     apps,
		Audit:            audit,
	}, log)

	result := h.Submit(context.Background(), validData())
	assert.False(t, result.Success)
	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.Equal(t, ReasonInternal, result.Reason)
	assert.Equal(t, MessageInternal, result.Message)
	assert.Equal(t, string(errors.ErrCodeDatabaseInsertFailed), result.ErrorCode)
	assert.Contains(t, result.Detail, "DATABASE_INSERT_FAILED")

	creator.AssertExpectations(t)
	notifier.AssertNotCalled(t, "SendConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "NotifyAdmin", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_Submit_DuplicateCheckFailure(t *testing.T) {
	creator := &mockCreator{}
	log := logger.NewNoOpLogger()
	h := NewHandler(nil, Dependencies{
		Validator:        validateapplicationdata.NewHandler(nil, log),
		DuplicateChecker: checkduplicateapplication.NewHandler(nil, failingLister{}, log),
		RecordCreator:    creator,
	}, log)

	result := h.Submit(context.Background(), validData())
	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.Contains(t, result.Detail, "STORE_READ_FAILED")
	creator.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestHandler_Submit_AuditFailureOnCreateIsReported(t *testing.T) {
	creator := &mockCreator{}
	creator.On("Execute", mock.Anything, mock.Anything).Return(&createapplicationrecord.Output{
		ApplicationID:     "APP1",
		ApplicationStatus: models.StatusPending,
		Priority:          models.PriorityMedium,
		AuditErr:          createapplicationrecord.ErrAuditAppendFailed,
	}, nil)
	notifier := &mockNotifier{}
	notifier.On("SendConfirmation", mock.Anything, "anne@example.com", "APP1", mock.Anything).Return(nil)
	notifier.On("NotifyAdmin", mock.Anything, "APP1", mock.Anything).Return(nil)

	ns := database.NewMemory()
	apps := store.NewApplicationStore(ns)
	audit := store.NewAuditLog(ns)
	log := logger.NewNoOpLogger()
	router := checkpriorityrouting.NewHandler(nil, log)
	h := NewHandler(nil, Dependencies{
		Validator:        validateapplicationdata.NewHandler(nil, log),
		DuplicateChecker: checkduplicateapplication.NewHandler(nil, apps, log),
		RecordCreator:    creator,
		Notifier:         notifier,
		Scheduler:        schedulefollowuptasks.NewHandler(nil, router, audit, log),
		Applications:     apps,
		Audit:            audit,
	}, log)

	result := h.Submit(context.Background(), validData())
	require.True(t, result.Success)
	require.Len(t, result.SideEffects, 4)
	assert.Equal(t, StepCreateRecord, result.SideEffects[0].Step)
	assert.Equal(t, string(errors.ErrCodeAuditAppendFailed), result.SideEffects[0].ErrorCode)
	notifier.AssertExpectations(t)
}

func TestHandler_Submit_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	obs := observability.New("intake-test", observability.WithSpanProcessor(recorder))
	defer obs.Shutdown()

	f := newFixture(t, nil, obs)
	result := f.handler.Submit(context.Background(), validData())
	require.True(t, result.Success)

	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{
		"intake.validate",
		"intake.check_duplicate",
		"intake.create_record",
		"intake.send_confirmation",
		"intake.notify_admin",
		"intake.schedule_tasks",
	}, names)
}

// ==========================
// Status Tests
// ==========================

func TestHandler_GetStatus_NotFound(t *testing.T) {
	f := newFixture(t, nil, nil)

	view, err := f.handler.GetStatus(context.Background(), "APP0MISSING")
	assert.Nil(t, view)
	assert.True(t, errors.HasCode(err, errors.ErrCodeApplicationNotFound))
}

func TestHandler_GetStatus_Success(t *testing.T) {
	f := newFixture(t, nil, nil)
	result := f.handler.Submit(context.Background(), validData())
	require.True(t, result.Success)

	view, err := f.handler.GetStatus(context.Background(), result.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, result.ApplicationID, view.Application.ID)
	assert.Len(t, view.StatusHistory, 4)
}

func TestHandler_GetStatus_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	obs := observability.New("intake-test", observability.WithSpanProcessor(recorder))
	defer obs.Shutdown()

	f := newFixture(t, nil, obs)
	result := f.handler.Submit(context.Background(), validData())
	require.True(t, result.Success)

	_, err := f.handler.GetStatus(context.Background(), result.ApplicationID)
	require.NoError(t, err)
	_, err = f.handler.GetStatus(context.Background(), "APP0MISSING")
	require.Error(t, err)

	ended := recorder.Ended()
	require.Len(t, ended, 8)
	found, missing := ended[6], ended[7]
	assert.Equal(t, "intake.get_status", found.Name())
	assert.Equal(t, codes.Unset, found.Status().Code)
	assert.Equal(t, "intake.get_status", missing.Name())
	assert.Equal(t, codes.Error, missing.Status().Code)
}

func TestHandler_GetStatus_CancelledDuringDelay(t *testing.T) {
	f := newFixture(t, nil, nil)
	result := f.handler.Submit(context.Background(), validData())
	require.True(t, result.Success)

	f.handler.config.StatusDelay = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	view, err := f.handler.GetStatus(ctx, result.ApplicationID)
	assert.Nil(t, view)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInternal))
}

func TestHandler_UpdateStatus_RoundTrip(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	result := f.handler.Submit(ctx, validData())
	require.True(t, result.Success)

	update, err := f.handler.UpdateStatus(ctx, result.ApplicationID, models.StatusUnderReview, "documents verified")
	require.NoError(t, err)
	assert.True(t, update.Success)
	assert.Equal(t, MessageStatusUpdated, update.Message)
	assert.Equal(t, models.StatusPending, update.OldStatus)

	view, err := f.handler.GetStatus(ctx, result.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, view.Application.Status)
	require.Len(t, view.Application.Notes, 1)
	assert.Equal(t, AdminAuthor, view.Application.Notes[0].Author)
	assert.Equal(t, "documents verified", view.Application.Notes[0].Text)
	assert.False(t, view.Application.UpdatedAt.Before(view.Application.CreatedAt))

	last := view.StatusHistory[len(view.StatusHistory)-1]
	assert.Equal(t, models.EventStatusUpdated, last.EventType)
	assert.Equal(t, "pending", last.Payload["oldStatus"])
	assert.Equal(t, "under_review", last.Payload["newStatus"])
	assert.Equal(t, "documents verified", last.Payload["notes"])
}

func TestHandler_UpdateStatus_Errors(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	_, err := f.handler.UpdateStatus(ctx, "APP0MISSING", models.StatusAccepted, "")
	assert.True(t, errors.HasCode(err, errors.ErrCodeApplicationNotFound))

	_, err = f.handler.UpdateStatus(ctx, "APP0MISSING", models.ApplicationStatus("archived"), "")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidStatus))
}
