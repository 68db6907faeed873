// Package intake is the entry point of the student application intake
// pipeline: it wires storage, notification channels and the pipeline steps
// from configuration and exposes submission and status operations.
package intake

import (
	"context"
	"fmt"
	"time"

	intakeaws "student-intake/internal/common/aws"
	"student-intake/internal/common/config"
	"student-intake/internal/common/database"
	"student-intake/internal/common/errors"
	"student-intake/internal/common/logger"
	"student-intake/internal/common/observability"
	"student-intake/internal/common/validation"
	"student-intake/internal/models"
	"student-intake/internal/store"
	checkduplicateapplication "student-intake/internal/workers/application/check-duplicate-application"
	checkpriorityrouting "student-intake/internal/workers/application/check-priority-routing"
	createapplicationrecord "student-intake/internal/workers/application/create-application-record"
	processapplication "student-intake/internal/workers/application/process-application"
	schedulefollowuptasks "student-intake/internal/workers/application/schedule-follow-up-tasks"
	sendnotification "student-intake/internal/workers/application/send-notification"
	validateapplicationdata "student-intake/internal/workers/application/validate-application-data"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type (
	Result       = processapplication.Result
	StepOutcome  = processapplication.StepOutcome
	StatusView   = processapplication.StatusView
	StatusUpdate = processapplication.StatusUpdate
)

type options struct {
	namespace      database.Namespace
	channel        sendnotification.Channel
	now            func() time.Time
	spanProcessors []sdktrace.SpanProcessor
}

type Option func(*options)

// WithNamespace uses ns instead of opening the configured backend. The
// service takes ownership and closes it.
func WithNamespace(ns database.Namespace) Option {
	return func(o *options) { o.namespace = ns }
}

// WithChannel replaces the configured notification channel.
func WithChannel(ch sendnotification.Channel) Option {
	return func(o *options) { o.channel = ch }
}

// WithClock sets the clock used for timestamps, due dates and date checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithSpanProcessor(sp sdktrace.SpanProcessor) Option {
	return func(o *options) { o.spanProcessors = append(o.spanProcessors, sp) }
}

// Service is one pipeline instance over one key-value namespace.
type Service struct {
	pipeline *processapplication.Handler
	apps     *store.ApplicationStore
	ns       database.Namespace
	outbox   *sendnotification.OutboxChannel
	obs      *observability.Observability
	logger   logger.Logger
}

// New builds a Service from cfg. A nil cfg uses config.Default().
func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	weekend, err := cfg.Scheduler.Weekend()
	if err != nil {
		return nil, fmt.Errorf("scheduler weekend: %w", err)
	}

	ns := o.namespace
	if ns == nil {
		ns, err = database.Open(ctx, cfg.Store)
		if err != nil {
			return nil, err
		}
	}

	outbox := sendnotification.NewOutboxChannel()
	channel := o.channel
	if channel == nil {
		channel, err = buildChannel(ctx, cfg.Notifications, outbox)
		if err != nil {
			_ = ns.Close()
			return nil, err
		}
	}

	var storeOpts []store.Option
	if o.now != nil {
		storeOpts = append(storeOpts, store.WithClock(o.now))
	}
	apps := store.NewApplicationStore(ns, storeOpts...)
	audit := store.NewAuditLog(ns, storeOpts...)

	obsOpts := make([]observability.Option, 0, len(o.spanProcessors)+1)
	for _, sp := range o.spanProcessors {
		obsOpts = append(obsOpts, observability.WithSpanProcessor(sp))
	}
	if cfg.Observability.RegisterGlobal {
		obsOpts = append(obsOpts, observability.WithGlobal())
	}
	obs := observability.New(cfg.Observability.ServiceName, obsOpts...)

	router := checkpriorityrouting.NewHandler(nil, log)

	validateCfg := validateapplicationdata.LoadConfig()
	notifyCfg := sendnotification.LoadConfig()
	notifyCfg.FromEmail = cfg.Notifications.FromEmail
	notifyCfg.SchoolName = cfg.Notifications.SchoolName
	notifyCfg.ConfirmationDelay = config.GetStepDelay(cfg, config.StepSendConfirmation)
	notifyCfg.AdminDelay = config.GetStepDelay(cfg, config.StepNotifyAdmin)
	scheduleCfg := schedulefollowuptasks.LoadConfig()
	scheduleCfg.Weekend = weekend
	scheduleCfg.ReviewOffsetDays = cfg.Scheduler.ReviewOffsetDays
	scheduleCfg.DecisionOffsetDays = cfg.Scheduler.DecisionOffsetDays
	scheduleCfg.Delay = config.GetStepDelay(cfg, config.StepScheduleTasks)
	pipelineCfg := processapplication.LoadConfig()
	pipelineCfg.UpdateDelay = config.GetStepDelay(cfg, config.StepUpdateStatus)
	pipelineCfg.StatusDelay = config.GetStepDelay(cfg, config.StepGetStatus)
	if o.now != nil {
		validateCfg.Now = o.now
		notifyCfg.Now = o.now
		scheduleCfg.Now = o.now
		pipelineCfg.Now = o.now
	}

	pipeline := processapplication.NewHandler(pipelineCfg, processapplication.Dependencies{
		Validator: validateapplicationdata.NewHandler(validateCfg, log),
		DuplicateChecker: checkduplicateapplication.NewHandler(
			&checkduplicateapplication.Config{Delay: config.GetStepDelay(cfg, config.StepCheckDuplicate)}, apps, log),
		RecordCreator: createapplicationrecord.NewHandler(
			&createapplicationrecord.Config{Delay: config.GetStepDelay(cfg, config.StepCreateRecord)}, apps, audit, log),
		Notifier:      sendnotification.NewHandler(notifyCfg, channel, router, audit, log),
		Scheduler:     schedulefollowuptasks.NewHandler(scheduleCfg, router, audit, log),
		Applications:  apps,
		Audit:         audit,
		Observability: obs,
	}, log)

	log.Info("intake service ready", map[string]interface{}{
		"backend":   cfg.Store.Backend,
		"namespace": cfg.Store.Namespace,
		"channel":   cfg.Notifications.Channel,
	})

	return &Service{
		pipeline: pipeline,
		apps:     apps,
		ns:       ns,
		outbox:   outbox,
		obs:      obs,
		logger:   log,
	}, nil
}

// buildChannel returns the outbox for the simulated channel. The aws channel
// sends confirmations through SES and publishes admin alerts to SNS when a
// topic is configured, keeping them in the outbox otherwise.
func buildChannel(ctx context.Context, cfg config.NotificationConfig, outbox *sendnotification.OutboxChannel) (sendnotification.Channel, error) {
	switch cfg.Channel {
	case config.ChannelSimulated, "":
		return outbox, nil
	case config.ChannelAWS:
		awsCfg, err := intakeaws.LoadConfig(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, err
		}
		router := &sendnotification.KindRouter{
			Routes: map[models.NotificationKind]sendnotification.Channel{
				models.NotificationConfirmationEmail: sendnotification.NewSESChannel(intakeaws.NewSESClient(awsCfg), cfg.FromEmail),
			},
			Default: outbox,
		}
		if cfg.AdminTopicARN != "" {
			router.Routes[models.NotificationAdminAlert] = sendnotification.NewSNSChannel(intakeaws.NewSNSClient(awsCfg), cfg.AdminTopicARN)
		}
		return router, nil
	default:
		return nil, fmt.Errorf("unsupported notification channel %q", cfg.Channel)
	}
}

// Submit runs a flat form record through the pipeline. Unknown keys are ignored.
func (s *Service) Submit(ctx context.Context, record map[string]string) *Result {
	return s.pipeline.Submit(ctx, models.ApplicationDataFromMap(record))
}

// SubmitJSON checks the payload shape before running the pipeline. Shape
// violations are reported as a validation rejection; an unreadable payload
// is an INVALID_SUBMISSION error.
func (s *Service) SubmitJSON(ctx context.Context, payload []byte) (*Result, error) {
	record, check, err := validation.ParseSubmission(payload)
	if err != nil {
		return nil, errors.NewInvalidSubmissionError(err.Error())
	}
	if !check.Valid {
		return processapplication.ValidationRejected(check.Messages()), nil
	}
	return s.Submit(ctx, record), nil
}

func (s *Service) GetStatus(ctx context.Context, applicationID string) (*StatusView, error) {
	return s.pipeline.GetStatus(ctx, applicationID)
}

func (s *Service) UpdateStatus(ctx context.Context, applicationID, status, note string) (*StatusUpdate, error) {
	return s.pipeline.UpdateStatus(ctx, applicationID, models.ApplicationStatus(status), note)
}

// Applications lists every stored application in insertion order.
func (s *Service) Applications(ctx context.Context) ([]models.ApplicationRecord, error) {
	records, err := s.apps.ListAll(ctx)
	if err != nil {
		return nil, errors.Normalize(err)
	}
	return records, nil
}

// Outbox returns the messages delivered through the simulated channel.
func (s *Service) Outbox() []models.Notification {
	return s.outbox.Messages()
}

// Close flushes telemetry and releases the namespace.
func (s *Service) Close() error {
	s.obs.Shutdown()
	return s.ns.Close()
}
