// internal/workers/application/send-notification/channels.go
package sendnotification

import (
	"context"
	"fmt"
	"sync"

	intakeaws "student-intake/internal/common/aws"
	"student-intake/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Channel delivers one rendered notification.
type Channel interface {
	Deliver(ctx context.Context, n models.Notification) error
}

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// OutboxChannel is the simulated channel: it always succeeds and keeps every
// message in memory for inspection.
type OutboxChannel struct {
	mu       sync.Mutex
	messages []models.Notification
}

func NewOutboxChannel() *OutboxChannel {
	return &OutboxChannel{}
}

func (o *OutboxChannel) Deliver(ctx context.Context, n models.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o.mu.Lock()
	o.messages = append(o.messages, n)
	o.mu.Unlock()
	return nil
}

// Messages returns a copy of the delivered messages in delivery order.
func (o *OutboxChannel) Messages() []models.Notification {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]models.Notification(nil), o.messages...)
}

// SESChannel sends notifications as email.
type SESChannel struct {
	client SESService
	from   string
}

func NewSESChannel(client SESService, from string) *SESChannel {
	return &SESChannel{client: client, from: from}
}

func (c *SESChannel) Deliver(ctx context.Context, n models.Notification) error {
	input := intakeaws.EmailInput(c.from, n.To, n.Subject, n.Body, "")
	if _, err := c.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("ses send to %s: %w", n.To, err)
	}
	return nil
}

// SNSChannel publishes notifications to a topic the admissions staff subscribe to.
type SNSChannel struct {
	client   SNSService
	topicARN string
}

func NewSNSChannel(client SNSService, topicARN string) *SNSChannel {
	return &SNSChannel{client: client, topicARN: topicARN}
}

func (c *SNSChannel) Deliver(ctx context.Context, n models.Notification) error {
	attrs := map[string]string{"assignTo": n.To, "kind": string(n.Kind)}
	if p, ok := n.Metadata["priority"].(string); ok && p != "" {
		attrs["priority"] = p
	}
	input := intakeaws.PublishInput(c.topicARN, n.Subject, n.Body, attrs)
	if _, err := c.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("sns publish to %s: %w", c.topicARN, err)
	}
	return nil
}

// KindRouter picks a channel by notification kind and falls back to Default.
type KindRouter struct {
	Routes  map[models.NotificationKind]Channel
	Default Channel
}

func (r *KindRouter) Deliver(ctx context.Context, n models.Notification) error {
	if ch, ok := r.Routes[n.Kind]; ok {
		return ch.Deliver(ctx, n)
	}
	if r.Default == nil {
		return fmt.Errorf("no channel for notification kind %s", n.Kind)
	}
	return r.Default.Deliver(ctx, n)
}
