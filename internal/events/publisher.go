package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mvaldez/genstudio-backend/pkg/logger"
	"github.com/mvaldez/genstudio-backend/pkg/types"
)

type publishClient interface {
	Publish(ctx context.Context, topic string, data []byte, attributes map[string]string) (string, error)
}

// Publisher emits job lifecycle events to the configured topic so downstream
// consumers (notification fanout, dashboards) can react without polling.
type Publisher struct {
	client publishClient
	topic  string
	log    *logger.Logger
}

// NewPublisher builds a publisher bound to one topic.
func NewPublisher(client publishClient, topic string, log *logger.Logger) (*Publisher, error) {
	if client == nil {
		return nil, fmt.Errorf("pubsub client required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Publisher{client: client, topic: topic, log: log}, nil
}

// PublishJobEvent serializes the event and publishes it with routing
// attributes.
func (p *Publisher) PublishJobEvent(ctx context.Context, event types.JobEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode job event: %w", err)
	}

	attributes := map[string]string{
		"jobId":    event.JobID,
		"status":   event.Status.String(),
		"resource": event.Resource.String(),
	}
	id, err := p.client.Publish(ctx, p.topic, data, attributes)
	if err != nil {
		return fmt.Errorf("publish job event: %w", err)
	}
	p.log.Debug(p.log.WithField(ctx, "message_id", id), "job event published")
	return nil
}
