package pubsub

import (
	"context"
	"encoding/json"
	"log/slog"

	"taskboard/internal/domain/service"

	"github.com/pkg/errors"
	"gocloud.dev/pubsub"
	_ "gocloud.dev/pubsub/mempubsub" // registers the mem:// scheme
)

// goCloudPublisher publishes to any Go CDK topic URL.
type goCloudPublisher struct {
	topic  *pubsub.Topic
	logger *slog.Logger
}

// NewGoCloudPublisher opens topicURL, for example "mem://auth-events".
func NewGoCloudPublisher(ctx context.Context, topicURL string, logger *slog.Logger) (service.EventPublisher, error) {
	topic, err := pubsub.OpenTopic(ctx, topicURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open topic %s", topicURL)
	}

	return &goCloudPublisher{topic: topic, logger: logger}, nil
}

// PublishAuthEvent sends the JSON encoded event with its attributes as metadata.
func (p *goCloudPublisher) PublishAuthEvent(ctx context.Context, event *service.AuthEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := p.topic.Send(ctx, &pubsub.Message{
		Body:     body,
		Metadata: eventAttributes(event),
	}); err != nil {
		return errors.Wrap(err, "failed to send event")
	}

	p.logger.Debug("[GoCloudPubSub] Event published",
		slog.String("event_id", event.EventID),
		slog.String("type", event.Type),
	)

	return nil
}

// Close flushes and shuts the topic down.
func (p *goCloudPublisher) Close() error {
	return errors.WithStack(p.topic.Shutdown(context.Background()))
}
