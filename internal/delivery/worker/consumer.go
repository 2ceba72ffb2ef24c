package worker

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"taskboard/internal/delivery"
	domainerrors "taskboard/internal/domain/errors"
	"taskboard/internal/domain/service"
	"taskboard/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// EventSource delivers auth events to a callback until the returned closer is closed.
// A nil callback result acknowledges the event and an error asks for redelivery.
type EventSource interface {
	Subscribe(ctx context.Context, fn func(ctx context.Context, event *service.AuthEvent) error) (io.Closer, error)
}

// consumer feeds a pull-based event source into the audit usecase.
type consumer struct {
	source EventSource
	audit  usecase.AuditUsecase
	logger *slog.Logger

	mu  sync.Mutex
	sub io.Closer
}

// ConsumerParams holds dependencies for the event consumer, injected by Fx.
type ConsumerParams struct {
	fx.In

	Lc     fx.Lifecycle
	Source EventSource `optional:"true"`
	Audit  usecase.AuditUsecase
	Logger *slog.Logger
}

// NewConsumer wraps the configured event source as a Delivery. Without a
// source, as with push-based providers, Serve does nothing.
func NewConsumer(params ConsumerParams) delivery.Delivery {
	c := newConsumer(params.Source, params.Audit, params.Logger)

	params.Lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return c.Close()
		},
	})

	return c
}

func newConsumer(source EventSource, audit usecase.AuditUsecase, logger *slog.Logger) *consumer {
	return &consumer{source: source, audit: audit, logger: logger}
}

// Serve subscribes and returns; events are handled on the source's goroutines.
func (c *consumer) Serve(ctx context.Context) error {
	if c.source == nil {
		return nil
	}

	sub, err := c.source.Subscribe(ctx, c.handle)
	if err != nil {
		return errors.Wrap(err, "failed to subscribe to auth events")
	}

	c.mu.Lock()
	c.sub = sub
	c.mu.Unlock()

	c.logger.Info("Consuming auth events")

	return nil
}

func (c *consumer) handle(ctx context.Context, event *service.AuthEvent) error {
	err := c.audit.Record(ctx, event)
	if err == nil {
		return nil
	}

	// Redelivering a malformed event cannot help.
	if errors.Is(err, domainerrors.ErrValidationFailed) {
		c.logger.Warn("[Worker] Dropping malformed auth event",
			slog.String("event_id", event.EventID),
			slog.Any("error", err),
		)

		return nil
	}

	c.logger.Error("[Worker] Failed to record auth event",
		slog.String("event_id", event.EventID),
		slog.Any("error", err),
	)

	return err
}

// Close stops the subscription.
func (c *consumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sub == nil {
		return nil
	}

	return c.sub.Close()
}
