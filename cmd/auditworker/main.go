package main

import (
	"context"
	"log/slog"
	"os"

	"taskboard/config"
	"taskboard/internal/delivery"
	"taskboard/internal/delivery/worker"
	"taskboard/internal/delivery/worker/handler"
	"taskboard/internal/domain/constants"
	logs "taskboard/internal/infra/log"
	"taskboard/internal/infra/metrics"
	"taskboard/internal/infra/persistence"
	"taskboard/internal/infra/pubsub"
	"taskboard/internal/usecase/impl"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// natsDurable names the JetStream consumer shared by every worker replica.
const natsDurable = "taskboard-auditworker"

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger}
		}),
		injectInfra(),
		injectUsecase(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Options(
		fx.Provide(
			config.New,
			logs.New,
			context.Background,
			newEventSource,
		),
		persistence.Module,
		metrics.Module,
	)
}

// newEventSource subscribes to JetStream when the nats provider is configured.
// Push-based providers deliver through /push instead and get no source.
func newEventSource(lc fx.Lifecycle, cfg *config.Config) (worker.EventSource, error) {
	if cfg.PubSub == nil || cfg.PubSub.Provider != constants.PubSubProviderNATS {
		return nil, nil
	}

	subscriber, err := pubsub.NewNATSSubscriber(cfg.PubSub.NATSURL, cfg.PubSub.Subject, natsDurable)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return subscriber.Close()
		},
	})

	return subscriber, nil
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAuditService,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewPushHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				worker.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
			fx.Annotate(
				worker.NewConsumer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				// Trigger graceful shutdown to execute all OnStop hooks
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}
