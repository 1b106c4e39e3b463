package notifier

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/agah-solutions/forge/internal/config"
	"github.com/agah-solutions/forge/internal/messaging"
	"github.com/agah-solutions/forge/internal/notification"
	"github.com/agah-solutions/forge/internal/worker"
)

var workerTracer = otel.Tracer("github.com/agah-solutions/forge/worker/notifier")

// Module registers the customer notification handler on the order topic.
var Module = fx.Module("worker_notifier",
	fx.Provide(
		fx.Annotate(
			NewHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewHandler builds the worker handler that turns order lifecycle events into
// customer notifications. Dispatch is fire-and-forget end to end: decode and
// send failures are logged and the message is acknowledged either way, so a
// bad payload or a sender outage never wedges the consumer group.
func NewHandler(composer *notification.Composer, sender notification.Sender, logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.notifier.process", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var event notification.Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode order event", zap.Error(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return nil
		}
		span.SetAttributes(
			attribute.String("order.number", event.OrderNumber),
			attribute.String("notification.kind", string(event.Kind)),
		)

		message, err := composer.Compose(event)
		if err != nil {
			logger.Error("failed to compose notification",
				zap.String("number", event.OrderNumber),
				zap.String("kind", string(event.Kind)),
				zap.Error(err),
			)
			span.RecordError(err)
			span.SetStatus(codes.Error, "compose error")
			return nil
		}

		if err := sender.Send(ctx, message); err != nil {
			logger.Error("failed to send notification",
				zap.String("number", event.OrderNumber),
				zap.String("kind", string(event.Kind)),
				zap.Error(err),
			)
			span.RecordError(err)
			span.SetStatus(codes.Error, "send error")
			return nil
		}

		logger.Info("notification dispatched",
			zap.String("number", event.OrderNumber),
			zap.String("kind", string(event.Kind)),
		)
		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}
