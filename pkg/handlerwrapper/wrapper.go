// Package handlerwrapper adapts typed event handlers to watermill consumer handlers.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/RelicDragon/bandeja-sub007/pkg/eventbus"
	"github.com/RelicDragon/bandeja-sub007/pkg/observability/attr"
)

// Result is an outgoing event produced by a handler.
type Result struct {
	Topic   string
	Payload any
}

// TypedHandler handles a decoded payload and returns the events to publish.
type TypedHandler[T any] func(ctx context.Context, payload *T) ([]Result, error)

// WrapTransformingTyped decodes the JSON payload into T, runs handler inside a span and publishes
// every returned Result on publisher. Undecodable messages are logged and acked; handler errors
// are returned so the router nacks and the message is redelivered.
func WrapTransformingTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	publisher message.Publisher,
	handler TypedHandler[T],
) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		ctx := attr.WithCorrelationID(msg.Context(), msg.Metadata.Get(attr.CorrelationIDKey))
		ctx, correlationID := attr.EnsureCorrelationID(ctx)

		ctx, span := tracer.Start(ctx, handlerName, trace.WithAttributes(
			attribute.String("message.id", msg.UUID),
			attribute.String("correlation_id", correlationID),
		))
		defer span.End()

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			logger.ErrorContext(ctx, "Dropping undecodable message",
				attr.String("handler", handlerName),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			span.RecordError(err)
			return nil
		}

		out, err := handler(ctx, payload)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.ErrorContext(ctx, "Handler failed",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.Error(err),
			)
			return err
		}

		for _, result := range out {
			outMsg, err := eventbus.NewMessage(ctx, result.Topic, result.Payload)
			if err != nil {
				return err
			}
			if err := publisher.Publish(result.Topic, outMsg); err != nil {
				return fmt.Errorf("%s: failed to publish %s: %w", handlerName, result.Topic, err)
			}
		}
		return nil
	}
}
