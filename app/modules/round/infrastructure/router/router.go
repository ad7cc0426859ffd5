package roundrouter

import (
	"context"
	"log/slog"

	roundhandlers "github.com/RelicDragon/bandeja-sub007/app/modules/round/infrastructure/handlers"
	"github.com/RelicDragon/bandeja-sub007/pkg/events/roundevents"
	"github.com/RelicDragon/bandeja-sub007/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// RoundRouter handles Watermill handler registration for round events.
type RoundRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	tracer     trace.Tracer
}

// NewRoundRouter creates a new RoundRouter.
func NewRoundRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
) *RoundRouter {
	return &RoundRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure sets up the router with handlers.
func (r *RoundRouter) Configure(_ context.Context, handlers roundhandlers.Handlers) error {
	r.registerHandlers(handlers)
	return nil
}

// handlerDeps bundles dependencies for handler registration.
type handlerDeps struct {
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	logger     *slog.Logger
	tracer     trace.Tracer
}

// registerHandlers wires topics to handler methods.
func (r *RoundRouter) registerHandlers(handlers roundhandlers.Handlers) {
	deps := handlerDeps{
		router:     r.router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	r.logger.Info("Registering round module handlers",
		slog.String("outcomes_requested_subject", roundevents.RoundOutcomesRequestedV1),
		slog.String("scores_corrected_subject", roundevents.RoundScoresCorrectedV1),
		slog.String("winner_requested_subject", roundevents.RoundWinnerRequestedV1),
	)

	registerHandler(deps, roundevents.RoundOutcomesRequestedV1, handlers.HandleRoundOutcomesRequested)
	registerHandler(deps, roundevents.RoundScoresCorrectedV1, handlers.HandleRoundScoresCorrected)
	registerHandler(deps, roundevents.RoundWinnerRequestedV1, handlers.HandleRoundWinnerRequested)

	r.logger.Info("Round module handlers registered successfully")
}

// registerHandler is a generic function for type-safe Watermill handler registration.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "round." + topic

	deps.router.AddNoPublisherHandler(
		handlerName,
		topic,
		deps.subscriber,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			deps.publisher,
			handler,
		),
	)
}

// Close shuts down the router.
func (r *RoundRouter) Close() error {
	return r.router.Close()
}
