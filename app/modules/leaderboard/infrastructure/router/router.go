package leaderboardrouter

import (
	"context"
	"log/slog"

	leaderboardhandlers "github.com/RelicDragon/bandeja-sub007/app/modules/leaderboard/infrastructure/handlers"
	"github.com/RelicDragon/bandeja-sub007/pkg/authjwt"
	"github.com/RelicDragon/bandeja-sub007/pkg/events/roundevents"
	"github.com/RelicDragon/bandeja-sub007/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
)

// LeaderboardRouter registers the leaderboard event handlers and HTTP routes.
type LeaderboardRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	tracer     trace.Tracer
}

// NewLeaderboardRouter creates a new LeaderboardRouter.
func NewLeaderboardRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
) *LeaderboardRouter {
	return &LeaderboardRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure sets up the router with handlers.
func (r *LeaderboardRouter) Configure(_ context.Context, handlers leaderboardhandlers.Handlers) error {
	r.logger.Info("Registering leaderboard module handlers",
		slog.String("outcomes_applied_subject", roundevents.RoundOutcomesAppliedV1),
	)

	handlerName := "leaderboard." + roundevents.RoundOutcomesAppliedV1
	r.router.AddNoPublisherHandler(
		handlerName,
		roundevents.RoundOutcomesAppliedV1,
		r.subscriber,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			r.logger,
			r.tracer,
			r.publisher,
			handlers.HandleRoundOutcomesApplied,
		),
	)

	r.logger.Info("Leaderboard module handlers registered successfully")
	return nil
}

// MountHTTP registers the /api/leaderboard routes on httpRouter.
func MountHTTP(httpRouter chi.Router, handlers leaderboardhandlers.Handlers, tokens authjwt.Provider, limiter *leaderboardhandlers.ClientLimiter) {
	httpRouter.Route("/api/leaderboard", func(r chi.Router) {
		if limiter != nil {
			r.Use(leaderboardhandlers.Throttle(limiter))
		}
		r.Use(leaderboardhandlers.OptionalAuthMiddleware(tokens))

		r.Get("/", handlers.HandleHTTPLeaderboard)
		r.Get("/cities/{cityID}/ranks", handlers.HandleHTTPCityRanks)
		r.Get("/activity", handlers.HandleHTTPActivity)
	})
}

// Close shuts down the router.
func (r *LeaderboardRouter) Close() error {
	return r.router.Close()
}
