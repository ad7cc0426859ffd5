package leaderboard

import (
	"context"
	"fmt"
	"sync"

	leaderboardservice "github.com/RelicDragon/bandeja-sub007/app/modules/leaderboard/application"
	leaderboardhandlers "github.com/RelicDragon/bandeja-sub007/app/modules/leaderboard/infrastructure/handlers"
	leaderboarddb "github.com/RelicDragon/bandeja-sub007/app/modules/leaderboard/infrastructure/repositories"
	leaderboardrouter "github.com/RelicDragon/bandeja-sub007/app/modules/leaderboard/infrastructure/router"
	"github.com/RelicDragon/bandeja-sub007/pkg/authjwt"
	"github.com/RelicDragon/bandeja-sub007/pkg/eventbus"
	"github.com/RelicDragon/bandeja-sub007/pkg/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the leaderboard module.
type Module struct {
	LeaderboardService leaderboardservice.Service
	LeaderboardRouter  *leaderboardrouter.LeaderboardRouter
	cancelFunc         context.CancelFunc
	observability      *observability.Observability
}

// HTTPOptions configures the leaderboard HTTP API. A nil Router skips mounting the routes.
type HTTPOptions struct {
	Router  chi.Router
	Tokens  authjwt.Provider
	Limiter *leaderboardhandlers.ClientLimiter
}

// NewLeaderboardModule creates a new instance of the leaderboard module. cache may be nil.
func NewLeaderboardModule(
	ctx context.Context,
	obs *observability.Observability,
	eventBus eventbus.EventBus,
	router *message.Router,
	routerCtx context.Context,
	db *bun.DB,
	cache leaderboardservice.BoardCache,
	httpOpts HTTPOptions,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "leaderboard.NewLeaderboardModule called")

	repo := leaderboarddb.NewRepository(db)
	service := leaderboardservice.NewLeaderboardService(repo, cache, logger, obs.Metrics, tracer)
	handlers := leaderboardhandlers.NewLeaderboardHandlers(service, logger, tracer)

	leaderboardRouter := leaderboardrouter.NewLeaderboardRouter(logger, router, eventBus, eventBus, tracer)
	if err := leaderboardRouter.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure leaderboard router: %w", err)
	}

	if httpOpts.Router != nil {
		leaderboardrouter.MountHTTP(httpOpts.Router, handlers, httpOpts.Tokens, httpOpts.Limiter)
	}

	return &Module{
		LeaderboardService: service,
		LeaderboardRouter:  leaderboardRouter,
		observability:      obs,
	}, nil
}

// Run blocks until ctx is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting leaderboard module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Leaderboard module goroutine stopped")
}

// Close stops the leaderboard module and cleans up resources.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping leaderboard module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.LeaderboardRouter != nil {
		if err := m.LeaderboardRouter.Close(); err != nil {
			logger.Error("Error closing LeaderboardRouter from module", "error", err)
			return fmt.Errorf("error closing LeaderboardRouter: %w", err)
		}
	}

	logger.Info("Leaderboard module stopped")
	return nil
}
