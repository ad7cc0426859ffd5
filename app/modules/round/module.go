package round

import (
	"context"
	"fmt"
	"sync"

	roundservice "github.com/RelicDragon/bandeja-sub007/app/modules/round/application"
	roundhandlers "github.com/RelicDragon/bandeja-sub007/app/modules/round/infrastructure/handlers"
	roundqueue "github.com/RelicDragon/bandeja-sub007/app/modules/round/infrastructure/queue"
	rounddb "github.com/RelicDragon/bandeja-sub007/app/modules/round/infrastructure/repositories"
	roundrouter "github.com/RelicDragon/bandeja-sub007/app/modules/round/infrastructure/router"
	"github.com/RelicDragon/bandeja-sub007/pkg/eventbus"
	"github.com/RelicDragon/bandeja-sub007/pkg/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// Module represents the round outcome module.
type Module struct {
	RoundService  roundservice.Service
	RoundRouter   *roundrouter.RoundRouter
	QueueService  *roundqueue.Service
	cancelFunc    context.CancelFunc
	observability *observability.Observability
}

// NewRoundModule creates and initializes a new round module. When queueDSN is empty score
// corrections are recalculated inline instead of through river.
func NewRoundModule(
	ctx context.Context,
	obs *observability.Observability,
	eventBus eventbus.EventBus,
	router *message.Router,
	routerCtx context.Context,
	db *bun.DB,
	queueDSN string,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "round.NewRoundModule initializing")

	// 1. Initialize Repository
	repo := rounddb.NewRepository(db)

	// 2. Initialize Service
	service := roundservice.NewRoundService(repo, logger, obs.Metrics, tracer, db)

	// 3. Initialize Queue
	var (
		queueService *roundqueue.Service
		scheduler    roundhandlers.RecalculationScheduler
	)
	if queueDSN != "" {
		qs, err := roundqueue.NewService(ctx, logger, queueDSN, obs.Metrics, service, eventBus)
		if err != nil {
			return nil, fmt.Errorf("failed to create round queue service: %w", err)
		}
		queueService, scheduler = qs, qs
	}

	// 4. Initialize Handlers
	handlers := roundhandlers.NewRoundHandlers(service, scheduler, logger, tracer)

	// 5. Initialize Router
	roundRouter := roundrouter.NewRoundRouter(logger, router, eventBus, eventBus, tracer)
	if err := roundRouter.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure round router: %w", err)
	}

	return &Module{
		RoundService:  service,
		RoundRouter:   roundRouter,
		QueueService:  queueService,
		observability: obs,
	}, nil
}

// Run starts the queue and blocks until ctx is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting round module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.QueueService != nil {
		if err := m.QueueService.Start(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to start round queue", "error", err)
			return
		}
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Round module goroutine stopped")
}

// Close shuts down the round module.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping round module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.QueueService != nil {
		if err := m.QueueService.Stop(context.Background()); err != nil {
			logger.Error("Error stopping round queue", "error", err)
		}
	}

	if m.RoundRouter != nil {
		if err := m.RoundRouter.Close(); err != nil {
			logger.Error("Error closing RoundRouter from module", "error", err)
			return fmt.Errorf("error closing RoundRouter: %w", err)
		}
	}

	logger.Info("Round module stopped")
	return nil
}
