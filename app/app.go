package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/RelicDragon/bandeja-sub007/app/modules/leaderboard"
	leaderboardservice "github.com/RelicDragon/bandeja-sub007/app/modules/leaderboard/application"
	leaderboardcache "github.com/RelicDragon/bandeja-sub007/app/modules/leaderboard/infrastructure/cache"
	leaderboardhandlers "github.com/RelicDragon/bandeja-sub007/app/modules/leaderboard/infrastructure/handlers"
	"github.com/RelicDragon/bandeja-sub007/app/modules/round"
	"github.com/RelicDragon/bandeja-sub007/config"
	"github.com/RelicDragon/bandeja-sub007/pkg/authjwt"
	"github.com/RelicDragon/bandeja-sub007/pkg/eventbus"
	"github.com/RelicDragon/bandeja-sub007/pkg/observability"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"golang.org/x/time/rate"
)

// App wires the round and leaderboard modules to shared infrastructure.
type App struct {
	Config        *config.Config
	Observability *observability.Observability
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Router        *message.Router
	HTTPServer    *http.Server

	RoundModule       *round.Module
	LeaderboardModule *leaderboard.Module

	redis *redis.Client
}

// NewApp connects to the database, event bus and cache and builds the modules.
func NewApp(ctx context.Context, cfg *config.Config, obs *observability.Observability) (*App, error) {
	logger := obs.Logger
	app := &App{Config: cfg, Observability: obs}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
	app.DB = bun.NewDB(sqldb, pgdialect.New())
	if err := app.DB.PingContext(ctx); err != nil {
		app.DB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.NATS.URL == config.InMemoryNATSURL {
		logger.WarnContext(ctx, "Using in-memory event bus")
		app.EventBus = eventbus.NewInMemory(logger)
	} else {
		bus, err := eventbus.NewEventBus(ctx, cfg.NATS.URL, cfg.NATS.QueueGroup, logger)
		if err != nil {
			app.DB.Close()
			return nil, fmt.Errorf("failed to create event bus: %w", err)
		}
		app.EventBus = bus
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, watermill.NewSlogLogger(logger))
	if err != nil {
		app.closeInfra()
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}
	router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			Logger:          watermill.NewSlogLogger(logger),
		}.Middleware,
		middleware.Recoverer,
	)
	app.Router = router

	queueDSN := ""
	if cfg.Queue.Enabled {
		queueDSN = cfg.Postgres.DSN
	}
	app.RoundModule, err = round.NewRoundModule(ctx, obs, app.EventBus, router, ctx, app.DB, queueDSN)
	if err != nil {
		app.closeInfra()
		return nil, fmt.Errorf("failed to create round module: %w", err)
	}

	var cache leaderboardservice.BoardCache
	if cfg.Redis.Addr != "" {
		app.redis = leaderboardcache.NewClient(cfg.Redis.Addr, cfg.Redis.Password)
		redisCache := leaderboardcache.NewRedisCache(app.redis, cfg.Leaderboard.CacheTTL)
		if err := redisCache.Ping(ctx); err != nil {
			logger.WarnContext(ctx, "Leaderboard cache unreachable at startup", "error", err)
		}
		cache = redisCache
	}

	var tokens authjwt.Provider
	if cfg.JWT.Secret != "" {
		tokens = authjwt.NewProvider(cfg.JWT.Secret)
	}

	httpRouter := newHTTPRouter(app)
	app.LeaderboardModule, err = leaderboard.NewLeaderboardModule(ctx, obs, app.EventBus, router, ctx, app.DB, cache, leaderboard.HTTPOptions{
		Router:  httpRouter,
		Tokens:  tokens,
		Limiter: leaderboardhandlers.NewClientLimiter(rate.Limit(cfg.HTTP.RateLimitRPS), cfg.HTTP.RateLimitBurst),
	})
	if err != nil {
		app.closeInfra()
		return nil, fmt.Errorf("failed to create leaderboard module: %w", err)
	}

	app.HTTPServer = &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           httpRouter,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return app, nil
}
