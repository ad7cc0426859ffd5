package roundqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	roundservice "github.com/RelicDragon/bandeja-sub007/app/modules/round/application"
	rounddomain "github.com/RelicDragon/bandeja-sub007/app/modules/round/domain"
	"github.com/RelicDragon/bandeja-sub007/pkg/observability/attr"
	"github.com/RelicDragon/bandeja-sub007/pkg/observability/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

// QueueService defines the contract for round job scheduling.
type QueueService interface {
	// ScheduleRecalculation enqueues a recalculation of the round's outcomes.
	ScheduleRecalculation(ctx context.Context, gameID, roundID string, strategy rounddomain.WinnerStrategy) error
	// HealthCheck verifies the queue database is reachable.
	HealthCheck(ctx context.Context) error
	// Start starts processing jobs.
	Start(ctx context.Context) error
	// Stop waits for running jobs and stops the client.
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Service handles job scheduling for the round module using River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics metrics.OperationMetrics
}

// NewService creates a River-based queue service. River requires pgx, so it gets its own pool.
func NewService(
	ctx context.Context,
	logger *slog.Logger,
	dsn string,
	m metrics.OperationMetrics,
	service roundservice.Service,
	publisher message.Publisher,
) (*Service, error) {
	if m == nil {
		m = metrics.NewNoop()
	}
	ctxLogger := logger.With(
		attr.String("operation", "new_round_queue_service"),
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	m.RecordOperationAttempt(ctx, "initialize_service", "river")

	ctxLogger.Info("Initializing round queue service")

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		ctxLogger.Error("Failed to parse DSN for River", attr.Error(err))
		m.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		ctxLogger.Error("Failed to create pgx pool for River", attr.Error(err))
		m.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		ctxLogger.Error("Failed to ping database for River", attr.Error(err))
		m.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewRecalculateRoundWorker(service, publisher, ctxLogger, m))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
			QueueName:          {MaxWorkers: 25},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		ctxLogger.Error("Failed to create River client", attr.Error(err))
		m.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	m.RecordOperationSuccess(ctx, "initialize_service", "river")
	m.RecordOperationDuration(ctx, "initialize_service", "river", time.Since(start))

	ctxLogger.Info("Round queue service initialized successfully")
	return &Service{
		client:  riverClient,
		pool:    pool,
		logger:  ctxLogger,
		metrics: m,
	}, nil
}

// Start starts the River client.
func (s *Service) Start(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "start_service", "river")

	s.logger.Info("Starting round queue service")

	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "start_service", "river")
		return fmt.Errorf("failed to start River client: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "start_service", "river")
	s.metrics.RecordOperationDuration(ctx, "start_service", "river", time.Since(start))

	s.logger.Info("Round queue service started successfully")
	return nil
}

// Stop stops the River client and closes the pool.
func (s *Service) Stop(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "stop_service", "river")

	s.logger.Info("Stopping round queue service")
	defer s.pool.Close()

	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "stop_service", "river")
		return fmt.Errorf("failed to stop River client: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "stop_service", "river")
	s.metrics.RecordOperationDuration(ctx, "stop_service", "river", time.Since(start))

	s.logger.Info("Round queue service stopped successfully")
	return nil
}

// ScheduleRecalculation inserts a recalculation job. Jobs are not unique: a request made after
// a score edit must run even when an earlier job for the round is running or has completed.
// Jobs for one round are serialized by the round lock, so the last to run reads the latest scores.
func (s *Service) ScheduleRecalculation(ctx context.Context, gameID, roundID string, strategy rounddomain.WinnerStrategy) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "schedule_recalculation", "river")

	ctxLogger := s.logger.With(
		attr.String("game_id", gameID),
		attr.RoundID("round_id", roundID),
		attr.String("operation", "schedule_recalculation"),
	)

	jobResult, err := s.client.Insert(ctx, RecalculateRoundJob{
		GameID:   gameID,
		RoundID:  roundID,
		Strategy: rounddomain.ParseWinnerStrategy(string(strategy)),
	}, &river.InsertOpts{Queue: QueueName})
	if err != nil {
		ctxLogger.Error("Failed to schedule recalculation job", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "schedule_recalculation", "river")
		return fmt.Errorf("failed to schedule recalculation job: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "schedule_recalculation", "river")
	s.metrics.RecordOperationDuration(ctx, "schedule_recalculation", "river", time.Since(start))

	ctxLogger.Info("Recalculation job scheduled", attr.Int64("job_id", jobResult.Job.ID))
	return nil
}

// HealthCheck verifies the queue database is reachable.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("river client is nil")
	}

	var count int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM river_job WHERE kind = $1", recalculateRoundKind).Scan(&count); err != nil {
		s.logger.Error("Queue service health check failed", attr.Error(err))
		return fmt.Errorf("queue service health check failed: %w", err)
	}

	s.logger.Debug("Queue service health check passed", attr.Int("recalculation_jobs", count))
	return nil
}

// GetClient returns the underlying River client.
func (s *Service) GetClient() *river.Client[pgx.Tx] {
	return s.client
}
