package roundservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	rounddomain "github.com/RelicDragon/bandeja-sub007/app/modules/round/domain"
	rounddb "github.com/RelicDragon/bandeja-sub007/app/modules/round/infrastructure/repositories"
	"github.com/RelicDragon/bandeja-sub007/pkg/observability/attr"
	"github.com/RelicDragon/bandeja-sub007/pkg/observability/metrics"
	"github.com/RelicDragon/bandeja-sub007/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "RoundService"

// RoundService implements the Service interface.
type RoundService struct {
	repo    rounddb.Repository
	logger  *slog.Logger
	metrics metrics.RoundMetrics
	tracer  trace.Tracer
	db      *bun.DB
}

// NewRoundService creates a new RoundService.
func NewRoundService(
	repo rounddb.Repository,
	logger *slog.Logger,
	metrics metrics.RoundMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *RoundService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoundService{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		db:      db,
	}
}

var _ Service = (*RoundService)(nil)

// ApplyRoundOutcomes persists per-player aggregates of the round through the caller's db.
func (s *RoundService) ApplyRoundOutcomes(ctx context.Context, db bun.IDB, gameID, roundID string, strategy rounddomain.WinnerStrategy) error {
	_, err := withTelemetry(s, ctx, "ApplyRoundOutcomes", roundID, func(ctx context.Context) (results.OperationResult[[]rounddomain.PlayerScore, error], error) {
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.String("game_id", gameID),
			attribute.String("strategy", strategy.String()),
		)
		_, players, err := s.applyRoundOutcomesLogic(ctx, db, roundID)
		if err != nil {
			return results.OperationResult[[]rounddomain.PlayerScore, error]{}, err
		}
		return results.SuccessResult[[]rounddomain.PlayerScore, error](players), nil
	})
	return err
}

// applyRoundOutcomesLogic reloads the round through db, aggregates it and upserts the outcomes.
// The loaded round is returned so callers can resolve winners on the same snapshot.
// The round lock makes a later recalculation wait for, and then overwrite, an earlier one.
func (s *RoundService) applyRoundOutcomesLogic(ctx context.Context, db bun.IDB, roundID string) (*rounddomain.Round, []rounddomain.PlayerScore, error) {
	if strings.TrimSpace(roundID) == "" {
		return nil, nil, ErrInvalidRoundID
	}
	if err := s.repo.LockRound(ctx, db, roundID); err != nil {
		return nil, nil, fmt.Errorf("failed to lock round: %w", err)
	}

	round, err := s.loadRound(ctx, db, roundID)
	if err != nil {
		return nil, nil, err
	}

	players := rounddomain.OrderedPlayerScores(*round)
	outcomes := make([]*rounddb.RoundOutcome, 0, len(players))
	for _, p := range players {
		outcomes = append(outcomes, &rounddb.RoundOutcome{
			ID:      uuid.NewString(),
			RoundID: round.ID,
			UserID:  p.ID,
			Metadata: rounddb.OutcomeMetadata{
				MatchesWon:  p.MatchesWon,
				TotalScores: p.TotalScores,
			},
		})
	}

	if err := s.repo.UpsertRoundOutcomes(ctx, db, outcomes); err != nil {
		return nil, nil, fmt.Errorf("failed to upsert round outcomes: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordOutcomesUpserted(ctx, len(outcomes))
	}

	s.logger.DebugContext(ctx, "Round outcomes upserted",
		attr.ExtractCorrelationID(ctx),
		attr.RoundID("round_id", round.ID),
		attr.Int("players", len(outcomes)),
	)
	return round, players, nil
}

func (s *RoundService) loadRound(ctx context.Context, db bun.IDB, roundID string) (*rounddomain.Round, error) {
	if strings.TrimSpace(roundID) == "" {
		return nil, ErrInvalidRoundID
	}
	loaded, err := s.repo.GetRoundWithMatches(ctx, db, roundID)
	if err != nil {
		if errors.Is(err, rounddb.ErrNotFound) {
			return nil, fmt.Errorf("round %s: %w", roundID, ErrRoundNotFound)
		}
		return nil, fmt.Errorf("failed to load round: %w", err)
	}
	round := loaded.ToDomain()
	return &round, nil
}

// ResolveRoundWinner loads the round and returns the winning teams for strategy.
func (s *RoundService) ResolveRoundWinner(ctx context.Context, roundID string, strategy rounddomain.WinnerStrategy) (results.OperationResult[*RoundWinner, error], error) {
	strategy = rounddomain.ParseWinnerStrategy(string(strategy))

	return withTelemetry(s, ctx, "ResolveRoundWinner", roundID, func(ctx context.Context) (results.OperationResult[*RoundWinner, error], error) {
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("strategy", strategy.String()))

		round, err := s.loadRound(ctx, nil, roundID)
		if err != nil {
			if isDomainError(err) {
				return results.FailureResult[*RoundWinner, error](err), nil
			}
			return results.OperationResult[*RoundWinner, error]{}, err
		}

		teamScores := rounddomain.OrderedTeamScores(*round)
		winners := rounddomain.Winners(teamScores, strategy)
		if s.metrics != nil {
			s.metrics.RecordWinnersResolved(ctx, strategy.String(), len(winners))
		}

		return results.SuccessResult[*RoundWinner, error](&RoundWinner{
			RoundID:       round.ID,
			Strategy:      strategy,
			WinnerTeamIDs: winners,
			TeamScores:    teamScores,
		}), nil
	})
}

// RecalculateRound applies outcomes and resolves winners in one transaction.
func (s *RoundService) RecalculateRound(ctx context.Context, gameID, roundID string, strategy rounddomain.WinnerStrategy) (results.OperationResult[*RoundRecalculated, error], error) {
	strategy = rounddomain.ParseWinnerStrategy(string(strategy))

	recalculateTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*RoundRecalculated, error], error) {
		return s.recalculateRoundLogic(ctx, db, gameID, roundID, strategy)
	}

	return withTelemetry(s, ctx, "RecalculateRound", roundID, func(ctx context.Context) (results.OperationResult[*RoundRecalculated, error], error) {
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.String("game_id", gameID),
			attribute.String("strategy", strategy.String()),
		)
		return runInTx(s, ctx, recalculateTx)
	})
}

func (s *RoundService) recalculateRoundLogic(ctx context.Context, db bun.IDB, gameID, roundID string, strategy rounddomain.WinnerStrategy) (results.OperationResult[*RoundRecalculated, error], error) {
	round, players, err := s.applyRoundOutcomesLogic(ctx, db, roundID)
	if err != nil {
		if isDomainError(err) {
			return results.FailureResult[*RoundRecalculated, error](err), nil
		}
		return results.OperationResult[*RoundRecalculated, error]{}, err
	}

	teamScores := rounddomain.OrderedTeamScores(*round)
	winners := rounddomain.Winners(teamScores, strategy)
	if s.metrics != nil {
		s.metrics.RecordWinnersResolved(ctx, strategy.String(), len(winners))
	}

	if gameID == "" {
		gameID = round.GameID
	}

	return results.SuccessResult[*RoundRecalculated, error](&RoundRecalculated{
		GameID:        gameID,
		RoundID:       round.ID,
		Strategy:      strategy,
		WinnerTeamIDs: winners,
		TeamScores:    teamScores,
		Players:       players,
	}), nil
}

func isDomainError(err error) bool {
	return errors.Is(err, ErrRoundNotFound) || errors.Is(err, ErrInvalidRoundID)
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *RoundService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
		}
	}()

	s.logger.InfoContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), attr.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			}
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	// Infrastructure error
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	// Domain failure
	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}

	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *RoundService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})

	return result, err
}
