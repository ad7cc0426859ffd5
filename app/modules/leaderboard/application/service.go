package leaderboardservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	leaderboarddomain "github.com/RelicDragon/bandeja-sub007/app/modules/leaderboard/domain"
	leaderboarddb "github.com/RelicDragon/bandeja-sub007/app/modules/leaderboard/infrastructure/repositories"
	"github.com/RelicDragon/bandeja-sub007/pkg/observability/attr"
	"github.com/RelicDragon/bandeja-sub007/pkg/observability/metrics"
	"github.com/RelicDragon/bandeja-sub007/pkg/results"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "LeaderboardService"

// LeaderboardService implements the Service interface.
type LeaderboardService struct {
	repo    leaderboarddb.Repository
	cache   BoardCache
	logger  *slog.Logger
	metrics metrics.LeaderboardMetrics
	tracer  trace.Tracer
	now     func() time.Time
}

// NewLeaderboardService creates a new LeaderboardService. cache may be nil.
func NewLeaderboardService(
	repo leaderboarddb.Repository,
	cache BoardCache,
	logger *slog.Logger,
	metrics metrics.LeaderboardMetrics,
	tracer trace.Tracer,
) *LeaderboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderboardService{
		repo:    repo,
		cache:   cache,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		now:     time.Now,
	}
}

var _ Service = (*LeaderboardService)(nil)

// GetLeaderboard ranks the requested board and places the viewer on it.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, query LeaderboardQuery) (results.OperationResult[*Leaderboard, error], error) {
	return withTelemetry(s, ctx, "GetLeaderboard", query.CityID, func(ctx context.Context) (results.OperationResult[*Leaderboard, error], error) {
		req, err := parseQuery(query)
		if err != nil {
			return results.FailureResult[*Leaderboard, error](err), nil
		}
		if req.scope == leaderboarddomain.ScopeCity && req.cityID == "" {
			cityID, err := s.viewerCity(ctx, query.ViewerID)
			if err != nil {
				if IsValidationError(err) || errors.Is(err, ErrViewerNotFound) {
					return results.FailureResult[*Leaderboard, error](err), nil
				}
				return results.OperationResult[*Leaderboard, error]{}, err
			}
			req.cityID = cityID
		}
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.String("board_type", string(req.boardType)),
			attribute.String("scope", string(req.scope)),
			attribute.String("time_period", string(req.period)),
		)

		board, err := s.rankedBoard(ctx, req)
		if err != nil {
			return results.OperationResult[*Leaderboard, error]{}, err
		}

		lb := &Leaderboard{
			Entries:    board.Entries,
			Type:       req.boardType,
			Scope:      req.scope,
			CityID:     req.cityID,
			TimePeriod: req.period,
		}
		if query.ViewerID != "" {
			rank := leaderboarddomain.ViewerRank(board.Ranks, query.ViewerID, board.Total)
			lb.UserRank = &rank
		}
		return results.SuccessResult[*Leaderboard, error](lb), nil
	})
}

// viewerCity resolves the city of a city scoped board requested without an explicit city.
func (s *LeaderboardService) viewerCity(ctx context.Context, viewerID string) (string, error) {
	if viewerID == "" {
		return "", ErrCityRequired
	}
	city, err := s.repo.GetUserCity(ctx, nil, viewerID)
	if err != nil {
		if errors.Is(err, leaderboarddb.ErrNotFound) {
			return "", ErrViewerNotFound
		}
		return "", fmt.Errorf("failed to load viewer city: %w", err)
	}
	if city == nil || *city == "" {
		return "", ErrViewerCityNotSet
	}
	return *city, nil
}

// rankedBoard serves the board from cache when possible. Cache failures fall back to a recompute.
func (s *LeaderboardService) rankedBoard(ctx context.Context, req boardRequest) (*leaderboarddomain.RankedBoard, error) {
	if s.cache == nil {
		return s.computeBoard(ctx, req)
	}

	key := req.cacheKey()
	cached, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.logger.WarnContext(ctx, "Leaderboard cache read failed",
			attr.ExtractCorrelationID(ctx),
			attr.String("key", key),
			attr.Error(err),
		)
	case ok:
		s.recordCache(ctx, req.boardType, true)
		return cached, nil
	}
	s.recordCache(ctx, req.boardType, false)

	board, err := s.computeBoard(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, board); err != nil {
		s.logger.WarnContext(ctx, "Leaderboard cache write failed",
			attr.ExtractCorrelationID(ctx),
			attr.String("key", key),
			attr.Error(err),
		)
	}
	return board, nil
}

func (s *LeaderboardService) recordCache(ctx context.Context, boardType leaderboarddomain.BoardType, hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.RecordCacheHit(ctx, string(boardType))
		return
	}
	s.metrics.RecordCacheMiss(ctx, string(boardType))
}

func (s *LeaderboardService) computeBoard(ctx context.Context, req boardRequest) (*leaderboarddomain.RankedBoard, error) {
	users, err := s.loadCandidates(ctx, req)
	if err != nil {
		return nil, err
	}

	ranks := leaderboarddomain.AssignRanks(toCandidates(users), req.boardType.TieMode())

	top := users[:min(len(users), leaderboarddomain.MaxEntries)]
	social := req.boardType == leaderboarddomain.BoardSocial

	var lastChanges map[string]float64
	if len(top) > 0 {
		ids := make([]string, len(top))
		for i, u := range top {
			ids[i] = u.ID
		}
		lastChanges, err = s.repo.LastLevelChanges(ctx, nil, ids, social)
		if err != nil {
			return nil, fmt.Errorf("failed to load last rating changes: %w", err)
		}
	}

	entries := make([]leaderboarddomain.Entry, 0, len(top))
	for _, u := range top {
		entry := leaderboarddomain.Entry{
			Rank:        ranks[u.ID],
			User:        leaderboarddomain.User{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Avatar: u.Avatar},
			Level:       u.Level,
			SocialLevel: u.SocialLevel,
			Reliability: u.Reliability,
			TotalPoints: u.TotalPoints,
			GamesPlayed: u.GamesPlayed,
			GamesWon:    u.GamesWon,
			WinRate:     leaderboarddomain.WinRate(u.GamesWon, u.GamesPlayed),
		}
		if req.boardType == leaderboarddomain.BoardGames {
			count := u.GamesCount
			entry.GamesCount = &count
		}
		if change, ok := lastChanges[u.ID]; ok {
			entry.LastGameRatingChange = &change
		}
		entries = append(entries, entry)
	}

	return &leaderboarddomain.RankedBoard{
		Entries: entries,
		Ranks:   ranks,
		Total:   len(users),
	}, nil
}

func (s *LeaderboardService) loadCandidates(ctx context.Context, req boardRequest) ([]*leaderboarddb.User, error) {
	switch req.boardType {
	case leaderboarddomain.BoardGames:
		var window *leaderboarddb.TimeWindow
		if days, ok := req.period.WindowDays(); ok {
			w := leaderboarddb.WindowEndingAt(s.now(), days)
			window = &w
		}
		users, err := s.repo.ListGamesCandidates(ctx, nil, req.cityID, window)
		if err != nil {
			return nil, fmt.Errorf("failed to list games candidates: %w", err)
		}
		return users, nil
	default:
		users, err := s.repo.ListLevelCandidates(ctx, nil, req.cityID, req.boardType == leaderboarddomain.BoardSocial)
		if err != nil {
			return nil, fmt.Errorf("failed to list level candidates: %w", err)
		}
		return users, nil
	}
}

func toCandidates(users []*leaderboarddb.User) []leaderboarddomain.Candidate {
	candidates := make([]leaderboarddomain.Candidate, len(users))
	for i, u := range users {
		candidates[i] = leaderboarddomain.Candidate{
			ID:          u.ID,
			GamesCount:  u.GamesCount,
			Reliability: u.Reliability,
			Level:       u.Level,
			SocialLevel: u.SocialLevel,
			TotalPoints: u.TotalPoints,
		}
	}
	return candidates
}

// GetCityRanks returns level ranks of every active user in the city. The cache is bypassed.
func (s *LeaderboardService) GetCityRanks(ctx context.Context, cityID string) (map[string]int, error) {
	result, err := withTelemetry(s, ctx, "GetCityRanks", cityID, func(ctx context.Context) (results.OperationResult[map[string]int, error], error) {
		if cityID == "" {
			return results.FailureResult[map[string]int, error](ErrCityRequired), nil
		}
		users, err := s.repo.ListLevelCandidates(ctx, nil, cityID, false)
		if err != nil {
			return results.OperationResult[map[string]int, error]{}, fmt.Errorf("failed to list level candidates: %w", err)
		}
		return results.SuccessResult[map[string]int, error](leaderboarddomain.AssignRanks(toCandidates(users), leaderboarddomain.TieByLevel)), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// CountRecentParticipation counts recent FINAL playing participations per user.
func (s *LeaderboardService) CountRecentParticipation(ctx context.Context, userIDs []string, cityID string, windowDays int) (map[string]int, error) {
	if windowDays <= 0 {
		windowDays = leaderboarddomain.DefaultWindowDays
	}

	result, err := withTelemetry(s, ctx, "CountRecentParticipation", cityID, func(ctx context.Context) (results.OperationResult[map[string]int, error], error) {
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.Int("users", len(userIDs)),
			attribute.Int("window_days", windowDays),
		)

		counts := make(map[string]int, len(userIDs))
		if len(userIDs) == 0 {
			return results.SuccessResult[map[string]int, error](counts), nil
		}

		found, err := s.repo.CountRecentParticipation(ctx, nil, userIDs, cityID, leaderboarddb.WindowEndingAt(s.now(), windowDays))
		if err != nil {
			return results.OperationResult[map[string]int, error]{}, fmt.Errorf("failed to count participation: %w", err)
		}
		for _, id := range userIDs {
			counts[id] = found[id]
		}
		return results.SuccessResult[map[string]int, error](counts), nil
	})
	if err != nil {
		return nil, err
	}
	return *result.Success, nil
}

// InvalidateCache drops every cached board. Without a cache it does nothing.
func (s *LeaderboardService) InvalidateCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		return fmt.Errorf("failed to invalidate leaderboard cache: %w", err)
	}
	s.logger.InfoContext(ctx, "Leaderboard cache invalidated", attr.ExtractCorrelationID(ctx))
	return nil
}

// IsValidationError reports whether err comes from invalid query parameters.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidBoardType) ||
		errors.Is(err, ErrInvalidScope) ||
		errors.Is(err, ErrInvalidTimePeriod) ||
		errors.Is(err, ErrCityRequired) ||
		errors.Is(err, ErrViewerCityNotSet)
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *LeaderboardService,
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

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}

	return result, nil
}
