package leaderboardservice

import (
	"context"

	leaderboarddomain "github.com/RelicDragon/bandeja-sub007/app/modules/leaderboard/domain"
	"github.com/RelicDragon/bandeja-sub007/pkg/results"
)

// Service defines the leaderboard read operations.
type Service interface {
	// GetLeaderboard ranks the requested board. Invalid parameters are failure results.
	GetLeaderboard(ctx context.Context, query LeaderboardQuery) (results.OperationResult[*Leaderboard, error], error)

	// GetCityRanks returns level ranks of every active user in the city.
	GetCityRanks(ctx context.Context, cityID string) (map[string]int, error)

	// CountRecentParticipation counts FINAL playing participations per user over the trailing
	// windowDays (30 when not positive). Every requested user is present in the result.
	CountRecentParticipation(ctx context.Context, userIDs []string, cityID string, windowDays int) (map[string]int, error)

	// InvalidateCache drops every cached board.
	InvalidateCache(ctx context.Context) error
}

// BoardCache stores ranked boards between requests.
type BoardCache interface {
	Get(ctx context.Context, key string) (*leaderboarddomain.RankedBoard, bool, error)
	Set(ctx context.Context, key string, board *leaderboarddomain.RankedBoard) error
	Invalidate(ctx context.Context) error
}
