package leaderboardhandlers

import (
	"context"

	leaderboardservice "github.com/RelicDragon/bandeja-sub007/app/modules/leaderboard/application"
	"github.com/RelicDragon/bandeja-sub007/pkg/results"
)

// ------------------------
// Fake Leaderboard Service
// ------------------------

type FakeLeaderboardService struct {
	trace []string

	GetLeaderboardFunc           func(ctx context.Context, query leaderboardservice.LeaderboardQuery) (results.OperationResult[*leaderboardservice.Leaderboard, error], error)
	GetCityRanksFunc             func(ctx context.Context, cityID string) (map[string]int, error)
	CountRecentParticipationFunc func(ctx context.Context, userIDs []string, cityID string, windowDays int) (map[string]int, error)
	InvalidateCacheFunc          func(ctx context.Context) error
}

func NewFakeLeaderboardService() *FakeLeaderboardService {
	return &FakeLeaderboardService{trace: []string{}}
}

func (f *FakeLeaderboardService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeLeaderboardService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeLeaderboardService) GetLeaderboard(ctx context.Context, query leaderboardservice.LeaderboardQuery) (results.OperationResult[*leaderboardservice.Leaderboard, error], error) {
	f.record("GetLeaderboard")
	if f.GetLeaderboardFunc != nil {
		return f.GetLeaderboardFunc(ctx, query)
	}
	return results.SuccessResult[*leaderboardservice.Leaderboard, error](&leaderboardservice.Leaderboard{}), nil
}

func (f *FakeLeaderboardService) GetCityRanks(ctx context.Context, cityID string) (map[string]int, error) {
	f.record("GetCityRanks")
	if f.GetCityRanksFunc != nil {
		return f.GetCityRanksFunc(ctx, cityID)
	}
	return map[string]int{}, nil
}

func (f *FakeLeaderboardService) CountRecentParticipation(ctx context.Context, userIDs []string, cityID string, windowDays int) (map[string]int, error) {
	f.record("CountRecentParticipation")
	if f.CountRecentParticipationFunc != nil {
		return f.CountRecentParticipationFunc(ctx, userIDs, cityID, windowDays)
	}
	return map[string]int{}, nil
}

func (f *FakeLeaderboardService) InvalidateCache(ctx context.Context) error {
	f.record("InvalidateCache")
	if f.InvalidateCacheFunc != nil {
		return f.InvalidateCacheFunc(ctx)
	}
	return nil
}

var _ leaderboardservice.Service = (*FakeLeaderboardService)(nil)
