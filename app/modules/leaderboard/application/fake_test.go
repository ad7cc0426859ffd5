package leaderboardservice

import (
	"context"

	leaderboarddomain "github.com/RelicDragon/bandeja-sub007/app/modules/leaderboard/domain"
	leaderboarddb "github.com/RelicDragon/bandeja-sub007/app/modules/leaderboard/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Leaderboard Repo
// ------------------------

type FakeLeaderboardRepo struct {
	trace []string

	ListLevelCandidatesFunc      func(ctx context.Context, db bun.IDB, cityID string, social bool) ([]*leaderboarddb.User, error)
	ListGamesCandidatesFunc      func(ctx context.Context, db bun.IDB, cityID string, window *leaderboarddb.TimeWindow) ([]*leaderboarddb.User, error)
	CountRecentParticipationFunc func(ctx context.Context, db bun.IDB, userIDs []string, cityID string, window leaderboarddb.TimeWindow) (map[string]int, error)
	LastLevelChangesFunc         func(ctx context.Context, db bun.IDB, userIDs []string, social bool) (map[string]float64, error)
	GetUserCityFunc              func(ctx context.Context, db bun.IDB, userID string) (*string, error)
}

func NewFakeLeaderboardRepo() *FakeLeaderboardRepo {
	return &FakeLeaderboardRepo{trace: []string{}}
}

func (f *FakeLeaderboardRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeLeaderboardRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeLeaderboardRepo) ListLevelCandidates(ctx context.Context, db bun.IDB, cityID string, social bool) ([]*leaderboarddb.User, error) {
	f.record("ListLevelCandidates")
	if f.ListLevelCandidatesFunc != nil {
		return f.ListLevelCandidatesFunc(ctx, db, cityID, social)
	}
	return nil, nil
}

func (f *FakeLeaderboardRepo) ListGamesCandidates(ctx context.Context, db bun.IDB, cityID string, window *leaderboarddb.TimeWindow) ([]*leaderboarddb.User, error) {
	f.record("ListGamesCandidates")
	if f.ListGamesCandidatesFunc != nil {
		return f.ListGamesCandidatesFunc(ctx, db, cityID, window)
	}
	return nil, nil
}

func (f *FakeLeaderboardRepo) CountRecentParticipation(ctx context.Context, db bun.IDB, userIDs []string, cityID string, window leaderboarddb.TimeWindow) (map[string]int, error) {
	f.record("CountRecentParticipation")
	if f.CountRecentParticipationFunc != nil {
		return f.CountRecentParticipationFunc(ctx, db, userIDs, cityID, window)
	}
	return map[string]int{}, nil
}

func (f *FakeLeaderboardRepo) LastLevelChanges(ctx context.Context, db bun.IDB, userIDs []string, social bool) (map[string]float64, error) {
	f.record("LastLevelChanges")
	if f.LastLevelChangesFunc != nil {
		return f.LastLevelChangesFunc(ctx, db, userIDs, social)
	}
	return map[string]float64{}, nil
}

func (f *FakeLeaderboardRepo) GetUserCity(ctx context.Context, db bun.IDB, userID string) (*string, error) {
	f.record("GetUserCity")
	if f.GetUserCityFunc != nil {
		return f.GetUserCityFunc(ctx, db, userID)
	}
	return nil, leaderboarddb.ErrNotFound
}

var _ leaderboarddb.Repository = (*FakeLeaderboardRepo)(nil)

// ------------------------
// Fake Board Cache
// ------------------------

type FakeBoardCache struct {
	trace  []string
	boards map[string]*leaderboarddomain.RankedBoard

	GetErr        error
	SetErr        error
	InvalidateErr error
}

func NewFakeBoardCache() *FakeBoardCache {
	return &FakeBoardCache{trace: []string{}, boards: map[string]*leaderboarddomain.RankedBoard{}}
}

func (f *FakeBoardCache) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeBoardCache) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeBoardCache) Get(ctx context.Context, key string) (*leaderboarddomain.RankedBoard, bool, error) {
	f.record("Get " + key)
	if f.GetErr != nil {
		return nil, false, f.GetErr
	}
	board, ok := f.boards[key]
	return board, ok, nil
}

func (f *FakeBoardCache) Set(ctx context.Context, key string, board *leaderboarddomain.RankedBoard) error {
	f.record("Set " + key)
	if f.SetErr != nil {
		return f.SetErr
	}
	f.boards[key] = board
	return nil
}

func (f *FakeBoardCache) Invalidate(ctx context.Context) error {
	f.record("Invalidate")
	if f.InvalidateErr != nil {
		return f.InvalidateErr
	}
	f.boards = map[string]*leaderboarddomain.RankedBoard{}
	return nil
}

var _ BoardCache = (*FakeBoardCache)(nil)
