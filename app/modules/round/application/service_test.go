package roundservice

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	rounddomain "github.com/RelicDragon/bandeja-sub007/app/modules/round/domain"
	rounddb "github.com/RelicDragon/bandeja-sub007/app/modules/round/infrastructure/repositories"
	"github.com/RelicDragon/bandeja-sub007/pkg/observability/metrics"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

func strPtr(s string) *string { return &s }

func dbTeam(id string, number int, users ...string) *rounddb.Team {
	t := &rounddb.Team{ID: id, TeamNumber: number}
	for _, u := range users {
		t.Players = append(t.Players, &rounddb.TeamPlayer{TeamID: id, UserID: u})
	}
	return t
}

func dbSets(matchID string, scores ...[2]int) []*rounddb.Set {
	out := make([]*rounddb.Set, 0, len(scores))
	for i, s := range scores {
		out = append(out, &rounddb.Set{MatchID: matchID, SetNumber: i + 1, TeamAScore: s[0], TeamBScore: s[1]})
	}
	return out
}

// A beats B 6:4 3:6 6:2, A beats C 6:0.
func twoMatchRound() *rounddb.Round {
	return &rounddb.Round{
		ID:     "round-1",
		GameID: "game-1",
		Matches: []*rounddb.Match{
			{
				ID:       "m1",
				RoundID:  "round-1",
				WinnerID: strPtr("A"),
				Teams:    []*rounddb.Team{dbTeam("A", 1, "P1", "P2"), dbTeam("B", 2, "P3", "P4")},
				Sets:     dbSets("m1", [2]int{6, 4}, [2]int{3, 6}, [2]int{6, 2}),
			},
			{
				ID:       "m2",
				RoundID:  "round-1",
				WinnerID: strPtr("A"),
				Teams:    []*rounddb.Team{dbTeam("A", 1, "P1", "P2"), dbTeam("C", 2, "P5", "P6")},
				Sets:     dbSets("m2", [2]int{6, 0}),
			},
		},
	}
}

func newTestService(repo rounddb.Repository) *RoundService {
	return NewRoundService(repo, slog.Default(), metrics.NewNoop(), noop.NewTracerProvider().Tracer("test"), nil)
}

func TestApplyRoundOutcomes(t *testing.T) {
	tests := []struct {
		name         string
		setupRepo    func(*FakeRoundRepo, *[]*rounddb.RoundOutcome)
		wantErrIs    error
		wantOutcomes []rounddb.OutcomeMetadata
		wantUsers    []string
		wantTrace    []string
	}{
		{
			name: "happy path - one outcome per player",
			setupRepo: func(f *FakeRoundRepo, captured *[]*rounddb.RoundOutcome) {
				f.GetRoundWithMatchesFunc = func(ctx context.Context, db bun.IDB, roundID string) (*rounddb.Round, error) {
					return twoMatchRound(), nil
				}
				f.UpsertRoundOutcomesFunc = func(ctx context.Context, db bun.IDB, outcomes []*rounddb.RoundOutcome) error {
					*captured = outcomes
					return nil
				}
			},
			wantUsers: []string{"P1", "P2", "P3", "P4", "P5", "P6"},
			wantOutcomes: []rounddb.OutcomeMetadata{
				{MatchesWon: 2, TotalScores: 21},
				{MatchesWon: 2, TotalScores: 21},
				{MatchesWon: 0, TotalScores: 12},
				{MatchesWon: 0, TotalScores: 12},
				{MatchesWon: 0, TotalScores: 0},
				{MatchesWon: 0, TotalScores: 0},
			},
			wantTrace: []string{"LockRound", "GetRoundWithMatches", "UpsertRoundOutcomes"},
		},
		{
			name: "round not found",
			setupRepo: func(f *FakeRoundRepo, _ *[]*rounddb.RoundOutcome) {
				f.GetRoundWithMatchesFunc = func(ctx context.Context, db bun.IDB, roundID string) (*rounddb.Round, error) {
					return nil, rounddb.ErrNotFound
				}
			},
			wantErrIs: ErrRoundNotFound,
			wantTrace: []string{"LockRound", "GetRoundWithMatches"},
		},
		{
			name: "upsert error is propagated",
			setupRepo: func(f *FakeRoundRepo, _ *[]*rounddb.RoundOutcome) {
				f.GetRoundWithMatchesFunc = func(ctx context.Context, db bun.IDB, roundID string) (*rounddb.Round, error) {
					return twoMatchRound(), nil
				}
				f.UpsertRoundOutcomesFunc = func(ctx context.Context, db bun.IDB, outcomes []*rounddb.RoundOutcome) error {
					return errUpsert
				}
			},
			wantErrIs: errUpsert,
			wantTrace: []string{"LockRound", "GetRoundWithMatches", "UpsertRoundOutcomes"},
		},
		{
			name: "lock error stops before loading",
			setupRepo: func(f *FakeRoundRepo, _ *[]*rounddb.RoundOutcome) {
				f.LockRoundFunc = func(ctx context.Context, db bun.IDB, roundID string) error {
					return errUpsert
				}
			},
			wantErrIs: errUpsert,
			wantTrace: []string{"LockRound"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeRoundRepo()
			var captured []*rounddb.RoundOutcome
			tt.setupRepo(repo, &captured)

			err := newTestService(repo).ApplyRoundOutcomes(context.Background(), nil, "game-1", "round-1", rounddomain.StrategyByMatchesWon)

			assert.Equal(t, tt.wantTrace, repo.Trace())
			if tt.wantErrIs != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErrIs)
				return
			}
			require.NoError(t, err)

			users := make([]string, 0, len(captured))
			meta := make([]rounddb.OutcomeMetadata, 0, len(captured))
			for _, o := range captured {
				users = append(users, o.UserID)
				meta = append(meta, o.Metadata)
				assert.Equal(t, "round-1", o.RoundID)
				assert.NotEmpty(t, o.ID)
				assert.Zero(t, o.LevelChange)
			}
			assert.Equal(t, tt.wantUsers, users)
			if diff := cmp.Diff(tt.wantOutcomes, meta); diff != "" {
				t.Errorf("outcome metadata mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

var errUpsert = errors.New("connection reset")

func TestApplyRoundOutcomes_UsesCallerDB(t *testing.T) {
	repo := NewFakeRoundRepo()
	callerDB := bun.IDB(&bun.DB{})
	var seen []bun.IDB
	repo.GetRoundWithMatchesFunc = func(ctx context.Context, db bun.IDB, roundID string) (*rounddb.Round, error) {
		seen = append(seen, db)
		return twoMatchRound(), nil
	}
	repo.UpsertRoundOutcomesFunc = func(ctx context.Context, db bun.IDB, outcomes []*rounddb.RoundOutcome) error {
		seen = append(seen, db)
		return nil
	}

	err := newTestService(repo).ApplyRoundOutcomes(context.Background(), callerDB, "game-1", "round-1", rounddomain.StrategyByScoresDelta)
	require.NoError(t, err)
	require.Len(t, seen, 2)
	for _, db := range seen {
		assert.Same(t, callerDB, db)
	}
}

func TestApplyRoundOutcomes_RoundWithoutQualifyingMatches(t *testing.T) {
	repo := NewFakeRoundRepo()
	var upserted []*rounddb.RoundOutcome
	repo.GetRoundWithMatchesFunc = func(ctx context.Context, db bun.IDB, roundID string) (*rounddb.Round, error) {
		return &rounddb.Round{
			ID: "round-1",
			Matches: []*rounddb.Match{
				{ID: "bye", Teams: []*rounddb.Team{dbTeam("A", 1, "P1")}, Sets: dbSets("bye", [2]int{6, 0})},
			},
		}, nil
	}
	repo.UpsertRoundOutcomesFunc = func(ctx context.Context, db bun.IDB, outcomes []*rounddb.RoundOutcome) error {
		upserted = outcomes
		return nil
	}

	err := newTestService(repo).ApplyRoundOutcomes(context.Background(), nil, "game-1", "round-1", "")
	require.NoError(t, err)
	assert.Empty(t, upserted)
}

func TestResolveRoundWinner(t *testing.T) {
	tests := []struct {
		name        string
		round       *rounddb.Round
		repoErr     error
		strategy    rounddomain.WinnerStrategy
		wantWinners []string
		wantFailure error
		wantErr     bool
	}{
		{
			name:        "by matches won",
			round:       twoMatchRound(),
			strategy:    rounddomain.StrategyByMatchesWon,
			wantWinners: []string{"A"},
		},
		{
			name:        "by scores delta",
			round:       twoMatchRound(),
			strategy:    rounddomain.StrategyByScoresDelta,
			wantWinners: []string{"A"},
		},
		{
			name:        "unknown strategy falls back to matches won",
			round:       twoMatchRound(),
			strategy:    "FASTEST_SERVE",
			wantWinners: []string{"A"},
		},
		{
			name: "tie returns every winner in first-seen order",
			round: &rounddb.Round{
				ID: "round-1",
				Matches: []*rounddb.Match{
					{ID: "m1", WinnerID: strPtr("A"), Teams: []*rounddb.Team{dbTeam("A", 1), dbTeam("B", 2)}},
					{ID: "m2", WinnerID: strPtr("C"), Teams: []*rounddb.Team{dbTeam("C", 1), dbTeam("D", 2)}},
				},
			},
			strategy:    rounddomain.StrategyByMatchesWon,
			wantWinners: []string{"A", "C"},
		},
		{
			name:        "round without matches has no winners",
			round:       &rounddb.Round{ID: "round-1"},
			strategy:    rounddomain.StrategyByMatchesWon,
			wantWinners: []string{},
		},
		{
			name:        "missing round is a failure result",
			repoErr:     rounddb.ErrNotFound,
			wantFailure: ErrRoundNotFound,
		},
		{
			name:    "repository error is returned",
			repoErr: errors.New("db down"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeRoundRepo()
			repo.GetRoundWithMatchesFunc = func(ctx context.Context, db bun.IDB, roundID string) (*rounddb.Round, error) {
				if tt.repoErr != nil {
					return nil, tt.repoErr
				}
				return tt.round, nil
			}

			result, err := newTestService(repo).ResolveRoundWinner(context.Background(), "round-1", tt.strategy)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantFailure != nil {
				require.True(t, result.IsFailure())
				assert.ErrorIs(t, *result.Failure, tt.wantFailure)
				return
			}
			require.True(t, result.IsSuccess())
			assert.Equal(t, tt.wantWinners, (*result.Success).WinnerTeamIDs)
			assert.NotContains(t, repo.Trace(), "UpsertRoundOutcomes")
		})
	}
}

func TestResolveRoundWinner_EmptyRoundID(t *testing.T) {
	repo := NewFakeRoundRepo()

	result, err := newTestService(repo).ResolveRoundWinner(context.Background(), " ", rounddomain.StrategyByMatchesWon)
	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.ErrorIs(t, *result.Failure, ErrInvalidRoundID)
	assert.Empty(t, repo.Trace())
}

func TestRecalculateRound(t *testing.T) {
	t.Run("applies outcomes and resolves winners on the same snapshot", func(t *testing.T) {
		repo := NewFakeRoundRepo()
		loads := 0
		repo.GetRoundWithMatchesFunc = func(ctx context.Context, db bun.IDB, roundID string) (*rounddb.Round, error) {
			loads++
			return twoMatchRound(), nil
		}

		result, err := newTestService(repo).RecalculateRound(context.Background(), "", "round-1", rounddomain.StrategyByScoresDelta)
		require.NoError(t, err)
		require.True(t, result.IsSuccess())

		got := *result.Success
		assert.Equal(t, 1, loads)
		assert.Equal(t, "game-1", got.GameID)
		assert.Equal(t, rounddomain.StrategyByScoresDelta, got.Strategy)
		assert.Equal(t, []string{"A"}, got.WinnerTeamIDs)
		assert.Len(t, got.Players, 6)
		want := []rounddomain.TeamScore{
			{ID: "A", MatchesWon: 2, TotalScores: 21},
			{ID: "B", MatchesWon: 0, TotalScores: 12},
			{ID: "C", MatchesWon: 0, TotalScores: 0},
		}
		if diff := cmp.Diff(want, got.TeamScores); diff != "" {
			t.Errorf("team scores mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, []string{"LockRound", "GetRoundWithMatches", "UpsertRoundOutcomes"}, repo.Trace())
	})

	t.Run("missing round is a failure result", func(t *testing.T) {
		repo := NewFakeRoundRepo()

		result, err := newTestService(repo).RecalculateRound(context.Background(), "game-1", "round-x", "")
		require.NoError(t, err)
		require.True(t, result.IsFailure())
		assert.ErrorIs(t, *result.Failure, ErrRoundNotFound)
	})

	t.Run("upsert error is returned", func(t *testing.T) {
		repo := NewFakeRoundRepo()
		repo.GetRoundWithMatchesFunc = func(ctx context.Context, db bun.IDB, roundID string) (*rounddb.Round, error) {
			return twoMatchRound(), nil
		}
		repo.UpsertRoundOutcomesFunc = func(ctx context.Context, db bun.IDB, outcomes []*rounddb.RoundOutcome) error {
			return errUpsert
		}

		_, err := newTestService(repo).RecalculateRound(context.Background(), "game-1", "round-1", "")
		require.Error(t, err)
		assert.ErrorIs(t, err, errUpsert)
	})

	t.Run("panic in repository is recovered", func(t *testing.T) {
		repo := NewFakeRoundRepo()
		repo.GetRoundWithMatchesFunc = func(ctx context.Context, db bun.IDB, roundID string) (*rounddb.Round, error) {
			panic("boom")
		}

		result, err := newTestService(repo).RecalculateRound(context.Background(), "game-1", "round-1", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "panic in RecalculateRound")
		assert.False(t, result.IsSuccess())
	})
}
