package round_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	roundservice "github.com/RelicDragon/bandeja-sub007/app/modules/round/application"
	rounddomain "github.com/RelicDragon/bandeja-sub007/app/modules/round/domain"
	roundqueue "github.com/RelicDragon/bandeja-sub007/app/modules/round/infrastructure/queue"
	rounddb "github.com/RelicDragon/bandeja-sub007/app/modules/round/infrastructure/repositories"
	"github.com/RelicDragon/bandeja-sub007/integration_tests/testutils"
	"github.com/RelicDragon/bandeja-sub007/pkg/eventbus"
	"github.com/RelicDragon/bandeja-sub007/pkg/observability/metrics"
)

type roundDeps struct {
	env     *testutils.TestEnvironment
	repo    rounddb.Repository
	service *roundservice.RoundService
	gen     *testutils.TestDataGenerator
}

func setupRoundDeps(t *testing.T) roundDeps {
	t.Helper()
	env := testutils.GetTestEnv(t)
	require.NoError(t, env.Reset(env.Ctx))

	repo := rounddb.NewRepository(env.DB)
	return roundDeps{
		env:     env,
		repo:    repo,
		service: roundservice.NewRoundService(repo, env.Logger, metrics.NewNoop(), noop.NewTracerProvider().Tracer("test"), env.DB),
		gen:     testutils.NewTestDataGenerator(42),
	}
}

// twoMatchRound: A wins match 1 (6-3, 6-4), B wins match 2 (2-6, 5-7). P1 plays both on team A.
func twoMatchRound(gen *testutils.TestDataGenerator) *rounddb.Round {
	return gen.GenerateRound("game-1",
		testutils.MatchPlan{TeamA: []string{"p1", "p2"}, TeamB: []string{"p3", "p4"}, Sets: [][2]int{{6, 3}, {6, 4}}, Winner: 1},
		testutils.MatchPlan{TeamA: []string{"p1", "p3"}, TeamB: []string{"p2", "p4"}, Sets: [][2]int{{2, 6}, {5, 7}}, Winner: 2},
	)
}

func TestRepository_SaveAndLoadRoundGraph(t *testing.T) {
	d := setupRoundDeps(t)
	ctx := d.env.Ctx

	round := twoMatchRound(d.gen)
	require.NoError(t, d.repo.SaveRound(ctx, nil, round))

	loaded, err := d.repo.GetRoundWithMatches(ctx, nil, round.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Matches, 2)
	assert.Equal(t, 1, loaded.Matches[0].MatchNumber)
	require.Len(t, loaded.Matches[0].Teams, 2)
	assert.Equal(t, 1, loaded.Matches[0].Teams[0].TeamNumber)
	require.Len(t, loaded.Matches[0].Teams[0].Players, 2)
	assert.Equal(t, "p1", loaded.Matches[0].Teams[0].Players[0].UserID)
	require.Len(t, loaded.Matches[0].Sets, 2)
	assert.Equal(t, 6, loaded.Matches[0].Sets[0].TeamAScore)
	require.NotNil(t, loaded.Matches[1].WinnerID)
	assert.Equal(t, round.Matches[1].Teams[1].ID, *loaded.Matches[1].WinnerID)

	_, err = d.repo.GetRoundWithMatches(ctx, nil, uuid.NewString())
	assert.ErrorIs(t, err, rounddb.ErrNotFound)
}

func TestRecalculateRound_PersistsOutcomesIdempotently(t *testing.T) {
	d := setupRoundDeps(t)
	ctx := d.env.Ctx

	round := twoMatchRound(d.gen)
	require.NoError(t, d.repo.SaveRound(ctx, nil, round))

	for i := 0; i < 2; i++ {
		res, err := d.service.RecalculateRound(ctx, "", round.ID, rounddomain.StrategyByMatchesWon)
		require.NoError(t, err)
		require.True(t, res.IsSuccess())
		assert.Equal(t, "game-1", (*res.Success).GameID)
	}

	outcomes, err := d.repo.GetRoundOutcomes(ctx, nil, round.ID)
	require.NoError(t, err)
	require.Len(t, outcomes, 4)

	got := map[string]rounddb.OutcomeMetadata{}
	for _, o := range outcomes {
		got[o.UserID] = o.Metadata
	}
	assert.Equal(t, rounddb.OutcomeMetadata{MatchesWon: 1, TotalScores: 19}, got["p1"])
	assert.Equal(t, rounddb.OutcomeMetadata{MatchesWon: 2, TotalScores: 25}, got["p2"])
	assert.Equal(t, rounddb.OutcomeMetadata{MatchesWon: 0, TotalScores: 14}, got["p3"])
	assert.Equal(t, rounddb.OutcomeMetadata{MatchesWon: 1, TotalScores: 20}, got["p4"])
}

func TestRecalculateRound_KeepsLevelChangeOnConflict(t *testing.T) {
	d := setupRoundDeps(t)
	ctx := d.env.Ctx

	round := twoMatchRound(d.gen)
	require.NoError(t, d.repo.SaveRound(ctx, nil, round))

	_, err := d.service.RecalculateRound(ctx, "", round.ID, "")
	require.NoError(t, err)

	_, err = d.env.DB.NewUpdate().
		Model((*rounddb.RoundOutcome)(nil)).
		Set("level_change = ?", 0.25).
		Where("round_id = ? AND user_id = ?", round.ID, "p1").
		Exec(ctx)
	require.NoError(t, err)

	_, err = d.service.RecalculateRound(ctx, "", round.ID, "")
	require.NoError(t, err)

	outcomes, err := d.repo.GetRoundOutcomes(ctx, nil, round.ID)
	require.NoError(t, err)
	require.NotEmpty(t, outcomes)
	assert.Equal(t, "p1", outcomes[0].UserID)
	assert.InDelta(t, 0.25, outcomes[0].LevelChange, 1e-9)
}

func TestRecalculateRound_UnknownRoundIsFailure(t *testing.T) {
	d := setupRoundDeps(t)

	res, err := d.service.RecalculateRound(d.env.Ctx, "", uuid.NewString(), "")
	require.NoError(t, err)
	require.True(t, res.IsFailure())
	assert.ErrorIs(t, *res.Failure, roundservice.ErrRoundNotFound)
}

func TestApplyRoundOutcomes_RollsBackWithCallerTx(t *testing.T) {
	d := setupRoundDeps(t)
	ctx := d.env.Ctx

	round := twoMatchRound(d.gen)
	require.NoError(t, d.repo.SaveRound(ctx, nil, round))

	tx, err := d.env.DB.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, d.service.ApplyRoundOutcomes(ctx, tx, "game-1", round.ID, ""))
	require.NoError(t, tx.Rollback())

	outcomes, err := d.repo.GetRoundOutcomes(ctx, nil, round.ID)
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}

func newQueue(t *testing.T, d roundDeps) *roundqueue.Service {
	t.Helper()
	q, err := roundqueue.NewService(d.env.Ctx, d.env.Logger, d.env.DSN, metrics.NewNoop(), d.service, eventbus.NewInMemory(d.env.Logger))
	require.NoError(t, err)
	return q
}

func TestQueue_ScheduleRecalculationKeepsEveryRequest(t *testing.T) {
	d := setupRoundDeps(t)
	ctx := d.env.Ctx
	q := newQueue(t, d)
	t.Cleanup(func() { _ = q.Stop(context.Background()) })

	require.NoError(t, q.ScheduleRecalculation(ctx, "game-1", "round-1", rounddomain.StrategyByScoresDelta))
	require.NoError(t, q.ScheduleRecalculation(ctx, "game-1", "round-1", rounddomain.StrategyByScoresDelta))
	require.NoError(t, q.ScheduleRecalculation(ctx, "game-1", "round-2", rounddomain.StrategyByScoresDelta))

	list, err := q.GetClient().JobList(ctx, river.NewJobListParams().Kinds(roundqueue.RecalculateRoundJob{}.Kind()))
	require.NoError(t, err)
	assert.Len(t, list.Jobs, 3)
	require.NoError(t, q.HealthCheck(ctx))
}

func TestQueue_WorkerPersistsOutcomes(t *testing.T) {
	d := setupRoundDeps(t)
	ctx := d.env.Ctx

	round := twoMatchRound(d.gen)
	require.NoError(t, d.repo.SaveRound(ctx, nil, round))

	q := startQueue(t, d)

	require.NoError(t, q.ScheduleRecalculation(ctx, round.GameID, round.ID, ""))

	require.Eventually(t, func() bool {
		outcomes, err := d.repo.GetRoundOutcomes(ctx, nil, round.ID)
		return err == nil && len(outcomes) == 4
	}, 20*time.Second, 200*time.Millisecond)
}

func startQueue(t *testing.T, d roundDeps) *roundqueue.Service {
	t.Helper()
	q := newQueue(t, d)
	require.NoError(t, q.Start(d.env.Ctx))
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = q.Stop(stopCtx)
	})
	return q
}

func totalsByUser(t *testing.T, d roundDeps, roundID string) map[string]int {
	t.Helper()
	outcomes, err := d.repo.GetRoundOutcomes(d.env.Ctx, nil, roundID)
	if err != nil {
		return nil
	}
	totals := make(map[string]int, len(outcomes))
	for _, o := range outcomes {
		totals[o.UserID] = o.Metadata.TotalScores
	}
	return totals
}

func TestQueue_RecalculatesAfterCompletedJob(t *testing.T) {
	d := setupRoundDeps(t)
	ctx := d.env.Ctx

	round := twoMatchRound(d.gen)
	require.NoError(t, d.repo.SaveRound(ctx, nil, round))

	q := startQueue(t, d)

	require.NoError(t, q.ScheduleRecalculation(ctx, round.GameID, round.ID, rounddomain.StrategyByScoresDelta))
	require.Eventually(t, func() bool {
		return totalsByUser(t, d, round.ID)["p3"] == 14
	}, 20*time.Second, 200*time.Millisecond)

	// Correct match 1 set 1 from 6-3 to 6-0.
	firstSet := round.Matches[0].Sets[0]
	_, err := d.env.DB.NewUpdate().
		Model((*rounddb.Set)(nil)).
		Set("team_b_score = ?", 0).
		Where("id = ?", firstSet.ID).
		Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, q.ScheduleRecalculation(ctx, round.GameID, round.ID, rounddomain.StrategyByScoresDelta))
	require.Eventually(t, func() bool {
		totals := totalsByUser(t, d, round.ID)
		return totals["p3"] == 11 && totals["p4"] == 17
	}, 20*time.Second, 200*time.Millisecond)

	totals := totalsByUser(t, d, round.ID)
	assert.Equal(t, 19, totals["p1"])
	assert.Equal(t, 25, totals["p2"])
}

func TestRepository_LockRoundBlocksUntilCommit(t *testing.T) {
	d := setupRoundDeps(t)
	ctx := d.env.Ctx

	first, err := d.env.DB.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, d.repo.LockRound(ctx, first, "round-1"))

	acquired := make(chan error, 1)
	go func() {
		second, err := d.env.DB.BeginTx(ctx, nil)
		if err != nil {
			acquired <- err
			return
		}
		defer func() { _ = second.Rollback() }()
		acquired <- d.repo.LockRound(ctx, second, "round-1")
	}()

	select {
	case err := <-acquired:
		t.Fatalf("second lock acquired while the first transaction is open: %v", err)
	case <-time.After(300 * time.Millisecond):
	}

	// Other rounds are not blocked.
	other, err := d.env.DB.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, d.repo.LockRound(ctx, other, "round-2"))
	require.NoError(t, other.Rollback())

	require.NoError(t, first.Commit())
	select {
	case err := <-acquired:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("second lock was not acquired after commit")
	}
}
