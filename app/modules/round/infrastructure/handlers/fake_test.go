package roundhandlers

import (
	"context"

	roundservice "github.com/RelicDragon/bandeja-sub007/app/modules/round/application"
	rounddomain "github.com/RelicDragon/bandeja-sub007/app/modules/round/domain"
	"github.com/RelicDragon/bandeja-sub007/pkg/results"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Round Service
// ------------------------

type FakeRoundService struct {
	trace []string

	ApplyRoundOutcomesFunc func(ctx context.Context, db bun.IDB, gameID, roundID string, strategy rounddomain.WinnerStrategy) error
	ResolveRoundWinnerFunc func(ctx context.Context, roundID string, strategy rounddomain.WinnerStrategy) (results.OperationResult[*roundservice.RoundWinner, error], error)
	RecalculateRoundFunc   func(ctx context.Context, gameID, roundID string, strategy rounddomain.WinnerStrategy) (results.OperationResult[*roundservice.RoundRecalculated, error], error)
}

func NewFakeRoundService() *FakeRoundService {
	return &FakeRoundService{
		trace: []string{},
	}
}

func (f *FakeRoundService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeRoundService) ApplyRoundOutcomes(ctx context.Context, db bun.IDB, gameID, roundID string, strategy rounddomain.WinnerStrategy) error {
	f.record("ApplyRoundOutcomes")
	if f.ApplyRoundOutcomesFunc != nil {
		return f.ApplyRoundOutcomesFunc(ctx, db, gameID, roundID, strategy)
	}
	return nil
}

func (f *FakeRoundService) ResolveRoundWinner(ctx context.Context, roundID string, strategy rounddomain.WinnerStrategy) (results.OperationResult[*roundservice.RoundWinner, error], error) {
	f.record("ResolveRoundWinner")
	if f.ResolveRoundWinnerFunc != nil {
		return f.ResolveRoundWinnerFunc(ctx, roundID, strategy)
	}
	return results.SuccessResult[*roundservice.RoundWinner, error](&roundservice.RoundWinner{RoundID: roundID, Strategy: strategy}), nil
}

func (f *FakeRoundService) RecalculateRound(ctx context.Context, gameID, roundID string, strategy rounddomain.WinnerStrategy) (results.OperationResult[*roundservice.RoundRecalculated, error], error) {
	f.record("RecalculateRound")
	if f.RecalculateRoundFunc != nil {
		return f.RecalculateRoundFunc(ctx, gameID, roundID, strategy)
	}
	return results.SuccessResult[*roundservice.RoundRecalculated, error](&roundservice.RoundRecalculated{GameID: gameID, RoundID: roundID, Strategy: strategy}), nil
}

func (f *FakeRoundService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ roundservice.Service = (*FakeRoundService)(nil)

// ------------------------
// Fake Scheduler
// ------------------------

type FakeScheduler struct {
	trace []string

	ScheduleRecalculationFunc func(ctx context.Context, gameID, roundID string, strategy rounddomain.WinnerStrategy) error
}

func (f *FakeScheduler) ScheduleRecalculation(ctx context.Context, gameID, roundID string, strategy rounddomain.WinnerStrategy) error {
	f.trace = append(f.trace, "ScheduleRecalculation")
	if f.ScheduleRecalculationFunc != nil {
		return f.ScheduleRecalculationFunc(ctx, gameID, roundID, strategy)
	}
	return nil
}

var _ RecalculationScheduler = (*FakeScheduler)(nil)
