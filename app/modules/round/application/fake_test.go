package roundservice

import (
	"context"

	rounddb "github.com/RelicDragon/bandeja-sub007/app/modules/round/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Round Repo
// ------------------------

type FakeRoundRepo struct {
	trace []string

	GetRoundWithMatchesFunc func(ctx context.Context, db bun.IDB, roundID string) (*rounddb.Round, error)
	LockRoundFunc           func(ctx context.Context, db bun.IDB, roundID string) error
	UpsertRoundOutcomesFunc func(ctx context.Context, db bun.IDB, outcomes []*rounddb.RoundOutcome) error
	GetRoundOutcomesFunc    func(ctx context.Context, db bun.IDB, roundID string) ([]*rounddb.RoundOutcome, error)
	SaveRoundFunc           func(ctx context.Context, db bun.IDB, round *rounddb.Round) error
}

func NewFakeRoundRepo() *FakeRoundRepo {
	return &FakeRoundRepo{
		trace: []string{},
	}
}

func (f *FakeRoundRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeRoundRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// --- Repository Interface Implementation ---

func (f *FakeRoundRepo) GetRoundWithMatches(ctx context.Context, db bun.IDB, roundID string) (*rounddb.Round, error) {
	f.record("GetRoundWithMatches")
	if f.GetRoundWithMatchesFunc != nil {
		return f.GetRoundWithMatchesFunc(ctx, db, roundID)
	}
	return nil, rounddb.ErrNotFound
}

func (f *FakeRoundRepo) LockRound(ctx context.Context, db bun.IDB, roundID string) error {
	f.record("LockRound")
	if f.LockRoundFunc != nil {
		return f.LockRoundFunc(ctx, db, roundID)
	}
	return nil
}

func (f *FakeRoundRepo) UpsertRoundOutcomes(ctx context.Context, db bun.IDB, outcomes []*rounddb.RoundOutcome) error {
	f.record("UpsertRoundOutcomes")
	if f.UpsertRoundOutcomesFunc != nil {
		return f.UpsertRoundOutcomesFunc(ctx, db, outcomes)
	}
	return nil
}

func (f *FakeRoundRepo) GetRoundOutcomes(ctx context.Context, db bun.IDB, roundID string) ([]*rounddb.RoundOutcome, error) {
	f.record("GetRoundOutcomes")
	if f.GetRoundOutcomesFunc != nil {
		return f.GetRoundOutcomesFunc(ctx, db, roundID)
	}
	return nil, nil
}

func (f *FakeRoundRepo) SaveRound(ctx context.Context, db bun.IDB, round *rounddb.Round) error {
	f.record("SaveRound")
	if f.SaveRoundFunc != nil {
		return f.SaveRoundFunc(ctx, db, round)
	}
	return nil
}

// Interface assertion
var _ rounddb.Repository = (*FakeRoundRepo)(nil)
