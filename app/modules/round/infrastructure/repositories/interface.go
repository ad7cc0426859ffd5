package rounddb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for round persistence.
// Every method accepts an optional bun.IDB so callers can run it inside their transaction;
// nil falls back to the repository's own connection.
//
// Error semantics:
//   - ErrNotFound: the round does not exist (GetRoundWithMatches)
//   - Other errors: infrastructure failures, wrapped with the method name
type Repository interface {
	// GetRoundWithMatches loads a round with its matches, teams, players and sets.
	GetRoundWithMatches(ctx context.Context, db bun.IDB, roundID string) (*Round, error)

	// LockRound serializes writers of the round's outcomes until db's transaction ends.
	LockRound(ctx context.Context, db bun.IDB, roundID string) error

	// UpsertRoundOutcomes inserts outcomes or refreshes metadata of existing (round_id, user_id) rows.
	UpsertRoundOutcomes(ctx context.Context, db bun.IDB, outcomes []*RoundOutcome) error

	// GetRoundOutcomes lists the stored outcomes of a round ordered by user id.
	GetRoundOutcomes(ctx context.Context, db bun.IDB, roundID string) ([]*RoundOutcome, error)

	// SaveRound writes a round graph. Used by seeding and tests; scoring is recorded upstream.
	SaveRound(ctx context.Context, db bun.IDB, round *Round) error
}
