package roundservice

import (
	"context"

	rounddomain "github.com/RelicDragon/bandeja-sub007/app/modules/round/domain"
	"github.com/RelicDragon/bandeja-sub007/pkg/results"
	"github.com/uptrace/bun"
)

// Service defines the round outcome operations.
type Service interface {
	// ApplyRoundOutcomes aggregates the round and upserts one outcome per player through db.
	// It never begins or ends a transaction; the caller owns db.
	ApplyRoundOutcomes(ctx context.Context, db bun.IDB, gameID, roundID string, strategy rounddomain.WinnerStrategy) error

	// ResolveRoundWinner returns the winning team ids of a round without writing anything.
	ResolveRoundWinner(ctx context.Context, roundID string, strategy rounddomain.WinnerStrategy) (results.OperationResult[*RoundWinner, error], error)

	// RecalculateRound applies outcomes and resolves winners inside its own transaction.
	RecalculateRound(ctx context.Context, gameID, roundID string, strategy rounddomain.WinnerStrategy) (results.OperationResult[*RoundRecalculated, error], error)
}
