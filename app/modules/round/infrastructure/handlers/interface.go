package roundhandlers

import (
	"context"

	rounddomain "github.com/RelicDragon/bandeja-sub007/app/modules/round/domain"
	"github.com/RelicDragon/bandeja-sub007/pkg/events/roundevents"
	"github.com/RelicDragon/bandeja-sub007/pkg/handlerwrapper"
)

// Handlers defines the interface for round event handlers.
type Handlers interface {
	// HandleRoundOutcomesRequested recalculates and persists a round's outcomes.
	HandleRoundOutcomesRequested(ctx context.Context, payload *roundevents.RoundOutcomesRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleRoundScoresCorrected queues a recalculation after a score edit.
	HandleRoundScoresCorrected(ctx context.Context, payload *roundevents.RoundScoresCorrectedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleRoundWinnerRequested answers with the winners of a round.
	HandleRoundWinnerRequested(ctx context.Context, payload *roundevents.RoundWinnerRequestedPayloadV1) ([]handlerwrapper.Result, error)
}

// RecalculationScheduler enqueues a background recalculation of a round.
type RecalculationScheduler interface {
	ScheduleRecalculation(ctx context.Context, gameID, roundID string, strategy rounddomain.WinnerStrategy) error
}
