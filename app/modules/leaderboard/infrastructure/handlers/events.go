package leaderboardhandlers

import (
	"context"

	"github.com/RelicDragon/bandeja-sub007/pkg/events/roundevents"
	"github.com/RelicDragon/bandeja-sub007/pkg/handlerwrapper"
	"github.com/RelicDragon/bandeja-sub007/pkg/observability/attr"
)

// HandleRoundOutcomesApplied drops cached boards once new outcomes are persisted.
// Invalidation errors are logged only; cached boards expire on their own.
func (h *LeaderboardHandlers) HandleRoundOutcomesApplied(ctx context.Context, payload *roundevents.RoundOutcomesAppliedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "LeaderboardHandlers.HandleRoundOutcomesApplied")
	defer span.End()

	if err := h.service.InvalidateCache(ctx); err != nil {
		h.logger.WarnContext(ctx, "Failed to invalidate leaderboard cache",
			attr.ExtractCorrelationID(ctx),
			attr.String("game_id", payload.GameID),
			attr.RoundID("round_id", payload.RoundID),
			attr.Error(err),
		)
		return nil, nil
	}

	h.logger.InfoContext(ctx, "Leaderboard cache invalidated after round outcomes",
		attr.ExtractCorrelationID(ctx),
		attr.String("game_id", payload.GameID),
		attr.RoundID("round_id", payload.RoundID),
	)
	return nil, nil
}
