package leaderboardhandlers

import (
	"context"
	"net/http"

	"github.com/RelicDragon/bandeja-sub007/pkg/events/roundevents"
	"github.com/RelicDragon/bandeja-sub007/pkg/handlerwrapper"
)

// Handlers serves the leaderboard HTTP API and consumes round events.
type Handlers interface {
	HandleHTTPLeaderboard(w http.ResponseWriter, r *http.Request)
	HandleHTTPCityRanks(w http.ResponseWriter, r *http.Request)
	HandleHTTPActivity(w http.ResponseWriter, r *http.Request)

	HandleRoundOutcomesApplied(ctx context.Context, payload *roundevents.RoundOutcomesAppliedPayloadV1) ([]handlerwrapper.Result, error)
}
