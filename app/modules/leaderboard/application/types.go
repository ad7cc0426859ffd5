package leaderboardservice

import (
	"fmt"

	leaderboarddomain "github.com/RelicDragon/bandeja-sub007/app/modules/leaderboard/domain"
)

// LeaderboardQuery holds the raw leaderboard request parameters. CityID is only read for the
// city scope; when it is empty the viewer's current city is used.
type LeaderboardQuery struct {
	Type       string
	Scope      string
	CityID     string
	TimePeriod string
	ViewerID   string
}

// Leaderboard is a ranked board as seen by one viewer.
type Leaderboard struct {
	Entries    []leaderboarddomain.Entry    `json:"leaderboard"`
	UserRank   *int                         `json:"userRank"`
	Type       leaderboarddomain.BoardType  `json:"type"`
	Scope      leaderboarddomain.Scope      `json:"scope"`
	CityID     string                       `json:"cityId,omitempty"`
	TimePeriod leaderboarddomain.TimePeriod `json:"timePeriod,omitempty"`
}

// boardRequest is a validated LeaderboardQuery.
type boardRequest struct {
	boardType leaderboarddomain.BoardType
	scope     leaderboarddomain.Scope
	cityID    string
	period    leaderboarddomain.TimePeriod
}

// cacheKey identifies the viewer independent board.
func (r boardRequest) cacheKey() string {
	city := r.cityID
	if r.scope == leaderboarddomain.ScopeGlobal {
		city = "*"
	}
	period := r.period
	if r.boardType != leaderboarddomain.BoardGames {
		period = "-"
	}
	return fmt.Sprintf("%s:%s:%s:%s", r.boardType, r.scope, city, period)
}

func parseQuery(q LeaderboardQuery) (boardRequest, error) {
	boardType, ok := leaderboarddomain.ParseBoardType(q.Type)
	if !ok {
		return boardRequest{}, fmt.Errorf("%w: %q", ErrInvalidBoardType, q.Type)
	}
	scope, ok := leaderboarddomain.ParseScope(q.Scope)
	if !ok {
		return boardRequest{}, fmt.Errorf("%w: %q", ErrInvalidScope, q.Scope)
	}
	req := boardRequest{boardType: boardType, scope: scope}

	if scope == leaderboarddomain.ScopeCity {
		req.cityID = q.CityID
	}

	if boardType == leaderboarddomain.BoardGames {
		period, ok := leaderboarddomain.ParseTimePeriod(q.TimePeriod)
		if !ok {
			return boardRequest{}, fmt.Errorf("%w: %q", ErrInvalidTimePeriod, q.TimePeriod)
		}
		req.period = period
	}
	return req, nil
}
