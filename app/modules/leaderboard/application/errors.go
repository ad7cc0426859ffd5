package leaderboardservice

import "errors"

var (
	ErrInvalidBoardType  = errors.New("invalid leaderboard type")
	ErrInvalidScope      = errors.New("invalid leaderboard scope")
	ErrInvalidTimePeriod = errors.New("invalid time period")
	ErrCityRequired      = errors.New("city id is required for city scope")
	ErrViewerCityNotSet  = errors.New("user does not have a city set")
	ErrViewerNotFound    = errors.New("user not found")
)
