package leaderboarddomain

import (
	"math"
	"strings"
)

// MaxEntries bounds the entries returned for one leaderboard.
const MaxEntries = 100

// DefaultWindowDays is the trailing window of the activity count.
const DefaultWindowDays = 30

// BoardType selects the ranking statistic.
type BoardType string

const (
	BoardLevel  BoardType = "level"
	BoardSocial BoardType = "social"
	BoardGames  BoardType = "games"
)

// ParseBoardType maps a query value to a board type. Empty means level.
func ParseBoardType(s string) (BoardType, bool) {
	switch BoardType(strings.ToLower(strings.TrimSpace(s))) {
	case "", BoardLevel:
		return BoardLevel, true
	case BoardSocial:
		return BoardSocial, true
	case BoardGames:
		return BoardGames, true
	default:
		return "", false
	}
}

// TieMode returns the tie rule matching the board.
func (b BoardType) TieMode() TieMode {
	switch b {
	case BoardGames:
		return TieByGames
	case BoardSocial:
		return TieBySocialLevel
	default:
		return TieByLevel
	}
}

// Scope limits a leaderboard to a city or not at all.
type Scope string

const (
	ScopeCity   Scope = "city"
	ScopeGlobal Scope = "global"
)

// ParseScope maps a query value to a scope. Empty means global.
func ParseScope(s string) (Scope, bool) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case ScopeCity:
		return ScopeCity, true
	case "", ScopeGlobal:
		return ScopeGlobal, true
	default:
		return "", false
	}
}

// TimePeriod is the games board window.
type TimePeriod string

const (
	Period10Days TimePeriod = "10"
	Period30Days TimePeriod = "30"
	PeriodAll    TimePeriod = "all"
)

// ParseTimePeriod maps a query value to a period. Empty means all time.
func ParseTimePeriod(s string) (TimePeriod, bool) {
	switch TimePeriod(strings.ToLower(strings.TrimSpace(s))) {
	case Period30Days:
		return Period30Days, true
	case Period10Days:
		return Period10Days, true
	case "", PeriodAll:
		return PeriodAll, true
	default:
		return "", false
	}
}

// WindowDays returns the window length; ok is false for PeriodAll.
func (p TimePeriod) WindowDays() (days int, ok bool) {
	switch p {
	case Period10Days:
		return 10, true
	case Period30Days:
		return 30, true
	default:
		return 0, false
	}
}

// User is the public projection of a ranked user.
type User struct {
	ID        string  `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Avatar    *string `json:"avatar,omitempty"`
}

// Entry is one leaderboard row.
type Entry struct {
	Rank                 int      `json:"rank"`
	User                 User     `json:"user"`
	Level                float64  `json:"level"`
	SocialLevel          float64  `json:"socialLevel"`
	Reliability          float64  `json:"reliability"`
	TotalPoints          int      `json:"totalPoints"`
	GamesPlayed          int      `json:"gamesPlayed"`
	GamesWon             int      `json:"gamesWon"`
	WinRate              float64  `json:"winRate"`
	GamesCount           *int     `json:"gamesCount,omitempty"`
	LastGameRatingChange *float64 `json:"lastGameRatingChange"`
}

// WinRate returns won/played as a percentage rounded to two decimals, 0 without games.
func WinRate(won, played int) float64 {
	if played <= 0 {
		return 0
	}
	return math.Round(float64(won)/float64(played)*100*100) / 100
}

// ViewerRank returns the viewer's rank, or total+1 when the viewer is not ranked.
func ViewerRank(ranks map[string]int, viewerID string, total int) int {
	if rank, ok := ranks[viewerID]; ok {
		return rank
	}
	return total + 1
}

// RankedBoard is the viewer independent part of a leaderboard: the first MaxEntries entries
// plus the ranks of every candidate.
type RankedBoard struct {
	Entries []Entry        `json:"entries"`
	Ranks   map[string]int `json:"ranks"`
	Total   int            `json:"total"`
}
