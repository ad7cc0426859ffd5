package leaderboarddb

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the ranking projection of a user row.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`
	ID            string  `bun:"id,pk"`
	FirstName     string  `bun:"first_name,notnull"`
	LastName      string  `bun:"last_name,notnull"`
	Avatar        *string `bun:"avatar"`
	Level         float64 `bun:"level,notnull"`
	SocialLevel   float64 `bun:"social_level,notnull"`
	Reliability   float64 `bun:"reliability,notnull"`
	TotalPoints   int     `bun:"total_points,notnull"`
	GamesPlayed   int     `bun:"games_played,notnull"`
	GamesWon      int     `bun:"games_won,notnull"`
	IsActive      bool    `bun:"is_active,notnull"`
	CurrentCityID *string `bun:"current_city_id"`

	// GamesCount is filled by ListGamesCandidates only.
	GamesCount int `bun:"games_count,scanonly"`
}

// Game is a played event; only FINAL results count.
type Game struct {
	bun.BaseModel `bun:"table:games,alias:g"`
	ID            string    `bun:"id,pk"`
	CityID        string    `bun:"city_id,notnull"`
	StartTime     time.Time `bun:"start_time,notnull"`
	ResultsStatus string    `bun:"results_status,notnull"`
}

// ResultsStatusFinal marks games whose results are published.
const ResultsStatusFinal = "FINAL"

// GameParticipant links a user to a game.
type GameParticipant struct {
	bun.BaseModel `bun:"table:game_participants,alias:gp"`
	GameID        string `bun:"game_id,pk"`
	UserID        string `bun:"user_id,pk"`
	IsPlaying     bool   `bun:"is_playing,notnull"`
}

// GameOutcome is a user's rating change for one game.
type GameOutcome struct {
	bun.BaseModel `bun:"table:game_outcomes,alias:o"`
	ID            string    `bun:"id,pk"`
	GameID        string    `bun:"game_id,notnull"`
	UserID        string    `bun:"user_id,notnull"`
	LevelChange   float64   `bun:"level_change,notnull"`
	CreatedAt     time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// LevelChangeEvent records a level transition of a user.
type LevelChangeEvent struct {
	bun.BaseModel `bun:"table:level_change_events,alias:lce"`
	ID            string    `bun:"id,pk"`
	UserID        string    `bun:"user_id,notnull"`
	EventType     string    `bun:"event_type,notnull"`
	LevelBefore   float64   `bun:"level_before,notnull"`
	LevelAfter    float64   `bun:"level_after,notnull"`
	CreatedAt     time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// Social level change event types.
const (
	EventSocialBar         = "SOCIAL_BAR"
	EventSocialParticipant = "SOCIAL_PARTICIPANT"
)

// TimeWindow is the half-open interval [Since, Until).
type TimeWindow struct {
	Since time.Time
	Until time.Time
}

// WindowEndingAt returns the trailing window of days ending at now. A day is a fixed 24 hours,
// so the window length does not move with daylight saving changes.
func WindowEndingAt(now time.Time, days int) TimeWindow {
	now = now.UTC()
	return TimeWindow{Since: now.Add(-time.Duration(days) * 24 * time.Hour), Until: now}
}
