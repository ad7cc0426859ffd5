package rounddb

import (
	"time"

	"github.com/uptrace/bun"

	rounddomain "github.com/RelicDragon/bandeja-sub007/app/modules/round/domain"
)

// Round is a set of matches played together inside a game.
type Round struct {
	bun.BaseModel `bun:"table:rounds,alias:r"`
	ID            string    `bun:"id,pk"`
	GameID        string    `bun:"game_id,notnull"`
	RoundNumber   int       `bun:"round_number,notnull"`
	CreatedAt     time.Time `bun:",nullzero,notnull,default:current_timestamp"`
	Matches       []*Match  `bun:"rel:has-many,join:id=round_id"`
}

// Match is one contest inside a round. WinnerID references a team of the match.
type Match struct {
	bun.BaseModel `bun:"table:matches,alias:m"`
	ID            string  `bun:"id,pk"`
	RoundID       string  `bun:"round_id,notnull"`
	MatchNumber   int     `bun:"match_number,notnull"`
	WinnerID      *string `bun:"winner_id"`
	Teams         []*Team `bun:"rel:has-many,join:id=match_id"`
	Sets          []*Set  `bun:"rel:has-many,join:id=match_id"`
}

// Team is one side of a match.
type Team struct {
	bun.BaseModel `bun:"table:teams,alias:t"`
	ID            string        `bun:"id,pk"`
	MatchID       string        `bun:"match_id,notnull"`
	TeamNumber    int           `bun:"team_number,notnull"`
	Players       []*TeamPlayer `bun:"rel:has-many,join:id=team_id"`
}

// TeamPlayer links a user to a team.
type TeamPlayer struct {
	bun.BaseModel `bun:"table:team_players,alias:tp"`
	TeamID        string `bun:"team_id,pk"`
	UserID        string `bun:"user_id,pk"`
}

// Set holds the two side scores of one set.
type Set struct {
	bun.BaseModel `bun:"table:sets,alias:s"`
	ID            string `bun:"id,pk"`
	MatchID       string `bun:"match_id,notnull"`
	SetNumber     int    `bun:"set_number,notnull"`
	TeamAScore    int    `bun:"team_a_score,notnull"`
	TeamBScore    int    `bun:"team_b_score,notnull"`
}

// OutcomeMetadata is the aggregate stored with each outcome.
type OutcomeMetadata struct {
	MatchesWon  int `json:"matchesWon"`
	TotalScores int `json:"totalScores"`
}

// RoundOutcome is the persisted per-player result of a round.
// LevelChange is written once on insert and owned by the rating pipeline afterwards.
type RoundOutcome struct {
	bun.BaseModel `bun:"table:round_outcomes,alias:ro"`
	ID            string          `bun:"id,pk"`
	RoundID       string          `bun:"round_id,notnull"`
	UserID        string          `bun:"user_id,notnull"`
	LevelChange   float64         `bun:"level_change,notnull,default:0"`
	Metadata      OutcomeMetadata `bun:"metadata,type:jsonb,notnull"`
	CreatedAt     time.Time       `bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time       `bun:",nullzero,notnull,default:current_timestamp"`
}

// ToDomain converts the loaded graph into the pure domain round.
func (r *Round) ToDomain() rounddomain.Round {
	out := rounddomain.Round{
		ID:      r.ID,
		GameID:  r.GameID,
		Matches: make([]rounddomain.Match, 0, len(r.Matches)),
	}
	for _, m := range r.Matches {
		match := rounddomain.Match{
			ID:       m.ID,
			WinnerID: m.WinnerID,
			Teams:    make([]rounddomain.Team, 0, len(m.Teams)),
			Sets:     make([]rounddomain.Set, 0, len(m.Sets)),
		}
		for _, t := range m.Teams {
			team := rounddomain.Team{
				ID:         t.ID,
				TeamNumber: t.TeamNumber,
				Players:    make([]rounddomain.Player, 0, len(t.Players)),
			}
			for _, p := range t.Players {
				team.Players = append(team.Players, rounddomain.Player{UserID: p.UserID})
			}
			match.Teams = append(match.Teams, team)
		}
		for _, s := range m.Sets {
			match.Sets = append(match.Sets, rounddomain.Set{TeamAScore: s.TeamAScore, TeamBScore: s.TeamBScore})
		}
		out.Matches = append(out.Matches, match)
	}
	return out
}
