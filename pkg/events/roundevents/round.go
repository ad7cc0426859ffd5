// Package roundevents declares the round outcome topics and their JSON payloads.
package roundevents

const (
	// RoundOutcomesRequestedV1 asks for outcomes of a round to be (re)computed and persisted.
	RoundOutcomesRequestedV1 = "round.outcomes.requested.v1"
	// RoundOutcomesAppliedV1 is published once outcomes are persisted.
	RoundOutcomesAppliedV1 = "round.outcomes.applied.v1"
	// RoundOutcomesFailedV1 is published when outcomes could not be applied for a domain reason.
	RoundOutcomesFailedV1 = "round.outcomes.failed.v1"
	// RoundScoresCorrectedV1 signals an edited set score; recalculation is queued.
	RoundScoresCorrectedV1 = "round.scores.corrected.v1"
	// RoundWinnerRequestedV1 asks for the winners of a round without persisting anything.
	RoundWinnerRequestedV1 = "round.winner.requested.v1"
	// RoundWinnerResolvedV1 answers RoundWinnerRequestedV1.
	RoundWinnerResolvedV1 = "round.winner.resolved.v1"
)

// RoundOutcomesRequestedPayloadV1 is the payload of RoundOutcomesRequestedV1.
type RoundOutcomesRequestedPayloadV1 struct {
	GameID   string `json:"game_id"`
	RoundID  string `json:"round_id"`
	Strategy string `json:"strategy,omitempty"`
}

// RoundScoresCorrectedPayloadV1 is the payload of RoundScoresCorrectedV1.
type RoundScoresCorrectedPayloadV1 struct {
	GameID   string `json:"game_id"`
	RoundID  string `json:"round_id"`
	Strategy string `json:"strategy,omitempty"`
}

// PlayerOutcomeV1 is one player's aggregate for a round.
type PlayerOutcomeV1 struct {
	UserID      string `json:"user_id"`
	MatchesWon  int    `json:"matches_won"`
	TotalScores int    `json:"total_scores"`
}

// RoundOutcomesAppliedPayloadV1 is the payload of RoundOutcomesAppliedV1.
type RoundOutcomesAppliedPayloadV1 struct {
	GameID        string            `json:"game_id"`
	RoundID       string            `json:"round_id"`
	Strategy      string            `json:"strategy"`
	WinnerTeamIDs []string          `json:"winner_team_ids"`
	Players       []PlayerOutcomeV1 `json:"players"`
}

// RoundOutcomesFailedPayloadV1 is the payload of RoundOutcomesFailedV1.
type RoundOutcomesFailedPayloadV1 struct {
	GameID  string `json:"game_id"`
	RoundID string `json:"round_id"`
	Reason  string `json:"reason"`
}

// RoundWinnerRequestedPayloadV1 is the payload of RoundWinnerRequestedV1.
type RoundWinnerRequestedPayloadV1 struct {
	RoundID  string `json:"round_id"`
	Strategy string `json:"strategy,omitempty"`
}

// TeamScoreV1 is one team's aggregate for a round.
type TeamScoreV1 struct {
	TeamID      string `json:"team_id"`
	MatchesWon  int    `json:"matches_won"`
	TotalScores int    `json:"total_scores"`
}

// RoundWinnerResolvedPayloadV1 is the payload of RoundWinnerResolvedV1.
type RoundWinnerResolvedPayloadV1 struct {
	RoundID       string        `json:"round_id"`
	Strategy      string        `json:"strategy"`
	WinnerTeamIDs []string      `json:"winner_team_ids"`
	TeamScores    []TeamScoreV1 `json:"team_scores"`
	NotFound      bool          `json:"not_found,omitempty"`
}
