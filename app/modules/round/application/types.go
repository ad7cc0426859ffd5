package roundservice

import rounddomain "github.com/RelicDragon/bandeja-sub007/app/modules/round/domain"

// RoundWinner is the answer of ResolveRoundWinner.
type RoundWinner struct {
	RoundID       string
	Strategy      rounddomain.WinnerStrategy
	WinnerTeamIDs []string
	TeamScores    []rounddomain.TeamScore
}

// RoundRecalculated describes a round whose outcomes were just persisted.
type RoundRecalculated struct {
	GameID        string
	RoundID       string
	Strategy      rounddomain.WinnerStrategy
	WinnerTeamIDs []string
	TeamScores    []rounddomain.TeamScore
	Players       []rounddomain.PlayerScore
}
