package roundservice

import "github.com/RelicDragon/bandeja-sub007/pkg/events/roundevents"

// AppliedPayload maps a recalculation result onto the round.outcomes.applied.v1 payload.
func AppliedPayload(r *RoundRecalculated) *roundevents.RoundOutcomesAppliedPayloadV1 {
	players := make([]roundevents.PlayerOutcomeV1, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, roundevents.PlayerOutcomeV1{
			UserID:      p.ID,
			MatchesWon:  p.MatchesWon,
			TotalScores: p.TotalScores,
		})
	}
	return &roundevents.RoundOutcomesAppliedPayloadV1{
		GameID:        r.GameID,
		RoundID:       r.RoundID,
		Strategy:      r.Strategy.String(),
		WinnerTeamIDs: r.WinnerTeamIDs,
		Players:       players,
	}
}

// WinnerPayload maps a resolved winner onto the round.winner.resolved.v1 payload.
func WinnerPayload(w *RoundWinner) *roundevents.RoundWinnerResolvedPayloadV1 {
	scores := make([]roundevents.TeamScoreV1, 0, len(w.TeamScores))
	for _, t := range w.TeamScores {
		scores = append(scores, roundevents.TeamScoreV1{
			TeamID:      t.ID,
			MatchesWon:  t.MatchesWon,
			TotalScores: t.TotalScores,
		})
	}
	return &roundevents.RoundWinnerResolvedPayloadV1{
		RoundID:       w.RoundID,
		Strategy:      w.Strategy.String(),
		WinnerTeamIDs: w.WinnerTeamIDs,
		TeamScores:    scores,
	}
}
