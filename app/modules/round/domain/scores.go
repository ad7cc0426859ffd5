package rounddomain

// TeamScore is a team's aggregate over the qualifying matches of a round.
type TeamScore struct {
	ID          string
	MatchesWon  int
	TotalScores int
}

// PlayerScore is a player's aggregate over the qualifying matches of a round.
type PlayerScore struct {
	ID          string
	MatchesWon  int
	TotalScores int
}

// scoreBook accumulates scores keyed by id while remembering first-seen order.
type scoreBook struct {
	index  map[string]int
	scores []TeamScore
}

func newScoreBook() *scoreBook {
	return &scoreBook{index: make(map[string]int)}
}

func (b *scoreBook) add(id string, points int, won bool) {
	i, ok := b.index[id]
	if !ok {
		i = len(b.scores)
		b.index[id] = i
		b.scores = append(b.scores, TeamScore{ID: id})
	}
	b.scores[i].TotalScores += points
	if won {
		b.scores[i].MatchesWon++
	}
}

// OrderedTeamScores aggregates team scores in the order teams are first seen
// (match order, team 1 before team 2).
func OrderedTeamScores(round Round) []TeamScore {
	book := newScoreBook()
	for _, m := range round.Matches {
		teamA, teamB, ok := m.Sides()
		if !ok {
			continue
		}
		totalA, totalB := m.SetTotals()
		wonA := m.IsWonBy(teamA.ID)
		book.add(teamA.ID, totalA, wonA)
		book.add(teamB.ID, totalB, !wonA && m.IsWonBy(teamB.ID))
	}
	return book.scores
}

// AggregateTeamScores reduces the round to per-team statistics. Teams that only appear in
// incomplete matches are absent from the result.
func AggregateTeamScores(round Round) map[string]TeamScore {
	ordered := OrderedTeamScores(round)
	out := make(map[string]TeamScore, len(ordered))
	for _, s := range ordered {
		out[s.ID] = s
	}
	return out
}

// OrderedPlayerScores aggregates per-player statistics keyed by user id, in first-seen order.
// A player rotating between teams accumulates into a single entry.
func OrderedPlayerScores(round Round) []PlayerScore {
	book := newScoreBook()
	for _, m := range round.Matches {
		teamA, teamB, ok := m.Sides()
		if !ok {
			continue
		}
		totalA, totalB := m.SetTotals()
		for _, side := range []struct {
			team  Team
			total int
		}{{teamA, totalA}, {teamB, totalB}} {
			won := m.IsWonBy(side.team.ID)
			for _, p := range side.team.Players {
				book.add(p.UserID, side.total, won)
			}
		}
	}

	out := make([]PlayerScore, len(book.scores))
	for i, s := range book.scores {
		out[i] = PlayerScore(s)
	}
	return out
}

// AggregatePlayerScores is OrderedPlayerScores keyed by user id.
func AggregatePlayerScores(round Round) map[string]PlayerScore {
	ordered := OrderedPlayerScores(round)
	out := make(map[string]PlayerScore, len(ordered))
	for _, s := range ordered {
		out[s.ID] = s
	}
	return out
}
