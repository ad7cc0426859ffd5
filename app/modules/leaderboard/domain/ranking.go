// Package leaderboarddomain holds competition ranking and leaderboard entry shaping.
package leaderboarddomain

// Candidate is one ranking input. Candidates are supplied already sorted by the keys of the
// active TieMode; ranking never re-sorts them.
type Candidate struct {
	ID          string
	GamesCount  int
	Reliability float64
	Level       float64
	SocialLevel float64
	TotalPoints int
}

// TieMode selects which keys make two adjacent candidates share a rank.
type TieMode int

const (
	// TieByLevel ties on level, reliability and total points.
	TieByLevel TieMode = iota
	// TieBySocialLevel ties on social level, reliability and total points.
	TieBySocialLevel
	// TieByGames ties on games count, reliability, level and total points.
	TieByGames
)

// Tied reports whether b shares a rank with a under the mode.
// Floats are compared exactly: ties come from identical stored values.
func (m TieMode) Tied(a, b Candidate) bool {
	switch m {
	case TieByGames:
		return a.GamesCount == b.GamesCount &&
			a.Reliability == b.Reliability &&
			a.Level == b.Level &&
			a.TotalPoints == b.TotalPoints
	case TieBySocialLevel:
		return a.SocialLevel == b.SocialLevel &&
			a.Reliability == b.Reliability &&
			a.TotalPoints == b.TotalPoints
	case TieByLevel:
		return a.Level == b.Level &&
			a.Reliability == b.Reliability &&
			a.TotalPoints == b.TotalPoints
	default:
		return false
	}
}

// AssignRanks gives 1224 competition ranks to pre-sorted candidates: a block of tied
// candidates shares the rank of its first member and the next block skips by the block size.
// Each block is compared against its first member.
func AssignRanks(candidates []Candidate, mode TieMode) map[string]int {
	ranks := make(map[string]int, len(candidates))

	currentRank := 1
	for i := 0; i < len(candidates); {
		blockSize := 1
		for i+blockSize < len(candidates) && mode.Tied(candidates[i], candidates[i+blockSize]) {
			blockSize++
		}
		for _, c := range candidates[i : i+blockSize] {
			ranks[c.ID] = currentRank
		}
		i += blockSize
		currentRank += blockSize
	}
	return ranks
}
