package rounddomain

import (
	"cmp"
	"slices"
	"strings"
)

// WinnerStrategy selects the team statistic that decides a round.
type WinnerStrategy string

const (
	// StrategyByMatchesWon ranks teams by matches won. It is the default.
	StrategyByMatchesWon WinnerStrategy = "BY_MATCHES_WON"
	// StrategyByScoresDelta ranks teams by total set points.
	StrategyByScoresDelta WinnerStrategy = "BY_SCORES_DELTA"
)

// DefaultWinnerStrategy is used for empty or unrecognised strategy values.
const DefaultWinnerStrategy = StrategyByMatchesWon

// ParseWinnerStrategy maps a wire value to a strategy, falling back to the default.
func ParseWinnerStrategy(s string) WinnerStrategy {
	switch WinnerStrategy(strings.ToUpper(strings.TrimSpace(s))) {
	case StrategyByMatchesWon:
		return StrategyByMatchesWon
	case StrategyByScoresDelta:
		return StrategyByScoresDelta
	default:
		return DefaultWinnerStrategy
	}
}

// Known reports whether s is one of the declared strategies.
func (s WinnerStrategy) Known() bool {
	switch s {
	case StrategyByMatchesWon, StrategyByScoresDelta:
		return true
	default:
		return false
	}
}

func (s WinnerStrategy) String() string {
	return string(ParseWinnerStrategy(string(s)))
}

// UnmarshalText normalises decoded values so unknown strategies become the default.
func (s *WinnerStrategy) UnmarshalText(text []byte) error {
	*s = ParseWinnerStrategy(string(text))
	return nil
}

// Key returns the statistic the strategy compares.
func (s WinnerStrategy) Key(score TeamScore) int {
	switch ParseWinnerStrategy(string(s)) {
	case StrategyByScoresDelta:
		return score.TotalScores
	case StrategyByMatchesWon:
		return score.MatchesWon
	default:
		return score.MatchesWon
	}
}

// Winners returns every team whose key equals the maximum, in the order of scores.
// An empty input yields an empty, non-nil slice.
func Winners(scores []TeamScore, strategy WinnerStrategy) []string {
	winners := []string{}
	if len(scores) == 0 {
		return winners
	}

	best := slices.MaxFunc(scores, func(a, b TeamScore) int {
		return cmp.Compare(strategy.Key(a), strategy.Key(b))
	})
	bestKey := strategy.Key(best)

	for _, s := range scores {
		if strategy.Key(s) == bestKey {
			winners = append(winners, s.ID)
		}
	}
	return winners
}

// ResolveWinners aggregates the round and returns the winning team ids. Ties yield several
// winners; a round without qualifying matches yields none.
func ResolveWinners(round Round, strategy WinnerStrategy) []string {
	return Winners(OrderedTeamScores(round), strategy)
}
