package rounddomain

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseWinnerStrategy(t *testing.T) {
	tests := []struct {
		in   string
		want WinnerStrategy
	}{
		{"BY_MATCHES_WON", StrategyByMatchesWon},
		{"BY_SCORES_DELTA", StrategyByScoresDelta},
		{" by_scores_delta ", StrategyByScoresDelta},
		{"", StrategyByMatchesWon},
		{"BY_SETS", StrategyByMatchesWon},
	}
	for _, tt := range tests {
		if got := ParseWinnerStrategy(tt.in); got != tt.want {
			t.Fatalf("ParseWinnerStrategy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWinnerStrategy_UnmarshalJSON(t *testing.T) {
	var payload struct {
		Strategy WinnerStrategy `json:"strategy"`
	}
	if err := json.Unmarshal([]byte(`{"strategy":"SOMETHING_NEW"}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Strategy != StrategyByMatchesWon {
		t.Fatalf("expected fallback to default, got %q", payload.Strategy)
	}
	if WinnerStrategy("junk").Known() {
		t.Fatalf("junk must not be a known strategy")
	}
}

func TestResolveWinners(t *testing.T) {
	tests := []struct {
		name     string
		round    Round
		strategy WinnerStrategy
		want     []string
	}{
		{
			name:     "dominant team wins by matches",
			round:    twoMatchRound(),
			strategy: StrategyByMatchesWon,
			want:     []string{"A"},
		},
		{
			name:     "dominant team wins by scores",
			round:    twoMatchRound(),
			strategy: StrategyByScoresDelta,
			want:     []string{"A"},
		},
		{
			name:     "unknown strategy falls back to matches won",
			round:    twoMatchRound(),
			strategy: WinnerStrategy("BY_VIBES"),
			want:     []string{"A"},
		},
		{
			name:     "empty round has no winner",
			round:    Round{},
			strategy: StrategyByMatchesWon,
			want:     []string{},
		},
		{
			name: "only incomplete matches has no winner",
			round: Round{Matches: []Match{
				{ID: "bye", WinnerID: ptr("X"), Teams: []Team{team("X", 1)}},
			}},
			strategy: StrategyByMatchesWon,
			want:     []string{},
		},
		{
			name: "tie on matches won returns every leader",
			round: Round{Matches: []Match{
				{ID: "m1", WinnerID: ptr("X"), Teams: []Team{team("X", 1), team("Y", 2)}, Sets: sets([2]int{6, 0})},
				{ID: "m2", WinnerID: ptr("Z"), Teams: []Team{team("Z", 1), team("W", 2)}, Sets: sets([2]int{7, 6})},
			}},
			strategy: StrategyByMatchesWon,
			want:     []string{"X", "Z"},
		},
		{
			name: "strategies can disagree",
			round: Round{Matches: []Match{
				{ID: "m1", WinnerID: ptr("X"), Teams: []Team{team("X", 1), team("Y", 2)}, Sets: sets([2]int{7, 6})},
				{ID: "m2", WinnerID: ptr("X"), Teams: []Team{team("X", 1), team("Y", 2)}, Sets: sets([2]int{7, 6})},
				{ID: "m3", WinnerID: ptr("Y"), Teams: []Team{team("X", 1), team("Y", 2)}, Sets: sets([2]int{0, 6})},
			}},
			strategy: StrategyByScoresDelta,
			want:     []string{"Y"},
		},
		{
			name: "no recorded winners ties everybody on matches",
			round: Round{Matches: []Match{
				{ID: "m1", Teams: []Team{team("X", 1), team("Y", 2)}, Sets: sets([2]int{6, 4})},
			}},
			strategy: StrategyByMatchesWon,
			want:     []string{"X", "Y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveWinners(tt.round, tt.strategy)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("ResolveWinners() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveWinners_ReturnsEveryTiedMaximum(t *testing.T) {
	round := Round{Matches: []Match{
		{ID: "m1", WinnerID: ptr("X"), Teams: []Team{team("X", 1), team("Y", 2)}, Sets: sets([2]int{6, 1})},
		{ID: "m2", WinnerID: ptr("Y"), Teams: []Team{team("Y", 1), team("Z", 2)}, Sets: sets([2]int{6, 2})},
		{ID: "m3", WinnerID: ptr("X"), Teams: []Team{team("Z", 1), team("X", 2)}, Sets: sets([2]int{3, 6})},
		{ID: "m4", WinnerID: ptr("Y"), Teams: []Team{team("Z", 1), team("Y", 2)}, Sets: sets([2]int{5, 7})},
	}}

	scores := AggregateTeamScores(round)
	winners := ResolveWinners(round, StrategyByMatchesWon)

	best := 0
	for _, s := range scores {
		best = max(best, s.MatchesWon)
	}
	inWinners := make(map[string]bool, len(winners))
	for _, id := range winners {
		inWinners[id] = true
	}
	for id, s := range scores {
		if (s.MatchesWon == best) != inWinners[id] {
			t.Fatalf("team %s with %d wins (best %d) winner=%v", id, s.MatchesWon, best, inWinners[id])
		}
	}
	if diff := cmp.Diff([]string{"X", "Y"}, winners); diff != "" {
		t.Fatalf("winners mismatch (-want +got):\n%s", diff)
	}
}
