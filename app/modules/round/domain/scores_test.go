package rounddomain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAggregateTeamScores(t *testing.T) {
	tests := []struct {
		name  string
		round Round
		want  map[string]TeamScore
	}{
		{
			name:  "two match scenario",
			round: twoMatchRound(),
			want: map[string]TeamScore{
				"A": {ID: "A", MatchesWon: 2, TotalScores: 21},
				"B": {ID: "B", MatchesWon: 0, TotalScores: 12},
				"C": {ID: "C", MatchesWon: 0, TotalScores: 0},
			},
		},
		{
			name:  "empty round",
			round: Round{ID: "r"},
			want:  map[string]TeamScore{},
		},
		{
			name: "match missing team 2 is skipped entirely",
			round: Round{Matches: []Match{
				{ID: "bye", WinnerID: ptr("X"), Teams: []Team{team("X", 1, "P1")}, Sets: sets([2]int{6, 0})},
				{ID: "m", WinnerID: ptr("Y"), Teams: []Team{team("Y", 1, "P2"), team("Z", 2, "P3")}, Sets: sets([2]int{6, 3})},
			}},
			want: map[string]TeamScore{
				"Y": {ID: "Y", MatchesWon: 1, TotalScores: 6},
				"Z": {ID: "Z", MatchesWon: 0, TotalScores: 3},
			},
		},
		{
			name: "two teams numbered 1 is incomplete",
			round: Round{Matches: []Match{
				{ID: "m", Teams: []Team{team("X", 1), team("Y", 1)}, Sets: sets([2]int{6, 3})},
			}},
			want: map[string]TeamScore{},
		},
		{
			name: "stale winner id increments nobody",
			round: Round{Matches: []Match{
				{ID: "m", WinnerID: ptr("gone"), Teams: []Team{team("X", 1), team("Y", 2)}, Sets: sets([2]int{6, 4})},
			}},
			want: map[string]TeamScore{
				"X": {ID: "X", TotalScores: 6},
				"Y": {ID: "Y", TotalScores: 4},
			},
		},
		{
			name: "nil winner and no sets",
			round: Round{Matches: []Match{
				{ID: "m", Teams: []Team{team("Y", 2), team("X", 1)}},
			}},
			want: map[string]TeamScore{
				"X": {ID: "X"},
				"Y": {ID: "Y"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AggregateTeamScores(tt.round)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("AggregateTeamScores() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOrderedTeamScores_FirstSeenOrder(t *testing.T) {
	round := Round{Matches: []Match{
		{ID: "m1", Teams: []Team{team("B", 2), team("A", 1)}},
		{ID: "m2", Teams: []Team{team("C", 1), team("A", 2)}},
	}}

	got := OrderedTeamScores(round)
	ids := make([]string, len(got))
	for i, s := range got {
		ids[i] = s.ID
	}
	if diff := cmp.Diff([]string{"A", "B", "C"}, ids); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregatePlayerScores(t *testing.T) {
	t.Run("two match scenario", func(t *testing.T) {
		got := AggregatePlayerScores(twoMatchRound())
		want := map[string]PlayerScore{
			"P1": {ID: "P1", MatchesWon: 2, TotalScores: 21},
			"P2": {ID: "P2", MatchesWon: 2, TotalScores: 21},
			"P3": {ID: "P3", MatchesWon: 0, TotalScores: 12},
			"P4": {ID: "P4", MatchesWon: 0, TotalScores: 12},
			"P5": {ID: "P5", MatchesWon: 0, TotalScores: 0},
			"P6": {ID: "P6", MatchesWon: 0, TotalScores: 0},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("AggregatePlayerScores() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("rotation accumulates by user id", func(t *testing.T) {
		round := Round{Matches: []Match{
			{ID: "m1", WinnerID: ptr("t1"), Teams: []Team{team("t1", 1, "P1", "P2"), team("t2", 2, "P3", "P4")}, Sets: sets([2]int{6, 2})},
			{ID: "m2", WinnerID: ptr("t4"), Teams: []Team{team("t3", 1, "P1", "P3"), team("t4", 2, "P2", "P4")}, Sets: sets([2]int{4, 6})},
		}}

		got := AggregatePlayerScores(round)
		want := map[string]PlayerScore{
			"P1": {ID: "P1", MatchesWon: 1, TotalScores: 10},
			"P2": {ID: "P2", MatchesWon: 2, TotalScores: 12},
			"P3": {ID: "P3", MatchesWon: 0, TotalScores: 6},
			"P4": {ID: "P4", MatchesWon: 1, TotalScores: 8},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("AggregatePlayerScores() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("players of incomplete matches are absent", func(t *testing.T) {
		round := Round{Matches: []Match{
			{ID: "bye", Teams: []Team{team("t1", 1, "P1")}, Sets: sets([2]int{6, 0})},
		}}
		if got := AggregatePlayerScores(round); len(got) != 0 {
			t.Fatalf("expected no players, got %v", got)
		}
	})

	t.Run("ordered output follows first sight", func(t *testing.T) {
		got := OrderedPlayerScores(twoMatchRound())
		ids := make([]string, len(got))
		for i, s := range got {
			ids[i] = s.ID
		}
		if diff := cmp.Diff([]string{"P1", "P2", "P3", "P4", "P5", "P6"}, ids); diff != "" {
			t.Fatalf("order mismatch (-want +got):\n%s", diff)
		}
	})
}
