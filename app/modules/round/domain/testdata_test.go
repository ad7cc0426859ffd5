package rounddomain

func ptr(s string) *string { return &s }

func team(id string, number int, users ...string) Team {
	t := Team{ID: id, TeamNumber: number}
	for _, u := range users {
		t.Players = append(t.Players, Player{UserID: u})
	}
	return t
}

func sets(scores ...[2]int) []Set {
	out := make([]Set, 0, len(scores))
	for _, s := range scores {
		out = append(out, Set{TeamAScore: s[0], TeamBScore: s[1]})
	}
	return out
}

// twoMatchRound: A beats B 6:4 3:6 6:2, then A beats C 6:0.
func twoMatchRound() Round {
	return Round{
		ID:     "round-1",
		GameID: "game-1",
		Matches: []Match{
			{
				ID:       "m1",
				WinnerID: ptr("A"),
				Teams:    []Team{team("A", 1, "P1", "P2"), team("B", 2, "P3", "P4")},
				Sets:     sets([2]int{6, 4}, [2]int{3, 6}, [2]int{6, 2}),
			},
			{
				ID:       "m2",
				WinnerID: ptr("A"),
				Teams:    []Team{team("A", 1, "P1", "P2"), team("C", 2, "P5", "P6")},
				Sets:     sets([2]int{6, 0}),
			},
		},
	}
}
