// Package rounddomain holds the pure round aggregation and winner resolution rules.
package rounddomain

// Team numbers of the two sides of a match.
const (
	TeamNumberA = 1
	TeamNumberB = 2
)

// Set is one scored sub-unit of a match.
type Set struct {
	TeamAScore int
	TeamBScore int
}

// Player is a team member.
type Player struct {
	UserID string
}

// Team is one side of a match. ID is stable within the match only.
type Team struct {
	ID         string
	TeamNumber int
	Players    []Player
}

// Match is a contest between two teams. WinnerID is recorded upstream and may be nil.
type Match struct {
	ID       string
	WinnerID *string
	Teams    []Team
	Sets     []Set
}

// Round groups the matches played together.
type Round struct {
	ID      string
	GameID  string
	Matches []Match
}

// Sides returns the team 1 and team 2 entries of the match. ok is false when either is missing,
// in which case the match takes no part in any aggregation.
func (m Match) Sides() (teamA, teamB Team, ok bool) {
	var foundA, foundB bool
	for _, t := range m.Teams {
		switch t.TeamNumber {
		case TeamNumberA:
			if !foundA {
				teamA, foundA = t, true
			}
		case TeamNumberB:
			if !foundB {
				teamB, foundB = t, true
			}
		}
	}
	return teamA, teamB, foundA && foundB
}

// SetTotals sums the set scores of the match per side.
func (m Match) SetTotals() (totalA, totalB int) {
	for _, s := range m.Sets {
		totalA += s.TeamAScore
		totalB += s.TeamBScore
	}
	return totalA, totalB
}

// IsWonBy reports whether the recorded winner is teamID.
func (m Match) IsWonBy(teamID string) bool {
	return m.WinnerID != nil && *m.WinnerID == teamID
}
