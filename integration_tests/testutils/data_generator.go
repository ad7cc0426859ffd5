package testutils

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	leaderboarddb "github.com/RelicDragon/bandeja-sub007/app/modules/leaderboard/infrastructure/repositories"
	rounddb "github.com/RelicDragon/bandeja-sub007/app/modules/round/infrastructure/repositories"
)

// TestDataGenerator builds rows for integration tests.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a generator with an optional seed.
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}
	return &TestDataGenerator{
		faker: gofakeit.New(uint64(s)),
		seed:  s,
	}
}

// Seed returns the generator seed so failures can be reproduced.
func (g *TestDataGenerator) Seed() int64 { return g.seed }

// GenerateUser returns an active user of the city with random names.
func (g *TestDataGenerator) GenerateUser(cityID string, level float64) *leaderboarddb.User {
	city := cityID
	return &leaderboarddb.User{
		ID:            uuid.NewString(),
		FirstName:     g.faker.FirstName(),
		LastName:      g.faker.LastName(),
		Level:         level,
		SocialLevel:   1,
		Reliability:   float64(g.faker.IntRange(0, 100)),
		TotalPoints:   g.faker.IntRange(0, 500),
		GamesPlayed:   0,
		GamesWon:      0,
		IsActive:      true,
		CurrentCityID: &city,
	}
}

// GenerateGame returns a game of the city starting at start.
func (g *TestDataGenerator) GenerateGame(cityID string, start time.Time, status string) *leaderboarddb.Game {
	return &leaderboarddb.Game{
		ID:            uuid.NewString(),
		CityID:        cityID,
		StartTime:     start.UTC(),
		ResultsStatus: status,
	}
}

// InsertUsers writes users.
func InsertUsers(ctx context.Context, db bun.IDB, users ...*leaderboarddb.User) error {
	if len(users) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&users).Exec(ctx); err != nil {
		return fmt.Errorf("insert users: %w", err)
	}
	return nil
}

// InsertGameWithPlayers writes a game and one playing participant per user.
func InsertGameWithPlayers(ctx context.Context, db bun.IDB, game *leaderboarddb.Game, userIDs ...string) error {
	if _, err := db.NewInsert().Model(game).Exec(ctx); err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	if len(userIDs) == 0 {
		return nil
	}
	participants := make([]*leaderboarddb.GameParticipant, 0, len(userIDs))
	for _, id := range userIDs {
		participants = append(participants, &leaderboarddb.GameParticipant{GameID: game.ID, UserID: id, IsPlaying: true})
	}
	if _, err := db.NewInsert().Model(&participants).Exec(ctx); err != nil {
		return fmt.Errorf("insert participants: %w", err)
	}
	return nil
}

// MatchPlan describes one match of a generated round: two teams of user ids and their set scores.
type MatchPlan struct {
	TeamA  []string
	TeamB  []string
	Sets   [][2]int
	Winner int // 0 none, 1 team A, 2 team B
}

// GenerateRound builds a round graph with fresh ids from match plans.
func (g *TestDataGenerator) GenerateRound(gameID string, plans ...MatchPlan) *rounddb.Round {
	round := &rounddb.Round{
		ID:          uuid.NewString(),
		GameID:      gameID,
		RoundNumber: 1,
	}
	for i, plan := range plans {
		match := &rounddb.Match{
			ID:          uuid.NewString(),
			MatchNumber: i + 1,
		}
		for n, players := range [][]string{plan.TeamA, plan.TeamB} {
			team := &rounddb.Team{ID: uuid.NewString(), TeamNumber: n + 1}
			for _, userID := range players {
				team.Players = append(team.Players, &rounddb.TeamPlayer{UserID: userID})
			}
			match.Teams = append(match.Teams, team)
		}
		if plan.Winner > 0 {
			winner := match.Teams[plan.Winner-1].ID
			match.WinnerID = &winner
		}
		for s, score := range plan.Sets {
			match.Sets = append(match.Sets, &rounddb.Set{
				ID:         uuid.NewString(),
				SetNumber:  s + 1,
				TeamAScore: score[0],
				TeamBScore: score[1],
			})
		}
		round.Matches = append(round.Matches, match)
	}
	return round
}
