package leaderboarddb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the read queries behind leaderboards. Results are sorted by the
// ranking keys so they can be ranked without re-sorting.
type Repository interface {
	// ListLevelCandidates returns active users sorted by level (or social level), reliability
	// and total points, all descending. An empty cityID means every city.
	ListLevelCandidates(ctx context.Context, db bun.IDB, cityID string, social bool) ([]*User, error)

	// ListGamesCandidates returns active users with their FINAL playing participations in window
	// (nil window means all time), sorted by games count, reliability, level and total points.
	ListGamesCandidates(ctx context.Context, db bun.IDB, cityID string, window *TimeWindow) ([]*User, error)

	// CountRecentParticipation counts FINAL playing participations per user inside window.
	// Users without participations are absent from the result.
	CountRecentParticipation(ctx context.Context, db bun.IDB, userIDs []string, cityID string, window TimeWindow) (map[string]int, error)

	// GetUserCity returns the current city of a user, nil when none is set. ErrNotFound when
	// the user does not exist.
	GetUserCity(ctx context.Context, db bun.IDB, userID string) (*string, error)

	// LastLevelChanges returns each user's latest rating change: game outcomes, or social
	// level events when social is set.
	LastLevelChanges(ctx context.Context, db bun.IDB, userIDs []string, social bool) (map[string]float64, error)
}
