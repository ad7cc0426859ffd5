package leaderboarddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// Impl implements Repository using bun.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new leaderboard repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// ListLevelCandidates implements Repository.
func (r *Impl) ListLevelCandidates(ctx context.Context, db bun.IDB, cityID string, social bool) ([]*User, error) {
	db = r.resolveDB(db)

	orderField := "u.level"
	if social {
		orderField = "u.social_level"
	}

	var users []*User
	q := db.NewSelect().
		Model(&users).
		Where("u.is_active = TRUE")
	if cityID != "" {
		q = q.Where("u.current_city_id = ?", cityID)
	}
	err := q.
		OrderExpr(orderField + " DESC").
		OrderExpr("u.reliability DESC").
		OrderExpr("u.total_points DESC").
		OrderExpr("u.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaderboarddb.ListLevelCandidates: %w", err)
	}
	return users, nil
}

// participationQuery selects FINAL playing participations, grouped by user.
func participationQuery(db bun.IDB, cityID string, window *TimeWindow) *bun.SelectQuery {
	q := db.NewSelect().
		TableExpr("game_participants AS gp").
		Join("JOIN games AS g ON g.id = gp.game_id").
		ColumnExpr("gp.user_id").
		ColumnExpr("COUNT(*) AS games_count").
		Where("gp.is_playing = TRUE").
		Where("g.results_status = ?", ResultsStatusFinal).
		GroupExpr("gp.user_id")
	if cityID != "" {
		q = q.Where("g.city_id = ?", cityID)
	}
	if window != nil {
		q = q.Where("g.start_time >= ?", window.Since).Where("g.start_time < ?", window.Until)
	}
	return q
}

// ListGamesCandidates implements Repository.
func (r *Impl) ListGamesCandidates(ctx context.Context, db bun.IDB, cityID string, window *TimeWindow) ([]*User, error) {
	db = r.resolveDB(db)

	var users []*User
	q := db.NewSelect().
		Model(&users).
		ColumnExpr("u.*").
		ColumnExpr("COALESCE(gc.games_count, 0) AS games_count").
		Join("LEFT JOIN (?) AS gc ON gc.user_id = u.id", participationQuery(db, cityID, window)).
		Where("u.is_active = TRUE")
	if cityID != "" {
		q = q.Where("u.current_city_id = ?", cityID)
	}
	err := q.
		OrderExpr("games_count DESC").
		OrderExpr("u.reliability DESC").
		OrderExpr("u.level DESC").
		OrderExpr("u.total_points DESC").
		OrderExpr("u.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaderboarddb.ListGamesCandidates: %w", err)
	}
	return users, nil
}

// CountRecentParticipation implements Repository.
func (r *Impl) CountRecentParticipation(ctx context.Context, db bun.IDB, userIDs []string, cityID string, window TimeWindow) (map[string]int, error) {
	counts := make(map[string]int, len(userIDs))
	if len(userIDs) == 0 {
		return counts, nil
	}
	db = r.resolveDB(db)

	var rows []struct {
		UserID     string `bun:"user_id"`
		GamesCount int    `bun:"games_count"`
	}
	err := participationQuery(db, cityID, &window).
		Where("gp.user_id IN (?)", bun.In(userIDs)).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("leaderboarddb.CountRecentParticipation: %w", err)
	}

	for _, row := range rows {
		counts[row.UserID] = row.GamesCount
	}
	return counts, nil
}

// GetUserCity implements Repository.
func (r *Impl) GetUserCity(ctx context.Context, db bun.IDB, userID string) (*string, error) {
	db = r.resolveDB(db)

	u := new(User)
	err := db.NewSelect().
		Model(u).
		Column("u.id", "u.current_city_id").
		Where("u.id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("leaderboarddb.GetUserCity: %w", err)
	}
	return u.CurrentCityID, nil
}

// LastLevelChanges implements Repository.
func (r *Impl) LastLevelChanges(ctx context.Context, db bun.IDB, userIDs []string, social bool) (map[string]float64, error) {
	changes := make(map[string]float64, len(userIDs))
	if len(userIDs) == 0 {
		return changes, nil
	}
	db = r.resolveDB(db)

	var rows []struct {
		UserID      string  `bun:"user_id"`
		LevelChange float64 `bun:"level_change"`
	}

	var q *bun.SelectQuery
	if social {
		q = db.NewSelect().
			Model((*LevelChangeEvent)(nil)).
			DistinctOn("lce.user_id").
			ColumnExpr("lce.user_id").
			ColumnExpr("lce.level_after - lce.level_before AS level_change").
			Where("lce.user_id IN (?)", bun.In(userIDs)).
			Where("lce.event_type IN (?)", bun.In([]string{EventSocialBar, EventSocialParticipant})).
			OrderExpr("lce.user_id, lce.created_at DESC")
	} else {
		q = db.NewSelect().
			Model((*GameOutcome)(nil)).
			DistinctOn("o.user_id").
			ColumnExpr("o.user_id").
			ColumnExpr("o.level_change").
			Where("o.user_id IN (?)", bun.In(userIDs)).
			OrderExpr("o.user_id, o.created_at DESC")
	}

	if err := q.Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("leaderboarddb.LastLevelChanges: %w", err)
	}

	for _, row := range rows {
		changes[row.UserID] = row.LevelChange
	}
	return changes, nil
}
