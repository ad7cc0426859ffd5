package leaderboardmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating leaderboard read model tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS users (
					id TEXT PRIMARY KEY,
					first_name TEXT NOT NULL DEFAULT '',
					last_name TEXT NOT NULL DEFAULT '',
					avatar TEXT,
					level DOUBLE PRECISION NOT NULL DEFAULT 1,
					social_level DOUBLE PRECISION NOT NULL DEFAULT 1,
					reliability DOUBLE PRECISION NOT NULL DEFAULT 0,
					total_points INTEGER NOT NULL DEFAULT 0,
					games_played INTEGER NOT NULL DEFAULT 0,
					games_won INTEGER NOT NULL DEFAULT 0,
					is_active BOOLEAN NOT NULL DEFAULT TRUE,
					current_city_id TEXT
				);
				CREATE INDEX IF NOT EXISTS idx_users_city_active ON users(current_city_id, is_active);

				CREATE TABLE IF NOT EXISTS games (
					id TEXT PRIMARY KEY,
					city_id TEXT NOT NULL,
					start_time TIMESTAMPTZ NOT NULL,
					results_status TEXT NOT NULL DEFAULT 'NONE'
				);
				CREATE INDEX IF NOT EXISTS idx_games_city_start ON games(city_id, start_time);

				CREATE TABLE IF NOT EXISTS game_participants (
					game_id TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
					user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					is_playing BOOLEAN NOT NULL DEFAULT TRUE,
					PRIMARY KEY (game_id, user_id)
				);
				CREATE INDEX IF NOT EXISTS idx_game_participants_user ON game_participants(user_id);
			`); err != nil {
				return fmt.Errorf("failed to create users/games tables: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS game_outcomes (
					id TEXT PRIMARY KEY,
					game_id TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
					user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					level_change DOUBLE PRECISION NOT NULL DEFAULT 0,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_game_outcomes_user_created ON game_outcomes(user_id, created_at DESC);

				CREATE TABLE IF NOT EXISTS level_change_events (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					event_type TEXT NOT NULL,
					level_before DOUBLE PRECISION NOT NULL,
					level_after DOUBLE PRECISION NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_level_change_events_user_created ON level_change_events(user_id, created_at DESC);
			`); err != nil {
				return fmt.Errorf("failed to create rating history tables: %w", err)
			}

			fmt.Println("Leaderboard read model tables created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping leaderboard read model tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				DROP TABLE IF EXISTS level_change_events;
				DROP TABLE IF EXISTS game_outcomes;
				DROP TABLE IF EXISTS game_participants;
				DROP TABLE IF EXISTS games;
				DROP TABLE IF EXISTS users;
			`); err != nil {
				return fmt.Errorf("failed to drop leaderboard read model tables: %w", err)
			}
			return nil
		})
	})
}
