package roundmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating round, match, team, set and round_outcomes tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS rounds (
					id TEXT PRIMARY KEY,
					game_id TEXT NOT NULL,
					round_number INTEGER NOT NULL DEFAULT 0,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_rounds_game_id ON rounds(game_id);

				CREATE TABLE IF NOT EXISTS matches (
					id TEXT PRIMARY KEY,
					round_id TEXT NOT NULL REFERENCES rounds(id) ON DELETE CASCADE,
					match_number INTEGER NOT NULL DEFAULT 0,
					winner_id TEXT
				);
				CREATE INDEX IF NOT EXISTS idx_matches_round_id ON matches(round_id);

				CREATE TABLE IF NOT EXISTS teams (
					id TEXT PRIMARY KEY,
					match_id TEXT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
					team_number INTEGER NOT NULL
				);
				CREATE INDEX IF NOT EXISTS idx_teams_match_id ON teams(match_id);

				CREATE TABLE IF NOT EXISTS team_players (
					team_id TEXT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
					user_id TEXT NOT NULL,
					PRIMARY KEY (team_id, user_id)
				);

				CREATE TABLE IF NOT EXISTS sets (
					id TEXT PRIMARY KEY,
					match_id TEXT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
					set_number INTEGER NOT NULL DEFAULT 0,
					team_a_score INTEGER NOT NULL DEFAULT 0,
					team_b_score INTEGER NOT NULL DEFAULT 0
				);
				CREATE INDEX IF NOT EXISTS idx_sets_match_id ON sets(match_id);
			`); err != nil {
				return fmt.Errorf("failed to create round tables: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS round_outcomes (
					id TEXT PRIMARY KEY,
					round_id TEXT NOT NULL REFERENCES rounds(id) ON DELETE CASCADE,
					user_id TEXT NOT NULL,
					level_change DOUBLE PRECISION NOT NULL DEFAULT 0,
					metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT uq_round_outcomes_round_user UNIQUE (round_id, user_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create round_outcomes table: %w", err)
			}

			fmt.Println("Round tables created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping round tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				DROP TABLE IF EXISTS round_outcomes;
				DROP TABLE IF EXISTS sets;
				DROP TABLE IF EXISTS team_players;
				DROP TABLE IF EXISTS teams;
				DROP TABLE IF EXISTS matches;
				DROP TABLE IF EXISTS rounds;
			`); err != nil {
				return fmt.Errorf("failed to drop round tables: %w", err)
			}
			return nil
		})
	})
}
