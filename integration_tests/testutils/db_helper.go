package testutils

import (
	"context"
	"fmt"
	"strings"

	"github.com/RelicDragon/bandeja-sub007/app"
	"github.com/uptrace/bun"
)

// appTables lists every table owned by the modules, children first.
var appTables = []string{
	"round_outcomes", "sets", "team_players", "teams", "matches", "rounds",
	"level_change_events", "game_outcomes", "game_participants", "games", "users",
}

// RunMigrations applies river's schema and every module migration.
func RunMigrations(ctx context.Context, db *bun.DB, dsn string) error {
	if err := app.MigrateRiver(ctx, dsn); err != nil {
		return err
	}
	if err := app.MigrateAll(ctx, db); err != nil {
		return fmt.Errorf("failed to run module migrations: %w", err)
	}
	return nil
}

// TruncateTables empties every module table and the river job table.
func TruncateTables(ctx context.Context, db *bun.DB) error {
	tables := append([]string{"river_job"}, appTables...)
	if _, err := db.ExecContext(ctx, "TRUNCATE TABLE "+strings.Join(tables, ", ")+" RESTART IDENTITY CASCADE"); err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	return nil
}
