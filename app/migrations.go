package app

import (
	"context"
	"fmt"

	leaderboardmigrations "github.com/RelicDragon/bandeja-sub007/app/modules/leaderboard/infrastructure/repositories/migrations"
	roundmigrations "github.com/RelicDragon/bandeja-sub007/app/modules/round/infrastructure/repositories/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// ModuleMigrator is the bun migrator of one module. Each module keeps its own migration tables.
type ModuleMigrator struct {
	Module   string
	Migrator *migrate.Migrator
}

// Migrators returns the module migrators in dependency order.
func Migrators(db *bun.DB) []ModuleMigrator {
	newMigrator := func(module string, migrations *migrate.Migrations) ModuleMigrator {
		return ModuleMigrator{
			Module: module,
			Migrator: migrate.NewMigrator(db, migrations,
				migrate.WithTableName("bun_migrations_"+module),
				migrate.WithLocksTableName("bun_migration_locks_"+module),
			),
		}
	}
	return []ModuleMigrator{
		newMigrator("leaderboard", leaderboardmigrations.Migrations),
		newMigrator("round", roundmigrations.Migrations),
	}
}

// MigrateAll initializes and applies every module's migrations.
func MigrateAll(ctx context.Context, db *bun.DB) error {
	for _, m := range Migrators(db) {
		if err := m.Migrator.Init(ctx); err != nil {
			return fmt.Errorf("init %s migrations: %w", m.Module, err)
		}
		if _, err := m.Migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate %s: %w", m.Module, err)
		}
	}
	return nil
}

// MigrateRiver applies river's own schema migrations.
func MigrateRiver(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create river migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return fmt.Errorf("failed to run river migrations: %w", err)
	}
	return nil
}
