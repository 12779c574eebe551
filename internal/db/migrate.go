package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

func init() {
	goose.SetBaseFS(migrations)
}

func openSQL(dsn string) (*sql.DB, error) {
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, err
	}
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open migration connection: %w", err)
	}
	return sqlDB, nil
}

// MigrateUp applies all pending migrations.
func MigrateUp(ctx context.Context, dsn string) error {
	sqlDB, err := openSQL(dsn)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	log.Println("[DB]: migrations applied")
	return nil
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(ctx context.Context, dsn string) error {
	sqlDB, err := openSQL(dsn)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	return goose.DownContext(ctx, sqlDB, "migrations")
}

func MigrateStatus(ctx context.Context, dsn string) error {
	sqlDB, err := openSQL(dsn)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	return goose.StatusContext(ctx, sqlDB, "migrations")
}
