package database

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
)

//go:embed migrations/001_initial.up.sql
var initialMigrationSQL string

//go:embed migrations/002_student_progress.up.sql
var studentProgressSQL string

//go:embed migrations/003_activity_sequence.up.sql
var activitySequenceSQL string

// columnMigration is applied when its marker column is missing. The statements use
// IF NOT EXISTS and are safe to re-run.
type columnMigration struct {
	name   string
	table  string
	column string
	sql    string
}

var columnMigrations = []columnMigration{
	{name: "002 student progress", table: "students", column: "total_sessions", sql: studentProgressSQL},
	{name: "003 activity sequence", table: "activity_entries", column: "seq", sql: activitySequenceSQL},
}

var requiredTables = []string{
	"users",
	"students",
	"employees",
	"expenses",
	"transactions",
	"trash_entries",
	"activity_entries",
}

func (db *DB) EnsureSchema(ctx context.Context) error {
	if db == nil || db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	exists, err := db.hasAllRequiredTables(ctx)
	if err != nil {
		return fmt.Errorf("check existing tables: %w", err)
	}

	if !exists {
		slog.Info("database schema missing tables; applying initial migration")
		if _, err := db.Pool.Exec(ctx, initialMigrationSQL); err != nil {
			return fmt.Errorf("apply initial migration: %w", err)
		}

		exists, err = db.hasAllRequiredTables(ctx)
		if err != nil {
			return fmt.Errorf("re-check tables after migration: %w", err)
		}

		if !exists {
			return fmt.Errorf("schema initialization incomplete: required tables are still missing")
		}
	}

	for _, m := range columnMigrations {
		if err := db.applyColumnMigration(ctx, m); err != nil {
			return fmt.Errorf("apply %s migration: %w", m.name, err)
		}
	}

	slog.Info("database schema ensured")
	return nil
}

func (db *DB) applyColumnMigration(ctx context.Context, m columnMigration) error {
	var hasColumn bool
	err := db.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_schema = 'public'
			  AND table_name = $1
			  AND column_name = $2
		)
	`, m.table, m.column).Scan(&hasColumn)
	if err != nil {
		return fmt.Errorf("check %s.%s column: %w", m.table, m.column, err)
	}

	if !hasColumn {
		slog.Info("applying migration", "migration", m.name)
		if _, err := db.Pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("exec %s SQL: %w", m.name, err)
		}
	}

	return nil
}

func (db *DB) hasAllRequiredTables(ctx context.Context) (bool, error) {
	var count int
	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_name = ANY($1)
	`, requiredTables).Scan(&count)
	if err != nil {
		return false, err
	}

	return count == len(requiredTables), nil
}
