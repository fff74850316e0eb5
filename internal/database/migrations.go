package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// RunMigrations applies pending SQL migrations from migrationsDir in file
// name order, each in its own transaction.
func RunMigrations(ctx context.Context, db *sql.DB, migrationsDir string, logger *slog.Logger) error {
	logger.Info("checking for pending database migrations")

	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	applied, err := appliedMigrations(ctx, db)
	if err != nil {
		return err
	}

	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to list migration files: %w", err)
	}

	pending := pendingMigrations(files, applied)
	for _, file := range pending {
		name := filepath.Base(file)
		logger.Info("applying migration", "file", name)

		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		if err := applyMigration(ctx, db, name, string(content)); err != nil {
			return err
		}

		logger.Info("migration applied successfully", "file", name)
	}

	if len(pending) == 0 {
		logger.Info("no pending migrations found")
	} else {
		logger.Info("migrations completed", "count", len(pending))
	}

	return nil
}

func appliedMigrations(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// pendingMigrations returns the files not yet applied, sorted by name.
func pendingMigrations(files []string, applied map[string]bool) []string {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	pending := make([]string, 0, len(sorted))
	for _, file := range sorted {
		if !applied[filepath.Base(file)] {
			pending = append(pending, file)
		}
	}
	return pending
}

func applyMigration(ctx context.Context, db *sql.DB, name, content string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for %s: %w", name, err)
	}

	if _, err := tx.ExecContext(ctx, content); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to execute migration %s: %w", name, err)
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", name); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record migration %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %s: %w", name, err)
	}
	return nil
}
