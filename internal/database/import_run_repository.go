package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/socialpulse/socialpulse/internal/models"
	"github.com/socialpulse/socialpulse/internal/store"
)

// ImportRunRepository handles import run storage and retrieval.
type ImportRunRepository struct {
	db *sql.DB
}

// NewImportRunRepository creates a new import run repository.
func NewImportRunRepository(db *sql.DB) *ImportRunRepository {
	return &ImportRunRepository{db: db}
}

// Log stores a finished import run.
func (r *ImportRunRepository) Log(ctx context.Context, run models.ImportRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.Tabs == nil {
		run.Tabs = []string{}
	}

	query := `
		INSERT INTO import_runs (id, network, status, tabs, row_count, account_count, sample_count, error, started_at, finished_at, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.Network,
		run.Status,
		pq.Array(run.Tabs),
		run.Rows,
		run.Accounts,
		run.Samples,
		run.Error,
		run.StartedAt,
		run.FinishedAt,
		run.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("failed to log import run: %w", err)
	}
	return nil
}

// List returns the newest runs of a network first.
func (r *ImportRunRepository) List(ctx context.Context, network models.Network, limit int) ([]models.ImportRun, error) {
	query := `
		SELECT id, network, status, tabs, row_count, account_count, sample_count, error, started_at, finished_at, duration_ms
		FROM import_runs
		WHERE network = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, network, store.ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}
	defer rows.Close()

	runs := []models.ImportRun{}
	for rows.Next() {
		var run models.ImportRun
		if err := rows.Scan(
			&run.ID,
			&run.Network,
			&run.Status,
			pq.Array(&run.Tabs),
			&run.Rows,
			&run.Accounts,
			&run.Samples,
			&run.Error,
			&run.StartedAt,
			&run.FinishedAt,
			&run.DurationMs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan import run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}
