// Package store defines the persistence contracts of accounts and import runs
// and an in-memory implementation used by tests and the memory driver.
package store

import (
	"context"

	"github.com/socialpulse/socialpulse/internal/models"
)

// AccountRepository persists accounts with their embedded history.
type AccountRepository interface {
	// List returns the accounts of a network without their history.
	List(ctx context.Context, network models.Network) ([]models.Account, error)

	// Get returns one account with its history, or models.ErrAccountNotFound.
	Get(ctx context.Context, network models.Network, id string) (*models.Account, error)

	// Save upserts the account keyed by network and name. It assigns ID on
	// first insert and keeps the stored ID afterwards.
	Save(ctx context.Context, account *models.Account) error
}

// ImportRunRepository records import executions.
type ImportRunRepository interface {
	// Log stores a finished import run.
	Log(ctx context.Context, run models.ImportRun) error

	// List returns the most recent runs of a network, newest first.
	List(ctx context.Context, network models.Network, limit int) ([]models.ImportRun, error)
}

// Store bundles the repositories of one backend.
type Store struct {
	Accounts AccountRepository
	Runs     ImportRunRepository
	Ping     func(ctx context.Context) error
	Close    func(ctx context.Context) error
}

// ClampLimit bounds list limits the way every backend does.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 500 {
		return 500
	}
	return limit
}
