package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/socialpulse/socialpulse/internal/models"
)

// AccountRepository stores accounts in PostgreSQL with the history embedded
// as a JSONB array.
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new account repository.
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// List returns the accounts of a network ordered by name, without history.
func (r *AccountRepository) List(ctx context.Context, network models.Network) ([]models.Account, error) {
	query := `
		SELECT id, network, name, username, link, channel_url, category, created_at, updated_at
		FROM accounts
		WHERE network = $1
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query, network)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(
			&a.ID,
			&a.Network,
			&a.Name,
			&a.Username,
			&a.Link,
			&a.ChannelURL,
			&a.Category,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}

	return accounts, rows.Err()
}

// Get returns one account with its full history.
func (r *AccountRepository) Get(ctx context.Context, network models.Network, id string) (*models.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, models.ErrAccountNotFound
	}

	query := `
		SELECT id, network, name, username, link, channel_url, category, history, created_at, updated_at
		FROM accounts
		WHERE network = $1 AND id = $2
	`

	var (
		a           models.Account
		historyJSON []byte
	)
	err := r.db.QueryRowContext(ctx, query, network, id).Scan(
		&a.ID,
		&a.Network,
		&a.Name,
		&a.Username,
		&a.Link,
		&a.ChannelURL,
		&a.Category,
		&historyJSON,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if err := json.Unmarshal(historyJSON, &a.History); err != nil {
		return nil, fmt.Errorf("failed to decode history of %s: %w", id, err)
	}
	return &a, nil
}

// Save upserts the account on (network, name). The history is replaced as a
// whole; the stored id and created_at survive re-imports.
func (r *AccountRepository) Save(ctx context.Context, account *models.Account) error {
	history := account.History
	if history == nil {
		history = []models.Sample{}
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	id := account.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()

	query := `
		INSERT INTO accounts (id, network, name, username, link, channel_url, category, history, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (network, name) DO UPDATE SET
			username = EXCLUDED.username,
			link = EXCLUDED.link,
			channel_url = EXCLUDED.channel_url,
			category = EXCLUDED.category,
			history = EXCLUDED.history,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at
	`

	err = r.db.QueryRowContext(ctx, query,
		id,
		account.Network,
		account.Name,
		account.Username,
		account.Link,
		account.ChannelURL,
		account.Category,
		historyJSON,
		now,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save account %q: %w", account.Name, err)
	}
	return nil
}
