package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/socialpulse/socialpulse/internal/models"
)

// MemoryAccountRepository keeps accounts in process memory.
type MemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]models.Account // id -> account
	byName   map[string]string         // network|name -> id
}

// NewMemoryAccountRepository creates an empty repository.
func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{
		accounts: make(map[string]models.Account),
		byName:   make(map[string]string),
	}
}

func nameKey(network models.Network, name string) string {
	return string(network) + "|" + name
}

// List returns accounts of a network ordered by name, without history.
func (r *MemoryAccountRepository) List(ctx context.Context, network models.Network) ([]models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Account, 0)
	for _, a := range r.accounts {
		if a.Network != network {
			continue
		}
		a.History = nil
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Get returns a copy of the stored account.
func (r *MemoryAccountRepository) Get(ctx context.Context, network models.Network, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok || a.Network != network {
		return nil, models.ErrAccountNotFound
	}
	a.History = append([]models.Sample(nil), a.History...)
	return &a, nil
}

// Save upserts by network and name.
func (r *MemoryAccountRepository) Save(ctx context.Context, account *models.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	key := nameKey(account.Network, account.Name)
	if id, ok := r.byName[key]; ok {
		account.ID = id
		account.CreatedAt = r.accounts[id].CreatedAt
	} else {
		if account.ID == "" {
			account.ID = uuid.New().String()
		}
		account.CreatedAt = now
		r.byName[key] = account.ID
	}
	account.UpdatedAt = now

	stored := *account
	stored.History = append([]models.Sample(nil), account.History...)
	r.accounts[account.ID] = stored
	return nil
}

// Count returns the number of stored accounts.
func (r *MemoryAccountRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}

// MemoryImportRunRepository keeps import runs in process memory.
type MemoryImportRunRepository struct {
	mu   sync.Mutex
	runs []models.ImportRun
}

// NewMemoryImportRunRepository creates an empty run log.
func NewMemoryImportRunRepository() *MemoryImportRunRepository {
	return &MemoryImportRunRepository{}
}

// Log appends a run.
func (r *MemoryImportRunRepository) Log(ctx context.Context, run models.ImportRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	return nil
}

// List returns the newest runs of a network first.
func (r *MemoryImportRunRepository) List(ctx context.Context, network models.Network, limit int) ([]models.ImportRun, error) {
	limit = ClampLimit(limit)

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.ImportRun, 0)
	for i := len(r.runs) - 1; i >= 0 && len(out) < limit; i-- {
		if r.runs[i].Network == network {
			out = append(out, r.runs[i])
		}
	}
	return out, nil
}

// NewMemory returns a Store backed by process memory.
func NewMemory() *Store {
	return &Store{
		Accounts: NewMemoryAccountRepository(),
		Runs:     NewMemoryImportRunRepository(),
		Ping:     func(context.Context) error { return nil },
		Close:    func(context.Context) error { return nil },
	}
}
