// Package mongostore persists accounts and import runs in MongoDB, one
// document per account with the history embedded.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/socialpulse/socialpulse/internal/models"
	"github.com/socialpulse/socialpulse/internal/store"
)

const (
	accountsCollection = "accounts"
	runsCollection     = "import_runs"
)

// Connect opens a client and verifies the primary is reachable.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}

// NewStore returns the repository bundle over database dbName.
func NewStore(client *mongo.Client, dbName string) *store.Store {
	db := client.Database(dbName)
	return &store.Store{
		Accounts: NewAccountRepository(db),
		Runs:     NewImportRunRepository(db),
		Ping: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return client.Ping(ctx, readpref.Primary())
		},
		Close: client.Disconnect,
	}
}

// EnsureIndexes creates the indexes the repositories rely on. The unique
// (network, name) index is what makes concurrent upserts safe.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(accountsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "network", Value: 1}, {Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create accounts index: %w", err)
	}

	_, err = db.Collection(runsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "network", Value: 1}, {Key: "started_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create import_runs index: %w", err)
	}
	return nil
}

// AccountRepository stores accounts in a MongoDB collection.
type AccountRepository struct {
	coll *mongo.Collection
}

// NewAccountRepository creates a repository over the accounts collection.
func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(accountsCollection)}
}

// List returns the accounts of a network ordered by name, without history.
func (r *AccountRepository) List(ctx context.Context, network models.Network) ([]models.Account, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetProjection(bson.M{"history": 0})

	cursor, err := r.coll.Find(ctx, bson.M{"network": network}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	accounts := []models.Account{}
	if err := cursor.All(ctx, &accounts); err != nil {
		return nil, fmt.Errorf("failed to decode accounts: %w", err)
	}
	return accounts, nil
}

// Get returns one account with its history.
func (r *AccountRepository) Get(ctx context.Context, network models.Network, id string) (*models.Account, error) {
	var account models.Account
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "network": network}).Decode(&account)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// Save upserts the account on (network, name) and reads back the stored id.
func (r *AccountRepository) Save(ctx context.Context, account *models.Account) error {
	id := account.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(bson.M{"_id": 1, "created_at": 1, "updated_at": 1})

	var saved struct {
		ID        string    `bson:"_id"`
		CreatedAt time.Time `bson:"created_at"`
		UpdatedAt time.Time `bson:"updated_at"`
	}
	err := r.coll.FindOneAndUpdate(ctx, accountFilter(account), accountUpdate(account, id, now), opts).Decode(&saved)
	if err != nil {
		return fmt.Errorf("failed to save account %q: %w", account.Name, err)
	}

	account.ID = saved.ID
	account.CreatedAt = saved.CreatedAt
	account.UpdatedAt = saved.UpdatedAt
	return nil
}

func accountFilter(account *models.Account) bson.M {
	return bson.M{"network": account.Network, "name": account.Name}
}

// accountUpdate replaces everything but the identity and creation time.
func accountUpdate(account *models.Account, id string, now time.Time) bson.M {
	history := account.History
	if history == nil {
		history = []models.Sample{}
	}
	return bson.M{
		"$set": bson.M{
			"username":    account.Username,
			"link":        account.Link,
			"channel_url": account.ChannelURL,
			"category":    account.Category,
			"history":     history,
			"updated_at":  now,
		},
		"$setOnInsert": bson.M{
			"_id":        id,
			"created_at": now,
		},
	}
}

// ImportRunRepository stores import runs in a MongoDB collection.
type ImportRunRepository struct {
	coll *mongo.Collection
}

// NewImportRunRepository creates a repository over the import_runs collection.
func NewImportRunRepository(db *mongo.Database) *ImportRunRepository {
	return &ImportRunRepository{coll: db.Collection(runsCollection)}
}

// Log stores a finished import run.
func (r *ImportRunRepository) Log(ctx context.Context, run models.ImportRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if _, err := r.coll.InsertOne(ctx, run); err != nil {
		return fmt.Errorf("failed to log import run: %w", err)
	}
	return nil
}

// List returns the newest runs of a network first.
func (r *ImportRunRepository) List(ctx context.Context, network models.Network, limit int) ([]models.ImportRun, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetLimit(int64(store.ClampLimit(limit)))

	cursor, err := r.coll.Find(ctx, bson.M{"network": network}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}

	runs := []models.ImportRun{}
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, fmt.Errorf("failed to decode import runs: %w", err)
	}
	return runs, nil
}
