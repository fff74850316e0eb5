// Package backend opens the account store selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/socialpulse/socialpulse/internal/config"
	"github.com/socialpulse/socialpulse/internal/database"
	"github.com/socialpulse/socialpulse/internal/mongostore"
	"github.com/socialpulse/socialpulse/internal/store"
)

// Open connects the configured driver. Postgres is migrated from
// migrationsDir before use, mongo gets its indexes.
func Open(ctx context.Context, cfg config.StoreConfig, migrationsDir string, logger *slog.Logger) (*store.Store, error) {
	switch cfg.Driver {
	case "postgres":
		dbCfg := database.DefaultConfig()
		dbCfg.URL = cfg.DatabaseURL

		logger.Info("connecting to database", "url", config.RedactURL(cfg.DatabaseURL))
		db, err := database.Connect(ctx, dbCfg)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(ctx, db, migrationsDir, logger); err != nil {
			db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		return database.NewStore(db), nil

	case "mongo":
		logger.Info("connecting to mongo", "uri", config.RedactURL(cfg.MongoURI), "database", cfg.MongoDatabase)
		client, err := mongostore.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, client.Database(cfg.MongoDatabase)); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		return mongostore.NewStore(client, cfg.MongoDatabase), nil

	case "memory":
		logger.Warn("using in-memory store; imported data is lost on exit")
		return store.NewMemory(), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
