package repository

import (
	"context"
	"fmt"

	"github.com/devfolio/portfolio/backend/internal/config"
	"github.com/devfolio/portfolio/backend/internal/database"
	"github.com/devfolio/portfolio/backend/pkg/logger"
)

// Open returns the repository selected by STORE_DRIVER and a function that
// releases it.
func Open(ctx context.Context, cfg *config.Config, retry database.Retry) (Repository, func(context.Context) error, error) {
	switch cfg.Store.Driver {
	case "memory":
		logger.Warnf("using in-memory contact store; submissions are lost on restart")
		return NewMemoryRepo(), func(context.Context) error { return nil }, nil
	case "mongo", "":
		client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, retry)
		if err != nil {
			return nil, nil, err
		}
		repo := NewMongoRepo(client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection))
		ictx, cancel := context.WithTimeout(ctx, cfg.MongoDB.Timeout)
		defer cancel()
		if err := repo.EnsureIndexes(ictx); err != nil {
			logger.Warnf("could not create contact indexes: %v", err)
		}
		logger.Infof("connected to MongoDB database=%s collection=%s", cfg.MongoDB.Database, cfg.MongoDB.Collection)
		return repo, client.Disconnect, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}
