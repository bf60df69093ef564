package store

import (
	"fmt"

	"github.com/dgallion1/hsspgest/internal/config"
	"github.com/dgallion1/hsspgest/internal/pathstore"
)

// Open returns the backend selected by cfg.StoreBackend.
func Open(cfg config.Config) (Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory, "":
		return NewMemory(), nil
	case config.BackendSQLite:
		return OpenSQLite(cfg.SQLitePath)
	case config.BackendRedis:
		return OpenRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisTTL)
	case config.BackendPathstore:
		return NewPathstore(pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey), cfg.PathstorePrefix), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
