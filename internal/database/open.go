package database

import (
	"context"
	"fmt"

	"apiary-api-server/config"
	"apiary-api-server/internal/store"
	"apiary-api-server/internal/store/memstore"
)

// Open returns the store selected by store.driver.
func Open(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case "memory":
		return memstore.New(), nil
	case "mongo", "":
		return Connect(ctx, cfg.Mongo)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
