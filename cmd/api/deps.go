package main

import (
	"context"
	"log"
	"time"

	"grocery/internal/domain/item"
	"grocery/internal/infrastructure/sqlstore"
	httphandlers "grocery/internal/interfaces/http"
	"grocery/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *sqlstore.DB

	ItemService *item.Service
	ItemHandler *httphandlers.ItemHandler

	Retention item.Retention
}

// NewDependencies opens the database, applies the schema and builds the
// service graph.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	retention, err := item.NewRetention(cfg.Sweep.RetentionDays, cfg.Sweep.Timezone)
	if err != nil {
		return nil, err
	}

	db, err := sqlstore.New(cfg.Database.DSN(), cfg.Database.MaxConnections)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to %s database", db.System())

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := db.Migrate(migrateCtx); err != nil {
		db.Close()
		return nil, err
	}

	itemRepo := sqlstore.NewItemRepository(db)
	itemService := item.NewService(itemRepo, retention)

	return &Dependencies{
		DB:          db,
		ItemService: itemService,
		ItemHandler: httphandlers.NewItemHandler(itemService),
		Retention:   retention,
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
