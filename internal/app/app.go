// Package app wires the database, the change feed and the services
// together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/thenoetrevino/handla/internal/board"
	"github.com/thenoetrevino/handla/internal/config"
	"github.com/thenoetrevino/handla/internal/database"
	"github.com/thenoetrevino/handla/internal/events"
	"github.com/thenoetrevino/handla/internal/recipe"
	listservice "github.com/thenoetrevino/handla/internal/services/list"
	recipeservice "github.com/thenoetrevino/handla/internal/services/recipe"
)

// App holds all application services and provides dependency injection.
// This is the main application container that manages service lifecycles.
type App struct {
	// Repository layer (direct database access)
	repo database.DataStore

	// Change notifications between processes
	bus events.Bus

	logger  *slog.Logger
	closers []func() error

	// Service layer (business logic)
	ListService   listservice.Service
	RecipeService recipeservice.Service
}

// New creates a new App with all services initialized. The repository
// should publish through the same bus that is passed with WithEventBus.
func New(repo database.DataStore, opts ...Option) *App {
	cfg := &appConfig{
		defaultStore: board.DefaultStore,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.bus == nil {
		cfg.bus = events.NewHub()
	}

	return &App{
		repo:          repo,
		bus:           cfg.bus,
		logger:        cfg.logger,
		closers:       cfg.closers,
		ListService:   listservice.NewService(repo, cfg.bus, listservice.WithDefaultStore(cfg.defaultStore)),
		RecipeService: recipeservice.NewService(repo, cfg.bus, cfg.fetcher),
	}
}

// Bootstrap opens the database and the configured change feed and builds
// the App. A daemon that is not running only disables live updates.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.InitDB(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	bus, closeBus, err := connectBus(ctx, cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	opts := []Option{
		WithEventBus(bus),
		WithDefaultStore(board.StoreKey(cfg.DefaultStore)),
		withCloser(closeBus),
		withCloser(db.Close),
	}

	if cfg.Recipe.ServiceURL != "" {
		fetcher, err := recipe.NewFetcher(cfg.Recipe.ServiceURL, recipe.WithTimeout(cfg.Recipe.Timeout))
		if err != nil {
			_ = bus.Close()
			_ = closeBus()
			_ = db.Close()
			return nil, err
		}
		opts = append(opts, WithFetcher(fetcher))
	}

	return New(database.NewRepository(db, bus), opts...), nil
}

// connectBus picks the change feed transport. The returned func releases
// whatever the bus does not own itself.
func connectBus(ctx context.Context, cfg *config.Config) (events.Bus, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Feed {
	case config.FeedRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		return events.NewRedisFeed(rdb), rdb.Close, nil

	case config.FeedDaemon:
		client := events.NewClient(cfg.SocketPath)
		if err := client.Connect(ctx); err != nil {
			derr := events.ClassifyDaemonError(err)
			slog.Debug("live updates disabled", "reason", derr.Message, "hint", derr.Hint)
			_ = client.Close()
			return events.NewHub(), noop, nil
		}
		return client, noop, nil

	default:
		return events.NewHub(), noop, nil
	}
}

// Repo returns the underlying repository for direct database access.
func (a *App) Repo() database.DataStore {
	return a.repo
}

// Bus returns the change notification transport.
func (a *App) Bus() events.Bus {
	return a.bus
}

// Close releases the bus and everything registered at construction.
func (a *App) Close() error {
	errs := []error{a.bus.Close()}
	for _, fn := range a.closers {
		errs = append(errs, fn())
	}
	return errors.Join(errs...)
}
