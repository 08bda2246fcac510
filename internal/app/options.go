package app

import (
	"log/slog"

	"github.com/thenoetrevino/handla/internal/board"
	"github.com/thenoetrevino/handla/internal/events"
	recipeservice "github.com/thenoetrevino/handla/internal/services/recipe"
)

// Option is a functional option for configuring App initialization
type Option func(*appConfig)

// appConfig holds the configuration for App initialization
type appConfig struct {
	bus          events.Bus
	fetcher      recipeservice.Fetcher
	defaultStore board.StoreKey
	logger       *slog.Logger
	closers      []func() error
}

// WithEventBus sets the change notification transport. The app closes it.
func WithEventBus(bus events.Bus) Option {
	return func(cfg *appConfig) {
		cfg.bus = bus
	}
}

// WithFetcher sets the recipe scraper client
func WithFetcher(f recipeservice.Fetcher) Option {
	return func(cfg *appConfig) {
		cfg.fetcher = f
	}
}

// WithDefaultStore sets the store new lists start from
func WithDefaultStore(key board.StoreKey) Option {
	return func(cfg *appConfig) {
		cfg.defaultStore = key
	}
}

// WithLogger sets the logger for the application
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *appConfig) {
		cfg.logger = logger
	}
}

// withCloser registers cleanup to run on Close, after the bus is closed.
func withCloser(fn func() error) Option {
	return func(cfg *appConfig) {
		cfg.closers = append(cfg.closers, fn)
	}
}
