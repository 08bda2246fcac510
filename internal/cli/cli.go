package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/handla/internal/app"
	"github.com/thenoetrevino/handla/internal/cli/styles"
	"github.com/thenoetrevino/handla/internal/config"
	"github.com/thenoetrevino/handla/internal/logging"
)

// CLI represents the CLI application context
type CLI struct {
	App    *app.App // Application container with services
	Config *config.Config

	logCloser io.Closer
	// false when the App was injected by the caller, who then closes it
	owned bool
}

type appKey struct{}

// WithApp returns a context carrying an already built App. Commands run
// with such a context use it instead of bootstrapping their own.
func WithApp(ctx context.Context, a *app.App) context.Context {
	return context.WithValue(ctx, appKey{}, a)
}

// NewCLI loads the configuration, sets up logging and opens the database
// and the change feed.
func NewCLI(ctx context.Context) (*CLI, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logCloser, err := logging.Init(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	styles.Init(cfg.ColorScheme)

	application, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		_ = logCloser.Close()
		return nil, err
	}

	return &CLI{
		App:       application,
		Config:    cfg,
		logCloser: logCloser,
		owned:     true,
	}, nil
}

// GetCLIFromContext returns a CLI around the App stored with WithApp, or
// bootstraps a new one.
func GetCLIFromContext(ctx context.Context) (*CLI, error) {
	if ctx != nil {
		if a, ok := ctx.Value(appKey{}).(*app.App); ok && a != nil {
			styles.Init(config.DefaultColorScheme())
			return &CLI{App: a, Config: config.Default()}, nil
		}
	} else {
		ctx = context.Background()
	}
	return NewCLI(ctx)
}

// Close cleans up CLI resources
func (c *CLI) Close() error {
	if !c.owned {
		return nil
	}
	var errs []error
	if c.App != nil {
		errs = append(errs, c.App.Close())
	}
	if c.logCloser != nil {
		errs = append(errs, c.logCloser.Close())
	}
	return errors.Join(errs...)
}

// Begin resolves the CLI for cmd together with the formatter chosen by its
// output flags. A returned error has already been reported.
func Begin(cmd *cobra.Command) (*CLI, *OutputFormatter, error) {
	formatter := FormatterFor(cmd)

	cliInstance, err := GetCLIFromContext(cmd.Context())
	if err != nil {
		d := Describe(err)
		if d.Exit == ExitError {
			d.Code = "INITIALIZATION_ERROR"
		}
		return nil, formatter, FailWith(formatter, d, err)
	}
	return cliInstance, formatter, nil
}
