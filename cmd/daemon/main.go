// Command handla-daemon relays list change notifications between handla
// processes over a unix socket.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/thenoetrevino/handla/internal/config"
	"github.com/thenoetrevino/handla/internal/daemon"
	"github.com/thenoetrevino/handla/internal/logging"
)

func main() {
	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	closer, err := logging.Init(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		slog.Error("failed to initialize logging", "error", err)
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	server, err := daemon.NewServer(cfg.SocketPath, daemon.DefaultConfig())
	if err != nil {
		slog.Error("failed to create daemon", "error", err)
		os.Exit(1)
	}

	slog.Info("handla daemon starting", "socket_path", cfg.SocketPath, "pid", os.Getpid())

	// Start the daemon (blocks until shutdown)
	if err := server.Start(ctx); err != nil {
		slog.Error("daemon error", "error", err)
		os.Exit(1)
	}
	server.Wait()

	slog.Info("handla daemon shutting down gracefully", server.Metrics().Snapshot().LogAttrs()...)
}
