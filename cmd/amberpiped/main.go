// Command amberpiped is the long-running pipeline daemon. It watches the
// configured directory, processes assets as they arrive, and answers CLI
// requests over the IPC socket.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"amberpipe/internal/config"
	"amberpipe/internal/daemon"
	"amberpipe/internal/ipc"
	"amberpipe/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var noWatch bool
	flag.StringVar(&configPath, "config", "", "configuration file path")
	flag.BoolVar(&noWatch, "no-watch", false, "start without monitoring; wait for an explicit start")
	flag.Parse()

	// A .env next to the binary can override the environment during
	// development. Absence is not an error.
	_ = godotenv.Load()

	cfg, resolvedPath, exists, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logger, err := logging.NewForDir(cfg.Paths.LogDir, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	if exists {
		logger.Info("configuration loaded", logging.String("path", resolvedPath))
	} else {
		logger.Info("no configuration file found, using defaults")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := daemon.New(cfg, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	server, err := ipc.NewServer(ctx, cfg.Paths.SocketPath, d, logger)
	if err != nil {
		return err
	}
	server.Serve()
	defer server.Close()

	if !noWatch {
		if err := d.Start(ctx); err != nil {
			return err
		}
	}

	logger.Info("amberpiped ready",
		logging.String("socket", cfg.Paths.SocketPath),
		logging.String("watch_dir", cfg.Paths.WatchDir))

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}
