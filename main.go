// Package main is the entry point for the tap game API server.
// It initializes all dependencies and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"gussgame/src/app/server"
	"gussgame/src/core/ports"
	"gussgame/src/infra/config"
	"gussgame/src/infra/db"
	"gussgame/src/infra/logger"
	"gussgame/src/infra/metrics"
	"gussgame/src/infra/repo"
)

func main() {
	if err := run(); err != nil {
		log.Printf("fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A local .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log)
	log.Info("starting application",
		"port", cfg.Server.Port,
		"log_level", cfg.Log.Level,
		"storage", cfg.Database.Storage,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gameRepo, closeRepo, err := openRepository(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer closeRepo()

	srv := server.New(cfg, log, gameRepo, metrics.NewPrometheus())

	// Run blocks until SIGINT or SIGTERM
	return srv.Run(ctx)
}

// openRepository connects the configured storage backend.
func openRepository(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (ports.GameRepository, func(), error) {
	if cfg.Storage == config.StorageMemory {
		log.Warn("using in-memory storage; state is lost on restart")
		return repo.NewMemoryRepository(nil), func() {}, nil
	}

	pg, err := db.New(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	if cfg.AutoMigrate {
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, nil, err
		}
	}
	return repo.NewPostgresRepository(pg, log), pg.Close, nil
}
