package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go-price-pilot/config"
	"go-price-pilot/internal/pricing"
	"go-price-pilot/internal/repository"
	"go-price-pilot/pkg/database"
	"go-price-pilot/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// normalize-records rewrites rows left behind by older schema versions so
// that every links column holds a clean array and the active margin column
// is never NULL.
func main() {
	dryRun := flag.Bool("dry-run", false, "only count rows that would be rewritten")
	flag.Parse()

	// 1. Load Env
	envErr := godotenv.Load()
	cfg := config.LoadEnv()

	log, err := logger.New(cfg.Logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()
	if envErr != nil {
		log.Warn(".env file not found, relying on system env")
	}

	strategy, err := pricing.ParseStrategy(cfg.Pricing.Strategy)
	if err != nil {
		log.Fatal("Invalid pricing configuration", zap.Error(err))
	}

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.Postgres, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	ctx := context.Background()
	if *dryRun {
		db = db.Begin()
		defer db.Rollback()
	}

	// 3. Rewrite
	n, err := repository.NewProductRepo(db, strategy, log).NormalizeStored(ctx)
	if err != nil {
		log.Fatal("Failed to normalize records", zap.Error(err))
	}

	if *dryRun {
		log.Info("Dry run finished, changes rolled back", zap.Int("rows", n))
		return
	}
	log.Info("Records normalized", zap.Int("rows", n))
}
