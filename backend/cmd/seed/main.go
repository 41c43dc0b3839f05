package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"profilegraph/backend/internal/graph"
	"profilegraph/backend/pkg/config"
	"profilegraph/backend/pkg/logger"
)

func main() {
	reset := flag.Bool("reset", false, "Drop every profile and friendship before seeding")
	skipConfirm := flag.Bool("y", false, "Skip confirmation prompt")
	file := flag.String("file", "", "JSON fixture to seed (built-in fixture when empty)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting seed...", zap.String("backend", cfg.Backend))

	// Warning prompt
	if *reset && !*skipConfirm {
		log.Warn("WARNING: -reset will DELETE ALL profiles and friendships!")
		log.Warn("This action cannot be undone.")
		// Use fmt.Print for user input prompt (needs to go to stdout)
		fmt.Print("Are you sure you want to continue? (yes/no): ")
		var response string
		fmt.Scanln(&response)
		if response != "yes" && response != "y" {
			log.Info("Aborted.")
			return
		}
	}

	if err := run(context.Background(), cfg, *reset, *file, log); err != nil {
		log.Error("Seed failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, reset bool, file string, log *zap.Logger) error {
	fixture := defaultFixture()
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("opening fixture: %w", err)
		}
		fixture, err = loadFixture(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("reading fixture: %w", err)
		}
	}

	store, err := graph.Open(ctx, cfg, reset, log)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	res, err := seed(ctx, store, fixture, log)
	if err != nil {
		return err
	}

	log.Info("Seed complete",
		zap.Int("profiles_created", res.ProfilesCreated),
		zap.Int("profiles_skipped", res.ProfilesSkipped),
		zap.Int("friendships", res.Friendships),
	)
	return nil
}
