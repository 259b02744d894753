// Command pipeline runs the batch stages in order: silver cleaning, gold
// aggregation, publication. Connection handles are scoped to the run and
// released when it completes; orchestration (scheduling, run-level retries)
// belongs to the caller.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/mlavergne/stratify/internal/config"
	"github.com/mlavergne/stratify/internal/gold"
	"github.com/mlavergne/stratify/internal/publish"
	"github.com/mlavergne/stratify/internal/silver"
	"github.com/mlavergne/stratify/pkg/database"
	"github.com/mlavergne/stratify/pkg/retry"
	"github.com/mlavergne/stratify/pkg/storage"
)

const allStages = "silver,gold,publish"

func main() {
	stages := flag.String("stages", allStages, "Comma-separated stages to run, in pipeline order")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config load failed:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).With(
		"run_id", uuid.New().String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, parseStages(*stages)); err != nil {
		logger.Error("pipeline run failed", "error", err)
		os.Exit(1)
	}

	logger.Info("pipeline run complete")
}

type stageSet map[string]bool

func parseStages(s string) stageSet {
	set := make(stageSet)
	for _, name := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			set[trimmed] = true
		}
	}
	return set
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, stages stageSet) error {
	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("storage init failed: %w", err)
	}

	policy := retry.Once(cfg.Pipeline.RetryDelayDuration())

	if stages["silver"] {
		stage := silver.NewStage(store.Bronze(), store.Silver(), policy, logger)
		if err := runStage(ctx, logger, "silver", stage.Run); err != nil {
			return err
		}
	}

	if stages["gold"] {
		stage := gold.NewStage(
			store.Silver(), store.Gold(),
			cfg.Pipeline.ClientsObject, cfg.Pipeline.PurchasesObject,
			policy, logger,
		)
		if err := runStage(ctx, logger, "gold", stage.Run); err != nil {
			return err
		}
	}

	if stages["publish"] {
		db, err := database.New(&cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("database init failed: %w", err)
		}
		defer db.Close()

		if err := db.Ping(ctx); err != nil {
			return err
		}

		publisher := publish.NewPublisher(db.Connection(), policy, logger)
		stage := publish.NewStage(store.Gold(), publisher, policy, logger)
		if err := runStage(ctx, logger, "publish", stage.Run); err != nil {
			return err
		}
	}

	return nil
}

func runStage(ctx context.Context, logger *slog.Logger, name string, fn func(context.Context) error) error {
	logger.Info("stage starting", "stage", name)
	start := time.Now()

	if err := fn(ctx); err != nil {
		return fmt.Errorf("%s stage: %w", name, err)
	}

	logger.Info("stage complete", "stage", name, "duration", time.Since(start))
	return nil
}
