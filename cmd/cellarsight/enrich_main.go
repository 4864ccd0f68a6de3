package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/aionysus/cellarsight/internal/application"
	"github.com/aionysus/cellarsight/internal/config"
	"github.com/aionysus/cellarsight/internal/infrastructure/db"
	"github.com/aionysus/cellarsight/internal/telemetry"
	"github.com/aionysus/cellarsight/internal/valuation"
)

func runEnrich(cmd *cobra.Command, args []string) error {
	appCfg, err := loadAppConfig(cmd)
	if err != nil {
		return err
	}

	tables, err := config.LoadValuationTables(appCfg.Valuation.TablesPath)
	if err != nil {
		return fmt.Errorf("failed to load valuation tables: %w", err)
	}

	manager, err := db.NewManager(appCfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to catalog database: %w", err)
	}
	defer manager.Close()

	if !manager.IsEnabled() {
		return fmt.Errorf("database is disabled; set PG_ENABLED=true and PG_DSN")
	}

	enrichCfg := application.EnrichConfig{
		Workers:       appCfg.Batch.Workers,
		ItemTimeout:   appCfg.Batch.ItemTimeout,
		WriteRPS:      appCfg.Batch.WriteRPS,
		WriteBurst:    appCfg.Batch.WriteBurst,
		RetryAttempts: appCfg.Batch.RetryAttempts,
		RetryBackoff:  appCfg.Batch.RetryBackoff,
		MaxFailedIDs:  application.DefaultEnrichConfig().MaxFailedIDs,
	}

	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		enrichCfg.Workers = workers
	}
	enrichCfg.Limit, _ = cmd.Flags().GetInt("limit")
	enrichCfg.DryRun, _ = cmd.Flags().GetBool("dry-run")
	topN, _ := cmd.Flags().GetInt("top")

	src := valuation.NewSource()
	if seed, _ := cmd.Flags().GetInt64("seed"); seed != 0 {
		log.Info().Int64("seed", seed).Msg("Using fixed random seed")
		src = valuation.NewSeededSource(seed)
	}

	pipeline := application.NewEnrichPipeline(
		manager.Repository(), tables.NewResolver(), src, telemetry.NewMetrics(), enrichCfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("enrichment run failed: %w", err)
	}

	report, err := application.BuildRunReport(ctx, manager.Repository().Investments, summary, topN)
	if err != nil {
		// The run itself succeeded; reporting is cosmetic.
		log.Warn().Err(err).Msg("Failed to build run report")
		fmt.Printf("Run %s: %d processed, %d skipped of %d items\n",
			summary.RunID, summary.Processed, summary.Skipped, summary.Total)
		return nil
	}

	fmt.Print(report.Format())
	return nil
}

func loadAppConfig(cmd *cobra.Command) (*db.AppConfig, error) {
	configPath, _ := cmd.Flags().GetString("config")

	appCfg, err := db.LoadAppConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := appCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return appCfg, nil
}
