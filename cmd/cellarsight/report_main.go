package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aionysus/cellarsight/internal/application"
	"github.com/aionysus/cellarsight/internal/infrastructure/db"
)

func runReport(cmd *cobra.Command, args []string) error {
	appCfg, err := loadAppConfig(cmd)
	if err != nil {
		return err
	}

	manager, err := db.NewManager(appCfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to catalog database: %w", err)
	}
	defer manager.Close()

	if !manager.IsEnabled() {
		return fmt.Errorf("database is disabled; set PG_ENABLED=true and PG_DSN")
	}

	topN, _ := cmd.Flags().GetInt("top")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	investments := manager.Repository().Investments

	count, err := investments.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count investment records: %w", err)
	}

	report, err := application.BuildRunReport(ctx, investments, nil, topN)
	if err != nil {
		return err
	}

	fmt.Printf("%d investment records persisted\n\n", count)
	fmt.Print(report.Format())
	return nil
}
