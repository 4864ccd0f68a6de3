package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/aionysus/cellarsight/internal/application"
	"github.com/aionysus/cellarsight/internal/cache"
	"github.com/aionysus/cellarsight/internal/infrastructure/db"
	httpserver "github.com/aionysus/cellarsight/internal/interfaces/http"
	"github.com/aionysus/cellarsight/internal/telemetry"
)

func runMonitor(cmd *cobra.Command, args []string) error {
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

	serverCfg := httpserver.DefaultServerConfig()
	serverCfg.Host = appCfg.Monitor.Host
	serverCfg.Port = appCfg.Monitor.Port
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		serverCfg.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		serverCfg.Port = port
	}

	recordCache := cache.NewAuto(appCfg.Cache.Redis.Addr, appCfg.Cache.Redis.DB)
	ttl := time.Duration(appCfg.Cache.Redis.DefaultTTLSeconds) * time.Second
	reader := application.NewRecordReader(manager.Repository().Investments, recordCache, ttl)

	server, err := httpserver.NewServer(serverCfg, manager.Health(), reader, telemetry.NewMetrics())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down monitor server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
