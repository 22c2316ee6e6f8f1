// cmd/server/main.go - HTTP entry point for the attendance scraper
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/valpere/AttendScrapexter/internal/config"
	"github.com/valpere/AttendScrapexter/internal/monitoring"
	"github.com/valpere/AttendScrapexter/internal/scraper"
	"github.com/valpere/AttendScrapexter/internal/utils"
)

// Version information (set by build flags)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func newRootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:           "attendscrape-server",
		Short:         "Serve MITS IMS attendance over HTTP",
		Version:       fmt.Sprintf("%s (built %s, commit %s)", version, buildTime, gitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile == "" {
				configFile = os.Getenv("ATTENDSCRAPE_CONFIG")
			}
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML config file (default $ATTENDSCRAPE_CONFIG)")
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, err := utils.NewZapLogger(utils.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Name:   "attendscrape",
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	factory, err := scraper.NewFactory(cfg)
	if err != nil {
		return err
	}

	pool := factory.NewPool(logger.WithField("component", "browser"))
	if err := pool.Start(ctx); err != nil {
		logger.Errorf("browser launch failed: %v", err)
		return err
	}
	defer func() {
		if err := pool.Stop(); err != nil {
			logger.Warnf("browser shutdown: %v", err)
		}
	}()

	metrics := monitoring.NewMetricsManager(monitoring.MetricsConfig{
		EnableGoMetrics:      true,
		EnableProcessMetrics: true,
	})
	metrics.RegisterPoolStats(pool.Stats)

	health := monitoring.NewHealthReporter(monitoring.HealthConfig{Version: version, Pool: pool})
	health.RegisterCheck("browsing_contexts", monitoring.ContextLeakHealthCheck(pool))
	health.RegisterCheck("goroutines", monitoring.GoroutineHealthCheck(10_000))

	service := factory.NewService(pool, metrics, logger.WithField("component", "scraper"))

	srv := NewServer(Deps{
		Config:  cfg,
		Scraper: service,
		Health:  health,
		Metrics: metrics,
		Logger:  logger.WithField("component", "http"),
	})
	httpServer := srv.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s (max %d concurrent scrapes)", httpServer.Addr, cfg.Browser.MaxConcurrent)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("forced shutdown: %v", err)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
