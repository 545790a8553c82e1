package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/liujun01203/spdk/internal/config"
	"github.com/liujun01203/spdk/internal/logger"
	"github.com/liujun01203/spdk/internal/metrics"
	"github.com/liujun01203/spdk/internal/metrics/prometheus"
	"github.com/liujun01203/spdk/internal/nvmf/target"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the NVMe-oF target",
	Long: `Start the NVMe-oF target session core: load configuration, start every
configured transport's acceptor, and run the session poll loop until a
shutdown signal arrives.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/nvmfd/config.yaml (built-in
defaults apply if that file does not exist).`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: cfg.Logging.Output}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("nvmfd starting", "log_level", cfg.Logging.Level, "log_format", cfg.Logging.Format)

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		logger.Info("metrics enabled", "port", cfg.Metrics.Port)
	} else {
		logger.Info("metrics disabled")
	}
	sessionMetrics := prometheus.NewSessionMetrics()

	tgt, err := target.New(cfg, sessionMetrics)
	if err != nil {
		return fmt.Errorf("failed to construct target: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := tgt.Start(ctx); err != nil {
		return fmt.Errorf("failed to start transports: %w", err)
	}
	defer tgt.Stop(context.Background())

	go tgt.RunPollLoop(ctx, cfg.Session.PollInterval)

	debugSrv := startDebugServer(cfg, tgt)
	if debugSrv != nil {
		defer debugSrv.Shutdown(context.Background())
	}

	for _, tc := range cfg.Transports {
		logger.Info("transport configured", logger.Transport(tc.Name), "addr", tc.Addr)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("nvmfd running, press Ctrl+C to stop")
	<-sigChan
	signal.Stop(sigChan)
	logger.Info("shutdown signal received, stopping transports")
	cancel()

	return nil
}

// startDebugServer starts the admin HTTP endpoint "sessions list" polls
// (/sessions) and, if metrics are enabled, the Prometheus scrape
// endpoint (/metrics). Runs on cfg.Metrics.Port regardless of whether
// metrics are enabled, since session introspection does not depend on
// Prometheus being wired up.
func startDebugServer(cfg *config.TargetConfig, tgt *target.Target) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(tgt.ActiveSessions())
	})
	if cfg.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	}

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Metrics.Port), Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("debug server stopped", logger.Err(err))
		}
	}()
	logger.Info("debug/admin endpoint listening", "port", cfg.Metrics.Port)
	return srv
}
