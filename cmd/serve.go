package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/khanhnv2901/srvdiag/internal/api"
	"github.com/khanhnv2901/srvdiag/internal/checker"
	"github.com/khanhnv2901/srvdiag/internal/metrics"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the diagnostic as an HTTP API with Prometheus metrics",
	Long: `Serve the diagnostic over HTTP:
  GET /api/v1/diagnostics   latest report (?format=text, ?fresh=true)
  GET /api/v1/health        liveness
  GET /metrics              Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx := getAppContext(cmd)
		cfg := appCtx.Config

		opts, err := cfg.Check.ValidOptions()
		if err != nil {
			return err
		}

		collector := metrics.NewCollector()
		diagnostics := &diagnosticsService{
			checks:  checker.Default(newCommandRunner(cfg.Check.CommandTimeout(), appCtx.Logger), opts),
			logger:  appCtx.Logger,
			metrics: collector,
		}

		logger := appCtx.Logger.Desugar()
		defer func() {
			_ = logger.Sync()
		}()

		server := api.NewServer(api.Config{
			Diagnostics: diagnostics,
			Metrics:     collector.Handler(),
			CacheTTL:    time.Duration(cfg.Serve.CacheTTLSecs) * time.Second,
			Logger:      logger,
			RateLimit:   cfg.Serve.RateLimit,
			RateBurst:   cfg.Serve.RateBurst,
		})
		defer server.Close()

		httpServer := &http.Server{
			Addr:              cfg.Serve.Addr,
			Handler:           server,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      2 * time.Minute,
			IdleTimeout:       120 * time.Second,
		}

		out := cmd.OutOrStdout()
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Fprintf(out, "%s Diagnostic API listening on %s (port %d, service %s)\n", colorInfo("→"), cfg.Serve.Addr, opts.Port, opts.Service)
			fmt.Fprintf(out, "%s Press Ctrl+C to gracefully shutdown\n", colorInfo("→"))
			serverErrors <- httpServer.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
		case sig := <-shutdown:
			fmt.Fprintf(out, "\n%s Received signal %v, initiating graceful shutdown...\n", colorInfo("→"), sig)

			ctx, cancel := context.WithTimeout(context.Background(), cfg.Serve.ShutdownTimeout)
			defer cancel()

			if err := httpServer.Shutdown(ctx); err != nil {
				if closeErr := httpServer.Close(); closeErr != nil {
					return fmt.Errorf("failed to gracefully shutdown server: %w (close error: %v)", err, closeErr)
				}
				return fmt.Errorf("failed to gracefully shutdown server: %w", err)
			}

			fmt.Fprintf(out, "%s Server shutdown complete\n", colorInfo("✓"))
		}

		return nil
	},
}

func init() {
	addCheckFlags(serveCmd.Flags())
	serveCmd.Flags().StringVar(&cliConfig.Serve.Addr, "addr", cliConfig.Serve.Addr, "address for the API server")
	serveCmd.Flags().IntVar(&cliConfig.Serve.CacheTTLSecs, "cache-ttl", cliConfig.Serve.CacheTTLSecs, "seconds to reuse the last report")
	serveCmd.Flags().IntVar(&cliConfig.Serve.RateLimit, "rate-limit", cliConfig.Serve.RateLimit, "diagnostic requests per second per IP (0 = disabled)")
	serveCmd.Flags().IntVar(&cliConfig.Serve.RateBurst, "rate-burst", cliConfig.Serve.RateBurst, "rate limit burst size")
	serveCmd.Flags().DurationVar(&cliConfig.Serve.ShutdownTimeout, "shutdown-timeout", cliConfig.Serve.ShutdownTimeout, "graceful shutdown timeout")
}

// diagnosticsService runs the suite for the API and feeds the metrics collector.
type diagnosticsService struct {
	checks  []checker.Checker
	logger  *zap.SugaredLogger
	metrics *metrics.Collector
}

func (s *diagnosticsService) Run(ctx context.Context) checker.Report {
	suite := &checker.Suite{
		Checkers: s.checks,
		Logger:   s.logger,
		OnResult: s.metrics.ObserveResult,
	}
	rep := suite.Run(ctx)
	s.metrics.ObserveRun()
	if rep.Failed() {
		_, _, fail := rep.Counts()
		s.logger.Warnw("diagnostic run found failures", "run_id", rep.ID, "failed", fail)
	}
	return rep
}
