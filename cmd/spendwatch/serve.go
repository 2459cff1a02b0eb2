package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/spendwatch/spendwatch/internal/billing"
	"github.com/spendwatch/spendwatch/internal/breaker"
	"github.com/spendwatch/spendwatch/internal/monitoring"
	"github.com/spendwatch/spendwatch/internal/secrets"
	"github.com/spendwatch/spendwatch/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the circuit-breaker daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}
			setupLogging(cfg.Logging.Level)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			source, err := secrets.FromConfig(cfg.Credential)
			if err != nil {
				return err
			}
			credential, err := source.Credential(ctx)
			if err != nil {
				return fmt.Errorf("resolve billing credential: %w", err)
			}

			telemetry, err := monitoring.NewTelemetry(cfg.Monitoring.TelemetryPath)
			if err != nil {
				return fmt.Errorf("open telemetry log: %w", err)
			}

			client := billing.NewClient(cfg.Billing.Endpoint, cfg.Billing.FetchTimeout())
			eval := breaker.New(client, credential, cfg.Billing.FetchTimeout(), telemetry)
			srv := server.New(cfg.Server, eval)

			if err := srv.Listen(); err != nil {
				return err
			}

			var sidecar *monitoring.Sidecar
			if cfg.Monitoring.MetricsEnabled {
				sidecar = monitoring.NewSidecar(cfg.Monitoring.MetricsAddr)
				go func() {
					if err := sidecar.Start(); err != nil {
						log.Error().Err(err).Msg("monitoring: sidecar failed")
					}
				}()
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Serve(ctx)
			}()

			select {
			case <-ctx.Done():
				log.Info().Msg("shutting down")
			case err := <-errCh:
				if err != nil {
					return err
				}
				return nil
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
			defer cancel()

			if sidecar != nil {
				_ = sidecar.Shutdown(shutdownCtx)
			}
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("shutdown: connections force-closed")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config YAML")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "override listen port")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	return cmd
}
