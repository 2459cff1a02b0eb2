package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spendwatch/spendwatch/internal/billing"
	"github.com/spendwatch/spendwatch/internal/breaker"
	"github.com/spendwatch/spendwatch/internal/secrets"
)

// newCheckCmd runs a single evaluation without a daemon: same fetches, same
// policy, verdict on stdout. Exit code 0 either way; a verdict is an answer,
// not an error.
func newCheckCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run one evaluation and print TRUE or FALSE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}
			setupLogging(cfg.Logging.Level)

			ctx := cmd.Context()

			source, err := secrets.FromConfig(cfg.Credential)
			if err != nil {
				return err
			}
			credential, err := source.Credential(ctx)
			if err != nil {
				return fmt.Errorf("resolve billing credential: %w", err)
			}

			client := billing.NewClient(cfg.Billing.Endpoint, cfg.Billing.FetchTimeout())
			eval := breaker.New(client, credential, cfg.Billing.FetchTimeout(), nil)

			if eval.Evaluate(ctx, "") {
				fmt.Println("TRUE")
			} else {
				fmt.Println("FALSE")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config YAML")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	return cmd
}
