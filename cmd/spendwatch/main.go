package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/spendwatch/spendwatch/internal/config"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "spendwatch",
		Short:   "spendwatch — billing circuit-breaker daemon",
		Long:    "spendwatch answers one question over TCP: has any billable cost\nbeen incurred on the metered account today or yesterday (UTC)?",
		Version: version,
	}

	root.AddCommand(
		newServeCmd(),
		newCheckCmd(),
		newStatusCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads .env files, then the YAML config (or defaults when no
// file is given).
func loadConfig(path string) (*config.Config, error) {
	// Best effort; missing .env is the normal case.
	_ = godotenv.Load()

	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// setupLogging configures the global zerolog logger. Console output goes to
// stderr so the command port and stdout stay clean for automation.
func setupLogging(level string) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
