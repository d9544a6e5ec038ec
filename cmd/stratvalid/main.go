package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	appName = "stratvalid"
	version = "v1.3.0"
)

func main() {
	// .env is optional; real deployments configure via flags and files
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Statistical validation framework for backtested trading strategies",
		Version: version,
		Long: `stratvalid decides whether a candidate strategy's backtest performance
looks like genuine skill rather than noise, overfitting, or
multiple-comparison luck.

Five validators run per candidate: walk-forward stability, block-bootstrap
confidence intervals, Bonferroni-style multiple-comparison correction,
train/validation/test calendar splits, and baseline comparison against
buy-and-hold, equal-weight and risk-parity references.`,
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a batch of backtest reports",
		Long:  "Runs the full validator pipeline over a JSON batch of backtest reports and writes verdict artifacts",
		RunE:  runValidate,
	}
	validateCmd.Flags().String("reports", "", "Path to the backtest reports JSON file (required)")
	validateCmd.Flags().String("config", "", "Validation config yaml (defaults apply when omitted)")
	validateCmd.Flags().String("out", "artifacts/validation", "Artifact output directory")
	validateCmd.Flags().Int("workers", 4, "Concurrent strategy validations")
	validateCmd.Flags().Bool("strict", false, "Reject reports that cannot be date-filtered")
	validateCmd.Flags().String("redis", "", "Redis address for the shared baseline cache (optional)")
	validateCmd.Flags().String("postgres", "", "Postgres DSN for the verdict audit store (optional)")
	validateCmd.Flags().Int64("seed", 0, "Fixed RNG seed for reproducible bootstrap runs (0 = clock)")
	validateCmd.Flags().String("returns-dir", "", "Directory of per-symbol return CSVs for baselines (synthetic data when omitted)")
	_ = validateCmd.MarkFlagRequired("reports")

	baselinesCmd := &cobra.Command{
		Use:   "baselines",
		Short: "Compute and print baseline reference metrics",
		Long:  "Computes buy-and-hold, equal-weight and risk-parity baselines over a period without validating anything",
		RunE:  runBaselines,
	}
	baselinesCmd.Flags().String("config", "", "Validation config yaml")
	baselinesCmd.Flags().String("from", "", "Period start (2006-01-02, required)")
	baselinesCmd.Flags().String("to", "", "Period end, exclusive (required)")
	baselinesCmd.Flags().String("returns-dir", "", "Directory of per-symbol return CSVs (synthetic data when omitted)")
	baselinesCmd.Flags().String("redis", "", "Redis address for the shared baseline cache (optional)")
	_ = baselinesCmd.MarkFlagRequired("from")
	_ = baselinesCmd.MarkFlagRequired("to")

	monitorCmd := &cobra.Command{
		Use:   "monitor",
		Short: "Start the monitoring HTTP server",
		Long:  "Serves /health, /metrics, /verdicts and the /ws/progress stream",
		RunE:  runMonitor,
	}
	monitorCmd.Flags().String("addr", ":8090", "Listen address")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(baselinesCmd)
	rootCmd.AddCommand(monitorCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
