package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sawpanic/stratvalid/internal/artifacts"
	"github.com/sawpanic/stratvalid/internal/config"
	logx "github.com/sawpanic/stratvalid/internal/log"
	"github.com/sawpanic/stratvalid/internal/persistence"
	"github.com/sawpanic/stratvalid/internal/report"
	"github.com/sawpanic/stratvalid/internal/universe"
	"github.com/sawpanic/stratvalid/internal/validation"
	"github.com/sawpanic/stratvalid/internal/validation/baselinecache"

	"github.com/go-redis/redis/v8"
)

// loadConfig resolves the validation config from the --config flag,
// falling back to defaults when no file is given.
func loadConfig(flags *pflag.FlagSet) (config.ValidationConfig, error) {
	path, _ := flags.GetString("config")
	if path == "" {
		return config.DefaultValidationConfig(), nil
	}
	return config.LoadValidationConfig(path)
}

// buildComparator wires the baseline comparator from config and flags.
func buildComparator(cfg config.ValidationConfig, flags *pflag.FlagSet) (*validation.BaselineComparator, error) {
	uni, err := universe.LoadUniverse(cfg.Baseline.UniversePath)
	if err != nil {
		return nil, fmt.Errorf("load universe: %w", err)
	}

	var source universe.PriceSource
	if dir, _ := flags.GetString("returns-dir"); dir != "" {
		source, err = universe.NewCSVSource(dir)
		if err != nil {
			return nil, fmt.Errorf("open returns dir: %w", err)
		}
	} else {
		log.Warn().Msg("no --returns-dir given; baselines use synthetic market data")
		source = universe.NewSyntheticSource(42, 0.07, cfg.Calibration.MarketVolatility)
	}

	var cache baselinecache.Store = baselinecache.NewMemoryStore()
	if addr, _ := flags.GetString("redis"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		cache = baselinecache.NewGuardedStore(
			baselinecache.NewRedisStore(client, 24*time.Hour),
			baselinecache.NewMemoryStore(),
		)
	}

	return validation.NewBaselineComparator(cfg.Baseline, cfg.Calibration, uni, source, cache), nil
}

func runValidate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	flags := cmd.Flags()

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	if strict, _ := flags.GetBool("strict"); strict {
		cfg.DataSplit.Strict = true
	}

	reportsPath, _ := flags.GetString("reports")
	reports, err := report.LoadReportsFile(reportsPath)
	if err != nil {
		return err
	}
	log.Info().Int("strategies", len(reports)).Str("file", reportsPath).Msg("loaded backtest reports")

	comparator, err := buildComparator(cfg, flags)
	if err != nil {
		return err
	}

	orch := validation.NewOrchestrator(cfg, comparator)
	orch.Workers, _ = flags.GetInt("workers")
	if seed, _ := flags.GetInt64("seed"); seed != 0 {
		orch.Reseed(seed)
	}

	progress := logx.NewProgressLogger("validate", len(reports))
	orch.Progress = func(event validation.ProgressEvent) {
		progress.Increment(event.StrategyID)
	}

	result, err := orch.ValidateBatch(ctx, reports)
	if err != nil {
		return err
	}

	outDir, _ := flags.GetString("out")
	writer := artifacts.NewWriter(outDir)
	if err := writer.WriteBatch(result); err != nil {
		return err
	}
	log.Info().Str("dir", writer.OutputDir()).Str("run_id", result.RunID).Msg("verdict artifacts written")

	if dsn, _ := flags.GetString("postgres"); dsn != "" {
		if err := persistBatch(ctx, dsn, result); err != nil {
			// Audit sink failure must not invalidate a completed run
			log.Error().Err(err).Msg("verdict audit persistence failed")
		}
	}

	fmt.Printf("run %s: %d passed, %d failed, %d errored (of %d)\n",
		result.RunID, result.Passed, result.Failed, result.Errored, len(reports))
	return nil
}

func persistBatch(ctx context.Context, dsn string, result *validation.BatchResult) error {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	store := persistence.NewVerdictStore(db, 10*time.Second)
	for _, agg := range result.Verdicts {
		for _, v := range agg.Verdicts {
			record := persistence.VerdictRecord{
				RunID:      result.RunID,
				StrategyID: v.StrategyID,
				Validator:  v.Validator,
				Passed:     v.Passed,
				Statistic:  v.Statistic,
				Threshold:  v.Threshold,
				NPeriods:   v.NPeriods,
				Diagnostic: v.Diagnostic,
			}
			if _, err := store.Insert(ctx, record); err != nil {
				return err
			}
		}
	}
	return nil
}
