package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func runBaselines(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	flags := cmd.Flags()

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	fromStr, _ := flags.GetString("from")
	toStr, _ := flags.GetString("to")
	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return fmt.Errorf("bad --from %q: %w", fromStr, err)
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return fmt.Errorf("bad --to %q: %w", toStr, err)
	}
	if !from.Before(to) {
		return fmt.Errorf("--from %s must precede --to %s", fromStr, toStr)
	}

	comparator, err := buildComparator(cfg, flags)
	if err != nil {
		return err
	}

	baselines, err := comparator.Baselines(ctx, from, to)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(baselines)
}
