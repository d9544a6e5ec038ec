package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sawpanic/stratvalid/internal/returns"
)

// reportFile is the JSON exchange format the backtest engine hands over:
// one entry per candidate strategy, either a dated return series or (for
// legacy engines) precomputed whole-period metrics.
type reportFile struct {
	Strategies []strategyEntry `json:"strategies"`
}

type strategyEntry struct {
	StrategyID string            `json:"strategy_id"`
	Params     map[string]string `json:"params,omitempty"` // Attribution only; validators never read these
	Returns    []returnRow       `json:"returns,omitempty"`
	Metrics    *returns.Metrics  `json:"metrics,omitempty"`
}

type returnRow struct {
	Date  string  `json:"date"` // 2006-01-02
	Value float64 `json:"value"`
}

// LoadReportsFile parses a batch of backtest reports from a JSON file.
// Entries with a return series become date-filterable SeriesReports;
// entries carrying only precomputed metrics become OpaqueReports, which
// the validators treat as the explicit unsupported-filtering case.
func LoadReportsFile(path string) ([]Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reports file: %w", err)
	}

	var file reportFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse reports JSON: %w", err)
	}
	if len(file.Strategies) == 0 {
		return nil, fmt.Errorf("reports file %s contains no strategies", path)
	}

	reports := make([]Report, 0, len(file.Strategies))
	for i, entry := range file.Strategies {
		if entry.StrategyID == "" {
			return nil, fmt.Errorf("strategy %d missing strategy_id", i)
		}

		if len(entry.Returns) > 0 {
			timestamps := make([]time.Time, len(entry.Returns))
			values := make([]float64, len(entry.Returns))
			for j, row := range entry.Returns {
				ts, err := time.Parse("2006-01-02", row.Date)
				if err != nil {
					return nil, fmt.Errorf("strategy %s row %d: bad date %q: %w", entry.StrategyID, j, row.Date, err)
				}
				timestamps[j] = ts
				values[j] = row.Value
			}
			series, err := returns.NewSeries(timestamps, values)
			if err != nil {
				return nil, fmt.Errorf("strategy %s: %w", entry.StrategyID, err)
			}
			reports = append(reports, NewSeriesReport(entry.StrategyID, series))
			continue
		}

		if entry.Metrics != nil {
			reports = append(reports, NewOpaqueReport(entry.StrategyID, *entry.Metrics))
			continue
		}

		return nil, fmt.Errorf("strategy %s has neither returns nor metrics", entry.StrategyID)
	}
	return reports, nil
}
