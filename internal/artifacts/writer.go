// Package artifacts writes validation run outputs to disk: one directory
// per run holding the per-strategy verdicts and the batch summary, both
// as plain JSON for downstream collaborators.
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sawpanic/stratvalid/internal/validation"
)

// Writer handles writing validation artifacts to disk.
type Writer struct {
	outputDir string
}

// NewWriter creates a writer rooted at outputDir/<date>.
func NewWriter(outputDir string) *Writer {
	return &Writer{
		outputDir: filepath.Join(outputDir, time.Now().Format("2006-01-02")),
	}
}

// OutputDir returns the full output directory path.
func (w *Writer) OutputDir() string {
	return w.outputDir
}

// WriteBatch writes verdicts.jsonl (one aggregate verdict per line) and
// summary.json for a completed batch.
func (w *Writer) WriteBatch(result *validation.BatchResult) error {
	runDir := filepath.Join(w.outputDir, result.RunID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	verdictsFile := filepath.Join(runDir, "verdicts.jsonl")
	file, err := os.Create(verdictsFile)
	if err != nil {
		return fmt.Errorf("failed to create verdicts file: %w", err)
	}
	defer file.Close()

	for _, agg := range result.Verdicts {
		data, err := json.Marshal(agg)
		if err != nil {
			return fmt.Errorf("failed to marshal verdict for %s: %w", agg.StrategyID, err)
		}
		if _, err := file.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write verdict: %w", err)
		}
	}

	summary := batchSummary{
		RunID:     result.RunID,
		Total:     len(result.Verdicts),
		Passed:    result.Passed,
		Failed:    result.Failed,
		Errored:   result.Errored,
		StartedAt: result.StartedAt,
		Duration:  result.Duration.String(),
	}
	summaryData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	summaryFile := filepath.Join(runDir, "summary.json")
	if err := os.WriteFile(summaryFile, summaryData, 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	return nil
}

type batchSummary struct {
	RunID     string    `json:"run_id"`
	Total     int       `json:"total"`
	Passed    int       `json:"passed"`
	Failed    int       `json:"failed"`
	Errored   int       `json:"errored"`
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`
}
