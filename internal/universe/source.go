package universe

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/sawpanic/stratvalid/internal/returns"
)

// PriceSource provides historical period returns per symbol. Sources are
// read-only; a fingerprint identifies the underlying data snapshot so that
// caches keyed on it invalidate automatically when the data changes.
type PriceSource interface {
	// SymbolReturns returns the symbol's periodic returns over [from, to).
	SymbolReturns(symbol string, from, to time.Time) (*returns.Series, error)
	// Fingerprint identifies the current data snapshot.
	Fingerprint() string
}

// CSVSource reads per-symbol return files named <symbol>.csv with rows of
// "date,return" (date as 2006-01-02).
type CSVSource struct {
	dir         string
	fingerprint string
}

// NewCSVSource opens a directory of return files and fingerprints its
// contents (file names, sizes, modification times).
func NewCSVSource(dir string) (*CSVSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open returns directory: %w", err)
	}

	h := sha256.New()
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		h.Write([]byte(name))
		var buf [16]byte
		binary.LittleEndian.PutUint64(buf[:8], uint64(info.Size()))
		binary.LittleEndian.PutUint64(buf[8:], uint64(info.ModTime().UnixNano()))
		h.Write(buf[:])
	}

	return &CSVSource{
		dir:         dir,
		fingerprint: hex.EncodeToString(h.Sum(nil)[:16]),
	}, nil
}

func (s *CSVSource) Fingerprint() string { return s.fingerprint }

// SymbolReturns loads and slices the symbol's return file.
func (s *CSVSource) SymbolReturns(symbol string, from, to time.Time) (*returns.Series, error) {
	path := filepath.Join(s.dir, symbol+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open returns for %s: %w", symbol, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse returns for %s: %w", symbol, err)
	}

	timestamps := make([]time.Time, 0, len(records))
	values := make([]float64, 0, len(records))
	for i, rec := range records {
		if len(rec) < 2 {
			return nil, fmt.Errorf("%s row %d: expected date,return", symbol, i+1)
		}
		ts, err := time.Parse("2006-01-02", rec[0])
		if err != nil {
			if i == 0 {
				continue // Header row
			}
			return nil, fmt.Errorf("%s row %d: bad date %q: %w", symbol, i+1, rec[0], err)
		}
		v, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad return %q: %w", symbol, i+1, rec[1], err)
		}
		timestamps = append(timestamps, ts)
		values = append(values, v)
	}

	series, err := returns.NewSeries(timestamps, values)
	if err != nil {
		return nil, fmt.Errorf("returns for %s: %w", symbol, err)
	}
	return series.SliceRange(from, to)
}

// SyntheticSource generates deterministic pseudo-random daily returns per
// symbol from a fixed seed. Used for offline runs and tests where no data
// directory is available.
type SyntheticSource struct {
	seed       int64
	annualVol  float64
	annualMean float64
}

// NewSyntheticSource creates a synthetic source. The same seed always
// yields the same series for a given symbol and range.
func NewSyntheticSource(seed int64, annualMean, annualVol float64) *SyntheticSource {
	return &SyntheticSource{seed: seed, annualMean: annualMean, annualVol: annualVol}
}

func (s *SyntheticSource) Fingerprint() string {
	return fmt.Sprintf("synthetic-%d-%.4f-%.4f", s.seed, s.annualMean, s.annualVol)
}

// SymbolReturns generates business-day returns for [from, to).
func (s *SyntheticSource) SymbolReturns(symbol string, from, to time.Time) (*returns.Series, error) {
	if !from.Before(to) {
		return nil, fmt.Errorf("invalid range [%s, %s)", from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	// Per-symbol seed so constituents are distinct but reproducible
	h := sha256.Sum256([]byte(symbol))
	symbolSeed := s.seed ^ int64(binary.LittleEndian.Uint64(h[:8])&math.MaxInt64)
	rng := rand.New(rand.NewSource(symbolSeed))

	dailyMean := s.annualMean / 252.0
	dailyVol := s.annualVol / math.Sqrt(252.0)

	var timestamps []time.Time
	var values []float64
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		timestamps = append(timestamps, d)
		values = append(values, dailyMean+dailyVol*rng.NormFloat64())
	}
	if len(timestamps) == 0 {
		return nil, fmt.Errorf("no business days in range [%s, %s)",
			from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	return returns.NewSeries(timestamps, values)
}
