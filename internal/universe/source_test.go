package universe

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVSourceReadsAndSlices(t *testing.T) {
	dir := t.TempDir()
	body := "date,return\n" +
		"2023-01-02,0.010\n" +
		"2023-01-03,-0.005\n" +
		"2023-01-04,0.002\n" +
		"2023-01-05,0.001\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "BTCUSD.csv"), []byte(body), 0644))

	src, err := NewCSVSource(dir)
	require.NoError(t, err)
	assert.NotEmpty(t, src.Fingerprint())

	series, err := src.SymbolReturns("BTCUSD",
		time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2, series.Len())

	_, err = src.SymbolReturns("NOPEUSD", time.Time{}, time.Now())
	assert.Error(t, err)
}

func TestCSVSourceFingerprintTracksData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ETHUSD.csv")
	require.NoError(t, os.WriteFile(path, []byte("2023-01-02,0.01\n"), 0644))

	first, err := NewCSVSource(dir)
	require.NoError(t, err)

	// Same contents, same fingerprint
	again, err := NewCSVSource(dir)
	require.NoError(t, err)
	assert.Equal(t, first.Fingerprint(), again.Fingerprint())

	// Changed contents, changed fingerprint
	require.NoError(t, os.WriteFile(path, []byte("2023-01-02,0.01\n2023-01-03,0.02\n"), 0644))
	changed, err := NewCSVSource(dir)
	require.NoError(t, err)
	assert.NotEqual(t, first.Fingerprint(), changed.Fingerprint())
}

func TestSyntheticSourceDeterministic(t *testing.T) {
	from := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	a := NewSyntheticSource(7, 0.05, 0.2)
	b := NewSyntheticSource(7, 0.05, 0.2)

	s1, err := a.SymbolReturns("BTCUSD", from, to)
	require.NoError(t, err)
	s2, err := b.SymbolReturns("BTCUSD", from, to)
	require.NoError(t, err)

	assert.Equal(t, s1.Values(), s2.Values())

	// Different symbols draw from different streams
	other, err := a.SymbolReturns("ETHUSD", from, to)
	require.NoError(t, err)
	assert.NotEqual(t, s1.Values(), other.Values())
}

func TestSyntheticSourceSkipsWeekends(t *testing.T) {
	// 2023-01-02 (Mon) through 2023-01-08 (Sun): five business days
	src := NewSyntheticSource(1, 0.05, 0.2)
	s, err := src.SymbolReturns("BTCUSD",
		time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 1, 9, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 5, s.Len())

	_, err = src.SymbolReturns("BTCUSD", time.Now(), time.Now())
	assert.Error(t, err)
}
