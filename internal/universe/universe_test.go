package universe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadUniverse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "universe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: test-universe
index_symbol: IDXUSD
constituents:
  - symbol: AAAUSD
    market_cap_rank: 2
  - symbol: BBBUSD
    market_cap_rank: 1
  - symbol: CCCUSD
    market_cap_rank: 3
`), 0644))

	u, err := LoadUniverse(path)
	require.NoError(t, err)
	assert.Equal(t, "IDXUSD", u.IndexSymbol)
	assert.Len(t, u.Constituents, 3)
}

func TestLoadUniverseRejectsIncomplete(t *testing.T) {
	dir := t.TempDir()

	noIndex := filepath.Join(dir, "noindex.yaml")
	require.NoError(t, os.WriteFile(noIndex, []byte("name: x\nconstituents:\n  - symbol: A\n    market_cap_rank: 1\n"), 0644))
	_, err := LoadUniverse(noIndex)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("name: x\nindex_symbol: IDX\n"), 0644))
	_, err = LoadUniverse(empty)
	assert.Error(t, err)
}

func TestTopNOrdersByRank(t *testing.T) {
	u := &Universe{
		IndexSymbol: "IDX",
		Constituents: []Constituent{
			{Symbol: "CCC", MarketCapRank: 3},
			{Symbol: "AAA", MarketCapRank: 1},
			{Symbol: "BBB", MarketCapRank: 2},
		},
	}

	assert.Equal(t, []string{"AAA", "BBB"}, u.TopN(2))
	// n beyond the universe returns everything
	assert.Equal(t, []string{"AAA", "BBB", "CCC"}, u.TopN(10))
}
