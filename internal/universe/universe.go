// Package universe defines the reference universe the baseline comparator
// builds its benchmark strategies from: a designated broad index plus a
// ranked list of constituents.
package universe

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v2"
)

// Constituent is a single universe member.
type Constituent struct {
	Symbol        string `yaml:"symbol" json:"symbol"`
	MarketCapRank int    `yaml:"market_cap_rank" json:"market_cap_rank"`
}

// Universe is the baseline reference universe.
type Universe struct {
	Name         string        `yaml:"name" json:"name"`
	Description  string        `yaml:"description" json:"description"`
	IndexSymbol  string        `yaml:"index_symbol" json:"index_symbol"`
	Constituents []Constituent `yaml:"constituents" json:"constituents"`
}

// LoadUniverse reads a universe definition from a yaml file.
func LoadUniverse(path string) (*Universe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read universe config: %w", err)
	}

	var u Universe
	if err := yaml.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("failed to parse universe YAML: %w", err)
	}
	if u.IndexSymbol == "" {
		return nil, fmt.Errorf("universe %q missing index_symbol", u.Name)
	}
	if len(u.Constituents) == 0 {
		return nil, fmt.Errorf("universe %q has no constituents", u.Name)
	}
	return &u, nil
}

// TopN returns the symbols of the N highest-ranked constituents
// (rank 1 = largest). Returns all constituents when n exceeds the universe.
func (u *Universe) TopN(n int) []string {
	ranked := make([]Constituent, len(u.Constituents))
	copy(ranked, u.Constituents)
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].MarketCapRank < ranked[j].MarketCapRank
	})

	if n > len(ranked) {
		n = len(ranked)
	}
	symbols := make([]string, 0, n)
	for _, c := range ranked[:n] {
		symbols = append(symbols, c.Symbol)
	}
	return symbols
}
