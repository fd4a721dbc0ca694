package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Asset is one tradable instrument in a universe.
type Asset struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Class    string `json:"class"`
	Tradable bool   `json:"tradable"`
}

// Universe is a named symbol list persisted as JSON.
type Universe struct {
	Name      string  `json:"name"`
	UpdatedAt string  `json:"updated_at"` // ISO 8601 timestamp
	Assets    []Asset `json:"assets"`
}

// Symbols returns the tradable symbols, sorted and de-duplicated.
func (u *Universe) Symbols() []string {
	seen := make(map[string]bool, len(u.Assets))
	out := make([]string, 0, len(u.Assets))
	for _, a := range u.Assets {
		if !a.Tradable || a.Symbol == "" || seen[a.Symbol] {
			continue
		}
		seen[a.Symbol] = true
		out = append(out, a.Symbol)
	}
	sort.Strings(out)
	return out
}

// LoadUniverse loads a universe from a JSON file
func LoadUniverse(filePath string) (*Universe, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read universe file: %w", err)
	}

	var u Universe
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("failed to parse universe file: %w", err)
	}

	return &u, nil
}

// SaveUniverse saves a universe to a JSON file
func SaveUniverse(u *Universe, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	raw, err := json.MarshalIndent(u, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal universe: %w", err)
	}

	if err := os.WriteFile(filePath, raw, 0644); err != nil {
		return fmt.Errorf("failed to write universe file: %w", err)
	}

	return nil
}

// DefaultUniversePath returns UNIVERSE_FILE or ./data/universe.json.
func DefaultUniversePath() string {
	if path := os.Getenv("UNIVERSE_FILE"); path != "" {
		return path
	}
	return "./data/universe.json"
}
