package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"equity-backtest/internal/model"
)

// BarFile is the on-disk JSON shape for bar data.
//
// Example:
//
//	{
//	  "updated_at": "2024-03-01T00:00:00Z",
//	  "bars": { "AAPL": [ {"timestamp": "2024-01-02T00:00:00Z", "open": 187.1, ...} ] }
//	}
//
// A single-symbol file sets "symbol" and makes "bars" a plain array.
type BarFile struct {
	UpdatedAt string                 `json:"updated_at,omitempty"`
	Bars      map[string][]model.Bar `json:"bars"`
}

type rawBarFile struct {
	Symbol string          `json:"symbol"`
	Bars   json.RawMessage `json:"bars"`
}

// LoadBars reads a bar file, or every *.json bar file in a directory, into
// one MemorySource.
func LoadBars(path string) (*MemorySource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	src := NewMemorySource(nil)
	if !info.IsDir() {
		if err := loadBarFile(src, path); err != nil {
			return nil, err
		}
		return src, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := loadBarFile(src, filepath.Join(path, e.Name())); err != nil {
			return nil, err
		}
	}
	return src, nil
}

func loadBarFile(dst *MemorySource, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var f rawBarFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if f.Symbol != "" {
		var bars []model.Bar
		if err := json.Unmarshal(f.Bars, &bars); err != nil {
			return fmt.Errorf("parse %s bars: %w", path, err)
		}
		dst.Add(f.Symbol, bars)
		return nil
	}
	var bySymbol map[string][]model.Bar
	if err := json.Unmarshal(f.Bars, &bySymbol); err != nil {
		return fmt.Errorf("parse %s bars: %w", path, err)
	}
	for sym, bars := range bySymbol {
		dst.Add(sym, bars)
	}
	return nil
}

// SaveBars writes bars as a BarFile, creating parent directories.
func SaveBars(path string, bars map[string][]model.Bar) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	raw, err := json.MarshalIndent(BarFile{
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		Bars:      bars,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal bars: %w", err)
	}
	return os.WriteFile(path, raw, 0o644)
}
