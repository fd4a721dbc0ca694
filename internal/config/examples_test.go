package config

import (
	"context"
	"path/filepath"
	"testing"

	"equity-backtest/internal/data"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The repository ships run presets and sample bars at its root; the API and
// CLI defaults point there.
const repoRoot = "../.."

func TestExampleConfigsLoad(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join(repoRoot, "examples", "configs", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			c, err := Load(path)
			require.NoError(t, err)
			if c.Data.Source != "" && c.Data.Source != data.KindJSON {
				return
			}
			src, err := data.Open(context.Background(), c.Data, nil)
			require.NoError(t, err)
			defer src.Close()

			bt, err := c.Backtest.ToEngineConfig()
			require.NoError(t, err)
			for _, sym := range bt.Symbols {
				bars, err := src.GetBars(context.Background(), sym, bt.StartDate, bt.EndDate)
				require.NoError(t, err)
				assert.NotEmpty(t, bars, sym)
			}
		})
	}
}

func TestExampleCompareLoads(t *testing.T) {
	f, err := LoadCompare(filepath.Join(repoRoot, "examples", "compare", "momentum-sweep.yaml"))
	require.NoError(t, err)
	assert.Len(t, f.Variations, 5)
	assert.FileExists(t, f.Base.Data.Path)
}

func TestDefaultDataPathsExist(t *testing.T) {
	assert.DirExists(t, filepath.Join(repoRoot, "data", "bars"))
	assert.FileExists(t, filepath.Join(repoRoot, "data", "universe.json"))
	assert.DirExists(t, filepath.Join(repoRoot, "examples", "configs"))
}
