package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"equity-backtest/internal/api/models"
	"equity-backtest/internal/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PresetHandler serves run config YAML files from a directory.
type PresetHandler struct {
	dir string
	log *zap.Logger
}

// NewPresetHandler uses dir, or PRESET_DIR, or ./examples/configs.
func NewPresetHandler(dir string, log *zap.Logger) *PresetHandler {
	if log == nil {
		log = zap.NewNop()
	}
	if dir == "" {
		dir = os.Getenv("PRESET_DIR")
	}
	if dir == "" {
		dir = filepath.Join(".", "examples", "configs")
	}
	// Convert to absolute path for reliability
	if absDir, err := filepath.Abs(dir); err == nil {
		dir = absDir
	}
	log.Info("using preset directory", zap.String("dir", dir))
	return &PresetHandler{dir: dir, log: log}
}

// Load reads a preset by ID (its file name without .yaml) without
// validating it.
func (h *PresetHandler) Load(id string) (*config.Config, error) {
	if id == "" || filepath.Base(id) != id || strings.HasPrefix(id, ".") {
		return nil, fmt.Errorf("invalid preset id %q", id)
	}
	return config.LoadUnchecked(filepath.Join(h.dir, id+".yaml"))
}

// ListPresets handles GET /api/v1/presets
func (h *PresetHandler) ListPresets(c *gin.Context) {
	presets := []models.PresetInfo{}

	entries, err := os.ReadDir(h.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			h.log.Warn("failed to read preset directory", zap.String("dir", h.dir), zap.Error(err))
		}
		c.JSON(http.StatusOK, gin.H{"presets": presets})
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".yaml")
		cfg, err := h.Load(id)
		if err != nil {
			h.log.Warn("skipping invalid preset", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		presets = append(presets, models.PresetInfo{
			ID:       id,
			Name:     id,
			File:     filepath.Join(h.dir, entry.Name()),
			Strategy: cfg.Strategy.Name,
			Source:   presetSource(cfg),
			Symbols:  cfg.Backtest.Symbols,
			Start:    cfg.Backtest.StartDate,
			End:      cfg.Backtest.EndDate,
		})
	}

	c.JSON(http.StatusOK, gin.H{"presets": presets})
}
