package handlers

import (
	"fmt"
	"net/http"
	"os"

	"equity-backtest/internal/api/models"
	"equity-backtest/internal/data"

	"github.com/gin-gonic/gin"
)

// UniverseHandler serves the configured symbol universe.
type UniverseHandler struct {
	path string
}

// NewUniverseHandler uses path, or data.DefaultUniversePath().
func NewUniverseHandler(path string) *UniverseHandler {
	if path == "" {
		path = data.DefaultUniversePath()
	}
	return &UniverseHandler{path: path}
}

// Symbols returns the universe's tradable symbols. A missing file is an
// empty universe.
func (h *UniverseHandler) Symbols() ([]string, error) {
	u, err := h.load()
	if err != nil {
		return nil, err
	}
	return u.Symbols(), nil
}

func (h *UniverseHandler) load() (*data.Universe, error) {
	u, err := data.LoadUniverse(h.path)
	if err != nil {
		if _, statErr := os.Stat(h.path); os.IsNotExist(statErr) {
			return &data.Universe{Assets: []data.Asset{}}, nil
		}
		return nil, err
	}
	return u, nil
}

// GetUniverse handles GET /api/v1/universe
func (h *UniverseHandler) GetUniverse(c *gin.Context) {
	u, err := h.load()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "UNIVERSE_LOAD_ERROR",
			fmt.Sprintf("Failed to load universe: %v", err), nil)
		return
	}
	symbols := u.Symbols()
	c.JSON(http.StatusOK, models.UniverseResponse{
		Name:      u.Name,
		UpdatedAt: u.UpdatedAt,
		Count:     len(symbols),
		Symbols:   symbols,
	})
}
