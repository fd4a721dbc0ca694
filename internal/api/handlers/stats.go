package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"equity-backtest/internal/analysis"
	"equity-backtest/internal/api/models"
	"equity-backtest/internal/config"
	"equity-backtest/internal/data"
	"equity-backtest/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatsHandler ranks symbols by strategy-independent bar statistics.
type StatsHandler struct {
	src      data.BarSource
	universe *UniverseHandler
	log      *zap.Logger
}

func NewStatsHandler(src data.BarSource, universe *UniverseHandler, log *zap.Logger) *StatsHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &StatsHandler{src: src, universe: universe, log: log}
}

// RankSymbols handles GET /api/v1/stats
func (h *StatsHandler) RankSymbols(c *gin.Context) {
	var req models.StatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}

	start, err := time.Parse(config.DateLayout, req.StartDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_DATE", "start_date must be in YYYY-MM-DD format", nil)
		return
	}
	end, err := time.Parse(config.DateLayout, req.EndDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_DATE", "end_date must be in YYYY-MM-DD format", nil)
		return
	}
	if end.Before(start) {
		respondError(c, http.StatusBadRequest, "INVALID_DATE", "end_date must not be before start_date", nil)
		return
	}

	var symbols []string
	if req.Symbols != "" {
		for _, s := range strings.Split(req.Symbols, ",") {
			if s = strings.TrimSpace(s); s != "" {
				symbols = append(symbols, s)
			}
		}
	} else if h.universe != nil {
		symbols, err = h.universe.Symbols()
		if err != nil {
			respondError(c, http.StatusInternalServerError, "UNIVERSE_LOAD_ERROR", err.Error(), nil)
			return
		}
	}
	if len(symbols) == 0 {
		respondError(c, http.StatusBadRequest, "SYMBOLS_REQUIRED",
			"Please specify symbols query parameter (comma-separated) or configure a universe", nil)
		return
	}

	bySymbol := make(map[string][]model.Bar, len(symbols))
	var missing []string
	for _, sym := range symbols {
		bars, err := h.src.GetBars(c.Request.Context(), sym, start, end)
		if err != nil {
			// Auth and rate-limit failures will hit every symbol; stop early.
			var se *data.SourceError
			if errors.As(err, &se) && (se.StatusCode == http.StatusUnauthorized ||
				se.StatusCode == http.StatusForbidden ||
				se.StatusCode == http.StatusTooManyRequests) {
				respondRunError(c, fmt.Errorf("query %s: %w", sym, err))
				return
			}
			h.log.Warn("skipping symbol", zap.String("symbol", sym), zap.Error(err))
			missing = append(missing, sym)
			continue
		}
		if len(bars) == 0 {
			missing = append(missing, sym)
			continue
		}
		bySymbol[sym] = bars
	}

	ranked := analysis.RankBySymbolStats(bySymbol)

	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > len(ranked) {
		limit = len(ranked)
	}

	c.JSON(http.StatusOK, models.StatsResponse{Rankings: ranked[:limit], Missing: missing})
}
