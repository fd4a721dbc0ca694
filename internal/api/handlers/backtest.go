package handlers

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"equity-backtest/internal/analysis"
	"equity-backtest/internal/api/models"
	"equity-backtest/internal/backtest"
	"equity-backtest/internal/config"
	"equity-backtest/internal/data"
	"equity-backtest/internal/runner"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BacktestHandler handles backtest-related requests
type BacktestHandler struct {
	src        data.BarSource
	sourceKind string
	store      *RunStore
	presets *PresetHandler
	log     *zap.Logger
}

// NewBacktestHandler creates a new backtest handler. presets may be nil.
// sourceKind names the server's bar source (data.KindJSON, ...); presets
// declaring a different source are rejected. Empty disables the check.
func NewBacktestHandler(src data.BarSource, sourceKind string, store *RunStore, presets *PresetHandler, log *zap.Logger) *BacktestHandler {
	if store == nil {
		store = NewRunStore(0)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BacktestHandler{src: src, sourceKind: sourceKind, store: store, presets: presets, log: log}
}

// RunBacktest handles POST /api/v1/backtest
func (h *BacktestHandler) RunBacktest(c *gin.Context) {
	var req models.BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}

	bt, sc, ok := h.resolve(c, req.Preset, req.Config, req.Strategy)
	if !ok {
		return
	}

	result, err := runner.Run(c.Request.Context(), bt, sc, h.src, h.log)
	if err != nil {
		respondRunError(c, err)
		return
	}

	run := h.store.Put(bt, sc, result)
	h.log.Info("backtest stored",
		zap.String("id", run.ID),
		zap.String("strategy", sc.Name),
		zap.Int("trades", result.Report.TotalTrades))

	c.JSON(http.StatusOK, buildResponse(run, req.Options))
}

// GetBacktest handles GET /api/v1/backtest/:id
func (h *BacktestHandler) GetBacktest(c *gin.Context) {
	run, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, buildResponse(run, models.BacktestOptions{}))
}

// GetTrades handles GET /api/v1/backtest/:id/trades (?format=csv)
func (h *BacktestHandler) GetTrades(c *gin.Context) {
	run, ok := h.lookup(c)
	if !ok {
		return
	}
	trades := run.Result.Trades
	if c.Query("format") == "csv" {
		c.Header("Content-Disposition", `attachment; filename="trades-`+run.ID+`.csv"`)
		c.Header("Content-Type", "text/csv")
		c.Status(http.StatusOK)
		if err := backtest.EncodeTradesCSV(c.Writer, trades); err != nil {
			_ = c.Error(err)
		}
		return
	}
	c.JSON(http.StatusOK, models.TradesResponse{ID: run.ID, Count: len(trades), Trades: trades})
}

// GetEquity handles GET /api/v1/backtest/:id/equity (?format=csv)
func (h *BacktestHandler) GetEquity(c *gin.Context) {
	run, ok := h.lookup(c)
	if !ok {
		return
	}
	curve := run.Result.EquityCurve
	if c.Query("format") == "csv" {
		c.Header("Content-Disposition", `attachment; filename="equity-`+run.ID+`.csv"`)
		c.Header("Content-Type", "text/csv")
		c.Status(http.StatusOK)
		if err := backtest.EncodeEquityCSV(c.Writer, curve); err != nil {
			_ = c.Error(err)
		}
		return
	}
	c.JSON(http.StatusOK, models.EquityResponse{ID: run.ID, Count: len(curve), EquityCurve: curve})
}

// CompareBacktests handles POST /api/v1/backtest/compare
func (h *BacktestHandler) CompareBacktests(c *gin.Context) {
	var req models.CompareBacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	rankBy := req.RankBy
	if rankBy == "" {
		rankBy = analysis.BySharpe
	}
	// Reject a bad rank key before spending time on the runs.
	if _, err := analysis.RankReports(nil, rankBy); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_RANK_KEY", err.Error(), nil)
		return
	}

	bt, sc, ok := h.resolve(c, req.Preset, req.BaseConfig, req.Strategy)
	if !ok {
		return
	}
	base := config.Config{Backtest: bt, Strategy: sc}

	// Invalid variations are reported in the ranking, not as a request error.
	outcomes, err := runner.Compare(c.Request.Context(), base, req.Variations, h.src, h.log)
	if err != nil {
		respondRunError(c, err)
		return
	}
	ranked, err := runner.Rank(outcomes, rankBy)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "RANK_ERROR", err.Error(), nil)
		return
	}

	c.JSON(http.StatusOK, models.CompareBacktestResponse{
		RankBy:     rankBy,
		Comparison: ranked,
	})
}

// Helper methods

// resolve merges an optional preset under the request fields and applies
// defaults. It writes the error response itself and reports false on failure.
func (h *BacktestHandler) resolve(c *gin.Context, preset string, bt config.BacktestConfig, sc config.StrategyConfig) (config.BacktestConfig, config.StrategyConfig, bool) {
	if preset != "" {
		if h.presets == nil {
			respondError(c, http.StatusBadRequest, "PRESETS_DISABLED", "presets are not configured", nil)
			return bt, sc, false
		}
		p, err := h.presets.Load(preset)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				respondError(c, http.StatusNotFound, "PRESET_NOT_FOUND", "unknown preset "+preset, nil)
			} else {
				respondError(c, http.StatusBadRequest, "INVALID_PRESET", err.Error(), nil)
			}
			return bt, sc, false
		}
		if kind := presetSource(p); kind != "" && h.sourceKind != "" && kind != h.sourceKind {
			respondError(c, http.StatusBadRequest, "PRESET_SOURCE_MISMATCH",
				fmt.Sprintf("preset %s reads from %s but this server serves %s bars", preset, kind, h.sourceKind),
				map[string]interface{}{"preset_source": kind, "server_source": h.sourceKind})
			return bt, sc, false
		}
		bt = config.MergeBacktest(p.Backtest, bt)
		sc = config.MergeStrategy(p.Strategy, sc)
	}
	if sc.Name == "" {
		respondError(c, http.StatusBadRequest, "INVALID_CONFIG", "strategy.name is required",
			map[string]interface{}{"field": "strategy.name"})
		return bt, sc, false
	}
	return config.MergeBacktest(config.Defaults, bt), sc, true
}

// presetSource is the bar source a preset declares, or "" when it has no
// data section.
func presetSource(p *config.Config) string {
	if p.Data.Source != "" {
		return p.Data.Source
	}
	if p.Data.Path != "" {
		return data.KindJSON
	}
	return ""
}

func (h *BacktestHandler) lookup(c *gin.Context) (*StoredRun, bool) {
	id := c.Param("id")
	run, ok := h.store.Get(id)
	if !ok {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "no backtest with id "+id, nil)
		return nil, false
	}
	return run, true
}

func buildResponse(run *StoredRun, opts models.BacktestOptions) models.BacktestResponse {
	summary := run.Result.Report
	if !opts.IncludeTrades {
		summary.Trades = nil
	}
	if !opts.IncludeEquityCurve {
		summary.EquityCurve = nil
	}
	status := "completed"
	if summary.Failed() {
		status = "no_data"
	}
	return models.BacktestResponse{
		ID:        run.ID,
		Status:    status,
		CreatedAt: run.CreatedAt,
		Config:    run.Config,
		Strategy:  run.Strategy,
		Summary:   summary,
	}
}
