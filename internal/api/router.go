// Package api assembles the HTTP service.
package api

import (
	"net/http"
	"strings"

	"equity-backtest/internal/api/handlers"
	"equity-backtest/internal/api/middleware"
	"equity-backtest/internal/data"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps are the collaborators the router needs.
type Deps struct {
	Source         data.BarSource
	SourceKind     string
	Store          *handlers.RunStore
	PresetDir      string
	UniverseFile   string
	AllowedOrigins []string
	StaticDir      string
	Logger         *zap.Logger
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(d Deps) *gin.Engine {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(middleware.ErrorHandler(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS(d.AllowedOrigins))

	presets := handlers.NewPresetHandler(d.PresetDir, log)
	universe := handlers.NewUniverseHandler(d.UniverseFile)
	backtestHandler := handlers.NewBacktestHandler(d.Source, d.SourceKind, d.Store, presets, log)
	statsHandler := handlers.NewStatsHandler(d.Source, universe, log)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/backtest", backtestHandler.RunBacktest)
		v1.POST("/backtest/compare", backtestHandler.CompareBacktests)
		v1.GET("/backtest/:id", backtestHandler.GetBacktest)
		v1.GET("/backtest/:id/trades", backtestHandler.GetTrades)
		v1.GET("/backtest/:id/equity", backtestHandler.GetEquity)

		v1.GET("/strategies", handlers.ListStrategies)
		v1.GET("/presets", presets.ListPresets)
		v1.GET("/universe", universe.GetUniverse)
		v1.GET("/stats", statsHandler.RankSymbols)
	}

	if d.StaticDir != "" {
		serveStatic(router, d.StaticDir, log)
	}
	return router
}

// serveStatic serves a built SPA, falling back to index.html for non-API routes.
func serveStatic(router *gin.Engine, dir string, log *zap.Logger) {
	router.Static("/assets", dir+"/assets")
	router.StaticFile("/favicon.ico", dir+"/favicon.ico")
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
			return
		}
		c.File(dir + "/index.html")
	})
	log.Info("serving static files", zap.String("dir", dir))
}
