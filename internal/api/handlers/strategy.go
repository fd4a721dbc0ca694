package handlers

import (
	"net/http"

	"equity-backtest/internal/strategy"

	"github.com/gin-gonic/gin"
)

// ListStrategies handles GET /api/v1/strategies
func ListStrategies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"strategies": strategy.Catalog()})
}
