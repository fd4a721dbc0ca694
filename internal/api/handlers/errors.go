package handlers

import (
	"context"
	"errors"
	"net/http"

	"equity-backtest/internal/api/models"
	"equity-backtest/internal/backtest"
	"equity-backtest/internal/config"
	"equity-backtest/internal/data"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// respondRunError maps run failures onto HTTP errors.
func respondRunError(c *gin.Context, err error) {
	var (
		ve *config.ValidationError
		ce *backtest.ConfigError
		se *data.SourceError
	)
	switch {
	case errors.As(err, &ve):
		respondError(c, http.StatusBadRequest, "INVALID_CONFIG", err.Error(),
			map[string]interface{}{"field": ve.Field})
	case errors.As(err, &ce):
		respondError(c, http.StatusBadRequest, "INVALID_CONFIG", err.Error(),
			map[string]interface{}{"field": ce.Field})
	case errors.As(err, &se):
		status := http.StatusBadGateway
		switch se.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			status = http.StatusUnauthorized
		case http.StatusTooManyRequests:
			status = http.StatusTooManyRequests
		}
		respondError(c, status, se.Code, se.Message, map[string]interface{}{
			"source":      se.Source,
			"status_code": se.StatusCode,
		})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(c, http.StatusGatewayTimeout, "CANCELLED", err.Error(), nil)
	default:
		respondError(c, http.StatusInternalServerError, "BACKTEST_ERROR", err.Error(), nil)
	}
}
