package data

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlpacaSource_ValidatesBeforeCalling(t *testing.T) {
	src := NewAlpacaSource(AlpacaOptions{KeyID: "k", SecretKey: "s"}, nil)
	assert.Equal(t, "all", src.adjustment)

	var se *SourceError
	_, err := src.GetBars(context.Background(), "", d(1), d(2))
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "MISSING_SYMBOL", se.Code)

	_, err = src.GetBars(context.Background(), "AAPL", d(5), d(2))
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "INVALID_RANGE", se.Code)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.GetBars(ctx, "AAPL", d(1), d(2))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAlpacaError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"transport", errors.New("connection refused"), 0, "API_ERROR"},
		{"unauthorized", &alpaca.APIError{StatusCode: 401, Message: "unauthorized"}, 401, "UNAUTHORIZED"},
		{"wrapped rate limit", fmt.Errorf("get bars: %w", &alpaca.APIError{StatusCode: 429}), 429, "RATE_LIMITED"},
		{"server", &alpaca.APIError{StatusCode: 500}, 500, "API_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se := alpacaError(tt.err)
			assert.Equal(t, "alpaca", se.Source)
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.code, se.Code)
		})
	}
}
