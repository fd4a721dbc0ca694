package data

import (
	"context"
	"errors"
	"time"

	"equity-backtest/internal/model"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"go.uber.org/zap"
)

// AlpacaOptions configures AlpacaSource. Empty keys fall back to the
// APCA_API_KEY_ID / APCA_API_SECRET_KEY environment variables read by the
// Alpaca client itself.
type AlpacaOptions struct {
	KeyID      string `yaml:"key_id"`
	SecretKey  string `yaml:"secret_key"`
	BaseURL    string `yaml:"base_url"`
	Feed       string `yaml:"feed"`       // "iex" (free) or "sip"
	Adjustment string `yaml:"adjustment"` // raw, split, dividend, all
}

// AlpacaSource fetches daily bars from the Alpaca market data API.
type AlpacaSource struct {
	client     *marketdata.Client
	feed       string
	adjustment string
	log        *zap.Logger
}

var _ BarSource = (*AlpacaSource)(nil)

func NewAlpacaSource(opts AlpacaOptions, log *zap.Logger) *AlpacaSource {
	if log == nil {
		log = zap.NewNop()
	}
	adj := opts.Adjustment
	if adj == "" {
		adj = string(marketdata.All)
	}
	return &AlpacaSource{
		client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    opts.KeyID,
			APISecret: opts.SecretKey,
			BaseURL:   opts.BaseURL,
		}),
		feed:       opts.Feed,
		adjustment: adj,
		log:        log.Named("alpaca"),
	}
}

// GetBars returns split- and dividend-adjusted daily bars by default.
// The client has no context support, so ctx is only checked before the call.
func (a *AlpacaSource) GetBars(ctx context.Context, symbol string, start, end time.Time) ([]model.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if symbol == "" {
		return nil, &SourceError{Source: "alpaca", Code: "MISSING_SYMBOL", Message: "symbol is required"}
	}
	if end.Before(start) {
		return nil, &SourceError{Source: "alpaca", Code: "INVALID_RANGE", Message: "start must not be after end"}
	}

	began := time.Now()
	raw, err := a.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Start:      model.Day(start),
		End:        model.Day(end).AddDate(0, 0, 1),
		Adjustment: marketdata.Adjustment(a.adjustment),
		Feed:       marketdata.Feed(a.feed),
	})
	if err != nil {
		a.log.Warn("bars request failed",
			zap.String("symbol", symbol),
			zap.Duration("duration", time.Since(began)),
			zap.Error(err))
		return nil, alpacaError(err)
	}

	bars := make([]model.Bar, 0, len(raw))
	for _, b := range raw {
		bars = append(bars, model.Bar{
			Timestamp: model.Day(b.Timestamp),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    float64(b.Volume),
		})
	}
	a.log.Debug("bars fetched",
		zap.String("symbol", symbol),
		zap.Int("count", len(bars)),
		zap.Duration("duration", time.Since(began)))
	return FilterRange(bars, start, end), nil
}

// alpacaError keeps the HTTP status of an API rejection so callers can tell
// bad credentials and rate limiting from other failures.
func alpacaError(err error) *SourceError {
	se := &SourceError{Source: "alpaca", Code: "API_ERROR", Message: err.Error()}
	var apiErr *alpaca.APIError
	if errors.As(err, &apiErr) {
		se.StatusCode = apiErr.StatusCode
		switch apiErr.StatusCode {
		case 401, 403:
			se.Code = "UNAUTHORIZED"
		case 429:
			se.Code = "RATE_LIMITED"
		}
	}
	return se
}
