package data

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

// Source kinds accepted by Open.
const (
	KindJSON       = "json"
	KindAlpaca     = "alpaca"
	KindClickHouse = "clickhouse"
)

// Options selects and configures a BarSource.
type Options struct {
	Source     string            `yaml:"source"`
	Path       string            `yaml:"path"`
	CacheTTL   time.Duration     `yaml:"cache_ttl"`
	Alpaca     AlpacaOptions     `yaml:"alpaca"`
	ClickHouse ClickHouseOptions `yaml:"clickhouse"`
}

// Opened is a BarSource plus whatever must be released when done with it.
type Opened struct {
	BarSource
	closer io.Closer
	cache  *CachedSource
}

// RunJanitor purges expired cache entries until ctx is done. It returns at
// once when the source is not cached.
func (o *Opened) RunJanitor(ctx context.Context, interval time.Duration) {
	if o.cache == nil {
		return
	}
	o.cache.Run(ctx, interval)
}

func (o *Opened) Close() error {
	if o.closer == nil {
		return nil
	}
	return o.closer.Close()
}

// Open builds the source named by opts.Source, wrapped in a CachedSource
// when CacheTTL is positive.
func Open(ctx context.Context, opts Options, log *zap.Logger) (*Opened, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var (
		src    BarSource
		closer io.Closer
	)
	switch opts.Source {
	case "", KindJSON:
		if opts.Path == "" {
			return nil, fmt.Errorf("data.path is required for the json source")
		}
		mem, err := LoadBars(opts.Path)
		if err != nil {
			return nil, fmt.Errorf("load bars: %w", err)
		}
		log.Info("loaded bar files", zap.String("path", opts.Path), zap.Int("symbols", len(mem.Symbols())))
		src = mem
	case KindAlpaca:
		src = NewAlpacaSource(opts.Alpaca, log)
	case KindClickHouse:
		ch, err := NewClickHouseSource(ctx, opts.ClickHouse, log)
		if err != nil {
			return nil, err
		}
		src, closer = ch, ch
	default:
		return nil, fmt.Errorf("unknown data source %q (want json, alpaca or clickhouse)", opts.Source)
	}

	out := &Opened{BarSource: src, closer: closer}
	if opts.CacheTTL > 0 {
		out.cache = NewCachedSource(src, opts.CacheTTL, log)
		out.BarSource = out.cache
	}
	return out, nil
}
