package data

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"equity-backtest/internal/model"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"
)

// ClickHouseOptions configures ClickHouseSource.
type ClickHouseOptions struct {
	Addr     string `yaml:"addr"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Table    string `yaml:"table"`
}

func (o ClickHouseOptions) withDefaults() ClickHouseOptions {
	if o.Addr == "" {
		o.Addr = "localhost:9000"
	}
	if o.Database == "" {
		o.Database = "market"
	}
	if o.Username == "" {
		o.Username = "default"
	}
	if o.Table == "" {
		o.Table = "daily_bars"
	}
	return o
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ClickHouseSource reads daily bars from a ClickHouse table of the shape
// created by EnsureSchema.
type ClickHouseSource struct {
	conn  clickhouse.Conn
	db    string
	table string
	log   *zap.Logger
}

var _ BarSource = (*ClickHouseSource)(nil)

// NewClickHouseSource connects and pings the server.
func NewClickHouseSource(ctx context.Context, opts ClickHouseOptions, log *zap.Logger) (*ClickHouseSource, error) {
	if log == nil {
		log = zap.NewNop()
	}
	opts = opts.withDefaults()
	if !identRe.MatchString(opts.Database) || !identRe.MatchString(opts.Table) {
		return nil, &SourceError{
			Source:  "clickhouse",
			Code:    "INVALID_TABLE",
			Message: fmt.Sprintf("invalid database or table name %q.%q", opts.Database, opts.Table),
		}
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{opts.Addr},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, &SourceError{Source: "clickhouse", Code: "UNAVAILABLE", Message: fmt.Sprintf("ping: %v", err)}
	}
	return &ClickHouseSource{
		conn:  conn,
		db:    opts.Database,
		table: opts.Table,
		log:   log.Named("clickhouse"),
	}, nil
}

func (c *ClickHouseSource) qualified() string {
	return c.db + "." + c.table
}

// EnsureSchema creates the bars table if it does not exist.
func (c *ClickHouseSource) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			symbol LowCardinality(String),
			day Date,
			open Float64,
			high Float64,
			low Float64,
			close Float64,
			volume Float64,
			ingested_at DateTime64(3)
		)
		ENGINE = ReplacingMergeTree(ingested_at)
		ORDER BY (symbol, day)
	`, c.qualified())
	if err := c.conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

func (c *ClickHouseSource) GetBars(ctx context.Context, symbol string, start, end time.Time) ([]model.Bar, error) {
	q := fmt.Sprintf(`
		SELECT day, open, high, low, close, volume
		FROM %s FINAL
		WHERE symbol = ? AND day >= ? AND day <= ?
		ORDER BY day`, c.qualified())

	rows, err := c.conn.Query(ctx, q, symbol, model.Day(start), model.Day(end))
	if err != nil {
		return nil, &SourceError{Source: "clickhouse", Code: "QUERY_FAILED", Message: err.Error()}
	}
	defer rows.Close()

	var bars []model.Bar
	for rows.Next() {
		var b model.Bar
		if err := rows.Scan(&b.Timestamp, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		b.Timestamp = model.Day(b.Timestamp)
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read bars: %w", err)
	}
	c.log.Debug("bars loaded", zap.String("symbol", symbol), zap.Int("count", len(bars)))
	return bars, nil
}

// Insert appends bars for symbol in one batch. Re-inserting a day replaces it
// once ClickHouse merges.
func (c *ClickHouseSource) Insert(ctx context.Context, symbol string, bars []model.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	batch, err := c.conn.PrepareBatch(ctx, fmt.Sprintf("INSERT INTO %s", c.qualified()))
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	now := time.Now().UTC()
	for _, b := range bars {
		if err := batch.Append(symbol, model.Day(b.Timestamp), b.Open, b.High, b.Low, b.Close, b.Volume, now); err != nil {
			return fmt.Errorf("batch append: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("batch send: %w", err)
	}
	c.log.Info("bars inserted", zap.String("symbol", symbol), zap.Int("count", len(bars)))
	return nil
}

func (c *ClickHouseSource) Close() error {
	return c.conn.Close()
}
