package feed

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/amirphl/pantheon/internal/candle"
	"github.com/amirphl/pantheon/internal/config"
)

// PostgresSource reads bars from a candles table:
//
//	candles(symbol, timeframe, timestamp, open, high, low, close, volume, source)
//
// It never writes.
type PostgresSource struct {
	db        *sql.DB
	timeframe string
}

// OpenPostgres connects with the lib/pq driver and checks the connection.
func OpenPostgres(cfg config.DB, timeframe string) (*PostgresSource, error) {
	db, err := sql.Open("postgres", cfg.ConnStr)
	if err != nil {
		return nil, fmt.Errorf("OpenPostgres | failed to open database: %w", err)
	}
	if cfg.MaxOpen > 0 {
		db.SetMaxOpenConns(cfg.MaxOpen)
	}
	db.SetMaxIdleConns(cfg.MaxIdle)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("OpenPostgres | failed to reach database: %w", err)
	}
	return NewPostgresSource(db, timeframe), nil
}

func NewPostgresSource(db *sql.DB, timeframe string) *PostgresSource {
	return &PostgresSource{db: db, timeframe: timeframe}
}

func (p *PostgresSource) Name() string { return "postgres" }

func (p *PostgresSource) Close() error { return p.db.Close() }

func (p *PostgresSource) Bars(ctx context.Context, symbol string, from, to time.Time) ([]candle.Bar, error) {
	query := `
		SELECT timestamp, open, high, low, close, volume, symbol, source
		FROM candles
		WHERE symbol=$1 AND timeframe=$2`
	args := []any{symbol, p.timeframe}

	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(" AND timestamp >= $%d", len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(" AND timestamp < $%d", len(args))
	}
	query += " ORDER BY timestamp ASC"

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candles: %w", err)
	}
	defer rows.Close()

	var bars []candle.Bar
	for rows.Next() {
		var b candle.Bar
		if err := rows.Scan(&b.Timestamp, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume, &b.Symbol, &b.Source); err != nil {
			return nil, fmt.Errorf("failed to scan candle: %w", err)
		}
		b.Timestamp = b.Timestamp.UTC()
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candle rows: %w", err)
	}

	return finalize(bars, from, to)
}
