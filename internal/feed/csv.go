package feed

import (
	"context"
	"time"

	"github.com/amirphl/pantheon/internal/candle"
)

// CSVSource reads a Date,Open,High,Low,Close,Volume file. The file holds one
// symbol; the requested symbol is only used to label the bars.
type CSVSource struct {
	Path string
}

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

func (s *CSVSource) Name() string { return "csv" }

func (s *CSVSource) Bars(ctx context.Context, symbol string, from, to time.Time) ([]candle.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bars, err := candle.LoadCSV(s.Path, symbol)
	if err != nil {
		return nil, err
	}
	return finalize(bars, from, to)
}
