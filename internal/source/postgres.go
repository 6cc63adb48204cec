package source

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"bitcoin-stats/internal/config"
	"bitcoin-stats/internal/pipeline"
	"bitcoin-stats/internal/storage"
)

// Postgres replays archived ticks from the price_history table.
type Postgres struct {
	reader storage.PriceHistoryReader
	now    func() time.Time
	logger zerolog.Logger
}

// NewPostgres constructs a database-backed history source.
func NewPostgres(reader storage.PriceHistoryReader, logger zerolog.Logger) *Postgres {
	return &Postgres{
		reader: reader,
		now:    time.Now,
		logger: logger.With().Str("component", "postgres_source").Logger(),
	}
}

// FetchHistory lists the ticks newer than now minus the timeframe.
func (p *Postgres) FetchHistory(ctx context.Context, assetID int, timeframe string) ([]pipeline.RawSample, error) {
	lookback, err := config.ParseTimeframe(timeframe)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	since := p.now().Add(-lookback)
	points, err := p.reader.ListPriceHistory(ctx, assetID, since)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	if len(points) == 0 {
		return nil, ErrEmptyResult
	}

	samples := make([]pipeline.RawSample, 0, len(points))
	for _, point := range points {
		samples = append(samples, pipeline.RawSample{
			Timestamp: strconv.FormatInt(point.TimestampMs, 10),
			Price:     point.Price,
		})
	}

	p.logger.Debug().
		Int("asset_id", assetID).
		Time("since", since).
		Int("samples", len(samples)).
		Msg("loaded archived price history")
	return samples, nil
}

var _ HistorySource = (*Postgres)(nil)
