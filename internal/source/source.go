package source

import (
	"context"
	"errors"

	"bitcoin-stats/internal/pipeline"
)

var (
	// ErrSourceUnavailable covers transport failures and bodies of an unusable shape.
	ErrSourceUnavailable = errors.New("history source unavailable")
	// ErrEmptyResult means the source answered but had no history.
	ErrEmptyResult = errors.New("history source returned no samples")
)

// HistorySource retrieves the raw price ticks of one asset over a lookback window.
type HistorySource interface {
	FetchHistory(ctx context.Context, assetID int, timeframe string) ([]pipeline.RawSample, error)
}
