package source

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"bitcoin-stats/internal/pipeline"
)

// File serves a history document saved from the coinranking API. The file is
// one batch, so the asset id and timeframe arguments are only logged.
type File struct {
	path   string
	logger zerolog.Logger
}

// NewFile constructs a file-backed history source.
func NewFile(path string, logger zerolog.Logger) *File {
	return &File{path: path, logger: logger.With().Str("component", "file_source").Logger()}
}

// FetchHistory reads and decodes the document on every call.
func (f *File) FetchHistory(ctx context.Context, assetID int, timeframe string) ([]pipeline.RawSample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	f.logger.Debug().Str("path", f.path).Int("asset_id", assetID).Str("timeframe", timeframe).Msg("reading price history file")
	return decodeHistory(body)
}

var _ HistorySource = (*File)(nil)
