package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"bitcoin-stats/internal/pipeline"
	"bitcoin-stats/internal/version"
)

const (
	defaultBaseURL     = "https://api.coinranking.com/v1/public"
	defaultURLTemplate = "/coin/%d/history/%s"
	maxBodyBytes       = 16 << 20
)

// CoinrankingOptions parameterise the coinranking history client.
type CoinrankingOptions struct {
	BaseURL        string
	URLTemplate    string
	Timeout        time.Duration
	RequestsPerSec int
	UserAgent      string
}

// Coinranking fetches price history from the coinranking public API.
type Coinranking struct {
	opts    CoinrankingOptions
	logger  zerolog.Logger
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
}

// NewCoinranking constructs a coinranking history source.
func NewCoinranking(opts CoinrankingOptions, logger zerolog.Logger) *Coinranking {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = 5
	}
	if opts.URLTemplate == "" {
		opts.URLTemplate = defaultURLTemplate
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Coinranking{
		opts:    opts,
		logger:  logger.With().Str("component", "coinranking_source").Logger(),
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.RequestsPerSec),
		baseURL: baseURL,
	}
}

// FetchHistory performs one GET against the history endpoint. Failures are
// returned as is; retrying is left to the caller.
func (c *Coinranking) FetchHistory(ctx context.Context, assetID int, timeframe string) ([]pipeline.RawSample, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %w", ErrSourceUnavailable, err)
	}

	endpoint := c.baseURL + fmt.Sprintf(c.opts.URLTemplate, assetID, timeframe)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", version.UserAgent())
	}

	c.logger.Debug().Str("url", endpoint).Msg("fetching price history")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrSourceUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseHTTPError(resp.StatusCode, payload)
	}

	samples, err := decodeHistory(payload)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Int("samples", len(samples)).Int("asset_id", assetID).Str("timeframe", timeframe).Msg("fetched price history")
	return samples, nil
}

type errorResponse struct {
	Status  string `json:"status"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

func parseHTTPError(status int, payload []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil {
		if apiErr.Message != "" {
			return fmt.Errorf("%w: coinranking error (%d): %s", ErrSourceUnavailable, status, apiErr.Message)
		}
		if apiErr.Type != "" {
			return fmt.Errorf("%w: coinranking error (%d): %s", ErrSourceUnavailable, status, apiErr.Type)
		}
	}
	if len(payload) > 0 {
		return fmt.Errorf("%w: coinranking error (%d): %s", ErrSourceUnavailable, status, strings.TrimSpace(string(payload)))
	}
	return fmt.Errorf("%w: coinranking error (%d)", ErrSourceUnavailable, status)
}

var _ HistorySource = (*Coinranking)(nil)
