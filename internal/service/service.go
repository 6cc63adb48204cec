package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"bitcoin-stats/internal/alerting"
	"bitcoin-stats/internal/config"
	"bitcoin-stats/internal/pipeline"
	"bitcoin-stats/internal/report"
	"bitcoin-stats/internal/scheduler"
	"bitcoin-stats/internal/source"
)

// ErrInvalidQuery rejects an asset id or timeframe override.
var ErrInvalidQuery = errors.New("invalid history query")

// Query names the history a report is computed over. Zero fields fall back
// to the configured defaults.
type Query struct {
	AssetID   int
	Timeframe string
}

// Service computes reports from one fresh fetch per call and drives the
// periodic volatility watch.
type Service struct {
	source    source.HistorySource
	defaults  Query
	scheduler *scheduler.Scheduler
	notifier  alerting.Notifier
	logger    zerolog.Logger

	mu       sync.Mutex
	notified map[string]struct{}
}

// New constructs the report service. sched and notifier may be nil when the
// watch loop is not used.
func New(cfg *config.Config, src source.HistorySource, sched *scheduler.Scheduler, notifier alerting.Notifier, logger zerolog.Logger) *Service {
	return &Service{
		source: src,
		defaults: Query{
			AssetID:   cfg.History.AssetID,
			Timeframe: cfg.History.Timeframe,
		},
		scheduler: sched,
		notifier:  notifier,
		logger:    logger.With().Str("component", "service").Logger(),
		notified:  make(map[string]struct{}),
	}
}

// Resolve fills defaults and validates the query.
func (s *Service) Resolve(q Query) (Query, error) {
	if q.AssetID == 0 {
		q.AssetID = s.defaults.AssetID
	}
	if q.Timeframe == "" {
		q.Timeframe = s.defaults.Timeframe
	}
	if q.AssetID < 0 {
		return Query{}, fmt.Errorf("%w: asset id %d", ErrInvalidQuery, q.AssetID)
	}
	if _, err := config.ParseTimeframe(q.Timeframe); err != nil {
		return Query{}, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	return q, nil
}

// MovementReport returns the day-over-day movement of the daily anchors.
func (s *Service) MovementReport(ctx context.Context, q Query) ([]pipeline.DailySample, error) {
	series, _, err := s.load(ctx, q)
	if err != nil {
		return nil, err
	}
	return pipeline.AnnotateMovement(series.Anchors), nil
}

// VolatilityReport returns the intraday statistics of each daily anchor.
func (s *Service) VolatilityReport(ctx context.Context, q Query) ([]pipeline.DailyStat, error) {
	series, _, err := s.load(ctx, q)
	if err != nil {
		return nil, err
	}
	return pipeline.AggregateVolatility(series), nil
}

// Daily computes both reports from a single fetch and joins them per day.
func (s *Service) Daily(ctx context.Context, q Query) ([]report.Day, error) {
	series, _, err := s.load(ctx, q)
	if err != nil {
		return nil, err
	}
	return report.Join(pipeline.AnnotateMovement(series.Anchors), pipeline.AggregateVolatility(series))
}

func (s *Service) load(ctx context.Context, q Query) (pipeline.DailySeries, Query, error) {
	resolved, err := s.Resolve(q)
	if err != nil {
		return pipeline.DailySeries{}, Query{}, err
	}

	raw, err := s.source.FetchHistory(ctx, resolved.AssetID, resolved.Timeframe)
	if err != nil {
		return pipeline.DailySeries{}, Query{}, fmt.Errorf("fetch history: %w", err)
	}

	records, err := pipeline.Normalize(raw)
	if err != nil {
		return pipeline.DailySeries{}, Query{}, fmt.Errorf("normalize history: %w", err)
	}

	series := pipeline.SampleDaily(records)
	s.logger.Debug().
		Int("asset_id", resolved.AssetID).
		Str("timeframe", resolved.Timeframe).
		Int("records", len(series.Records)).
		Int("anchors", len(series.Anchors)).
		Msg("history loaded")
	return series, resolved, nil
}

// Run begins the periodic volatility watch.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, s.CheckVolatility)
}

// CheckVolatility recomputes the default volatility report and notifies each
// flagged day once per process.
func (s *Service) CheckVolatility(ctx context.Context, at time.Time) error {
	series, q, err := s.load(ctx, Query{})
	if err != nil {
		return err
	}

	stats := pipeline.AggregateVolatility(series)
	flagged := 0
	for _, stat := range stats {
		if !stat.VolatilityAlert {
			continue
		}
		flagged++
		if !s.markNotified(q.AssetID, stat.Date) {
			continue
		}

		note := alerting.Notification{
			AssetID:       q.AssetID,
			Timeframe:     q.Timeframe,
			Date:          stat.Date,
			Price:         stat.Price,
			DailyAverage:  stat.DailyAverage,
			DailyVariance: stat.DailyVariance,
			DailyStdDev:   stat.DailyStdDev,
			WindowSize:    stat.WindowSize,
		}
		if s.notifier != nil {
			if err := s.notifier.Notify(ctx, note); err != nil {
				s.forget(q.AssetID, stat.Date)
				s.logger.Error().Err(err).Str("date", stat.Date).Msg("failed to dispatch alert")
			}
		}
	}

	s.logger.Info().Time("tick", at).Int("days", len(stats)).Int("volatile_days", flagged).Msg("volatility check finished")
	return nil
}

func (s *Service) markNotified(assetID int, date string) bool {
	key := fmt.Sprintf("%d/%s", assetID, date)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.notified[key]; seen {
		return false
	}
	s.notified[key] = struct{}{}
	return true
}

func (s *Service) forget(assetID int, date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notified, fmt.Sprintf("%d/%s", assetID, date))
}
