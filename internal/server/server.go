package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"bitcoin-stats/internal/pipeline"
	"bitcoin-stats/internal/report"
	"bitcoin-stats/internal/service"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"

	healthMarker = "Success!"
)

// Reporter computes the two daily reports.
type Reporter interface {
	MovementReport(ctx context.Context, q service.Query) ([]pipeline.DailySample, error)
	VolatilityReport(ctx context.Context, q service.Query) ([]pipeline.DailyStat, error)
}

// Options configure the HTTP listener.
type Options struct {
	Addr            string
	Mode            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server exposes the reports over HTTP.
type Server struct {
	opts    Options
	reports Reporter
	engine  *gin.Engine
	logger  zerolog.Logger
}

// New builds the gin engine and registers routes.
func New(opts Options, reports Reporter, logger zerolog.Logger) *Server {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		opts:    opts,
		reports: reports,
		engine:  gin.New(),
		logger:  logger.With().Str("component", "http").Logger(),
	}
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/", s.health)
	s.engine.GET("/history/bitcoin-data", s.movement)
	s.engine.GET("/history/bitcoin-stats", s.volatility)
}

// Handler returns the routed engine.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	srv := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	go func() {
		s.logger.Info().Str("addr", s.opts.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shCtx); err != nil {
			s.logger.Warn().Err(err).Msg("http shutdown did not complete")
		}
		<-errCh
		s.logger.Info().Msg("http server stopped")
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) health(c *gin.Context) {
	c.String(http.StatusOK, healthMarker)
}

func (s *Server) movement(c *gin.Context) {
	q, err := queryFrom(c)
	if err != nil {
		s.fail(c, report.KindMovement, q, err)
		return
	}

	samples, err := s.reports.MovementReport(c.Request.Context(), q)
	if err != nil {
		s.fail(c, report.KindMovement, q, err)
		return
	}
	c.JSON(http.StatusOK, report.Movement(samples))
}

func (s *Server) volatility(c *gin.Context) {
	q, err := queryFrom(c)
	if err != nil {
		s.fail(c, report.KindVolatility, q, err)
		return
	}

	stats, err := s.reports.VolatilityReport(c.Request.Context(), q)
	if err != nil {
		s.fail(c, report.KindVolatility, q, err)
		return
	}
	c.JSON(http.StatusOK, report.Volatility(stats))
}

// fail logs the cause and answers with the fixed envelope. The status code
// stays 200; clients tell failures apart by body shape.
func (s *Server) fail(c *gin.Context, kind report.Kind, q service.Query, err error) {
	s.logger.Error().Err(err).
		Str(requestIDKey, c.GetString(requestIDKey)).
		Str("report", string(kind)).
		Int("asset_id", q.AssetID).
		Str("timeframe", q.Timeframe).
		Msg("report failed")
	c.JSON(http.StatusOK, report.FailureFor(kind))
}

func queryFrom(c *gin.Context) (service.Query, error) {
	q := service.Query{Timeframe: c.Query("timeframe")}
	if raw, ok := c.GetQuery("assetId"); ok {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return q, errors.Join(service.ErrInvalidQuery, errors.New("assetId must be a positive integer"))
		}
		q.AssetID = id
	}
	return q, nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)

		start := time.Now()
		c.Next()

		s.logger.Info().
			Str(requestIDKey, id).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request served")
	}
}
