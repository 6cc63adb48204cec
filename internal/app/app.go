package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"bitcoin-stats/internal/alerting"
	"bitcoin-stats/internal/config"
	"bitcoin-stats/internal/scheduler"
	"bitcoin-stats/internal/server"
	"bitcoin-stats/internal/service"
	"bitcoin-stats/internal/source"
	"bitcoin-stats/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	// Out receives report output; defaults to stdout.
	Out io.Writer
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger(), Out: os.Stdout}
}

// newSource opens the configured history source. The returned closer is
// never nil.
func (a *App) newSource(ctx context.Context) (source.HistorySource, func(), error) {
	noop := func() {}

	switch a.Config.Source.Driver {
	case config.DriverPostgres:
		pool, err := storage.NewPool(ctx, a.Config.Database)
		if err != nil {
			return nil, noop, err
		}
		store := storage.NewStore(pool)
		return source.NewPostgres(store, a.Logger), store.Close, nil
	case config.DriverFile:
		return source.NewFile(a.Config.Source.File.Path, a.Logger), noop, nil
	case config.DriverCoinranking:
		cr := a.Config.Source.Coinranking
		return source.NewCoinranking(source.CoinrankingOptions{
			BaseURL:        cr.BaseURL,
			URLTemplate:    cr.URLTemplate,
			Timeout:        cr.RequestTimeout,
			RequestsPerSec: cr.RequestsPerSec,
			UserAgent:      cr.UserAgent,
		}, a.Logger), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown source driver %q", a.Config.Source.Driver)
	}
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Enabled && a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return alerting.NewLogNotifier(a.Logger)
}

func (a *App) newService(ctx context.Context, sched *scheduler.Scheduler, notifier alerting.Notifier) (*service.Service, func(), error) {
	src, closeSource, err := a.newSource(ctx)
	if err != nil {
		return nil, closeSource, err
	}
	return service.New(a.Config, src, sched, notifier, a.Logger), closeSource, nil
}

// Serve runs the HTTP API until interrupted.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc, closeSource, err := a.newService(ctx, nil, nil)
	defer closeSource()
	if err != nil {
		return err
	}

	srv := server.New(server.Options{
		Addr:            a.Config.Server.Addr(),
		Mode:            a.Config.Server.Mode,
		ReadTimeout:     a.Config.Server.ReadTimeout,
		WriteTimeout:    a.Config.Server.WriteTimeout,
		ShutdownTimeout: a.Config.Server.ShutdownTimeout,
	}, svc, a.Logger)

	a.Logger.Info().Str("source", a.Config.Source.Driver).Msg("starting http api")
	return srv.Run(ctx)
}

// WatchOptions configure the watch command.
type WatchOptions struct {
	Once bool
}

// Watch periodically recomputes the volatility report and alerts on newly
// flagged days.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(scheduler.Options{
		Interval:        a.Config.Watch.Interval,
		AlignToInterval: a.Config.Watch.AlignToInterval,
		StartupDelay:    a.Config.Watch.StartupDelay,
		RunImmediately:  a.Config.Watch.RunImmediately,
	}, a.Logger)

	svc, closeSource, err := a.newService(ctx, sched, a.newNotifier())
	defer closeSource()
	if err != nil {
		return err
	}

	if opts.Once {
		return svc.CheckVolatility(ctx, time.Now().UTC())
	}

	a.Logger.Info().Dur("interval", a.Config.Watch.Interval).Msg("starting volatility watch")
	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("watch terminated with error")
		return err
	}

	a.Logger.Info().Msg("volatility watch stopped")
	return nil
}
