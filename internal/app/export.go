package app

import (
	"context"
	"errors"

	"bitcoin-stats/internal/report"
	"bitcoin-stats/internal/service"
)

// ExportOptions hold parameters for exporting the daily reports.
type ExportOptions struct {
	Query   service.Query
	CSVPath string
	PNGPath string
}

// Export renders the joined daily reports as CSV and/or PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	svc, closeSource, err := a.newService(ctx, nil, nil)
	defer closeSource()
	if err != nil {
		return err
	}

	days, err := svc.Daily(ctx, opts.Query)
	if err != nil {
		return err
	}
	a.Logger.Info().Int("days", len(days)).Msg("exporting daily reports")

	if opts.CSVPath != "" {
		if err := report.WriteCSVFile(opts.CSVPath, days); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		chartOpts := report.ChartOptions{
			Width:  a.Config.Export.ChartWidth,
			Height: a.Config.Export.ChartHeight,
		}
		if err := report.WritePNGFile(opts.PNGPath, days, chartOpts); err != nil {
			return err
		}
	}

	return nil
}
