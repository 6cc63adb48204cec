package app

import (
	"context"
	"encoding/json"
	"fmt"

	"bitcoin-stats/internal/report"
	"bitcoin-stats/internal/service"
)

// Report prints one report as JSON. Failures print the fixed envelope of the
// report kind instead; the cause goes to the log only.
func (a *App) Report(ctx context.Context, kind report.Kind, q service.Query) error {
	svc, closeSource, err := a.newService(ctx, nil, nil)
	defer closeSource()
	if err != nil {
		return err
	}

	var body any
	switch kind {
	case report.KindMovement:
		samples, fetchErr := svc.MovementReport(ctx, q)
		body, err = report.Movement(samples), fetchErr
	case report.KindVolatility:
		stats, fetchErr := svc.VolatilityReport(ctx, q)
		body, err = report.Volatility(stats), fetchErr
	default:
		return fmt.Errorf("unknown report %q (want movement or volatility)", kind)
	}

	if err != nil {
		a.Logger.Error().Err(err).
			Str("report", string(kind)).
			Int("asset_id", q.AssetID).
			Str("timeframe", q.Timeframe).
			Msg("report failed")
		body = report.FailureFor(kind)
	}

	encoder := json.NewEncoder(a.Out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(body)
}
