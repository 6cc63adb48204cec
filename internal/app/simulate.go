package app

import (
	"context"
	"errors"

	"bitcoin-stats/internal/alerting"
	"bitcoin-stats/internal/service"
)

// SimulateAlert 取最近一个交易日的统计数据, 无论是否越界都推送一条测试告警。
func (a *App) SimulateAlert(ctx context.Context, q service.Query) error {
	if !a.Config.Alerting.Enabled {
		return errors.New("alerting 未启用")
	}

	svc, closeSource, err := a.newService(ctx, nil, nil)
	defer closeSource()
	if err != nil {
		return err
	}

	resolved, err := svc.Resolve(q)
	if err != nil {
		return err
	}
	stats, err := svc.VolatilityReport(ctx, resolved)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		return errors.New("no daily anchors to simulate with")
	}

	latest := stats[len(stats)-1]
	note := alerting.Notification{
		AssetID:       resolved.AssetID,
		Timeframe:     resolved.Timeframe,
		Date:          latest.Date,
		Price:         latest.Price,
		DailyAverage:  latest.DailyAverage,
		DailyVariance: latest.DailyVariance,
		DailyStdDev:   latest.DailyStdDev,
		WindowSize:    latest.WindowSize,
		AdditionalMsg: "(simulated)\n",
	}
	return a.newNotifier().Notify(ctx, note)
}
