package app

import (
	"context"
	"fmt"
	"text/tabwriter"

	"bitcoin-stats/internal/service"
)

// Show prints the joined daily reports as an aligned table.
func (a *App) Show(ctx context.Context, q service.Query) error {
	svc, closeSource, err := a.newService(ctx, nil, nil)
	defer closeSource()
	if err != nil {
		return err
	}

	days, err := svc.Daily(ctx, q)
	if err != nil {
		return err
	}
	if len(days) == 0 {
		fmt.Fprintln(a.Out, "no daily anchors found")
		return nil
	}

	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Date (UTC)\tDay\tPrice\tDir\tChange\tHigh\tLow\tMean\tStdDev\tAlert")

	for _, day := range days {
		alert := ""
		if day.Stat.VolatilityAlert {
			alert = "!"
		}
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\t%s\t%s\t%.2f\t%.2f\t%s\n",
			day.Movement.Date,
			day.Movement.DayOfWeek,
			day.Movement.Price.StringFixed(2),
			day.Movement.Direction,
			day.ChangeText(),
			day.HighText(),
			day.LowText(),
			day.Stat.DailyAverage,
			day.Stat.DailyStdDev,
			alert,
		)
	}

	return writer.Flush()
}
