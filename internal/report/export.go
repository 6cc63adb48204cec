package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
)

// ChartOptions size the rendered PNG.
type ChartOptions struct {
	Width  int
	Height int
}

var csvHeader = []string{
	"date", "day_of_week", "price", "direction", "change", "high_since_start", "low_since_start",
	"daily_average", "daily_variance", "volatility_alert",
}

// WriteCSVFile writes joined daily rows to path, creating parent directories.
func WriteCSVFile(path string, days []Day) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteCSV(file, days)
}

// WriteCSV writes joined daily rows as CSV.
func WriteCSV(w io.Writer, days []Day) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for _, day := range days {
		record := []string{
			day.Movement.Date,
			day.Movement.DayOfWeek,
			day.Movement.Price.StringFixed(2),
			string(day.Movement.Direction),
			day.ChangeText(),
			day.HighText(),
			day.LowText(),
			strconv.FormatFloat(day.Stat.DailyAverage, 'f', -1, 64),
			strconv.FormatFloat(day.Stat.DailyVariance, 'f', -1, 64),
			strconv.FormatBool(day.Stat.VolatilityAlert),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WritePNGFile renders the anchor price and the intraday average as a line chart.
func WritePNGFile(path string, days []Day, opts ChartOptions) error {
	if len(days) < 2 {
		return errors.New("chart needs at least two days of data")
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return renderChart(file, days, opts)
}

func renderChart(w io.Writer, days []Day, opts ChartOptions) error {
	if opts.Width <= 0 {
		opts.Width = 1280
	}
	if opts.Height <= 0 {
		opts.Height = 720
	}

	x := make([]time.Time, len(days))
	price := make([]float64, len(days))
	average := make([]float64, len(days))
	stdDev := make([]float64, len(days))

	for i, day := range days {
		x[i] = day.Movement.Instant
		price[i] = day.Movement.Price.InexactFloat64()
		average[i] = day.Stat.DailyAverage
		stdDev[i] = day.Stat.DailyStdDev
	}

	usdFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.2f")
	}
	graph := chart.Chart{
		Width:  opts.Width,
		Height: opts.Height,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Price (USD)",
			ValueFormatter: usdFormatter,
		},
		YAxisSecondary: chart.YAxis{
			Name:           "Std dev (USD)",
			ValueFormatter: usdFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Midnight price",
				XValues: x,
				YValues: price,
			},
			chart.TimeSeries{
				Name:    "Daily average",
				XValues: x,
				YValues: average,
			},
		},
	}
	// a flat secondary series has a zero range, which go-chart refuses to render
	if varies(stdDev) {
		graph.Series = append(graph.Series, chart.TimeSeries{
			Name:    "Daily std dev",
			XValues: x,
			YValues: stdDev,
			YAxis:   chart.YAxisSecondary,
		})
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func varies(values []float64) bool {
	for _, v := range values {
		if v != values[0] {
			return true
		}
	}
	return false
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
