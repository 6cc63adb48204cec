package pipeline

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// windowSpan closes the intraday window at 23:00; the last hour of the
	// calendar day is not part of it.
	windowSpan = 23 * time.Hour

	bandWidth = 2
)

// AggregateVolatility computes, per anchor, the mean and population variance
// of every record between the anchor's midnight and 23:00 the same day, both
// ends inclusive, and raises the alert when any of those prices falls strictly
// outside mean ± 2σ.
func AggregateVolatility(series DailySeries) []DailyStat {
	stats := make([]DailyStat, 0, len(series.Anchors))
	for _, anchor := range series.Anchors {
		window := windowOf(series.Records, anchor.Instant)
		stats = append(stats, summarize(anchor, window))
	}
	return stats
}

// windowOf relies on records being sorted by instant.
func windowOf(records []NormalizedRecord, start time.Time) []NormalizedRecord {
	end := start.Add(windowSpan)
	lo := sort.Search(len(records), func(i int) bool {
		return !records[i].Instant.Before(start)
	})
	hi := sort.Search(len(records), func(i int) bool {
		return records[i].Instant.After(end)
	})
	if lo >= hi {
		return nil
	}
	return records[lo:hi]
}

func summarize(anchor NormalizedRecord, window []NormalizedRecord) DailyStat {
	stat := DailyStat{NormalizedRecord: anchor, WindowSize: len(window)}
	if len(window) == 0 {
		return stat
	}

	n := decimal.NewFromInt(int64(len(window)))
	sum := decimal.Zero
	for _, record := range window {
		sum = sum.Add(record.Price)
	}
	mean := sum.Div(n)

	squares := decimal.Zero
	for _, record := range window {
		deviation := record.Price.Sub(mean)
		squares = squares.Add(deviation.Mul(deviation))
	}
	variance := squares.Div(n)
	stdDev := math.Sqrt(variance.InexactFloat64())

	band := decimal.NewFromFloat(stdDev).Mul(decimal.NewFromInt(bandWidth))
	high := mean.Add(band)
	low := mean.Sub(band)

	alert := false
	for _, record := range window {
		if record.Price.GreaterThan(high) || record.Price.LessThan(low) {
			alert = true
			break
		}
	}

	stat.DailyAverage = mean.InexactFloat64()
	stat.DailyVariance = variance.InexactFloat64()
	stat.DailyStdDev = stdDev
	stat.VolatilityAlert = alert
	return stat
}
