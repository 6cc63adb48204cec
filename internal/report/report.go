package report

import (
	"github.com/guregu/null/v6"

	"bitcoin-stats/internal/pipeline"
)

// NA is written in place of values the first movement row cannot have.
const NA = "na"

// Kind identifies one of the two reports.
type Kind string

const (
	KindMovement   Kind = "movement"
	KindVolatility Kind = "volatility"
)

// Failure is the single-field body returned instead of a report array.
type Failure struct {
	Status string `json:"status"`
}

// FailureFor returns the fixed envelope of a report kind.
func FailureFor(kind Kind) Failure {
	if kind == KindVolatility {
		return Failure{Status: "Failure while fetching bitcoin historical stats data"}
	}
	return Failure{Status: "Failure while fetching bitcoin data"}
}

// MovementRow is the wire form of pipeline.DailySample.
type MovementRow struct {
	Date           string  `json:"date"`
	Price          float64 `json:"price"`
	DayOfWeek      string  `json:"dayOfWeek"`
	Direction      string  `json:"direction"`
	Change         any     `json:"change"`
	HighSinceStart any     `json:"highSinceStart"`
	LowSinceStart  any     `json:"lowSinceStart"`
}

// StatRow is the wire form of pipeline.DailyStat.
type StatRow struct {
	Date            string  `json:"date"`
	Price           float64 `json:"price"`
	DailyAverage    float64 `json:"dailyAverage"`
	DailyVariance   float64 `json:"dailyVariance"`
	VolatilityAlert bool    `json:"volatilityAlert"`
}

// Movement converts annotated samples to wire rows, keeping order. The result
// is never nil so an empty report encodes as [].
func Movement(samples []pipeline.DailySample) []MovementRow {
	rows := make([]MovementRow, 0, len(samples))
	for _, s := range samples {
		rows = append(rows, MovementRow{
			Date:           s.Date,
			Price:          s.Price.InexactFloat64(),
			DayOfWeek:      s.DayOfWeek,
			Direction:      string(s.Direction),
			Change:         floatOrNA(s.Change),
			HighSinceStart: boolOrNA(s.HighSinceStart),
			LowSinceStart:  boolOrNA(s.LowSinceStart),
		})
	}
	return rows
}

// Volatility converts daily stats to wire rows, keeping order.
func Volatility(stats []pipeline.DailyStat) []StatRow {
	rows := make([]StatRow, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, StatRow{
			Date:            s.Date,
			Price:           s.Price.InexactFloat64(),
			DailyAverage:    s.DailyAverage,
			DailyVariance:   s.DailyVariance,
			VolatilityAlert: s.VolatilityAlert,
		})
	}
	return rows
}

func floatOrNA(v null.Float) any {
	if !v.Valid {
		return NA
	}
	return v.Float64
}

func boolOrNA(v null.Bool) any {
	if !v.Valid {
		return NA
	}
	return v.Bool
}
