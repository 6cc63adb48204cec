// Package pipeline turns a raw batch of price ticks into the two daily reports:
// the movement report (direction, change, since-start extrema per daily anchor)
// and the volatility report (intraday mean, variance and alert per daily anchor).
//
// Every function in this package is pure: the same input yields the same output,
// and no state survives between calls.
package pipeline

import (
	"time"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

// RawSample is one tick as delivered by a history source. Both fields keep the
// upstream text so that malformed values surface as format errors here rather
// than being coerced by the transport.
type RawSample struct {
	// Timestamp is the epoch time in milliseconds.
	Timestamp string
	// Price is a decimal string.
	Price string
}

// NormalizedRecord is a typed sample truncated to second precision.
type NormalizedRecord struct {
	Instant   time.Time
	Date      string // 2006-01-02T15:04:05, UTC
	Price     decimal.Decimal
	DayOfWeek string
}

// Direction describes how an anchor price moved against the previous anchor.
type Direction string

const (
	DirectionNA   Direction = "na"
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionSame Direction = "same"
)

// DailySample is one row of the movement report. Change and the since-start
// flags are invalid on the first row, which has no predecessor.
type DailySample struct {
	NormalizedRecord
	Direction      Direction
	Change         null.Float
	HighSinceStart null.Bool
	LowSinceStart  null.Bool
}

// DailyStat is one row of the volatility report.
type DailyStat struct {
	NormalizedRecord
	DailyAverage    float64
	DailyVariance   float64
	DailyStdDev     float64
	WindowSize      int
	VolatilityAlert bool
}
