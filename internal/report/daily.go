package report

import (
	"fmt"

	"bitcoin-stats/internal/pipeline"
)

// Day joins the two report rows of one daily anchor.
type Day struct {
	Movement pipeline.DailySample
	Stat     pipeline.DailyStat
}

// Join pairs movement and stat rows computed from the same anchors.
func Join(movement []pipeline.DailySample, stats []pipeline.DailyStat) ([]Day, error) {
	if len(movement) != len(stats) {
		return nil, fmt.Errorf("report length mismatch: %d movement rows, %d stat rows", len(movement), len(stats))
	}
	days := make([]Day, 0, len(movement))
	for i := range movement {
		if !movement[i].Instant.Equal(stats[i].Instant) {
			return nil, fmt.Errorf("row %d: movement %s does not match stat %s", i, movement[i].Date, stats[i].Date)
		}
		days = append(days, Day{Movement: movement[i], Stat: stats[i]})
	}
	return days, nil
}

// ChangeText renders the change column for text outputs.
func (d Day) ChangeText() string {
	if !d.Movement.Change.Valid {
		return NA
	}
	return fmt.Sprintf("%.2f", d.Movement.Change.Float64)
}

// HighText renders the high-since-start flag for text outputs.
func (d Day) HighText() string {
	return flagText(d.Movement.HighSinceStart.Valid, d.Movement.HighSinceStart.Bool)
}

// LowText renders the low-since-start flag for text outputs.
func (d Day) LowText() string {
	return flagText(d.Movement.LowSinceStart.Valid, d.Movement.LowSinceStart.Bool)
}

func flagText(valid, v bool) string {
	if !valid {
		return NA
	}
	return fmt.Sprintf("%t", v)
}
