package config

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

var timeframes = map[string]time.Duration{
	"24h": day,
	"7d":  7 * day,
	"30d": 30 * day,
	"1y":  365 * day,
	"5y":  5 * 365 * day,
}

// ParseTimeframe maps a history timeframe token to its lookback window.
func ParseTimeframe(tf string) (time.Duration, error) {
	d, ok := timeframes[tf]
	if !ok {
		return 0, fmt.Errorf("unsupported timeframe %q (want 24h, 7d, 30d, 1y or 5y)", tf)
	}
	return d, nil
}
