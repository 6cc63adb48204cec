package pipeline

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DateLayout is the ISO form used for the date field of both reports.
	DateLayout = "2006-01-02T15:04:05"

	pricePlaces = 2
)

var (
	errMissing  = errors.New("value missing")
	errNegative = errors.New("value is negative")
)

// Normalize parses every sample and returns the records ordered by instant.
// Input order does not matter; ties on the instant are broken by price so that
// any permutation of the same batch produces the same sequence.
func Normalize(samples []RawSample) ([]NormalizedRecord, error) {
	records := make([]NormalizedRecord, 0, len(samples))
	for i, sample := range samples {
		record, err := normalizeSample(i, sample)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Instant.Equal(records[j].Instant) {
			return records[i].Instant.Before(records[j].Instant)
		}
		return records[i].Price.LessThan(records[j].Price)
	})
	return records, nil
}

func normalizeSample(index int, sample RawSample) (NormalizedRecord, error) {
	instant, err := parseInstant(sample.Timestamp)
	if err != nil {
		return NormalizedRecord{}, &FormatError{Index: index, Field: "timestamp", Value: sample.Timestamp, Err: err}
	}

	price, err := parsePrice(sample.Price)
	if err != nil {
		return NormalizedRecord{}, &FormatError{Index: index, Field: "price", Value: sample.Price, Err: err}
	}

	return NormalizedRecord{
		Instant:   instant,
		Date:      instant.Format(DateLayout),
		Price:     price,
		DayOfWeek: instant.Weekday().String(),
	}, nil
}

// parseInstant reads epoch milliseconds and drops the sub-second part.
func parseInstant(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errMissing
	}
	ms, err := decimal.NewFromString(raw)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms.IntPart()).UTC().Truncate(time.Second), nil
}

// parsePrice rounds half to even at two places.
func parsePrice(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Decimal{}, errMissing
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if price.IsNegative() {
		return decimal.Decimal{}, errNegative
	}
	return price.RoundBank(pricePlaces), nil
}
