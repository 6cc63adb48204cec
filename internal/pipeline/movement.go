package pipeline

import (
	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

// AnnotateMovement folds over the anchors once, left to right, and returns a
// new row per anchor. The first row carries no comparison values.
func AnnotateMovement(anchors []NormalizedRecord) []DailySample {
	samples := make([]DailySample, 0, len(anchors))

	var running movementState
	for i, anchor := range anchors {
		if i == 0 {
			running = movementState{previous: anchor.Price, high: anchor.Price, low: anchor.Price}
			samples = append(samples, DailySample{NormalizedRecord: anchor, Direction: DirectionNA})
			continue
		}
		samples = append(samples, running.advance(anchor))
	}
	return samples
}

type movementState struct {
	previous decimal.Decimal
	high     decimal.Decimal
	low      decimal.Decimal
}

// advance compares against the previous anchor, then flags the current price
// against the extrema updated to include it.
func (s *movementState) advance(anchor NormalizedRecord) DailySample {
	current := anchor.Price
	delta := current.Sub(s.previous)

	s.high = decimal.Max(s.high, current)
	s.low = decimal.Min(s.low, current)
	s.previous = current

	return DailySample{
		NormalizedRecord: anchor,
		Direction:        classify(delta),
		Change:           null.FloatFrom(delta.InexactFloat64()),
		HighSinceStart:   null.BoolFrom(current.Equal(s.high)),
		LowSinceStart:    null.BoolFrom(current.Equal(s.low)),
	}
}

func classify(delta decimal.Decimal) Direction {
	switch delta.Sign() {
	case 1:
		return DirectionUp
	case -1:
		return DirectionDown
	default:
		return DirectionSame
	}
}
