package pipeline

import "strings"

const midnightSuffix = "T00:00:00"

// DailySeries holds the midnight anchors next to the full ordered series the
// anchors were taken from.
type DailySeries struct {
	Anchors []NormalizedRecord
	Records []NormalizedRecord
}

// SampleDaily keeps the records stamped exactly at midnight, in order.
// A feed that skips a midnight tick loses that day from both reports.
func SampleDaily(records []NormalizedRecord) DailySeries {
	anchors := make([]NormalizedRecord, 0, len(records)/24+1)
	for _, record := range records {
		if strings.HasSuffix(record.Date, midnightSuffix) {
			anchors = append(anchors, record)
		}
	}
	return DailySeries{Anchors: anchors, Records: records}
}
