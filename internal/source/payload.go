package source

import (
	"bytes"
	"encoding/json"
	"fmt"

	"bitcoin-stats/internal/pipeline"
)

// historyResponse mirrors the coinranking history document. Entries stay raw so
// that bad prices or timestamps reach the normalizer instead of failing here.
type historyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    *struct {
		Change  json.RawMessage   `json:"change"`
		History []json.RawMessage `json:"history"`
	} `json:"data"`
}

type historyPoint struct {
	Price     json.RawMessage `json:"price"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// decodeHistory turns a history document into raw samples.
func decodeHistory(body []byte) ([]pipeline.RawSample, error) {
	var doc historyResponse
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode body: %w", ErrSourceUnavailable, err)
	}
	if doc.Status != "" && doc.Status != "success" {
		return nil, fmt.Errorf("%w: status %q: %s", ErrSourceUnavailable, doc.Status, doc.Message)
	}
	if doc.Data == nil || doc.Data.History == nil {
		return nil, fmt.Errorf("%w: body has no data.history", ErrSourceUnavailable)
	}
	if len(doc.Data.History) == 0 {
		return nil, ErrEmptyResult
	}

	samples := make([]pipeline.RawSample, 0, len(doc.Data.History))
	for i, entry := range doc.Data.History {
		var point historyPoint
		if err := json.Unmarshal(entry, &point); err != nil {
			return nil, fmt.Errorf("%w: history[%d] is not an object: %w", ErrSourceUnavailable, i, err)
		}
		samples = append(samples, pipeline.RawSample{
			Timestamp: tokenText(point.Timestamp),
			Price:     tokenText(point.Price),
		})
	}
	return samples, nil
}

// tokenText returns the text of a JSON scalar: strings unquoted, numbers as
// written, null or absent as "".
func tokenText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}
