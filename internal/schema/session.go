// Package schema normalizes externally-supplied auxiliary series into the
// optimizer's canonical types. Legacy field spellings from older exporters
// are accepted here, at the boundary, and nowhere else: the optimizer only
// ever sees {timestamp, predicted_kw} and {date, peak_kw}.
package schema

import (
	"encoding/json"
	"strconv"
	"time"

	"peakplan/internal/optimizer"
)

// Alias sets for legacy exporters. Canonical name first.
var (
	timestampKeys = []string{"timestamp", "ts", "time", "datetime"}
	predictedKeys = []string{"predicted_kw", "predicted", "prediction_kw", "power_kw", "kw"}
	dateKeys      = []string{"date", "day"}
	peakKeys      = []string{"peak_kw", "peak", "max_kw", "daily_peak_kw"}
)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseSessionSeries decodes a session prediction series. Unparsable input
// yields nil: the series is an optional enrichment and its absence is not
// an error (the caller proceeds without it).
func ParseSessionSeries(raw json.RawMessage) []optimizer.SessionPoint {
	if len(raw) == 0 {
		return nil
	}

	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil
	}

	out := make([]optimizer.SessionPoint, 0, len(records))
	for _, rec := range records {
		kw, ok := lookupNumber(rec, predictedKeys)
		if !ok {
			continue
		}
		ts, _ := lookupTimestamp(rec, timestampKeys)
		out = append(out, optimizer.SessionPoint{Timestamp: ts, PredictedKW: kw})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ParseHistoricalPeaks decodes a daily-peak series. Same soft-failure
// contract as ParseSessionSeries.
func ParseHistoricalPeaks(raw json.RawMessage) []optimizer.HistoricalPeak {
	if len(raw) == 0 {
		return nil
	}

	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil
	}

	out := make([]optimizer.HistoricalPeak, 0, len(records))
	for _, rec := range records {
		kw, ok := lookupNumber(rec, peakKeys)
		if !ok {
			continue
		}
		date, _ := lookupString(rec, dateKeys)
		out = append(out, optimizer.HistoricalPeak{Date: date, PeakKW: kw})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func lookupNumber(rec map[string]any, keys []string) (float64, bool) {
	for _, k := range keys {
		v, ok := rec[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func lookupString(rec map[string]any, keys []string) (string, bool) {
	for _, k := range keys {
		if v, ok := rec[k].(string); ok {
			return v, true
		}
	}
	return "", false
}

func lookupTimestamp(rec map[string]any, keys []string) (time.Time, bool) {
	s, ok := lookupString(rec, keys)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
