package analysis

import (
	"strconv"
	"strings"
	"time"
)

// Spreadsheet date serials count days from this epoch.
var sheetEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// ParseTimestamp coerces a raw timestamp cell to a UTC instant. Accepted
// forms: a time.Time, a numeric spreadsheet day-count serial, or a date-like
// string. ok is false when the value cannot be interpreted as a date.
func ParseTimestamp(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), true
	case float64:
		return fromSerial(t), true
	case int:
		return fromSerial(float64(t)), true
	case int64:
		return fromSerial(float64(t)), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC(), true
			}
		}
		if serial, err := strconv.ParseFloat(s, 64); err == nil {
			return fromSerial(serial), true
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func fromSerial(days float64) time.Time {
	return sheetEpoch.Add(time.Duration(days * 24 * float64(time.Hour))).UTC()
}
