package sales

import (
	"time"

	"github.com/example/footwear-pos/domain/apperr"
	"github.com/example/footwear-pos/domain/ledger"
)

// ParseDateRange builds a ledger range from optional start and end strings.
// Both empty means no range. A missing start means the beginning of time and
// a missing end means now. A date-only end covers the whole day.
func ParseDateRange(start, end string, now time.Time) (*ledger.DateRange, error) {
	if start == "" && end == "" {
		return nil, nil
	}

	rng := &ledger.DateRange{Start: time.Unix(0, 0).UTC(), End: now.UTC()}
	if start != "" {
		t, _, err := parseDate(start)
		if err != nil {
			return nil, apperr.Invalid("start", "must be RFC3339 or YYYY-MM-DD")
		}
		rng.Start = t
	}
	if end != "" {
		t, wholeDay, err := parseDate(end)
		if err != nil {
			return nil, apperr.Invalid("end", "must be RFC3339 or YYYY-MM-DD")
		}
		if wholeDay {
			t = t.AddDate(0, 0, 1).Add(-time.Second)
		}
		rng.End = t
	}
	if rng.End.Before(rng.Start) {
		return nil, apperr.Invalid("end", "must not be before start")
	}
	return rng, nil
}

func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), false, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}
