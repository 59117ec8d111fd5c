// Package schedule computes the next reminder date for a recurring
// household task from a frequency expressed in months.
package schedule

import (
	"fmt"
	"math"
	"time"
)

// ISODate is the wire format for dates throughout hearth.
const ISODate = "2006-01-02"

// NextDate returns the date of the next occurrence after from, given a
// positive frequency in months.
//
// Frequencies below one month are treated as day-based: the interval is
// round(frequencyMonths * 30) calendar days. Note that a quarter month
// rounds to 8 days, not 7 — callers that need an exact week must pass a
// day-equivalent frequency instead.
//
// Frequencies of one month or more add whole calendar months. When the
// source day-of-month does not exist in the target month (Jan 31 plus one
// month), the result is clamped to the last day of the target month rather
// than rolling into the month after.
func NextDate(from time.Time, frequencyMonths float64) time.Time {
	if frequencyMonths < 1 {
		days := int(math.Round(frequencyMonths * 30))
		return from.AddDate(0, 0, days)
	}

	months := int(frequencyMonths)
	year, month, day := from.Date()

	// First of the intended target month, then clamp the day.
	first := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, from.Location())
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day,
		from.Hour(), from.Minute(), from.Second(), from.Nanosecond(), from.Location())
}

// NextDateISO is NextDate over ISO 8601 date strings (YYYY-MM-DD).
func NextDateISO(fromISO string, frequencyMonths float64) (string, error) {
	from, err := time.Parse(ISODate, fromISO)
	if err != nil {
		return "", fmt.Errorf("parsing date %q: %w", fromISO, err)
	}
	return NextDate(from, frequencyMonths).Format(ISODate), nil
}
