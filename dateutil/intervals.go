// Package dateutil provides publication date parsing and interval handling.
package dateutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/jinzhu/now"
)

// Interval groups start and end.
type Interval struct {
	Start time.Time
	End   time.Time
}

// String renders an interval.
func (iv Interval) String() string {
	return fmt.Sprintf("%s %s", iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339))
}

type (
	// PadFunc allows to move a given time back and forth.
	PadFunc func(t time.Time) time.Time
	// IntervalFunc takes a start and endtime and returns a number of
	// intervals. How intervals are generated is flexible.
	IntervalFunc func(s, e time.Time) []Interval
)

var (
	// Yearly will chop up a timespan into calendar years.
	Yearly = makeIntervalFunc(padLYear, padRYear)

	padLYear = func(t time.Time) time.Time { return now.With(t).BeginningOfYear() }
	padRYear = func(t time.Time) time.Time { return now.With(t).EndOfYear() }
)

// Parse parses a date string in any of the layouts dateparse knows.
func Parse(value string) (time.Time, error) {
	return dateparse.ParseStrict(value)
}

// Year extracts a publication year from values like "2021", "2021-03" or
// "2019 EA". Values starting with four digits fall back to those digits.
func Year(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if t, err := Parse(value); err == nil {
		return t.Year(), true
	}
	if len(value) >= 4 {
		if y, err := strconv.Atoi(value[:4]); err == nil && y > 0 {
			return y, true
		}
	}
	return 0, false
}

// YearSpan returns one interval per calendar year, first through last.
func YearSpan(first, last int) []Interval {
	if last < first {
		return nil
	}
	start := time.Date(first, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(last+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	return Yearly(start, end)
}

// makeIntervalFunc is a helper to create yearly and other
// intervals. Given two shiftFuncs (to mark the beginning of an interval and
// the end), we return a function, that will allow us to generate intervals.
func makeIntervalFunc(padLeft, padRight PadFunc) IntervalFunc {
	return func(start, end time.Time) (result []Interval) {
		if end.Before(start) || end.Equal(start) {
			return
		}
		end = end.Add(-1 * time.Second)
		var (
			l time.Time = start
			r time.Time
		)
		for {
			r = padRight(l)
			result = append(result, Interval{l, r})
			l = padLeft(r.Add(1 * time.Second))
			if l.After(end) {
				break
			}
		}
		return result
	}
}
