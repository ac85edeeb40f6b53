// Package report turns a family's transactions into the bucketed and
// per-category figures shown on the reports and dashboard screens.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidPeriod = errors.New("invalid period")

type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

var Periods = []Period{PeriodWeek, PeriodMonth, PeriodYear}

func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PeriodWeek, PeriodMonth, PeriodYear:
		return p, nil
	}

	return "", fmt.Errorf("%w %q: must be week, month or year", ErrInvalidPeriod, s)
}

// Next cycles week, month, year.
func (p Period) Next() Period {
	switch p {
	case PeriodWeek:
		return PeriodMonth
	case PeriodMonth:
		return PeriodYear
	default:
		return PeriodWeek
	}
}

// ResolvePeriodRange returns the inclusive range a report for period covers
// when requested at ref. Weeks start on Monday. The end is always the last
// millisecond of ref's day, in ref's location.
func ResolvePeriodRange(period Period, ref time.Time) (time.Time, time.Time, error) {
	loc := ref.Location()
	y, m, d := ref.Date()

	end := time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)

	var start time.Time

	switch period {
	case PeriodWeek:
		sinceMonday := (int(ref.Weekday()) + 6) % 7
		start = time.Date(y, m, d-sinceMonday, 0, 0, 0, 0, loc)
	case PeriodMonth:
		start = time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case PeriodYear:
		start = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w %q", ErrInvalidPeriod, period)
	}

	return start, end, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}
