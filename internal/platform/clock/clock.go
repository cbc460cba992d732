package clock

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Clock abstracts time to keep usecases deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f).UTC()
}

// DateOf returns the calendar date of t as observed in loc, as UTC midnight.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// Yesterday is the calendar date before the one now falls on in loc.
func Yesterday(now time.Time, loc *time.Location) time.Time {
	return DateOf(now, loc).AddDate(0, 0, -1)
}

func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

func ParseDate(raw string) (time.Time, error) {
	d, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return d, nil
}
