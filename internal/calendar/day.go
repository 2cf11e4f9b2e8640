// Package calendar normalizes instants and date strings to calendar days.
//
// Two values refer to the same day only when their (year, month, day)
// tuples are equal after both were interpreted in the same, explicit
// location. Prefix comparison of timestamp strings is never used: a
// schedule stored as 2025-03-07 must match a query made at 23:30 on the
// 7th in the schedule's zone even though the UTC timestamp already reads
// the 8th.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ErrInvalidDate is returned when a value cannot be interpreted as a day.
var ErrInvalidDate = errors.New("invalid date")

// localLayouts carry no zone information and are read in the caller's location.
var localLayouts = []string{
	dateLayout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// Day is a calendar date without a time of day or zone.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// Of returns the calendar day of t as observed in loc.
func Of(t time.Time, loc *time.Location) Day {
	y, m, d := t.In(loc).Date()
	return Day{Year: y, Month: m, Day: d}
}

// FromDate converts a value read from a SQL DATE column. The driver yields
// midnight UTC for those, so the UTC components are the stored date.
func FromDate(t time.Time) Day {
	return Of(t, time.UTC)
}

// Parse interprets value as a calendar day in loc. Zone-less inputs
// (YYYY-MM-DD, datetime-local) are taken as wall clock in loc; RFC 3339
// timestamps are converted into loc before the day is extracted.
func Parse(value string, loc *time.Location) (Day, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Day{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return Of(t, loc), nil
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return Of(t, loc), nil
	}
	return Day{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

// LoadLocation resolves a zone name, treating an empty name as UTC.
func LoadLocation(name string) (*time.Location, error) {
	if strings.TrimSpace(name) == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether d is the zero Day.
func (d Day) IsZero() bool {
	return d == Day{}
}

// Start returns midnight of d in loc.
func (d Day) Start(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Before reports whether d is strictly earlier than other.
func (d Day) Before(other Day) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Day) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Day) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	*d = FromDate(t)
	return nil
}
