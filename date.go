package warera

import (
	"fmt"
	"time"
)

const readDateFormat = "2006-1-2" // permissive read format (allows single-digit month/day)

// DateFormat is the format used to represent dates as strings in ISO-8601 format.
const DateFormat = "2006-01-02"

// Timestamp is the canonical format for transaction timestamps: UTC,
// millisecond precision, fixed width so that lexical order is chronological
// order. The store indexes on strings in this format.
const Timestamp = "2006-01-02T15:04:05.000Z"

const day = 24 * time.Hour

// Date represents a calendar day, with no intra-day granularity.
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate returns a normalized Date for the given year, month, and day.
func NewDate(year int, month time.Month, dom int) Date {
	d := Date{year, month, dom}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// time returns the canonical representation of that day (midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Today returns the current date.
func Today() Date { return NewDate(time.Now().UTC().Date()) }

// Add returns a new Date with the given number of days added.
func (d Date) Add(i int) Date { return NewDate(d.y, d.m, d.d+i) }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// String formats the date in its standard format.
func (d Date) String() string { return d.time().Format(DateFormat) }

// DayStart returns the canonical timestamp of the first instant of the day.
func (d Date) DayStart() string { return d.time().Format(Timestamp) }

// DayEnd returns the canonical timestamp of the last instant of the day
// (23:59:59.999, matching the store's millisecond granularity).
func (d Date) DayEnd() string { return d.time().Add(day - time.Millisecond).Format(Timestamp) }

// ParseDate parses a Date from a string. It is lenient and accepts formats
// like "2025-7-1".
func ParseDate(str string) (Date, error) {
	on, err := time.Parse(readDateFormat, str)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", str, DateFormat, err)
	}
	return NewDate(on.Date()), nil
}

// MustParseDate is like ParseDate but panics on error.
func MustParseDate(str string) Date {
	d, err := ParseDate(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// FormatTimestamp renders t in the canonical timestamp format.
func FormatTimestamp(t time.Time) string { return t.UTC().Format(Timestamp) }

// ParseTimestamp parses a canonical timestamp back into a time.Time.
func ParseTimestamp(s string) (time.Time, error) { return time.Parse(Timestamp, s) }
