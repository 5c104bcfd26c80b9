package date

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const readDateFormat = "2006-1-2" // Permissive read format (allows single-digit month/day).

// DateFormat is the format used to represent dates as strings in ISO-8601 format.
const DateFormat = "2006-01-02" // write date format

// Date represents a date with day-level granularity.
type Date struct {
	y int
	m time.Month
	d int
}

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.time().Month() }

// Weekday returns the day of the week for the date.
func (d Date) Weekday() time.Weekday { return d.time().Weekday() }

// ISOWeek returns the ISO 8601 year and week number in which d occurs.
func (d Date) ISOWeek() (year, week int) { return d.time().ISOWeek() }

// time returns a time.Time that is a canonical representation of that day (at midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// New returns a normalized Date for the given year, month, and day.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Format returns a textual representation of the date value formatted according to the layout defined by the argument.
//
//	See the documentation for [time.Time.Format].
func (d Date) Format(format string) string { return d.time().Format(format) }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Today returns the current date.
func Today() Date { return New(time.Now().Date()) }

// Add returns a new Date with the given number of days added.
func (d Date) Add(i int) Date { return New(d.y, d.m, d.d+i) }

// Year returns current year.
func (d Date) Year() int { return d.y }

// Day returns current day of the month.
func (d Date) Day() int { return d.d }

// String format the date in its standard format.
func (d Date) String() string { return d.time().Format(DateFormat) }

// relativeDateRE matches a signed offset from today, e.g. "-7d", "+3w",
// used by snapshotctl's "-since" flag so a caller can ask for "the last
// two weeks of snapshots" without computing an absolute date by hand.
var relativeDateRE = regexp.MustCompile(`^([+-])(\d+)([dwmy])$`)

// Parse parses a Date from a string. It accepts an ISO-8601 date (lenient
// about a leading zero on month/day, e.g. "2025-7-1"), the literal "0d"
// for today, or a signed relative offset like "-7d" / "+2w" / "-1m" /
// "+1y" measured from today. It is meant for command-line "-since"
// style flags and movement record dates, not for parsing values read
// back out of persisted snapshots (those always round-trip through
// MarshalJSON/UnmarshalJSON in the canonical DateFormat).
func Parse(str string) (Date, error) {
	str = strings.TrimSpace(str)

	if str == "0d" {
		return Today(), nil
	}

	if match := relativeDateRE.FindStringSubmatch(str); match != nil {
		sign := match[1]
		numStr := match[2]
		unit := match[3]

		num, err := strconv.Atoi(numStr)
		if err != nil {
			// This should not happen given the regex
			return Date{}, fmt.Errorf("invalid number in relative date %q: %w", str, err)
		}
		if sign == "-" {
			num = -num
		}

		today := Today()
		switch unit {
		case "d":
			return today.Add(num), nil
		case "w":
			return today.Add(num * 7), nil
		case "m":
			return New(today.Year(), today.Month()+time.Month(num), today.Day()), nil
		case "y":
			return New(today.Year()+num, today.Month(), today.Day()), nil
		}
	}

	on, err := time.Parse(readDateFormat, str)
	// A slightly more permissive format than DateFormat, to accept "2025-7-1".
	if err != nil {
		// fall back to a full timestamp, in case the source feeding movement
		// records emits one instead of a bare date
		on, err = time.Parse("2006-01-02T15:04:05.000-0700", str)
	}
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want an ISO date, \"0d\", or a relative offset like \"-7d\": %w", str, err)
	}
	return New(on.Date()), nil
}

// MustParse is like Parse but panics on error.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// UnmarshalJSON implements the json specific way to unmarshall a date from a json string.
func (j *Date) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	// Keep this parsing strict, as it's for persisted snapshot data, but
	// not so strict that it rejects "2025-7-1".
	on, err := time.Parse(readDateFormat, str)
	if err != nil {
		return fmt.Errorf("invalid date %q in snapshot data, want format %q: %w", str, DateFormat, err)
	}
	*j = New(on.Date())
	return nil
}
func (j Date) MarshalJSON() ([]byte, error) {
	str := j.String()
	return json.Marshal(&str)
}

// check that a Date pointer is a valid json marshall/unmarshaller type.
var _ json.Marshaler = (*Date)(nil)
var _ json.Unmarshaler = (*Date)(nil)
