package util

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// startOfDay returns midnight of t's calendar day in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// ParseDate parses a YYYY-MM-DD string strictly. The result is midnight UTC,
// which is how DATE columns round-trip through the driver.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// ParseDateIn parses a YYYY-MM-DD string as midnight in loc.
func ParseDateIn(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// ValidateNotFutureDate rejects dates after today in loc. Only the calendar
// day is compared, so today is allowed.
func ValidateNotFutureDate(field string, d time.Time, loc *time.Location) error {
	return validateNotFuture(field, d, time.Now(), loc)
}

func validateNotFuture(field string, d, now time.Time, loc *time.Location) error {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	if day.After(startOfDay(now, loc)) {
		return fmt.Errorf("%s cannot be in the future", field)
	}
	return nil
}
