// Package weekdate maps between concrete calendar dates and the backend's
// week addressing scheme: an ISO week-start (the Monday anchoring a 7-day
// planning window) plus a three-letter day code.
package weekdate

import (
	"fmt"
	"time"
)

// Layout is the ISO date layout used for dateKey and weekStart strings.
const Layout = "2006-01-02"

// Day codes in week order. The backend accepts exactly this 7-symbol set;
// anything else is a mapping failure.
var dayCodes = [7]string{"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}

// Parse parses an ISO date string.
func Parse(date string) (time.Time, error) {
	t, err := time.Parse(Layout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}

// WeekStart returns the ISO date of the Monday of the week containing date.
func WeekStart(date string) (string, error) {
	t, err := Parse(date)
	if err != nil {
		return "", err
	}
	offset := (int(t.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	return t.AddDate(0, 0, -offset).Format(Layout), nil
}

// DayCode returns the MON..SUN code for date.
func DayCode(date string) (string, error) {
	t, err := Parse(date)
	if err != nil {
		return "", err
	}
	return dayCodes[(int(t.Weekday())+6)%7], nil
}

// SlotDate resolves a (weekStart, dayCode) pair back to a concrete ISO date.
// An unrecognised day code or malformed week start is an error so callers can
// drop the record instead of corrupting state.
func SlotDate(weekStart, dayCode string) (string, error) {
	i := dayIndex(dayCode)
	if i < 0 {
		return "", fmt.Errorf("unknown day code %q", dayCode)
	}
	t, err := Parse(weekStart)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, i).Format(Layout), nil
}

// dayIndex returns the 0-based week position of code, or -1 when code is
// outside the fixed 7-symbol set.
func dayIndex(code string) int {
	for i, c := range dayCodes {
		if c == code {
			return i
		}
	}
	return -1
}
