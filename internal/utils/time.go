package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/sleepr/internal/constants"
)

const minutesPerDay = 24 * 60

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}

// LocalDate returns t's calendar date (YYYY-MM-DD) in t's own location.
func LocalDate(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// ParseDateInLocation parses a date string (YYYY-MM-DD) as midnight in loc.
func ParseDateInLocation(dateStr string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// ParseTimeToMinutes parses a time string (HH:MM) and returns the number of minutes from midnight.
func ParseTimeToMinutes(timeStr string) (int, error) {
	t, err := time.Parse(constants.TimeFormat, timeStr)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatMinutes renders minutes after midnight as HH:MM, wrapping around the day.
func FormatMinutes(minutes int) string {
	m := WrapMinutes(minutes)
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// WrapMinutes normalises a minute-of-day value into [0, 1440).
func WrapMinutes(minutes int) int {
	m := minutes % minutesPerDay
	if m < 0 {
		m += minutesPerDay
	}
	return m
}

// AtMinuteOfDay returns the instant on day's calendar date at the given minute of day, seconds zeroed.
func AtMinuteOfDay(day time.Time, minutes int) time.Time {
	m := WrapMinutes(minutes)
	return time.Date(day.Year(), day.Month(), day.Day(), m/60, m%60, 0, 0, day.Location())
}

// ParseBedtime accepts the stored RFC 3339 form or a plain HH:MM and returns the
// bedtime anchored on ref's date in ref's location.
func ParseBedtime(value string, ref time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		local := t.In(ref.Location())
		return AtMinuteOfDay(ref, local.Hour()*60+local.Minute()), nil
	}
	minutes, err := ParseTimeToMinutes(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid bedtime %q (expected HH:MM or RFC 3339)", value)
	}
	return AtMinuteOfDay(ref, minutes), nil
}

// FormatBedtime serialises a bedtime for the key-value store.
func FormatBedtime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// NextOccurrence returns the next instant at minuteOfDay, seconds zeroed. Today's occurrence is
// kept while now is at most grace past it; otherwise the occurrence rolls to tomorrow.
func NextOccurrence(now time.Time, minuteOfDay int, grace time.Duration) time.Time {
	target := AtMinuteOfDay(now, minuteOfDay)
	if now.Sub(target) > grace {
		target = AtMinuteOfDay(now.AddDate(0, 0, 1), minuteOfDay)
	}
	return target
}
