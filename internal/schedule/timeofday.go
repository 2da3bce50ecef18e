package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Meridiem is the AM/PM half of a 12-hour clock reading
type Meridiem string

const (
	AM Meridiem = "AM"
	PM Meridiem = "PM"
)

// ErrInvalidTimeInput is returned when a time of day cannot be used for scheduling
var ErrInvalidTimeInput = errors.New("invalid time input")

// TimeOfDay is a wall-clock target on a 12-hour clock with no date attached
type TimeOfDay struct {
	Hour     int
	Minute   int
	Meridiem Meridiem
}

// Validate checks that every field is in range
func (t TimeOfDay) Validate() error {
	if t.Hour < 1 || t.Hour > 12 {
		return fmt.Errorf("%w: hour %d must be between 1 and 12", ErrInvalidTimeInput, t.Hour)
	}
	if t.Minute < 0 || t.Minute > 59 {
		return fmt.Errorf("%w: minute %d must be between 0 and 59", ErrInvalidTimeInput, t.Minute)
	}
	if t.Meridiem != AM && t.Meridiem != PM {
		return fmt.Errorf("%w: meridiem %q must be AM or PM", ErrInvalidTimeInput, t.Meridiem)
	}
	return nil
}

// Hour24 converts the hour to the 24-hour clock
func (t TimeOfDay) Hour24() int {
	switch {
	case t.Meridiem == PM && t.Hour != 12:
		return t.Hour + 12
	case t.Meridiem == AM && t.Hour == 12:
		return 0
	default:
		return t.Hour
	}
}

// String formats the time as "HH:MM AM"
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d %s", t.Hour, t.Minute, t.Meridiem)
}

// NextTrigger returns the first instant strictly after now at which the
// wall clock reads t. The candidate is built on now's date in now's location
// and moved one calendar day forward when it is not in the future.
func NextTrigger(t TimeOfDay, now time.Time) time.Time {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), t.Hour24(), t.Minute, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

// NormalizeHour turns raw hour input into its two-digit form.
// 0 and anything above 99 are clamped to "12"; 13 through 99 are rejected.
func NormalizeHour(value string) (string, error) {
	hour, err := parseDigits("hour", value)
	if err != nil {
		return "", err
	}

	switch {
	case hour >= 1 && hour <= 12:
		return fmt.Sprintf("%02d", hour), nil
	case hour == 0, hour > 99:
		return "12", nil
	default:
		return "", fmt.Errorf("%w: hour %d must be between 1 and 12", ErrInvalidTimeInput, hour)
	}
}

// NormalizeMinute turns raw minute input into its two-digit form.
// Anything above 99 is clamped to "59"; 60 through 99 are rejected.
func NormalizeMinute(value string) (string, error) {
	minute, err := parseDigits("minute", value)
	if err != nil {
		return "", err
	}

	switch {
	case minute <= 59:
		return fmt.Sprintf("%02d", minute), nil
	case minute > 99:
		return "59", nil
	default:
		return "", fmt.Errorf("%w: minute %d must be between 0 and 59", ErrInvalidTimeInput, minute)
	}
}

// NormalizeMeridiem accepts A, AM, P and PM in any case
func NormalizeMeridiem(value string) (Meridiem, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "A", "AM":
		return AM, nil
	case "P", "PM":
		return PM, nil
	case "":
		return "", fmt.Errorf("%w: meridiem cannot be empty", ErrInvalidTimeInput)
	default:
		return "", fmt.Errorf("%w: meridiem %q must be AM or PM", ErrInvalidTimeInput, value)
	}
}

// ParseTimeOfDay normalizes the three raw fields and builds a TimeOfDay
func ParseTimeOfDay(hour, minute, meridiem string) (TimeOfDay, error) {
	h, err := NormalizeHour(hour)
	if err != nil {
		return TimeOfDay{}, err
	}
	m, err := NormalizeMinute(minute)
	if err != nil {
		return TimeOfDay{}, err
	}
	mer, err := NormalizeMeridiem(meridiem)
	if err != nil {
		return TimeOfDay{}, err
	}

	// normalized strings are always two plain digits
	hourValue, _ := strconv.Atoi(h)
	minuteValue, _ := strconv.Atoi(m)
	return TimeOfDay{Hour: hourValue, Minute: minuteValue, Meridiem: mer}, nil
}

// ParseClock parses "HH:MM AM", "H:MM pm" or "HH:MMPM"
func ParseClock(value string) (TimeOfDay, error) {
	value = strings.TrimSpace(value)
	hourPart, rest, found := strings.Cut(value, ":")
	if !found {
		return TimeOfDay{}, fmt.Errorf("%w: %q must look like HH:MM AM", ErrInvalidTimeInput, value)
	}

	rest = strings.TrimSpace(rest)
	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}

	return ParseTimeOfDay(strings.TrimSpace(hourPart), rest[:digits], rest[digits:])
}

func parseDigits(field, value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("%w: %s cannot be empty", ErrInvalidTimeInput, field)
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %s %q must contain only digits", ErrInvalidTimeInput, field, value)
		}
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		// only overflow gets here; treat it like any other oversized input
		return 1 << 30, nil
	}
	return n, nil
}
