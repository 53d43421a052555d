package comm

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"fmn/internal/task"
)

// All validation of user-supplied clocks happens here, before a task reaches
// the scheduler. The scheduler trusts what it is given.

var (
	durationRe = regexp.MustCompile(`^(?:(\d+)d)?(?:(\d+)h)?(?:(\d+)m)?(?:(\d+)s)?$`)
	atRe       = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
)

// ParseDuration parses the fmn duration format: any of d/h/m/s components in
// that order, e.g. "1d2h3m4s", "2h", "90m", "30s".
func ParseDuration(s string) (time.Duration, error) {
	m := durationRe.FindStringSubmatch(s)
	if m == nil || s == "" {
		return 0, fmt.Errorf("invalid duration %q; valid examples: 1d1h1m1s, 2h, 30s, 55m", s)
	}
	units := []time.Duration{24 * time.Hour, time.Hour, time.Minute, time.Second}
	var d time.Duration
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, fmt.Errorf("invalid duration component %q: %w", m[i+1], err)
		}
		d += time.Duration(n) * unit
	}
	return d, nil
}

// ParseAt parses "HH:MM" into the next occurrence of that wall-clock time
// after now: today if still ahead, tomorrow otherwise.
func ParseAt(s string, now time.Time) (time.Time, error) {
	hour, minute, err := ParseHourMinute(s)
	if err != nil {
		return time.Time{}, err
	}
	at := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !at.After(now) {
		at = at.AddDate(0, 0, 1)
	}
	return at, nil
}

// ParseHourMinute parses "HH:MM" with range checks.
func ParseHourMinute(s string) (hour, minute int, err error) {
	m := atRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("invalid time %q; valid examples: 13:11, 23:01", s)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour %d", hour)
	}
	if minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute %d", minute)
	}
	return hour, minute, nil
}

// ValidateClock rejects clocks the scheduler must never see.
func ValidateClock(c task.Clock) error {
	switch c.Kind {
	case task.ClockOnce:
		if c.At.IsZero() {
			return fmt.Errorf("once clock needs a fire time")
		}
	case task.ClockPeriod:
		if c.Every <= 0 {
			return fmt.Errorf("period must be greater than zero")
		}
	case task.ClockOncePerDay:
		if c.Hour < 0 || c.Hour > 23 {
			return fmt.Errorf("invalid hour %d", c.Hour)
		}
		if c.Minute < 0 || c.Minute > 59 {
			return fmt.Errorf("invalid minute %d", c.Minute)
		}
	default:
		return fmt.Errorf("unknown clock kind %d", int(c.Kind))
	}
	return nil
}
