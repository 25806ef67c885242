// Package workinghours evaluates a weekly availability schedule in a
// configured timezone.
package workinghours

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultStart = "09:00"
	defaultEnd   = "18:00"

	// DefaultTimezone is used when the shop never configured one.
	DefaultTimezone = "Europe/Istanbul"
	// DefaultOfflineMessage is shown when a visitor clicks outside the
	// schedule and no custom message is configured.
	DefaultOfflineMessage = "We are currently offline. Please leave a message and we will get back to you soon!"
)

var timeRe = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

// DayWindow is the availability window of a single weekday.
type DayWindow struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// Config is the weekly schedule. Days without an entry count as disabled.
type Config struct {
	Enabled  bool
	Timezone string
	Days     map[time.Weekday]DayWindow
}

// DefaultConfig mirrors the install defaults: schedule disabled, Mon-Fri
// 09:00-18:00.
func DefaultConfig() Config {
	days := make(map[time.Weekday]DayWindow, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		enabled := d >= time.Monday && d <= time.Friday
		days[d] = DayWindow{Enabled: enabled, Start: defaultStart, End: defaultEnd}
	}
	return Config{Enabled: false, Timezone: DefaultTimezone, Days: days}
}

// IsOpen reports whether now falls inside the schedule. A disabled
// schedule is always open. Timezone resolution failure never fails the
// check; the clock is used as-is.
func IsOpen(cfg Config, now time.Time) bool {
	if !cfg.Enabled {
		return true
	}

	now = resolveZone(cfg.Timezone, now)

	window, ok := cfg.Days[now.Weekday()]
	if !ok || !window.Enabled {
		return false
	}

	current := now.Hour()*60 + now.Minute()
	start := minuteOfDay(window.Start, defaultStart)
	end := minuteOfDay(window.End, defaultEnd)

	// Inclusive on both ends.
	return current >= start && current <= end
}

// NextOpenDescription returns a human readable hint about the next
// available slot. It scans at most seven days ahead and never mutates cfg.
func NextOpenDescription(cfg Config, now time.Time) string {
	if !cfg.Enabled {
		return ""
	}

	now = resolveZone(cfg.Timezone, now)
	today := now.Weekday()
	current := now.Hour()*60 + now.Minute()

	if window, ok := cfg.Days[today]; ok && window.Enabled {
		if current < minuteOfDay(window.Start, defaultStart) {
			return fmt.Sprintf("We'll be available today from %s.", window.Start)
		}
	}

	for i := 1; i <= 7; i++ {
		day := (today + time.Weekday(i)) % 7
		window, ok := cfg.Days[day]
		if !ok || !window.Enabled {
			continue
		}
		if i == 1 {
			return fmt.Sprintf("We'll be available tomorrow from %s.", window.Start)
		}
		return fmt.Sprintf("We'll be available on %s from %s.", day.String(), window.Start)
	}

	return "We'll be back soon!"
}

// ValidateConfig returns every human readable schedule error, one entry
// per problem. The caller aggregates them with the rest of the form.
func ValidateConfig(cfg Config) []string {
	var errors []string

	if cfg.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Timezone); err != nil {
			errors = append(errors, fmt.Sprintf("unknown timezone %q.", cfg.Timezone))
		}
	}

	for d := time.Sunday; d <= time.Saturday; d++ {
		window, ok := cfg.Days[d]
		if !ok || !window.Enabled {
			continue
		}
		day := strings.ToLower(d.String())

		startOK := timeRe.MatchString(window.Start)
		endOK := timeRe.MatchString(window.End)
		if !startOK {
			errors = append(errors, fmt.Sprintf("invalid start time for %s, use HH:MM format.", day))
		}
		if !endOK {
			errors = append(errors, fmt.Sprintf("invalid end time for %s, use HH:MM format.", day))
		}
		if startOK && endOK && minuteOfDay(window.Start, defaultStart) >= minuteOfDay(window.End, defaultEnd) {
			errors = append(errors, fmt.Sprintf("start time must be before end time for %s.", day))
		}
	}

	return errors
}

// ByName returns the schedule keyed by lowercase weekday name, the shape
// expected by the client runtime payload.
func (c Config) ByName() map[string]DayWindow {
	out := make(map[string]DayWindow, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		window, ok := c.Days[d]
		if !ok {
			window = DayWindow{Enabled: false, Start: defaultStart, End: defaultEnd}
		}
		out[strings.ToLower(d.String())] = window
	}
	return out
}

// resolveZone moves now into the configured timezone, falling back to the
// clock's own zone when resolution fails.
func resolveZone(timezone string, now time.Time) time.Time {
	if timezone == "" {
		return now
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		logrus.WithError(err).WithField("timezone", timezone).Debug("timezone resolution failed, using local clock")
		return now
	}
	return now.In(loc)
}

func minuteOfDay(value, fallback string) int {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		parts = strings.SplitN(fallback, ":", 2)
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		parts = strings.SplitN(fallback, ":", 2)
		hour, _ = strconv.Atoi(parts[0])
		minute, _ = strconv.Atoi(parts[1])
	}
	return hour*60 + minute
}
