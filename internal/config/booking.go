package config

import (
	"fmt"
	"strings"
	"time"
)

// BookingConfig holds the museum's business rules.
type BookingConfig struct {
	// Operating window, inclusive on both ends, HH:MM 24h.
	OpenTime  string `yaml:"open_time"`
	CloseTime string `yaml:"close_time"`

	// Weekday name on which the museum is closed.
	ClosedWeekday string `yaml:"closed_weekday"`

	// When true, a validation failure clears the offending slot so the
	// user can supply a corrected value. When false (the default) slots
	// stay immutable once filled, matching the original system.
	AllowCorrections bool `yaml:"allow_corrections"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ClosedDay returns the configured closed weekday.
func (b BookingConfig) ClosedDay() (time.Weekday, error) {
	wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(b.ClosedWeekday))]
	if !ok {
		return time.Sunday, fmt.Errorf("invalid closed_weekday: %q", b.ClosedWeekday)
	}
	return wd, nil
}

// Window returns the operating window as minutes since midnight.
func (b BookingConfig) Window() (open, close int, err error) {
	open, err = parseMinutes(b.OpenTime)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid open_time: %w", err)
	}
	close, err = parseMinutes(b.CloseTime)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid close_time: %w", err)
	}
	if close < open {
		return 0, 0, fmt.Errorf("close_time %s before open_time %s", b.CloseTime, b.OpenTime)
	}
	return open, close, nil
}

func parseMinutes(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Validate checks the booking rules for internal consistency.
func (b BookingConfig) Validate() error {
	if _, err := b.ClosedDay(); err != nil {
		return err
	}
	if _, _, err := b.Window(); err != nil {
		return err
	}
	return nil
}
