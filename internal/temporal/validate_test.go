package temporal

import (
	"strings"
	"testing"
	"time"

	"musebot/internal/config"
)

func defaultValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator(config.DefaultConfig().Booking)
	if err != nil {
		t.Fatalf("NewValidator failed: %v", err)
	}
	return v
}

func TestValidate_RuleOrder(t *testing.T) {
	v := defaultValidator(t)

	tests := []struct {
		name       string
		date, time string
		ok         bool
		reason     string
	}{
		{"bad date", "garbage", "10:00", false, ReasonBadDate},
		{"bad date wins over bad time", "garbage", "garbage", false, ReasonBadDate},
		{"bad time", "2024-01-08", "10am", false, ReasonBadTime},
		{"sunday", "2024-01-07", "10:00", false, "The museum is closed on Sundays. Please choose a different day."},
		{"sunday outside hours still reports closure", "2024-01-07", "08:00", false, "The museum is closed on Sundays. Please choose a different day."},
		{"before opening", "2024-01-08", "08:59", false, "The museum is open only from 9 AM to 5 PM. Please choose a time within this range."},
		{"after closing", "2024-01-08", "17:01", false, "The museum is open only from 9 AM to 5 PM. Please choose a time within this range."},
		{"opening boundary inclusive", "2024-01-08", "09:00", true, ""},
		{"closing boundary inclusive", "2024-01-08", "17:00", true, ""},
		{"mid-day", "2024-01-08", "10:00", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := v.Validate(tt.date, tt.time)
			if ok != tt.ok {
				t.Errorf("Validate(%s, %s) ok = %v, want %v", tt.date, tt.time, ok, tt.ok)
			}
			if reason != tt.reason {
				t.Errorf("Validate(%s, %s) reason = %q, want %q", tt.date, tt.time, reason, tt.reason)
			}
		})
	}
}

func TestValidate_ConfiguredRules(t *testing.T) {
	b := config.BookingConfig{
		OpenTime:      "10:30",
		CloseTime:     "18:00",
		ClosedWeekday: "Monday",
	}
	v, err := NewValidator(b)
	if err != nil {
		t.Fatalf("NewValidator failed: %v", err)
	}

	if ok, reason := v.Validate("2024-01-08", "11:00"); ok {
		t.Error("expected Monday closure")
	} else if !strings.Contains(reason, "Mondays") {
		t.Errorf("closure reason should name Mondays, got %q", reason)
	}

	if ok, reason := v.Validate("2024-01-09", "10:00"); ok {
		t.Error("expected out-of-window rejection")
	} else if !strings.Contains(reason, "10:30 AM") || !strings.Contains(reason, "6 PM") {
		t.Errorf("hours reason should carry the configured window, got %q", reason)
	}

	if ok, _ := v.Validate("2024-01-09", "10:30"); !ok {
		t.Error("expected 10:30 to be inside the window")
	}

	if v.ClosedDay() != time.Monday {
		t.Errorf("expected Monday, got %v", v.ClosedDay())
	}
}

func TestNewValidator_RejectsBadRules(t *testing.T) {
	if _, err := NewValidator(config.BookingConfig{OpenTime: "09:00", CloseTime: "17:00", ClosedWeekday: "funday"}); err == nil {
		t.Error("expected error for invalid closed weekday")
	}
	if _, err := NewValidator(config.BookingConfig{OpenTime: "17:00", CloseTime: "09:00", ClosedWeekday: "Sunday"}); err == nil {
		t.Error("expected error for inverted window")
	}
}
