package temporal

import (
	"fmt"
	"time"

	"musebot/internal/config"
	"musebot/internal/logging"
)

// Fixed reasons for malformed canonical values.
const (
	ReasonBadDate = "Please provide a valid date."
	ReasonBadTime = "Please provide a valid time."
)

// Validator checks a content-complete booking against the museum's business
// rules. Pure and stateless; built once from config and rebuilt on reload.
type Validator struct {
	closedDay         time.Weekday
	openMin, closeMin int
	closedReason      string
	hoursReason       string
}

// NewValidator builds a Validator from booking rules.
func NewValidator(b config.BookingConfig) (*Validator, error) {
	closed, err := b.ClosedDay()
	if err != nil {
		return nil, err
	}
	open, close, err := b.Window()
	if err != nil {
		return nil, err
	}

	return &Validator{
		closedDay: closed,
		openMin:   open,
		closeMin:  close,
		closedReason: fmt.Sprintf(
			"The museum is closed on %ss. Please choose a different day.", closed),
		hoursReason: fmt.Sprintf(
			"The museum is open only from %s to %s. Please choose a time within this range.",
			clock12(open), clock12(close)),
	}, nil
}

// Violation names the slot a validation failure is attributable to, so a
// corrections-enabled caller knows what to clear.
type Violation int

const (
	ViolationNone Violation = iota
	ViolationDate
	ViolationTime
)

// Validate checks a canonical date and time, rule by rule, short-circuiting
// on the first failure. On success the reason is empty.
func (v *Validator) Validate(date, timeOfDay string) (bool, string) {
	ok, reason, _ := v.Check(date, timeOfDay)
	return ok, reason
}

// Check is Validate plus the violated slot.
func (v *Validator) Check(date, timeOfDay string) (bool, string, Violation) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return false, ReasonBadDate, ViolationDate
	}

	t, err := time.Parse(TimeLayout, timeOfDay)
	if err != nil {
		return false, ReasonBadTime, ViolationTime
	}

	if d.Weekday() == v.closedDay {
		logging.Get(logging.CategoryTemporal).Debugf("rejected %s: closed day", date)
		return false, v.closedReason, ViolationDate
	}

	// Operating window is inclusive on both ends.
	minutes := t.Hour()*60 + t.Minute()
	if minutes < v.openMin || minutes > v.closeMin {
		logging.Get(logging.CategoryTemporal).Debugf("rejected %s: outside %d-%d", timeOfDay, v.openMin, v.closeMin)
		return false, v.hoursReason, ViolationTime
	}

	return true, "", ViolationNone
}

// ClosedDay exposes the configured closed weekday.
func (v *Validator) ClosedDay() time.Weekday {
	return v.closedDay
}

// clock12 formats minutes-since-midnight in the colloquial 12-hour form used
// in user-facing messages ("9 AM", "5:30 PM").
func clock12(minutes int) string {
	h, m := minutes/60, minutes%60
	suffix := "AM"
	switch {
	case h == 0:
		h = 12
	case h == 12:
		suffix = "PM"
	case h > 12:
		h -= 12
		suffix = "PM"
	}
	if m == 0 {
		return fmt.Sprintf("%d %s", h, suffix)
	}
	return fmt.Sprintf("%d:%02d %s", h, m, suffix)
}
