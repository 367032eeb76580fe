// Package temporal canonicalizes extracted date/time text and validates the
// result against the museum's business rules. Normalization failure is a
// boolean miss, never an error: the caller leaves the slot unfilled and
// re-prompts.
package temporal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"musebot/internal/logging"
)

// DateLayout and TimeLayout are the canonical slot formats.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Normalizer turns free-form date/time phrases into canonical form. The
// clock is injectable so relative phrases ("tomorrow", "next friday") and
// year-less dates resolve deterministically in tests.
type Normalizer struct {
	now   func() time.Time
	fuzzy *when.Parser
}

// NewNormalizer creates a Normalizer. A nil clock means time.Now.
func NewNormalizer(now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Normalizer{now: now, fuzzy: w}
}

var (
	ordinalRe = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)
	spacesRe  = regexp.MustCompile(`\s+`)
)

// Layouts tried for dates carrying an explicit year.
var dateLayoutsWithYear = []string{
	"2006-01-02",
	"January 2, 2006",
	"January 2 2006",
	"2 January 2006",
	"2 January, 2006",
	"1/2/2006",
	"1/2/06",
}

// Layouts tried for dates without a year; the year comes from the clock.
var dateLayoutsNoYear = []string{
	"January 2",
	"2 January",
	"1/2",
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// NormalizeDate canonicalizes a date phrase to YYYY-MM-DD.
// Year-less dates resolve against the clock's current year, the same default
// the original system inherited from its fuzzy parser.
func (n *Normalizer) NormalizeDate(text string) (string, bool) {
	s := spacesRe.ReplaceAllString(strings.TrimSpace(text), " ")
	if s == "" {
		return "", false
	}

	// Relative phrases first: they contain no digits for the layouts below.
	if d, ok := n.relativeDate(strings.ToLower(s)); ok {
		return d.Format(DateLayout), true
	}

	cleaned := ordinalRe.ReplaceAllString(s, "$1")
	cleaned = strings.ReplaceAll(cleaned, " of ", " ")

	for _, layout := range dateLayoutsWithYear {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t.Format(DateLayout), true
		}
	}
	for _, layout := range dateLayoutsNoYear {
		if t, err := time.Parse(layout, cleaned); err == nil {
			t = time.Date(n.now().Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return t.Format(DateLayout), true
		}
	}

	// Last resort: fuzzy natural-language parsing.
	if r, err := n.fuzzy.Parse(s, n.now()); err == nil && r != nil {
		return r.Time.Format(DateLayout), true
	}

	logging.Get(logging.CategoryTemporal).Debugf("date normalization miss: %q", text)
	return "", false
}

// relativeDate resolves today/tomorrow/weekday phrases. "next <day>" always
// jumps to the following week's day; a bare or "this <day>" phrase picks the
// soonest matching day, including today.
func (n *Normalizer) relativeDate(s string) (time.Time, bool) {
	today := n.now()

	switch s {
	case "today":
		return today, true
	case "tomorrow":
		return today.AddDate(0, 0, 1), true
	case "day after tomorrow":
		return today.AddDate(0, 0, 2), true
	}

	next := false
	for _, prefix := range []string{"next ", "this ", "coming "} {
		if strings.HasPrefix(s, prefix) {
			next = prefix == "next "
			s = strings.TrimPrefix(s, prefix)
			break
		}
	}
	wd, ok := weekdays[s]
	if !ok {
		return time.Time{}, false
	}

	delta := (int(wd) - int(today.Weekday()) + 7) % 7
	if delta == 0 && next {
		delta = 7
	}
	return today.AddDate(0, 0, delta), true
}

// Layouts tried for clock times, after uppercasing and dot-stripping.
var timeLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04PM",
	"3:04 PM",
	"3PM",
	"3 PM",
}

// NormalizeTime canonicalizes a time phrase to HH:MM (24h).
func (n *Normalizer) NormalizeTime(text string) (string, bool) {
	s := spacesRe.ReplaceAllString(strings.TrimSpace(text), " ")
	if s == "" {
		return "", false
	}

	switch strings.ToLower(s) {
	case "noon", "midday":
		return "12:00", true
	case "midnight":
		return "00:00", true
	}

	cleaned := strings.ToUpper(strings.ReplaceAll(s, ".", ""))
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t.Format(TimeLayout), true
		}
	}

	// A bare hour ("at 3" extracts as "3") maps to HH:00.
	if h, err := strconv.Atoi(cleaned); err == nil && h >= 0 && h <= 23 {
		return fmt.Sprintf("%02d:00", h), true
	}

	if r, err := n.fuzzy.Parse(s, n.now()); err == nil && r != nil {
		return r.Time.Format(TimeLayout), true
	}

	logging.Get(logging.CategoryTemporal).Debugf("time normalization miss: %q", text)
	return "", false
}
