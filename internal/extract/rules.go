package extract

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"musebot/internal/logging"
)

// =============================================================================
// RULE-BASED EXTRACTOR
// =============================================================================
//
// The default extractor: a deterministic pattern-table pipeline, no LLM and
// no network. Date and time spans are claimed first so the digits inside them
// are never misread as ticket counts; cardinals only match unclaimed spans.

const monthAlt = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t|tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`

const weekdayAlt = `monday|tuesday|wednesday|thursday|friday|saturday|sunday`

// rulePattern is one entry in a kind's pattern table. Patterns earlier in a
// table win overlap conflicts against later ones.
type rulePattern struct {
	re    *regexp.Regexp
	group int // submatch index for the entity text; 0 = whole match
	name  string
}

// RuleExtractor recognizes entities with fixed pattern tables.
type RuleExtractor struct {
	datePatterns   []rulePattern
	timePatterns   []rulePattern
	personPatterns []rulePattern
	cardPatterns   []rulePattern

	wholeName *regexp.Regexp
	stopwords map[string]bool
}

// NewRuleExtractor builds the extractor with all pattern tables compiled.
func NewRuleExtractor() *RuleExtractor {
	e := &RuleExtractor{
		datePatterns: []rulePattern{
			{regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`), 0, "iso"},
			{regexp.MustCompile(`(?i)\b(?:` + monthAlt + `)\.?\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s+\d{4})?\b`), 0, "month-day"},
			{regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?\s+(?:of\s+)?(?:` + monthAlt + `)\b(?:,?\s+\d{4})?`), 0, "day-month"},
			{regexp.MustCompile(`\b\d{1,2}/\d{1,2}(?:/\d{2,4})?\b`), 0, "slash"},
			{regexp.MustCompile(`(?i)\b(?:day after tomorrow|today|tomorrow)\b`), 0, "casual"},
			{regexp.MustCompile(`(?i)\b(?:(?:next|this|coming)\s+)?(?:` + weekdayAlt + `)\b`), 0, "weekday"},
		},
		timePatterns: []rulePattern{
			{regexp.MustCompile(`(?i)\b\d{1,2}:\d{2}(?::\d{2})?(?:\s*[ap]\.?m\b\.?)?`), 0, "clock"},
			{regexp.MustCompile(`(?i)\b\d{1,2}\s*[ap]\.?m\b\.?`), 0, "am-pm"},
			{regexp.MustCompile(`(?i)\b(\d{1,2})\s*o'?clock\b`), 1, "oclock"},
			{regexp.MustCompile(`(?i)\b(?:noon|midnight)\b`), 0, "casual"},
			{regexp.MustCompile(`(?i)\bat\s+(\d{1,2})\b`), 1, "bare-hour"},
		},
		personPatterns: []rulePattern{
			{regexp.MustCompile(`\b(?i:my name is|my name's|i am|i'm|call me|this is|name is)\s+([A-Z][a-zA-Z'-]+(?:\s+[A-Z][a-zA-Z'-]+){0,2})`), 1, "introduction"},
		},
		cardPatterns: []rulePattern{
			{regexp.MustCompile(`\b\d+\b`), 0, "digits"},
			{regexp.MustCompile(`(?i)\b(?:one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|thirteen|fourteen|fifteen|sixteen|seventeen|eighteen|nineteen|twenty)\b`), 0, "words"},
		},

		// A message that is nothing but a name, e.g. the answer to
		// "What's your name?".
		wholeName: regexp.MustCompile(`^[A-Z][a-zA-Z'-]+(?:\s+[A-Z][a-zA-Z'-]+){0,2}$`),
		stopwords: make(map[string]bool),
	}

	for _, w := range strings.Split(
		"today tomorrow noon midnight monday tuesday wednesday thursday friday saturday sunday "+
			"january february march april may june july august september october november december "+
			"next this coming one two three four five six seven eight nine ten eleven twelve "+
			"thirteen fourteen fifteen sixteen seventeen eighteen nineteen twenty yes no", " ") {
		e.stopwords[w] = true
	}
	return e
}

// claim is a span of the input consumed by an accepted entity.
type claim struct {
	start, end int
}

func overlaps(claims []claim, start, end int) bool {
	for _, c := range claims {
		if start < c.end && c.start < end {
			return true
		}
	}
	return false
}

// candidate is a potential entity before overlap resolution.
type candidate struct {
	start, end         int // full match span, used for claiming
	textStart, textEnd int // entity text span
	prio               int
}

func collect(text string, patterns []rulePattern) []candidate {
	var cands []candidate
	for prio, p := range patterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(text, -1) {
			ts, te := m[0], m[1]
			if p.group > 0 {
				ts, te = m[2*p.group], m[2*p.group+1]
			}
			if ts < 0 || te <= ts {
				continue
			}
			cands = append(cands, candidate{start: m[0], end: m[1], textStart: ts, textEnd: te, prio: prio})
		}
	}
	// Earlier pattern tables win; among equals, leftmost wins.
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].prio != cands[j].prio {
			return cands[i].prio < cands[j].prio
		}
		return cands[i].start < cands[j].start
	})
	return cands
}

// Extract recognizes entities in first-to-last order of appearance.
func (e *RuleExtractor) Extract(_ context.Context, text string) []Entity {
	var claims []claim
	var out []Entity

	accept := func(kind Kind, cands []candidate) {
		for _, c := range cands {
			if overlaps(claims, c.start, c.end) {
				continue
			}
			claims = append(claims, claim{c.start, c.end})
			out = append(out, Entity{Kind: kind, Text: text[c.textStart:c.textEnd], Start: c.textStart})
		}
	}

	// Claim order matters: dates and times first so their digits are never
	// re-read as cardinals, cardinals last.
	accept(KindDate, collect(text, e.datePatterns))
	accept(KindTime, collect(text, e.timePatterns))
	accept(KindPerson, collect(text, e.personPatterns))
	e.acceptWholeName(text, &claims, &out)
	accept(KindCardinal, collect(text, e.cardPatterns))

	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })

	if len(out) > 0 {
		log := logging.Get(logging.CategoryExtract)
		for _, ent := range out {
			log.Debugf("entity %s %q at %d", ent.Kind, ent.Text, ent.Start)
		}
	}
	return out
}

// acceptWholeName treats a message that is nothing but a capitalized name as
// a PERSON entity, unless any word of it is a known date/time/number word.
func (e *RuleExtractor) acceptWholeName(text string, claims *[]claim, out *[]Entity) {
	for _, ent := range *out {
		if ent.Kind == KindPerson {
			return // An introduction pattern already matched.
		}
	}

	trimmed := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(text), ".!"))
	if trimmed == "" || !e.wholeName.MatchString(trimmed) {
		return
	}
	for _, w := range strings.Fields(trimmed) {
		if e.stopwords[strings.ToLower(w)] {
			return
		}
	}

	start := strings.Index(text, trimmed)
	if start < 0 || overlaps(*claims, start, start+len(trimmed)) {
		return
	}
	*claims = append(*claims, claim{start, start + len(trimmed)})
	*out = append(*out, Entity{Kind: KindPerson, Text: trimmed, Start: start})
}
