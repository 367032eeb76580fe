package extract

import (
	"context"
	"testing"
)

func kinds(ents []Entity) []Kind {
	out := make([]Kind, len(ents))
	for i, e := range ents {
		out[i] = e.Kind
	}
	return out
}

func TestRuleExtractor_MixedMessage(t *testing.T) {
	e := NewRuleExtractor()
	ents := e.Extract(context.Background(),
		"My name is Alex, I want to come on July 4th at 3pm, for 2 tickets")

	if len(ents) != 4 {
		t.Fatalf("expected 4 entities, got %d: %v", len(ents), ents)
	}
	want := []struct {
		kind Kind
		text string
	}{
		{KindPerson, "Alex"},
		{KindDate, "July 4th"},
		{KindTime, "3pm"},
		{KindCardinal, "2"},
	}
	for i, w := range want {
		if ents[i].Kind != w.kind || ents[i].Text != w.text {
			t.Errorf("entity %d: got %s %q, want %s %q",
				i, ents[i].Kind, ents[i].Text, w.kind, w.text)
		}
	}
}

func TestRuleExtractor_Dates(t *testing.T) {
	e := NewRuleExtractor()
	cases := []struct {
		input string
		want  string
	}{
		{"I'll come on 2024-07-04", "2024-07-04"},
		{"how about July 4th, 2024?", "July 4th, 2024"},
		{"the 4th of July works", "4th of July"},
		{"maybe 7/4", "7/4"},
		{"tomorrow would be great", "tomorrow"},
		{"the day after tomorrow", "day after tomorrow"},
		{"next friday", "next friday"},
		{"This Monday.", "This Monday"},
	}
	for _, c := range cases {
		ents := e.Extract(context.Background(), c.input)
		var got string
		for _, ent := range ents {
			if ent.Kind == KindDate {
				got = ent.Text
				break
			}
		}
		if got != c.want {
			t.Errorf("%q: got date %q, want %q (all: %v)", c.input, got, c.want, ents)
		}
	}
}

func TestRuleExtractor_Times(t *testing.T) {
	e := NewRuleExtractor()
	cases := []struct {
		input string
		want  string
	}{
		{"come at 15:30", "15:30"},
		{"10:00 works", "10:00"},
		{"around 3pm", "3pm"},
		{"say 10 a.m.", "10 a.m."},
		{"11 o'clock", "11"},
		{"noon is fine", "noon"},
		{"arriving at 3", "3"},
	}
	for _, c := range cases {
		ents := e.Extract(context.Background(), c.input)
		var got string
		for _, ent := range ents {
			if ent.Kind == KindTime {
				got = ent.Text
				break
			}
		}
		if got != c.want {
			t.Errorf("%q: got time %q, want %q (all: %v)", c.input, got, c.want, ents)
		}
	}
}

func TestRuleExtractor_WholeMessageName(t *testing.T) {
	e := NewRuleExtractor()

	for _, input := range []string{"Alex", "Maria Garcia", "O'Brien", "Alex."} {
		ents := e.Extract(context.Background(), input)
		if len(ents) != 1 || ents[0].Kind != KindPerson {
			t.Errorf("%q: expected one PERSON, got %v", input, ents)
		}
	}

	// Date, time, and number words are answers to other prompts, not names.
	for _, input := range []string{"Tomorrow", "Sunday", "Two", "July", "No"} {
		for _, ent := range e.Extract(context.Background(), input) {
			if ent.Kind == KindPerson {
				t.Errorf("%q: must not be read as a name", input)
			}
		}
	}
}

func TestRuleExtractor_DigitsInsideDatesAreNotCardinals(t *testing.T) {
	e := NewRuleExtractor()
	ents := e.Extract(context.Background(), "on 2024-07-04 at 10:00")

	for _, ent := range ents {
		if ent.Kind == KindCardinal {
			t.Errorf("unexpected cardinal %q in date/time-only message", ent.Text)
		}
	}
	if got := kinds(ents); len(got) != 2 || got[0] != KindDate || got[1] != KindTime {
		t.Errorf("expected [DATE TIME], got %v", got)
	}
}

func TestRuleExtractor_EntitiesSortedByAppearance(t *testing.T) {
	e := NewRuleExtractor()
	ents := e.Extract(context.Background(), "2 tickets on July 4th at 3pm")

	if got := kinds(ents); len(got) != 3 ||
		got[0] != KindCardinal || got[1] != KindDate || got[2] != KindTime {
		t.Errorf("expected [CARDINAL DATE TIME], got %v", ents)
	}
}

func TestRuleExtractor_NumberWords(t *testing.T) {
	e := NewRuleExtractor()
	ents := e.Extract(context.Background(), "two tickets please")

	if len(ents) != 1 || ents[0].Kind != KindCardinal || ents[0].Text != "two" {
		t.Fatalf("expected CARDINAL %q, got %v", "two", ents)
	}
}

func TestRuleExtractor_NoEntities(t *testing.T) {
	e := NewRuleExtractor()
	for _, input := range []string{"", "   ", "hello there, how are you?"} {
		if ents := e.Extract(context.Background(), input); len(ents) != 0 {
			t.Errorf("%q: expected no entities, got %v", input, ents)
		}
	}
}

func TestCardinalValue(t *testing.T) {
	cases := []struct {
		text string
		want int
		ok   bool
	}{
		{"2", 2, true},
		{" 15 ", 15, true},
		{"two", 2, true},
		{"Twenty", 20, true},
		{"-3", -3, true},
		{"many", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := CardinalValue(c.text)
		if got != c.want || ok != c.ok {
			t.Errorf("CardinalValue(%q) = %d, %v; want %d, %v", c.text, got, ok, c.want, c.ok)
		}
	}
}

func TestGeminiLocate(t *testing.T) {
	var g GeminiExtractor
	text := "book 2 tickets for July 4th"
	ents := g.locate(text, []taggedEntity{
		{Label: "DATE", Text: "July 4th"},
		{Label: "CARDINAL", Text: "2"},
		{Label: "DATE", Text: "August 9th"}, // not in the message
		{Label: "MONEY", Text: "2"},         // unknown label
	})

	if len(ents) != 2 {
		t.Fatalf("expected 2 entities, got %v", ents)
	}
	if ents[0].Kind != KindCardinal || ents[0].Start != 5 {
		t.Errorf("expected CARDINAL at 5, got %v", ents[0])
	}
	if ents[1].Kind != KindDate || ents[1].Text != "July 4th" {
		t.Errorf("expected DATE %q, got %v", "July 4th", ents[1])
	}
}
