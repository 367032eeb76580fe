package dialogue

import (
	"time"

	"musebot/internal/extract"
	"musebot/internal/logging"
	"musebot/internal/temporal"
)

// The four fixed prompts, one per slot.
var prompts = map[Slot]string{
	SlotName:    "What's your name?",
	SlotDate:    "What date would you like to visit the museum?",
	SlotTime:    "At what time would you like to visit?",
	SlotTickets: "How many tickets would you like to book?",
}

// Prompt returns the fixed prompt for a slot.
func Prompt(s Slot) string {
	return prompts[s]
}

// NextAction is the policy's verdict after merging a message's entities.
type NextAction struct {
	// ContentComplete means all four slots are filled and business-rule
	// validation can run. Prompt is empty in that case.
	ContentComplete bool
	Prompt          string

	// Filled lists the slots this call filled, for logging and UIs.
	Filled []Slot
}

// Policy merges extracted entities into a conversation and decides what to
// ask next. It owns no state of its own; the conversation is the state.
type Policy struct {
	norm *temporal.Normalizer
}

// NewPolicy creates a Policy using the given normalizer for date/time
// canonicalization.
func NewPolicy(norm *temporal.Normalizer) *Policy {
	return &Policy{norm: norm}
}

// Advance applies entities to the conversation in order of appearance, then
// picks the next prompt.
//
// Merge rules: a filled slot is never overwritten (first-match-wins); a
// date/time/cardinal candidate that fails normalization is silently discarded
// and the slot stays open for a later candidate; at most one entity per kind
// ends up consumed per call because a successful fill closes the slot.
func (p *Policy) Advance(conv *Conversation, entities []extract.Entity) NextAction {
	log := logging.Get(logging.CategoryDialogue)
	var filled []Slot

	for _, ent := range entities {
		switch ent.Kind {
		case extract.KindPerson:
			if conv.Name == "" {
				conv.Name = ent.Text
				filled = append(filled, SlotName)
			}

		case extract.KindDate:
			if conv.Date == "" {
				if d, ok := p.norm.NormalizeDate(ent.Text); ok {
					conv.Date = d
					filled = append(filled, SlotDate)
				} else {
					log.Debugf("discarding date candidate %q", ent.Text)
				}
			}

		case extract.KindTime:
			if conv.Time == "" {
				if t, ok := p.norm.NormalizeTime(ent.Text); ok {
					conv.Time = t
					filled = append(filled, SlotTime)
				} else {
					log.Debugf("discarding time candidate %q", ent.Text)
				}
			}

		case extract.KindCardinal:
			if conv.Tickets == 0 {
				if n, ok := extract.CardinalValue(ent.Text); ok && n > 0 {
					conv.Tickets = n
					filled = append(filled, SlotTickets)
				} else {
					log.Debugf("discarding ticket candidate %q", ent.Text)
				}
			}
		}
	}

	if len(filled) > 0 {
		conv.UpdatedAt = time.Now()
		log.Debugf("user %s filled %v", conv.UserID, filled)
	}

	if missing, ok := conv.MissingSlot(); ok {
		return NextAction{Prompt: prompts[missing], Filled: filled}
	}
	return NextAction{ContentComplete: true, Filled: filled}
}
