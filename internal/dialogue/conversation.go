// Package dialogue holds the booking Conversation record and the slot-filling
// policy that drives it. Slots fill in a fixed order and are immutable once
// set: the first extracted value wins for the life of the conversation.
package dialogue

import "time"

// Slot identifies one of the four required booking facts.
type Slot int

const (
	SlotName Slot = iota
	SlotDate
	SlotTime
	SlotTickets
)

// slotOrder is the fixed fill/prompt order.
var slotOrder = []Slot{SlotName, SlotDate, SlotTime, SlotTickets}

// String returns the slot's name.
func (s Slot) String() string {
	switch s {
	case SlotName:
		return "name"
	case SlotDate:
		return "date"
	case SlotTime:
		return "time"
	case SlotTickets:
		return "tickets"
	default:
		return "unknown"
	}
}

// Conversation is one user's booking record. Zero values mean "unfilled";
// Tickets is stored as a validated positive integer, not raw extracted text.
type Conversation struct {
	UserID  string
	Name    string
	Date    string // YYYY-MM-DD
	Time    string // HH:MM, 24h
	Tickets int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filled reports whether a slot holds a value.
func (c *Conversation) Filled(s Slot) bool {
	switch s {
	case SlotName:
		return c.Name != ""
	case SlotDate:
		return c.Date != ""
	case SlotTime:
		return c.Time != ""
	case SlotTickets:
		return c.Tickets > 0
	default:
		return false
	}
}

// MissingSlot returns the first unfilled slot in the fixed order.
func (c *Conversation) MissingSlot() (Slot, bool) {
	for _, s := range slotOrder {
		if !c.Filled(s) {
			return s, true
		}
	}
	return 0, false
}

// Complete reports whether all four slots are filled (content-complete;
// business-rule validation is a separate step).
func (c *Conversation) Complete() bool {
	_, missing := c.MissingSlot()
	return !missing
}

// Clear empties a slot. Only the corrections mode uses this; the default
// policy never unfills a slot.
func (c *Conversation) Clear(s Slot) {
	switch s {
	case SlotName:
		c.Name = ""
	case SlotDate:
		c.Date = ""
	case SlotTime:
		c.Time = ""
	case SlotTickets:
		c.Tickets = 0
	}
	c.UpdatedAt = time.Now()
}

// Snapshot returns a value copy, so a completed conversation handed
// downstream can never be mutated through the store's pointer.
func (c *Conversation) Snapshot() Conversation {
	return *c
}
