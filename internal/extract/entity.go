// Package extract turns free-form user text into typed entities for the
// dialogue policy. Extraction never fails: unrecognizable text simply yields
// fewer entities.
package extract

// Kind is the closed set of entity kinds the dialogue policy understands.
// Anything an extractor cannot classify maps to KindUnknown and is ignored
// downstream.
type Kind int

const (
	KindUnknown Kind = iota
	KindPerson
	KindDate
	KindTime
	KindCardinal
)

// String returns the canonical label for a kind.
func (k Kind) String() string {
	switch k {
	case KindPerson:
		return "PERSON"
	case KindDate:
		return "DATE"
	case KindTime:
		return "TIME"
	case KindCardinal:
		return "CARDINAL"
	default:
		return "UNKNOWN"
	}
}

// KindFromLabel maps an extractor label to a Kind. Unrecognized labels fall
// through to KindUnknown rather than being inspected ad hoc by callers.
func KindFromLabel(label string) Kind {
	switch label {
	case "PERSON":
		return KindPerson
	case "DATE":
		return KindDate
	case "TIME":
		return KindTime
	case "CARDINAL":
		return KindCardinal
	default:
		return KindUnknown
	}
}

// Entity is a typed span of text recognized by an extractor. Entities are
// transient: produced per message, merged into the conversation, never stored.
type Entity struct {
	Kind  Kind
	Text  string
	Start int // Byte offset of the span in the source text
}
