package dialogue

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"musebot/internal/extract"
	"musebot/internal/temporal"
)

// Fixed reference clock: Monday 2024-01-08.
func testPolicy() *Policy {
	return NewPolicy(temporal.NewNormalizer(func() time.Time {
		return time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)
	}))
}

func ents(pairs ...extract.Entity) []extract.Entity { return pairs }

func TestAdvance_AllSlotsInOneCall(t *testing.T) {
	p := testPolicy()
	conv := &Conversation{UserID: "u1"}

	action := p.Advance(conv, ents(
		extract.Entity{Kind: extract.KindPerson, Text: "Alex", Start: 11},
		extract.Entity{Kind: extract.KindDate, Text: "July 4th", Start: 33},
		extract.Entity{Kind: extract.KindTime, Text: "3pm", Start: 45},
		extract.Entity{Kind: extract.KindCardinal, Text: "2", Start: 54},
	))

	require.True(t, action.ContentComplete)
	assert.Empty(t, action.Prompt)
	assert.Equal(t, "Alex", conv.Name)
	assert.Equal(t, "2024-07-04", conv.Date)
	assert.Equal(t, "15:00", conv.Time)
	assert.Equal(t, 2, conv.Tickets)
}

func TestAdvance_PromptOrderIsFixed(t *testing.T) {
	p := testPolicy()

	// Even when later slots fill first, prompting follows name, date, time,
	// tickets.
	conv := &Conversation{UserID: "u1"}
	action := p.Advance(conv, ents(
		extract.Entity{Kind: extract.KindCardinal, Text: "4"},
	))
	assert.Equal(t, Prompt(SlotName), action.Prompt)

	action = p.Advance(conv, ents(
		extract.Entity{Kind: extract.KindPerson, Text: "Dana"},
	))
	assert.Equal(t, Prompt(SlotDate), action.Prompt)

	action = p.Advance(conv, ents(
		extract.Entity{Kind: extract.KindTime, Text: "10:00"},
		extract.Entity{Kind: extract.KindDate, Text: "2024-01-09"},
	))
	assert.Equal(t, Prompt(SlotTickets), action.Prompt)
	assert.False(t, action.ContentComplete)

	action = p.Advance(conv, ents(
		extract.Entity{Kind: extract.KindCardinal, Text: "3"},
	))
	// Tickets were already filled by the very first message.
	assert.True(t, action.ContentComplete)
	assert.Equal(t, 4, conv.Tickets)
}

func TestAdvance_FirstMatchWins(t *testing.T) {
	p := testPolicy()
	conv := &Conversation{UserID: "u1"}

	p.Advance(conv, ents(
		extract.Entity{Kind: extract.KindPerson, Text: "Alex"},
		extract.Entity{Kind: extract.KindPerson, Text: "Morgan"},
	))
	assert.Equal(t, "Alex", conv.Name)

	// A later message must not overwrite either.
	p.Advance(conv, ents(
		extract.Entity{Kind: extract.KindPerson, Text: "Sam"},
	))
	assert.Equal(t, "Alex", conv.Name)
}

func TestAdvance_FailedNormalizationDiscardsSilently(t *testing.T) {
	p := testPolicy()
	conv := &Conversation{UserID: "u1", Name: "Alex"}

	action := p.Advance(conv, ents(
		extract.Entity{Kind: extract.KindDate, Text: "the 45th of Forever"},
	))
	assert.Equal(t, "", conv.Date)
	assert.Equal(t, Prompt(SlotDate), action.Prompt)

	// A later candidate in the same call may still fill the slot.
	action = p.Advance(conv, ents(
		extract.Entity{Kind: extract.KindDate, Text: "nonsense"},
		extract.Entity{Kind: extract.KindDate, Text: "2024-01-09"},
	))
	assert.Equal(t, "2024-01-09", conv.Date)
	assert.Equal(t, Prompt(SlotTime), action.Prompt)
}

func TestAdvance_TicketCountMustBePositiveInteger(t *testing.T) {
	p := testPolicy()
	conv := &Conversation{UserID: "u1", Name: "Alex", Date: "2024-01-09", Time: "10:00"}

	for _, text := range []string{"0", "-3", "many"} {
		action := p.Advance(conv, ents(
			extract.Entity{Kind: extract.KindCardinal, Text: text},
		))
		assert.Equal(t, 0, conv.Tickets, "cardinal %q should be a miss", text)
		assert.Equal(t, Prompt(SlotTickets), action.Prompt)
	}

	action := p.Advance(conv, ents(
		extract.Entity{Kind: extract.KindCardinal, Text: "two"},
	))
	assert.True(t, action.ContentComplete)
	assert.Equal(t, 2, conv.Tickets)
}

func TestAdvance_NoEntitiesLeavesConversationUnchanged(t *testing.T) {
	p := testPolicy()
	conv := &Conversation{UserID: "u1", Name: "Alex"}
	before := conv.Snapshot()

	first := p.Advance(conv, nil)
	second := p.Advance(conv, nil)

	if diff := cmp.Diff(before, conv.Snapshot()); diff != "" {
		t.Errorf("conversation changed on no-op input (-before +after):\n%s", diff)
	}
	assert.Equal(t, first.Prompt, second.Prompt)
	assert.Equal(t, Prompt(SlotDate), first.Prompt)
}

func TestConversation_MissingSlotOrder(t *testing.T) {
	conv := &Conversation{}
	s, ok := conv.MissingSlot()
	require.True(t, ok)
	assert.Equal(t, SlotName, s)

	conv.Name = "Alex"
	conv.Time = "10:00" // out of order on purpose
	s, _ = conv.MissingSlot()
	assert.Equal(t, SlotDate, s)

	conv.Date = "2024-01-09"
	conv.Tickets = 1
	assert.True(t, conv.Complete())
}

func TestConversation_SnapshotIsACopy(t *testing.T) {
	conv := &Conversation{Name: "Alex", Tickets: 2}
	snap := conv.Snapshot()
	conv.Name = "Mutated"
	assert.Equal(t, "Alex", snap.Name)
}

func TestConversation_Clear(t *testing.T) {
	conv := &Conversation{Name: "Alex", Date: "2024-01-07", Time: "10:00", Tickets: 2}
	conv.Clear(SlotDate)
	assert.False(t, conv.Filled(SlotDate))
	assert.True(t, conv.Filled(SlotTime))
}
