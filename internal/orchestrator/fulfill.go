package orchestrator

import (
	"context"
	"fmt"

	"musebot/internal/dialogue"
	"musebot/internal/logging"
)

// Fulfiller hands a validated, completed booking to the downstream
// payment/ticketing system and returns its user-facing result unchanged.
// The conversation is passed by value: nothing downstream can mutate the
// stored record.
type Fulfiller interface {
	Fulfill(ctx context.Context, conv dialogue.Conversation) (string, error)
}

// ConfirmationFulfiller is the default collaborator: it renders the booking
// confirmation without contacting any payment provider.
type ConfirmationFulfiller struct{}

// Fulfill returns the confirmation message for a completed booking.
func (ConfirmationFulfiller) Fulfill(_ context.Context, conv dialogue.Conversation) (string, error) {
	logging.Get(logging.CategoryFulfill).Infof(
		"booking confirmed: user=%s date=%s time=%s tickets=%d",
		conv.UserID, conv.Date, conv.Time, conv.Tickets)

	return fmt.Sprintf(
		"Thank you %s! You have booked %d ticket(s) for %s at %s. Please proceed with payment to receive your tickets.",
		conv.Name, conv.Tickets, conv.Date, conv.Time), nil
}
