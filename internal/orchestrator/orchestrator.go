// Package orchestrator wires the extractor, dialogue policy, conversation
// store, and temporal validator into the single call the host consumes:
// submit one message for one user, get back the next prompt, a validation
// failure, or the completed booking.
package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"musebot/internal/config"
	"musebot/internal/dialogue"
	"musebot/internal/extract"
	"musebot/internal/logging"
	"musebot/internal/store"
	"musebot/internal/temporal"
)

// ResponseKind tags the outcome of a handled message.
type ResponseKind int

const (
	// ResponsePrompt asks the user for the next missing slot.
	ResponsePrompt ResponseKind = iota
	// ResponseValidationError reports a business-rule violation.
	ResponseValidationError
	// ResponseComplete carries the fulfillment result for a valid booking.
	ResponseComplete
)

// Response is the orchestrator's answer to one inbound message.
type Response struct {
	Kind    ResponseKind
	Message string

	// Conversation is a snapshot of the completed record; only set when
	// Kind is ResponseComplete.
	Conversation dialogue.Conversation
}

// Orchestrator drives one booking dialogue per user.
type Orchestrator struct {
	store     *store.Store
	extractor extract.Extractor
	policy    *dialogue.Policy
	fulfiller Fulfiller

	// Booking rules swap atomically on config hot reload.
	rulesMu          sync.RWMutex
	validator        *temporal.Validator
	allowCorrections bool
}

// New assembles an orchestrator from its collaborators. A nil fulfiller
// falls back to the confirmation-only default.
func New(st *store.Store, ex extract.Extractor, policy *dialogue.Policy, booking config.BookingConfig, fulfiller Fulfiller) (*Orchestrator, error) {
	validator, err := temporal.NewValidator(booking)
	if err != nil {
		return nil, fmt.Errorf("invalid booking rules: %w", err)
	}
	if fulfiller == nil {
		fulfiller = ConfirmationFulfiller{}
	}

	return &Orchestrator{
		store:            st,
		extractor:        ex,
		policy:           policy,
		fulfiller:        fulfiller,
		validator:        validator,
		allowCorrections: booking.AllowCorrections,
	}, nil
}

// SetBookingRules installs freshly reloaded booking rules. In-flight
// messages finish against the rules they started with.
func (o *Orchestrator) SetBookingRules(booking config.BookingConfig) error {
	validator, err := temporal.NewValidator(booking)
	if err != nil {
		return fmt.Errorf("invalid booking rules: %w", err)
	}

	o.rulesMu.Lock()
	o.validator = validator
	o.allowCorrections = booking.AllowCorrections
	o.rulesMu.Unlock()
	logging.Get(logging.CategorySession).Infof("booking rules updated")
	return nil
}

func (o *Orchestrator) rules() (*temporal.Validator, bool) {
	o.rulesMu.RLock()
	defer o.rulesMu.RUnlock()
	return o.validator, o.allowCorrections
}

// HandleMessage processes one message for one user. The error return is
// reserved for the downstream fulfiller; every dialogue-level failure is a
// Response, not an error.
func (o *Orchestrator) HandleMessage(ctx context.Context, userID, text string) (Response, error) {
	log := logging.Get(logging.CategorySession)

	entities := o.extractor.Extract(ctx, text)
	log.Debugf("user %s: %d entities in %d bytes", userID, len(entities), len(text))

	conv, release := o.store.Acquire(userID)
	defer release()

	action := o.policy.Advance(conv, entities)
	if !action.ContentComplete {
		return Response{Kind: ResponsePrompt, Message: action.Prompt}, nil
	}

	validator, allowCorrections := o.rules()
	ok, reason, violation := validator.Check(conv.Date, conv.Time)
	if !ok {
		if allowCorrections {
			// Clear the offending slot so the user's next message can
			// carry a corrected value.
			switch violation {
			case temporal.ViolationDate:
				conv.Clear(dialogue.SlotDate)
			case temporal.ViolationTime:
				conv.Clear(dialogue.SlotTime)
			}
			log.Debugf("user %s: validation failed (%s), slot reopened", userID, reason)
		} else {
			log.Debugf("user %s: validation failed (%s)", userID, reason)
		}
		return Response{Kind: ResponseValidationError, Message: reason}, nil
	}

	snapshot := conv.Snapshot()
	result, err := o.fulfiller.Fulfill(ctx, snapshot)
	if err != nil {
		return Response{}, fmt.Errorf("fulfillment failed: %w", err)
	}

	log.Infof("user %s: booking complete (%s %s, %d tickets)", userID, snapshot.Date, snapshot.Time, snapshot.Tickets)
	return Response{Kind: ResponseComplete, Message: result, Conversation: snapshot}, nil
}
