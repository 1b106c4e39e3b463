package entity

import (
	"errors"
	"fmt"
)

// State is the order lifecycle position.
type State string

const (
	StatePending    State = "pending"
	StateEstimated  State = "estimated"
	StateConfirmed  State = "confirmed"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateCanceled   State = "canceled"
)

// NotificationKind names a customer message tied to a lifecycle event.
type NotificationKind string

const (
	NotifyReceived        NotificationKind = "received"
	NotifyQuoteReady      NotificationKind = "quote_ready"
	NotifyFinalPriceReady NotificationKind = "final_price_ready"
	NotifyConfirmed       NotificationKind = "confirmed"
	NotifyInProduction    NotificationKind = "in_production"
	NotifyCompleted       NotificationKind = "completed"
	NotifyCanceled        NotificationKind = "canceled"
)

// ErrInvalidTransition marks a state change outside the transition table.
var ErrInvalidTransition = errors.New("invalid order state transition")

// ParseState validates a stored or user-supplied state string.
func ParseState(s string) (State, error) {
	switch State(s) {
	case StatePending, StateEstimated, StateConfirmed, StateInProgress, StateCompleted, StateCanceled:
		return State(s), nil
	default:
		return "", fmt.Errorf("unknown order state %q", s)
	}
}

// Terminal reports whether no further transitions are allowed from s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCanceled
}

// Transition validates a state change and returns the single notification to
// dispatch once it commits. finalPriceSet selects between the quote-ready and
// final-price-ready messages on entry into estimated; exactly one of the two
// fires per entry, never both.
//
// Allowed moves: pending→estimated, estimated→estimated (final pricing pass),
// pending/estimated→confirmed, confirmed→in_progress, in_progress→completed,
// and any non-terminal state→canceled.
func Transition(from, to State, finalPriceSet bool) (NotificationKind, error) {
	if from.Terminal() {
		return "", fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, from)
	}

	switch to {
	case StateEstimated:
		if from != StatePending && from != StateEstimated {
			break
		}
		if finalPriceSet {
			return NotifyFinalPriceReady, nil
		}
		return NotifyQuoteReady, nil
	case StateConfirmed:
		if from == StatePending || from == StateEstimated {
			return NotifyConfirmed, nil
		}
	case StateInProgress:
		if from == StateConfirmed {
			return NotifyInProduction, nil
		}
	case StateCompleted:
		if from == StateInProgress {
			return NotifyCompleted, nil
		}
	case StateCanceled:
		return NotifyCanceled, nil
	}

	return "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
