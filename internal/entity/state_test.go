package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		name          string
		from, to      State
		finalPriceSet bool
		want          NotificationKind
	}{
		{"pending to estimated quotes", StatePending, StateEstimated, false, NotifyQuoteReady},
		{"pending to estimated with final price", StatePending, StateEstimated, true, NotifyFinalPriceReady},
		{"estimated re-entry final pricing", StateEstimated, StateEstimated, true, NotifyFinalPriceReady},
		{"estimated re-entry without final price", StateEstimated, StateEstimated, false, NotifyQuoteReady},
		{"pending confirmed", StatePending, StateConfirmed, false, NotifyConfirmed},
		{"estimated confirmed", StateEstimated, StateConfirmed, true, NotifyConfirmed},
		{"confirmed in progress", StateConfirmed, StateInProgress, true, NotifyInProduction},
		{"in progress completed", StateInProgress, StateCompleted, true, NotifyCompleted},
		{"pending canceled", StatePending, StateCanceled, false, NotifyCanceled},
		{"estimated canceled", StateEstimated, StateCanceled, false, NotifyCanceled},
		{"confirmed canceled", StateConfirmed, StateCanceled, false, NotifyCanceled},
		{"in progress canceled", StateInProgress, StateCanceled, false, NotifyCanceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.from, tt.to, tt.finalPriceSet)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransitionRejected(t *testing.T) {
	tests := []struct {
		name     string
		from, to State
	}{
		{"completed back to confirmed", StateCompleted, StateConfirmed},
		{"completed back to pending", StateCompleted, StatePending},
		{"canceled revived", StateCanceled, StatePending},
		{"canceled to estimated", StateCanceled, StateEstimated},
		{"completed canceled", StateCompleted, StateCanceled},
		{"pending straight to in progress", StatePending, StateInProgress},
		{"pending straight to completed", StatePending, StateCompleted},
		{"estimated to in progress", StateEstimated, StateInProgress},
		{"confirmed to completed", StateConfirmed, StateCompleted},
		{"confirmed back to estimated", StateConfirmed, StateEstimated},
		{"in progress to confirmed", StateInProgress, StateConfirmed},
		{"anything to pending", StateEstimated, StatePending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Transition(tt.from, tt.to, true)
			assert.ErrorIs(t, err, ErrInvalidTransition)
		})
	}
}

func TestQuoteAndFinalPriceNotificationsExclusive(t *testing.T) {
	// Exactly one of the two price notifications fires per entry into the
	// estimated state, chosen by whether the final price is populated.
	for _, set := range []bool{true, false} {
		kind, err := Transition(StatePending, StateEstimated, set)
		require.NoError(t, err)
		if set {
			assert.Equal(t, NotifyFinalPriceReady, kind)
		} else {
			assert.Equal(t, NotifyQuoteReady, kind)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, StateCompleted.Terminal())
	assert.True(t, StateCanceled.Terminal())
	for _, s := range []State{StatePending, StateEstimated, StateConfirmed, StateInProgress} {
		assert.False(t, s.Terminal(), "state %s", s)
	}
}

func TestParseState(t *testing.T) {
	got, err := ParseState("in_progress")
	require.NoError(t, err)
	assert.Equal(t, StateInProgress, got)

	_, err = ParseState("shipped")
	assert.Error(t, err)
}
