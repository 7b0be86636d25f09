package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_PublishToSubscribers(t *testing.T) {
	bus := NewEventBus()

	var got []*Event
	bus.Subscribe(EventLevelUp, func(e *Event) error {
		got = append(got, e)
		return nil
	})

	err := bus.PublishJSON(EventLevelUp, MemberEventPayload{
		MemberID: 7,
		OldLevel: 1,
		NewLevel: 2,
		NewExp:   3,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)

	var payload MemberEventPayload
	require.NoError(t, json.Unmarshal(got[0].Payload, &payload))
	assert.Equal(t, int64(7), payload.MemberID)
	assert.Equal(t, 2, payload.NewLevel)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestEventBus_NoSubscribers(t *testing.T) {
	bus := NewEventBus()
	assert.NoError(t, bus.PublishJSON(EventBookingCreated, BookingEventPayload{BookingID: 1}))
}

func TestEventBus_OnlyMatchingTypeFires(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	bus.Subscribe(EventBookingCancelled, func(e *Event) error {
		calls++
		return nil
	})

	require.NoError(t, bus.PublishJSON(EventBookingCreated, BookingEventPayload{BookingID: 1}))
	assert.Zero(t, calls)

	require.NoError(t, bus.PublishJSON(EventBookingCancelled, BookingEventPayload{BookingID: 1}))
	assert.Equal(t, 1, calls)
}

func TestEventBus_NilBusIsSafe(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventExpAwarded, nil))
}
