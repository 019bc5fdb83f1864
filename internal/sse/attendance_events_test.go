package sse_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-nft-ticketing/internal/models"
	"ms-nft-ticketing/internal/sse"
)

func record(eventID, attendeeID string) models.AttendanceRecord {
	return models.AttendanceRecord{
		ID:          "att1",
		TicketID:    "ticket1",
		EventID:     eventID,
		AttendeeID:  attendeeID,
		CheckedInAt: time.Now(),
		NFTStatus:   models.NFTStatusPending,
	}
}

func TestEmitReachesBothSubscriptionKinds(t *testing.T) {
	emitter := sse.NewAttendanceEventEmitter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eventChan := emitter.SubscribeToEvent(ctx, "event1")
	attendeeChan := emitter.SubscribeToAttendee(ctx, "user1")

	emitter.EmitAttendance(record("event1", "user1"))

	select {
	case got := <-eventChan:
		assert.Equal(t, "att1", got.ID)
	case <-time.After(time.Second):
		t.Fatal("event subscriber did not receive the record")
	}

	select {
	case got := <-attendeeChan:
		assert.Equal(t, "user1", got.AttendeeID)
	case <-time.After(time.Second):
		t.Fatal("attendee subscriber did not receive the record")
	}
}

func TestEmitIsScopedToKeys(t *testing.T) {
	emitter := sse.NewAttendanceEventEmitter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	otherEvent := emitter.SubscribeToEvent(ctx, "event2")
	otherAttendee := emitter.SubscribeToAttendee(ctx, "user2")

	emitter.EmitAttendance(record("event1", "user1"))

	select {
	case <-otherEvent:
		t.Fatal("record leaked to a different event's subscribers")
	case <-otherAttendee:
		t.Fatal("record leaked to a different attendee's subscribers")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestEmitDoesNotBlockOnSlowClients(t *testing.T) {
	emitter := sse.NewAttendanceEventEmitter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Never read from this channel; its buffer fills up.
	emitter.SubscribeToEvent(ctx, "event1")

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			emitter.EmitAttendance(record("event1", "user1"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("emit blocked on a slow subscriber")
	}
}

func TestContextCancelRemovesSubscriber(t *testing.T) {
	emitter := sse.NewAttendanceEventEmitter()
	ctx, cancel := context.WithCancel(context.Background())

	ch := emitter.SubscribeToEvent(ctx, "event1")
	cancel()

	// Give the cleanup goroutine a moment to run.
	require.Eventually(t, func() bool {
		select {
		case _, open := <-ch:
			return !open
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond, "channel should be closed after unsubscribe")
}
