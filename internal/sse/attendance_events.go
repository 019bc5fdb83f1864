package sse

import (
	"context"
	"sync"

	"ms-nft-ticketing/internal/models"
)

// AttendanceEventEmitter manages SSE connections and broadcasts
// attendance / mint status updates to subscribed clients.
type AttendanceEventEmitter struct {
	// Event channel clients map - key: eventID
	eventClients     map[string][]chan models.AttendanceRecord
	eventClientMutex sync.RWMutex

	// Attendee channel clients map - key: attendeeID
	attendeeClients     map[string][]chan models.AttendanceRecord
	attendeeClientMutex sync.RWMutex
}

func NewAttendanceEventEmitter() *AttendanceEventEmitter {
	return &AttendanceEventEmitter{
		eventClients:    make(map[string][]chan models.AttendanceRecord),
		attendeeClients: make(map[string][]chan models.AttendanceRecord),
	}
}

// SubscribeToEvent adds a client to an event's attendance stream
func (e *AttendanceEventEmitter) SubscribeToEvent(ctx context.Context, eventID string) chan models.AttendanceRecord {
	clientChan := make(chan models.AttendanceRecord, 10)

	e.eventClientMutex.Lock()
	e.eventClients[eventID] = append(e.eventClients[eventID], clientChan)
	e.eventClientMutex.Unlock()

	go func() {
		<-ctx.Done()
		e.removeEventClient(eventID, clientChan)
	}()

	return clientChan
}

// SubscribeToAttendee adds a client to an attendee's own mint updates
func (e *AttendanceEventEmitter) SubscribeToAttendee(ctx context.Context, attendeeID string) chan models.AttendanceRecord {
	clientChan := make(chan models.AttendanceRecord, 10)

	e.attendeeClientMutex.Lock()
	e.attendeeClients[attendeeID] = append(e.attendeeClients[attendeeID], clientChan)
	e.attendeeClientMutex.Unlock()

	go func() {
		<-ctx.Done()
		e.removeAttendeeClient(attendeeID, clientChan)
	}()

	return clientChan
}

// EmitAttendance broadcasts a record to all subscribed clients
func (e *AttendanceEventEmitter) EmitAttendance(record models.AttendanceRecord) {
	e.eventClientMutex.RLock()
	eventClients := e.eventClients[record.EventID]
	e.eventClientMutex.RUnlock()

	for _, clientChan := range eventClients {
		// Non-blocking send so a slow client never stalls the emitter
		select {
		case clientChan <- record:
		default:
		}
	}

	e.attendeeClientMutex.RLock()
	attendeeClients := e.attendeeClients[record.AttendeeID]
	e.attendeeClientMutex.RUnlock()

	for _, clientChan := range attendeeClients {
		select {
		case clientChan <- record:
		default:
		}
	}
}

func (e *AttendanceEventEmitter) removeEventClient(eventID string, clientChan chan models.AttendanceRecord) {
	e.eventClientMutex.Lock()
	defer e.eventClientMutex.Unlock()

	clients := e.eventClients[eventID]
	for i, ch := range clients {
		if ch == clientChan {
			e.eventClients[eventID] = append(clients[:i], clients[i+1:]...)
			close(clientChan)
			break
		}
	}

	if len(e.eventClients[eventID]) == 0 {
		delete(e.eventClients, eventID)
	}
}

func (e *AttendanceEventEmitter) removeAttendeeClient(attendeeID string, clientChan chan models.AttendanceRecord) {
	e.attendeeClientMutex.Lock()
	defer e.attendeeClientMutex.Unlock()

	clients := e.attendeeClients[attendeeID]
	for i, ch := range clients {
		if ch == clientChan {
			e.attendeeClients[attendeeID] = append(clients[:i], clients[i+1:]...)
			close(clientChan)
			break
		}
	}

	if len(e.attendeeClients[attendeeID]) == 0 {
		delete(e.attendeeClients, attendeeID)
	}
}
