package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingCheckedIn = "booking_checked_in"
	EventBookingCancelled = "booking_cancelled"
	EventExpAwarded       = "member_exp_awarded"
	EventLevelUp          = "member_leveled_up"
	EventRentalCheckedOut = "rental_checked_out"
	EventRentalReturned   = "rental_returned"
)

// BookingEventPayload describes the minimal booking snapshot for event consumers.
type BookingEventPayload struct {
	BookingID      int64     `json:"booking_id"`
	Reference      string    `json:"reference"`
	Date           time.Time `json:"date"`
	TimeSlot       string    `json:"time_slot"`
	PartySize      int       `json:"party_size"`
	TablesOccupied int       `json:"tables_occupied"`
	Status         string    `json:"status"`
	ContactName    string    `json:"contact_name"`
	MemberID       int64     `json:"member_id,omitempty"`
	ChangedBy      string    `json:"changed_by,omitempty"`
}

// MemberEventPayload describes a loyalty state change.
type MemberEventPayload struct {
	MemberID   int64  `json:"member_id"`
	LineUserID string `json:"line_user_id"`
	Amount     int    `json:"amount,omitempty"`
	Reason     string `json:"reason,omitempty"`
	OldLevel   int    `json:"old_level"`
	NewLevel   int    `json:"new_level"`
	NewExp     int    `json:"new_exp"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
