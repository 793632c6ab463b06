// pkg/event/event.go
package event

import (
	"sync"

	"github.com/gunass/terminal-space-program/pkg/flight"
)

// Type represents the type of event
type Type string

// Flight event types
const (
	FlightStarted    Type = "flight_started"
	TickCompleted    Type = "tick_completed"
	Liftoff          Type = "liftoff"
	FlightTerminated Type = "flight_terminated"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription identifies a registered handler.
type Subscription struct {
	ID     uint64
	Cancel func()
}

type registration struct {
	id      uint64
	handler Handler
}

// Bus dispatches events synchronously to subscribed handlers.
type Bus struct {
	handlers map[Type][]registration
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]registration),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], registration{id: id, handler: handler})

	return &Subscription{
		ID:     id,
		Cancel: func() { b.unsubscribe(eventType, id) },
	}
}

func (b *Bus) unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	regs := b.handlers[eventType]
	for i, r := range regs {
		if r.id == id {
			b.handlers[eventType] = append(regs[:i:i], regs[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	regs := append([]registration(nil), b.handlers[event.GetType()]...)
	b.mu.RUnlock()

	for _, r := range regs {
		r.handler(event)
	}
}

// FlightEvent carries a rocket snapshot taken after a tick.
type FlightEvent struct {
	BaseEvent
	State  flight.State
	Reason flight.Reason
}

// NewFlightEvent creates a new flight event
func NewFlightEvent(eventType Type, source interface{}, state flight.State, reason flight.Reason) *FlightEvent {
	return &FlightEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		State:  state,
		Reason: reason,
	}
}
