package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/runeworks/glyphbot/internal/domain"
)

// Type represents the type of an event
type Type string

// Event represents a generic event in the system
type Event struct {
	Version string      `json:"version"` // Event schema version (e.g., "1.0")
	Type    Type        `json:"type"`
	Payload interface{} `json:"payload"`
}

// Game event types
const (
	BlockAdvanced   = Type(domain.EventBlockAdvanced)
	GrumbleStarted  = Type(domain.EventGrumbleStarted)
	GrumbleResolved = Type(domain.EventGrumbleResolved)
	GrumblePoolKept = Type(domain.EventGrumblePoolKept)
	PackOpened      = Type(domain.EventPackOpened)
	DollarsClaimed  = Type(domain.EventDollarsClaimed)
	AuctionCreated  = Type(domain.EventAuctionCreated)
	AuctionEnded    = Type(domain.EventAuctionEnded)
)

// Type-safe event constructors

// NewBlockAdvancedEvent creates a block advanced event
func NewBlockAdvancedEvent(payload domain.BlockAdvancedPayloadV1) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    BlockAdvanced,
		Payload: payload,
	}
}

// NewGrumbleResolvedEvent creates a grumble resolved event
func NewGrumbleResolvedEvent(payload domain.GrumbleResolvedPayloadV1) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    GrumbleResolved,
		Payload: payload,
	}
}

// NewGrumblePoolKeptEvent creates a pool preserved event
func NewGrumblePoolKeptEvent(payload domain.GrumblePoolPreservedPayloadV1) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    GrumblePoolKept,
		Payload: payload,
	}
}

// NewAuctionEndedEvent creates an auction ended event
func NewAuctionEndedEvent(payload domain.AuctionEndedPayloadV1) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    AuctionEnded,
		Payload: payload,
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers. Handlers run synchronously
// in subscription order; a failing handler does not stop the rest.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
