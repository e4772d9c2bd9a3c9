package game

import (
	"reflect"
	"time"

	"github.com/lox/blackjack/internal/deck"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for round events
const (
	EventTypeRoundStart   EventType = "round_start"
	EventTypeBetPlaced    EventType = "bet_placed"
	EventTypeBetRejected  EventType = "bet_rejected"
	EventTypeInitialDeal  EventType = "initial_deal"
	EventTypePlayerAction EventType = "player_action"
	EventTypeDealerReveal EventType = "dealer_reveal"
	EventTypeDealerAction EventType = "dealer_action"
	EventTypeRoundEnd     EventType = "round_end"
	EventTypeRoundAborted EventType = "round_aborted"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// GameEvent represents anything that happens during a round that a display
// might want to report
type GameEvent interface {
	EventType() EventType
	RoundID() string
	Timestamp() time.Time
}

// eventHeader carries the fields shared by every event
type eventHeader struct {
	roundID   string
	timestamp time.Time
}

func (h eventHeader) RoundID() string      { return h.roundID }
func (h eventHeader) Timestamp() time.Time { return h.timestamp }

// RoundStartEvent is published when a new round begins
type RoundStartEvent struct {
	eventHeader
	Number  int
	Balance int
}

func (e RoundStartEvent) EventType() EventType { return EventTypeRoundStart }

// BetPlacedEvent is published once the stake has moved out of the balance
type BetPlacedEvent struct {
	eventHeader
	Amount  int
	Balance int
}

func (e BetPlacedEvent) EventType() EventType { return EventTypeBetPlaced }

// BetRejectedEvent is published when a proposed stake fails validation
type BetRejectedEvent struct {
	eventHeader
	Amount int
	Err    error
}

func (e BetRejectedEvent) EventType() EventType { return EventTypeBetRejected }

// InitialDealEvent is published after both hands have two cards. The dealer's
// hole card is not part of the event.
type InitialDealEvent struct {
	eventHeader
	PlayerCards  []deck.Card
	PlayerValue  int
	DealerUpCard deck.Card
	DealerShown  string
}

func (e InitialDealEvent) EventType() EventType { return EventTypeInitialDeal }

// PlayerActionEvent is published for every hit or stand
type PlayerActionEvent struct {
	eventHeader
	Action Action
	Card   *deck.Card // drawn card, nil on stand
	Cards  []deck.Card
	Value  int
	Bust   bool
}

func (e PlayerActionEvent) EventType() EventType { return EventTypePlayerAction }

// DealerRevealEvent is published when the hole card is turned over
type DealerRevealEvent struct {
	eventHeader
	Cards []deck.Card
	Value int
}

func (e DealerRevealEvent) EventType() EventType { return EventTypeDealerReveal }

// DealerActionEvent is published for every dealer hit and for the dealer's
// final stand or bust
type DealerActionEvent struct {
	eventHeader
	Action Action
	Card   *deck.Card
	Cards  []deck.Card
	Value  int
	Bust   bool
}

func (e DealerActionEvent) EventType() EventType { return EventTypeDealerAction }

// RoundEndEvent is published after settlement
type RoundEndEvent struct {
	eventHeader
	Outcome     Outcome
	Bet         int
	Payout      int
	Net         int
	PlayerCards []deck.Card
	DealerCards []deck.Card
	PlayerValue int
	DealerValue int
	Balance     int
}

func (e RoundEndEvent) EventType() EventType { return EventTypeRoundEnd }

// RoundAbortedEvent is published when a round stops before settlement
type RoundAbortedEvent struct {
	eventHeader
	State   State
	Err     error
	BetHeld int
	Balance int
}

func (e RoundAbortedEvent) EventType() EventType { return EventTypeRoundAborted }

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// SubscriberFunc adapts a function to EventSubscriber
type SubscriberFunc func(event GameEvent)

// OnEvent calls f(event)
func (f SubscriberFunc) OnEvent(event GameEvent) { f(event) }

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus is a synchronous in-memory event bus. Subscribers run on the
// publishing goroutine in subscription order.
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() EventBus {
	return &SimpleEventBus{
		subscribers: make([]EventSubscriber, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events. Only comparable
// subscribers can be removed; SubscriberFunc values cannot.
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	if !reflect.TypeOf(subscriber).Comparable() {
		return
	}
	for i, sub := range bus.subscribers {
		if reflect.TypeOf(sub).Comparable() && sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event GameEvent) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}
