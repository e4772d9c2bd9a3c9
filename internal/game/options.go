package game

import (
	"io"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blackjack/internal/deck"
)

// EngineOption configures an Engine during creation.
type EngineOption func(*Engine)

// WithRNG sets the random source used to shuffle each round's deck.
//
// Example usage:
//
//	// Reproducible session
//	rng := randutil.New(42)
//	e := game.NewEngine(game.NewBankroll(100), game.WithRNG(rng))
func WithRNG(rng *rand.Rand) EngineOption {
	return func(e *Engine) { e.rng = rng }
}

// WithDeckFactory overrides how the deck is built each round. Tests use it
// with deck.NewStackedDeck to script the cards dealt.
func WithDeckFactory(factory DeckFactory) EngineOption {
	return func(e *Engine) {
		if factory != nil {
			e.newDeck = factory
		}
	}
}

// WithStackedDeck deals the given cards, in order, every round
func WithStackedDeck(cards ...deck.Card) EngineOption {
	return WithDeckFactory(func(*rand.Rand) *deck.Deck {
		return deck.NewStackedDeck(cards...)
	})
}

// WithEventBus publishes round events to the given bus
func WithEventBus(bus EventBus) EngineOption {
	return func(e *Engine) {
		if bus != nil {
			e.eventBus = bus
		}
	}
}

// WithLogger sets the logger used for round diagnostics
func WithLogger(logger *log.Logger) EngineOption {
	return func(e *Engine) {
		if logger == nil {
			logger = log.New(io.Discard)
		}
		e.logger = logger
	}
}

// WithClock sets the clock used to timestamp events
func WithClock(clock quartz.Clock) EngineOption {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithTableLimits sets the minimum and maximum stake. A maximum of 0 removes
// the table maximum.
func WithTableLimits(minBet, maxBet int) EngineOption {
	return func(e *Engine) {
		e.minBet = max(minBet, 1)
		e.maxBet = max(maxBet, 0)
	}
}

// WithDealerStandOn sets the total at which the dealer stops drawing
func WithDealerStandOn(total int) EngineOption {
	return func(e *Engine) {
		if total > 0 {
			e.standOn = total
		}
	}
}
