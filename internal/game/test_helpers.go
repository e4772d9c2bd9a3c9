package game

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/deck"
)

// TestEngineOption configures test engine creation
type TestEngineOption func(*testEngineBuilder)

type testEngineBuilder struct {
	balance int
	cards   []deck.Card
	opts    []EngineOption
}

// WithBalance sets the starting bankroll of a test engine
func WithBalance(balance int) TestEngineOption {
	return func(b *testEngineBuilder) { b.balance = balance }
}

// WithCards stacks the deck of a test engine. Cards are written in short
// form, for example "Ah Kd 9c".
func WithCards(cards string) TestEngineOption {
	return func(b *testEngineBuilder) { b.cards = deck.MustParseCards(cards) }
}

// WithEngineOptions passes extra options through to NewEngine
func WithEngineOptions(opts ...EngineOption) TestEngineOption {
	return func(b *testEngineBuilder) { b.opts = append(b.opts, opts...) }
}

// NewTestEngine creates an engine for testing with a quiet logger and a
// $100 bankroll unless configured otherwise
func NewTestEngine(opts ...TestEngineOption) *Engine {
	builder := &testEngineBuilder{balance: 100}
	for _, opt := range opts {
		opt(builder)
	}

	engineOpts := []EngineOption{
		WithLogger(log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})),
	}
	if builder.cards != nil {
		engineOpts = append(engineOpts, WithStackedDeck(builder.cards...))
	}
	engineOpts = append(engineOpts, builder.opts...)

	return NewEngine(NewBankroll(builder.balance), engineOpts...)
}

// FixedBet always bets the same amount
func FixedBet(amount int) BetSource {
	return BetSourceFunc(func(BetRequest) (int, error) { return amount, nil })
}

// ScriptedAgent plays a fixed list of actions and stands once it runs out
type ScriptedAgent struct {
	Actions []Action
	Views   []TableView
}

// Decide returns the next scripted action
func (s *ScriptedAgent) Decide(view TableView) (Action, error) {
	s.Views = append(s.Views, view)
	if len(s.Actions) == 0 {
		return Stand, nil
	}
	action := s.Actions[0]
	s.Actions = s.Actions[1:]
	return action, nil
}

// EventRecorder captures every published event
type EventRecorder struct {
	Events []GameEvent
}

// OnEvent records the event
func (r *EventRecorder) OnEvent(event GameEvent) {
	r.Events = append(r.Events, event)
}

// Types returns the recorded event types in order
func (r *EventRecorder) Types() []EventType {
	types := make([]EventType, len(r.Events))
	for i, e := range r.Events {
		types[i] = e.EventType()
	}
	return types
}
