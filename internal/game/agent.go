package game

import (
	"errors"

	"github.com/lox/blackjack/internal/deck"
)

// ErrQuit is returned by input sources when the player asks to leave. It
// aborts the current round and ends the session.
var ErrQuit = errors.New("player quit")

// BetRequest describes the bet the engine is asking for
type BetRequest struct {
	RoundID string
	Balance int
	MinBet  int
	MaxBet  int // 0 means no table maximum

	// LastError is the reason the previous amount was rejected, nil on the
	// first request of a round
	LastError error
}

// BetSource supplies the stake for each round. When an amount is rejected
// the engine asks again with BetRequest.LastError set. Returning an error
// aborts the round.
type BetSource interface {
	NextBet(req BetRequest) (int, error)
}

// TableView is the read-only state a player sees when deciding
type TableView struct {
	RoundID      string
	PlayerCards  []deck.Card
	PlayerValue  int
	PlayerSoft   bool
	DealerUpCard deck.Card
	Bet          int
	Balance      int
}

// Agent represents any entity (human or bot) that decides between hit and
// stand. Agents receive immutable state and never mutate the round.
type Agent interface {
	Decide(view TableView) (Action, error)
}

// ReplaySource decides whether another round is played after settlement
type ReplaySource interface {
	PlayAgain(balance int) (bool, error)
}

// BetSourceFunc adapts a function to BetSource
type BetSourceFunc func(req BetRequest) (int, error)

// NextBet calls f(req)
func (f BetSourceFunc) NextBet(req BetRequest) (int, error) { return f(req) }

// AgentFunc adapts a function to Agent
type AgentFunc func(view TableView) (Action, error)

// Decide calls f(view)
func (f AgentFunc) Decide(view TableView) (Action, error) { return f(view) }

// ReplayFunc adapts a function to ReplaySource
type ReplayFunc func(balance int) (bool, error)

// PlayAgain calls f(balance)
func (f ReplayFunc) PlayAgain(balance int) (bool, error) { return f(balance) }
