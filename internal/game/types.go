package game

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidAction is returned when a decision is neither hit nor stand
var ErrInvalidAction = errors.New("invalid action")

// Action is a player decision during their turn
type Action int

const (
	Hit Action = iota + 1
	Stand
)

// String returns the string representation of an action
func (a Action) String() string {
	switch a {
	case Hit:
		return "hit"
	case Stand:
		return "stand"
	default:
		return "unknown"
	}
}

// ParseAction converts user input into an Action. It accepts the full word or
// its first letter, case-insensitively.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hit", "h":
		return Hit, nil
	case "stand", "s":
		return Stand, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
}

// State is a step of the round lifecycle
type State int

const (
	Dealing State = iota
	CheckNaturals
	PlayerTurn
	DealerTurn
	Settlement
	Settled
	Aborted
)

// String returns the string representation of a round state
func (s State) String() string {
	switch s {
	case Dealing:
		return "dealing"
	case CheckNaturals:
		return "check-naturals"
	case PlayerTurn:
		return "player-turn"
	case DealerTurn:
		return "dealer-turn"
	case Settlement:
		return "settlement"
	case Settled:
		return "settled"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Outcome is how a round was decided. Every outcome maps to exactly one
// bankroll settlement.
type Outcome int

const (
	PlayerBlackjack Outcome = iota + 1
	DealerBlackjack
	Push
	PlayerBust
	DealerBust
	PlayerWin
	DealerWin
)

// Outcomes lists every outcome in reporting order
var Outcomes = []Outcome{PlayerBlackjack, PlayerWin, DealerBust, Push, DealerWin, PlayerBust, DealerBlackjack}

// String returns the string representation of an outcome
func (o Outcome) String() string {
	switch o {
	case PlayerBlackjack:
		return "player blackjack"
	case DealerBlackjack:
		return "dealer blackjack"
	case Push:
		return "push"
	case PlayerBust:
		return "player bust"
	case DealerBust:
		return "dealer bust"
	case PlayerWin:
		return "player wins"
	case DealerWin:
		return "dealer wins"
	default:
		return "unknown"
	}
}

// MarshalText lets outcomes be used as JSON object keys
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// PlayerWins reports whether the player is paid more than their stake
func (o Outcome) PlayerWins() bool {
	return o == PlayerBlackjack || o == DealerBust || o == PlayerWin
}

// PlayerLoses reports whether the player forfeits their stake
func (o Outcome) PlayerLoses() bool {
	return o == DealerBlackjack || o == PlayerBust || o == DealerWin
}

// Settle applies the outcome to the bankroll and returns the amount credited
func (o Outcome) Settle(b *Bankroll) (int, error) {
	switch o {
	case PlayerBlackjack:
		return b.WinBlackjack()
	case DealerBust, PlayerWin:
		return b.WinBet()
	case Push:
		return b.PushBet()
	case DealerBlackjack, PlayerBust, DealerWin:
		return b.LoseBet()
	default:
		return 0, fmt.Errorf("cannot settle unknown outcome %d", int(o))
	}
}

// DetermineOutcome compares final hand values after both turns. A busted
// player loses before the dealer's hand is considered.
func DetermineOutcome(playerValue, dealerValue int) Outcome {
	switch {
	case playerValue > Blackjack:
		return PlayerBust
	case dealerValue > Blackjack:
		return DealerBust
	case playerValue > dealerValue:
		return PlayerWin
	case playerValue == dealerValue:
		return Push
	default:
		return DealerWin
	}
}

// NaturalOutcome inspects the opening two card hands. It reports false when
// neither side has 21 and play continues.
func NaturalOutcome(player, dealer *Hand) (Outcome, bool) {
	playerNatural := player.IsNatural()
	dealerNatural := dealer.IsNatural()

	switch {
	case playerNatural && dealerNatural:
		return Push, true
	case playerNatural:
		return PlayerBlackjack, true
	case dealerNatural:
		return DealerBlackjack, true
	default:
		return 0, false
	}
}
