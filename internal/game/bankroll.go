package game

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientFunds is returned when a bet is not positive or is larger
	// than the available balance. Nothing is mutated when it is returned.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrBetActive is returned when placing a bet while another is unsettled
	ErrBetActive = errors.New("a bet is already active")

	// ErrNoActiveBet is returned when settling with no bet in play, which
	// guards against settling the same round twice
	ErrNoActiveBet = errors.New("no active bet to settle")
)

// Bankroll tracks the player's balance and the stake currently in play.
// A session owns a single Bankroll; rounds mutate it through settlement.
type Bankroll struct {
	balance    int
	currentBet int
}

// NewBankroll creates a bankroll with the given starting balance
func NewBankroll(balance int) *Bankroll {
	return &Bankroll{balance: balance}
}

// Balance returns the money not currently wagered
func (b *Bankroll) Balance() int {
	return b.balance
}

// CurrentBet returns the active stake, or 0 when no bet is in play
func (b *Bankroll) CurrentBet() int {
	return b.currentBet
}

// HasActiveBet reports whether a stake is waiting to be settled
func (b *Bankroll) HasActiveBet() bool {
	return b.currentBet > 0
}

// PlaceBet moves amount from the balance into the active stake
func (b *Bankroll) PlaceBet(amount int) error {
	if b.currentBet > 0 {
		return fmt.Errorf("%w: %d still in play", ErrBetActive, b.currentBet)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: bet must be positive, got %d", ErrInsufficientFunds, amount)
	}
	if amount > b.balance {
		return fmt.Errorf("%w: bet of %d exceeds balance of %d", ErrInsufficientFunds, amount, b.balance)
	}

	b.balance -= amount
	b.currentBet = amount
	return nil
}

// WinBet returns the stake plus an equal profit. It returns the amount
// credited to the balance.
func (b *Bankroll) WinBet() (int, error) {
	return b.settle(2, 1)
}

// WinBlackjack pays a natural at 3:2: the stake plus one and a half times the
// stake, truncated to whole units.
func (b *Bankroll) WinBlackjack() (int, error) {
	return b.settle(5, 2)
}

// PushBet returns the stake with no profit
func (b *Bankroll) PushBet() (int, error) {
	return b.settle(1, 1)
}

// LoseBet forfeits the stake, which already left the balance when the bet was
// placed
func (b *Bankroll) LoseBet() (int, error) {
	return b.settle(0, 1)
}

// settle credits currentBet * num / den and clears the stake. Integer
// division truncates toward zero.
func (b *Bankroll) settle(num, den int) (int, error) {
	if b.currentBet == 0 {
		return 0, ErrNoActiveBet
	}

	payout := b.currentBet * num / den
	b.balance += payout
	b.currentBet = 0
	return payout, nil
}
