package bot

import (
	"fmt"

	"github.com/lox/blackjack/internal/game"
)

// FlatBetter stakes the same amount every round, or whatever is left when
// the balance falls below it
type FlatBetter struct {
	Amount int
}

func (f FlatBetter) NextBet(req game.BetRequest) (int, error) {
	if req.LastError != nil {
		return 0, fmt.Errorf("flat bet of %d rejected: %w", f.Amount, req.LastError)
	}
	return clampBet(f.Amount, req), nil
}

// FractionBetter stakes a fixed share of the current balance
type FractionBetter struct {
	Fraction float64
}

func (f FractionBetter) NextBet(req game.BetRequest) (int, error) {
	if req.LastError != nil {
		return 0, fmt.Errorf("fractional bet rejected: %w", req.LastError)
	}
	return clampBet(int(float64(req.Balance)*f.Fraction), req), nil
}

// clampBet fits an amount to the table limits and the balance
func clampBet(amount int, req game.BetRequest) int {
	amount = max(amount, req.MinBet, 1)
	if req.MaxBet > 0 {
		amount = min(amount, req.MaxBet)
	}
	return min(amount, req.Balance)
}

// KeepPlaying always asks for another round
type KeepPlaying struct{}

func (KeepPlaying) PlayAgain(int) (bool, error) { return true, nil }
