package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/blackjack/internal/game"
)

// RoundResult represents the outcome of a single blackjack round
type RoundResult struct {
	Outcome game.Outcome
	Bet     int   // Stake in dollars
	Net     int   // Dollars won (positive) or lost (negative)
	Seed    int64 // RNG seed for this round's deck (for replay)
	Cards   int   // Cards in the player's final hand
}

// Units returns the net result in bet units
func (r RoundResult) Units() float64 {
	if r.Bet == 0 {
		return 0
	}
	return float64(r.Net) / float64(r.Bet)
}

// OutcomeStats tracks statistics for a single outcome
type OutcomeStats struct {
	Rounds   int
	SumUnits float64
}

// Statistics tracks blackjack simulation statistics in bet units
type Statistics struct {
	Rounds    int
	SumUnits  float64
	SumUnits2 float64   // Sum of squares for variance calculation
	Values    []float64 // Store all values for median/percentile calculation

	Wagered int // Total dollars staked
	NetWon  int // Total dollars won or lost

	// Outcome analytics
	OutcomeResults [8]OutcomeStats // Index 0 unused, 1-7 for game.Outcome

	// Hand size analytics
	PlayerCards int // Cards held by the player at settlement, summed
	MaxCards    int // Largest player hand observed
}

// Mean returns the arithmetic mean of all results in bet units per round
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumUnits / float64(s.Rounds)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumUnits2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(math.Max(s.Variance(), 0))
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError() // 95% confidence
	return mean - margin, mean + margin
}

// HouseEdge returns the share of every dollar wagered that the house keeps
func (s *Statistics) HouseEdge() float64 {
	if s.Wagered == 0 {
		return 0
	}
	return -float64(s.NetWon) / float64(s.Wagered)
}

// Add incorporates a new round result into the statistics
func (s *Statistics) Add(result RoundResult) {
	units := result.Units()
	s.Rounds++
	s.SumUnits += units
	s.SumUnits2 += units * units
	s.Values = append(s.Values, units)

	s.Wagered += result.Bet
	s.NetWon += result.Net

	if o := int(result.Outcome); o >= 1 && o < len(s.OutcomeResults) {
		s.OutcomeResults[o].Rounds++
		s.OutcomeResults[o].SumUnits += units
	}

	s.PlayerCards += result.Cards
	if result.Cards > s.MaxCards {
		s.MaxCards = result.Cards
	}
}

// Merge folds other into s. Workers keep their own Statistics and the
// results are merged once they finish.
func (s *Statistics) Merge(other *Statistics) {
	s.Rounds += other.Rounds
	s.SumUnits += other.SumUnits
	s.SumUnits2 += other.SumUnits2
	s.Values = append(s.Values, other.Values...)
	s.Wagered += other.Wagered
	s.NetWon += other.NetWon
	for i := range s.OutcomeResults {
		s.OutcomeResults[i].Rounds += other.OutcomeResults[i].Rounds
		s.OutcomeResults[i].SumUnits += other.OutcomeResults[i].SumUnits
	}
	s.PlayerCards += other.PlayerCards
	s.MaxCards = max(s.MaxCards, other.MaxCards)
}

// OutcomeCount returns how many rounds ended with the given outcome
func (s *Statistics) OutcomeCount(o game.Outcome) int {
	if int(o) < 1 || int(o) >= len(s.OutcomeResults) {
		return 0
	}
	return s.OutcomeResults[o].Rounds
}

// OutcomeRate returns the share of rounds that ended with the given outcome
func (s *Statistics) OutcomeRate(o game.Outcome) float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.OutcomeCount(o)) / float64(s.Rounds)
}

// WinRate returns the share of rounds the player won
func (s *Statistics) WinRate() float64 {
	return s.rateWhere(game.Outcome.PlayerWins)
}

// LossRate returns the share of rounds the player lost
func (s *Statistics) LossRate() float64 {
	return s.rateWhere(game.Outcome.PlayerLoses)
}

func (s *Statistics) rateWhere(match func(game.Outcome) bool) float64 {
	if s.Rounds == 0 {
		return 0
	}
	n := 0
	for _, o := range game.Outcomes {
		if match(o) {
			n += s.OutcomeCount(o)
		}
	}
	return float64(n) / float64(s.Rounds)
}

// AverageCards returns the mean size of the player's final hand
func (s *Statistics) AverageCards() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.PlayerCards) / float64(s.Rounds)
}

// Median returns the median value of all results
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := s.sorted()

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

func (s *Statistics) sorted() []float64 {
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)
	return sorted
}

// IsLedgerBalanced checks that the per-outcome totals add up to the overall total
func (s *Statistics) IsLedgerBalanced() bool {
	var sum float64
	for _, stats := range s.OutcomeResults {
		sum += stats.SumUnits
	}
	return math.Abs(s.SumUnits-sum) <= 1e-6
}

// Validate performs comprehensive validation of statistics data
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: SumUnits=%.6f does not match outcome totals", s.SumUnits)
	}

	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}

	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values array length (%d) does not match rounds count (%d)",
			len(s.Values), s.Rounds)
	}

	totalOutcomes := 0
	for _, stats := range s.OutcomeResults {
		totalOutcomes += stats.Rounds
	}
	if totalOutcomes != s.Rounds {
		return fmt.Errorf("outcome rounds total (%d) does not match total rounds (%d)",
			totalOutcomes, s.Rounds)
	}

	return nil
}
