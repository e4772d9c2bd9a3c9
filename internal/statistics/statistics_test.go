package statistics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/game"
)

func TestStatistics_Empty(t *testing.T) {
	stats := &Statistics{}

	assert.Zero(t, stats.Mean())
	assert.Zero(t, stats.Variance())
	assert.Zero(t, stats.StdDev())
	assert.Zero(t, stats.StdError())
	assert.Zero(t, stats.Median())
	assert.Zero(t, stats.HouseEdge())
	assert.Zero(t, stats.WinRate())
	assert.Zero(t, stats.AverageCards())
	assert.Error(t, stats.Validate(), "no rounds is not a valid run")
}

func TestStatistics_SingleValue(t *testing.T) {
	stats := &Statistics{}
	stats.Add(RoundResult{Outcome: game.PlayerBlackjack, Bet: 10, Net: 15, Seed: 12345, Cards: 2})

	if stats.Rounds != 1 {
		t.Errorf("Expected 1 round, got %d", stats.Rounds)
	}
	if stats.Mean() != 1.5 {
		t.Errorf("Expected mean of 1.5, got %f", stats.Mean())
	}
	if stats.Variance() != 0 {
		t.Errorf("Expected variance of 0 for single value, got %f", stats.Variance())
	}
	assert.Equal(t, 1.5, stats.Median())
	assert.Equal(t, 1, stats.OutcomeCount(game.PlayerBlackjack))
	assert.Equal(t, 1.0, stats.WinRate())
	assert.Equal(t, -1.5, stats.HouseEdge())
	require.NoError(t, stats.Validate())
}

func TestStatistics_MultipleValues(t *testing.T) {
	stats := &Statistics{}
	results := []RoundResult{
		{Outcome: game.PlayerWin, Bet: 10, Net: 10, Cards: 3},
		{Outcome: game.DealerWin, Bet: 10, Net: -10, Cards: 2},
		{Outcome: game.Push, Bet: 10, Net: 0, Cards: 2},
		{Outcome: game.PlayerBust, Bet: 10, Net: -10, Cards: 4},
	}
	for _, r := range results {
		stats.Add(r)
	}

	// Units: 1, -1, 0, -1 -> mean -0.25
	assert.InDelta(t, -0.25, stats.Mean(), 1e-9)

	// Sample variance: sum((x-mean)^2)/(n-1) = (1.5625+0.5625+0.0625+0.5625)/3
	assert.InDelta(t, 2.75/3, stats.Variance(), 1e-9)
	assert.InDelta(t, math.Sqrt(2.75/3), stats.StdDev(), 1e-9)

	lo, hi := stats.ConfidenceInterval95()
	assert.Less(t, lo, stats.Mean())
	assert.Greater(t, hi, stats.Mean())
	assert.InDelta(t, stats.Mean(), (lo+hi)/2, 1e-9)

	assert.InDelta(t, -0.5, stats.Median(), 1e-9)
	assert.Equal(t, -1.0, stats.Percentile(0))
	assert.Equal(t, 1.0, stats.Percentile(1))

	assert.Equal(t, 40, stats.Wagered)
	assert.Equal(t, -10, stats.NetWon)
	assert.InDelta(t, 0.25, stats.HouseEdge(), 1e-9)
	assert.InDelta(t, 0.25, stats.WinRate(), 1e-9)
	assert.InDelta(t, 0.5, stats.LossRate(), 1e-9)
	assert.InDelta(t, 0.25, stats.OutcomeRate(game.Push), 1e-9)
	assert.Equal(t, 4, stats.MaxCards)
	assert.InDelta(t, 2.75, stats.AverageCards(), 1e-9)

	require.NoError(t, stats.Validate())
}

func TestStatistics_Merge(t *testing.T) {
	a, b, all := &Statistics{}, &Statistics{}, &Statistics{}
	results := []RoundResult{
		{Outcome: game.DealerBust, Bet: 5, Net: 5, Cards: 2},
		{Outcome: game.DealerBlackjack, Bet: 5, Net: -5, Cards: 2},
		{Outcome: game.PlayerBlackjack, Bet: 4, Net: 6, Cards: 2},
		{Outcome: game.PlayerBust, Bet: 5, Net: -5, Cards: 5},
	}
	for i, r := range results {
		all.Add(r)
		if i%2 == 0 {
			a.Add(r)
		} else {
			b.Add(r)
		}
	}

	a.Merge(b)

	assert.Equal(t, all.Rounds, a.Rounds)
	assert.InDelta(t, all.Mean(), a.Mean(), 1e-9)
	assert.InDelta(t, all.Variance(), a.Variance(), 1e-9)
	assert.Equal(t, all.OutcomeResults, a.OutcomeResults)
	assert.Equal(t, all.Wagered, a.Wagered)
	assert.Equal(t, all.MaxCards, a.MaxCards)
	assert.InDelta(t, all.Median(), a.Median(), 1e-9)
	require.NoError(t, a.Validate())
}

func TestStatistics_ValidateDetectsMismatch(t *testing.T) {
	stats := &Statistics{}
	stats.Add(RoundResult{Outcome: game.PlayerWin, Bet: 1, Net: 1})
	stats.SumUnits += 5

	assert.False(t, stats.IsLedgerBalanced())
	assert.ErrorContains(t, stats.Validate(), "ledger mismatch")

	stats = &Statistics{}
	stats.Add(RoundResult{Outcome: game.PlayerWin, Bet: 1, Net: 1})
	stats.Values = append(stats.Values, 3)
	assert.ErrorContains(t, stats.Validate(), "values array length")
}
