package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/roundid"
)

func recordEvents(e *Engine) *EventRecorder {
	rec := &EventRecorder{}
	e.GetEventBus().Subscribe(rec)
	return rec
}

func TestEnginePlayerBlackjack(t *testing.T) {
	t.Parallel()

	// Player Ah Kd, dealer 9c 7s
	e := NewTestEngine(WithCards("Ah 9c Kd 7s"))
	rec := recordEvents(e)
	agent := &ScriptedAgent{}

	result, err := e.PlayRound(FixedBet(10), agent)
	require.NoError(t, err)

	assert.Equal(t, PlayerBlackjack, result.Outcome)
	assert.Equal(t, 25, result.Payout)
	assert.Equal(t, 15, result.Net)
	assert.Equal(t, 115, result.Balance)
	assert.Equal(t, 115, e.Bankroll().Balance())
	assert.Equal(t, []State{Dealing, CheckNaturals, Settled}, result.States)
	assert.Empty(t, agent.Views, "no decisions after a natural")

	assert.Equal(t, []EventType{
		EventTypeRoundStart,
		EventTypeBetPlaced,
		EventTypeInitialDeal,
		EventTypeRoundEnd,
	}, rec.Types())
}

func TestEngineDealerBlackjack(t *testing.T) {
	t.Parallel()

	e := NewTestEngine(WithCards("9c Ah 7d Kd"))
	rec := recordEvents(e)

	result, err := e.PlayRound(FixedBet(10), &ScriptedAgent{})
	require.NoError(t, err)

	assert.Equal(t, DealerBlackjack, result.Outcome)
	assert.Equal(t, 90, e.Bankroll().Balance())
	assert.Contains(t, rec.Types(), EventTypeDealerReveal, "dealer natural is shown")
}

func TestEngineBothNaturalsPush(t *testing.T) {
	t.Parallel()

	e := NewTestEngine(WithCards("Ah As Kd Qc"))

	result, err := e.PlayRound(FixedBet(10), &ScriptedAgent{})
	require.NoError(t, err)

	assert.Equal(t, Push, result.Outcome)
	assert.Equal(t, 10, result.Payout)
	assert.Equal(t, 0, result.Net)
	assert.Equal(t, 100, e.Bankroll().Balance())
}

func TestEngineDealerHitsAndBusts(t *testing.T) {
	t.Parallel()

	// Player Th 6c = 16 stands, dealer 9d 6s = 15 draws Kh to 25
	e := NewTestEngine(WithCards("Th 9d 6c 6s Kh"))
	rec := recordEvents(e)

	result, err := e.PlayRound(FixedBet(10), &ScriptedAgent{Actions: []Action{Stand}})
	require.NoError(t, err)

	assert.Equal(t, DealerBust, result.Outcome)
	assert.Equal(t, 16, result.PlayerValue)
	assert.Equal(t, 25, result.DealerValue)
	assert.Len(t, result.DealerCards, 3)
	assert.Equal(t, 110, e.Bankroll().Balance())
	assert.Equal(t, []State{Dealing, CheckNaturals, PlayerTurn, DealerTurn, Settlement, Settled}, result.States)

	assert.Equal(t, []EventType{
		EventTypeRoundStart,
		EventTypeBetPlaced,
		EventTypeInitialDeal,
		EventTypePlayerAction,
		EventTypeDealerReveal,
		EventTypeDealerAction,
		EventTypeDealerAction,
		EventTypeRoundEnd,
	}, rec.Types())

	hit, ok := rec.Events[5].(DealerActionEvent)
	require.True(t, ok)
	assert.Equal(t, Hit, hit.Action)
	require.NotNil(t, hit.Card)
	assert.Equal(t, deck.NewCard(deck.Hearts, deck.King), *hit.Card)
	assert.True(t, hit.Bust)
}

func TestEnginePlayerBust(t *testing.T) {
	t.Parallel()

	e := NewTestEngine(WithCards("Th 9d 6c 7s Kh"))
	rec := recordEvents(e)

	result, err := e.PlayRound(FixedBet(10), &ScriptedAgent{Actions: []Action{Hit}})
	require.NoError(t, err)

	assert.Equal(t, PlayerBust, result.Outcome)
	assert.Equal(t, 26, result.PlayerValue)
	assert.Len(t, result.DealerCards, 2, "dealer does not draw after a player bust")
	assert.Equal(t, 90, e.Bankroll().Balance())
	assert.NotContains(t, result.States, DealerTurn)
	assert.NotContains(t, rec.Types(), EventTypeDealerReveal)
}

func TestEnginePlayerDecidesAtTwentyOne(t *testing.T) {
	t.Parallel()

	// Player 5h 6c hits Th to 21, dealer 9d 7s draws 2c to 18
	e := NewTestEngine(WithCards("5h 9d 6c 7s Th 2c"))
	agent := &ScriptedAgent{Actions: []Action{Hit}}

	result, err := e.PlayRound(FixedBet(10), agent)
	require.NoError(t, err)

	require.Len(t, agent.Views, 2, "reaching 21 does not end the turn")
	assert.Equal(t, 11, agent.Views[0].PlayerValue)
	assert.Equal(t, 21, agent.Views[1].PlayerValue)
	assert.Equal(t, deck.NewCard(deck.Diamonds, deck.Nine), agent.Views[0].DealerUpCard)
	assert.Equal(t, 10, agent.Views[0].Bet)
	assert.Equal(t, 90, agent.Views[0].Balance)

	assert.Equal(t, PlayerWin, result.Outcome)
	assert.Equal(t, 18, result.DealerValue)
}

func TestEngineDealerStandsOnSoftSeventeen(t *testing.T) {
	t.Parallel()

	// Player Th 8c = 18, dealer Ah 6d = soft 17
	e := NewTestEngine(WithCards("Th Ah 8c 6d"))

	result, err := e.PlayRound(FixedBet(10), &ScriptedAgent{})
	require.NoError(t, err)

	assert.Equal(t, PlayerWin, result.Outcome)
	assert.Equal(t, 17, result.DealerValue)
	assert.Len(t, result.DealerCards, 2)
}

func TestEngineDealerStandOnThreshold(t *testing.T) {
	t.Parallel()

	e := NewTestEngine(
		WithCards("Th Ah 8c 6d 2s"),
		WithEngineOptions(WithDealerStandOn(18)),
	)

	result, err := e.PlayRound(FixedBet(10), &ScriptedAgent{})
	require.NoError(t, err)

	assert.Equal(t, DealerWin, result.Outcome)
	assert.Equal(t, 19, result.DealerValue)
}

func TestEngineEmptyDeckAborts(t *testing.T) {
	t.Parallel()

	t.Run("during the deal", func(t *testing.T) {
		e := NewTestEngine(WithCards("Th 9d 6c"))
		rec := recordEvents(e)

		result, err := e.PlayRound(FixedBet(10), &ScriptedAgent{})
		require.Error(t, err)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, deck.ErrEmptyDeck)

		// The stake stays held and nothing is settled
		assert.Equal(t, 90, e.Bankroll().Balance())
		assert.Equal(t, 10, e.Bankroll().CurrentBet())

		last := rec.Events[len(rec.Events)-1]
		aborted, ok := last.(RoundAbortedEvent)
		require.True(t, ok)
		assert.Equal(t, Dealing, aborted.State)
		assert.Equal(t, 10, aborted.BetHeld)
		assert.NotContains(t, rec.Types(), EventTypeRoundEnd)
	})

	t.Run("during the dealer turn", func(t *testing.T) {
		e := NewTestEngine(WithCards("Th 9d 6c 6s"))
		rec := recordEvents(e)

		_, err := e.PlayRound(FixedBet(10), &ScriptedAgent{})
		assert.ErrorIs(t, err, deck.ErrEmptyDeck)

		aborted, ok := rec.Events[len(rec.Events)-1].(RoundAbortedEvent)
		require.True(t, ok)
		assert.Equal(t, DealerTurn, aborted.State)
	})
}

func TestEngineBetRetries(t *testing.T) {
	t.Parallel()

	e := NewTestEngine(WithCards("Th 9d 8c 8s"))
	rec := recordEvents(e)

	var requests []BetRequest
	amounts := []int{500, 0, 10}
	bets := BetSourceFunc(func(req BetRequest) (int, error) {
		requests = append(requests, req)
		amount := amounts[0]
		amounts = amounts[1:]
		return amount, nil
	})

	result, err := e.PlayRound(bets, &ScriptedAgent{})
	require.NoError(t, err)
	assert.Equal(t, 10, result.Bet)

	require.Len(t, requests, 3)
	assert.NoError(t, requests[0].LastError)
	assert.ErrorIs(t, requests[1].LastError, ErrInsufficientFunds)
	assert.ErrorIs(t, requests[2].LastError, ErrInsufficientFunds)
	assert.Equal(t, 100, requests[2].Balance, "rejected bets do not touch the balance")

	rejected := 0
	for _, ev := range rec.Events {
		if _, ok := ev.(BetRejectedEvent); ok {
			rejected++
		}
	}
	assert.Equal(t, 2, rejected)
}

func TestEngineTableLimits(t *testing.T) {
	t.Parallel()

	t.Run("enforces minimum and maximum", func(t *testing.T) {
		e := NewTestEngine(
			WithCards("Th 9d 8c 8s"),
			WithEngineOptions(WithTableLimits(5, 50)),
		)

		var errs []error
		amounts := []int{2, 60, 20}
		bets := BetSourceFunc(func(req BetRequest) (int, error) {
			assert.Equal(t, 5, req.MinBet)
			assert.Equal(t, 50, req.MaxBet)
			errs = append(errs, req.LastError)
			amount := amounts[0]
			amounts = amounts[1:]
			return amount, nil
		})

		result, err := e.PlayRound(bets, &ScriptedAgent{})
		require.NoError(t, err)
		assert.Equal(t, 20, result.Bet)
		assert.ErrorIs(t, errs[1], ErrBetBelowMinimum)
		assert.ErrorIs(t, errs[2], ErrBetAboveMaximum)
	})

	t.Run("short stack may bet the remaining balance", func(t *testing.T) {
		e := NewTestEngine(
			WithBalance(3),
			WithCards("Th 9d 8c 8s"),
			WithEngineOptions(WithTableLimits(5, 50)),
		)

		bets := BetSourceFunc(func(req BetRequest) (int, error) {
			assert.Equal(t, 3, req.MinBet)
			return req.Balance, nil
		})

		result, err := e.PlayRound(bets, &ScriptedAgent{})
		require.NoError(t, err)
		assert.Equal(t, 3, result.Bet)
	})

	t.Run("gives up on a source that never complies", func(t *testing.T) {
		e := NewTestEngine(WithCards("Th 9d 8c 8s"))

		_, err := e.PlayRound(FixedBet(1000), &ScriptedAgent{})
		assert.ErrorIs(t, err, ErrTooManyBetAttempts)
		assert.Equal(t, 100, e.Bankroll().Balance())
	})
}

func TestEngineCollaboratorErrors(t *testing.T) {
	t.Parallel()

	t.Run("bet source error leaves bankroll untouched", func(t *testing.T) {
		e := NewTestEngine(WithCards("Th 9d 8c 8s"))
		boom := errors.New("input closed")

		_, err := e.PlayRound(BetSourceFunc(func(BetRequest) (int, error) { return 0, boom }), &ScriptedAgent{})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 100, e.Bankroll().Balance())
		assert.False(t, e.Bankroll().HasActiveBet())
	})

	t.Run("quit during decision holds the stake", func(t *testing.T) {
		e := NewTestEngine(WithCards("Th 9d 8c 8s"))
		agent := AgentFunc(func(TableView) (Action, error) { return 0, ErrQuit })

		_, err := e.PlayRound(FixedBet(10), agent)
		assert.ErrorIs(t, err, ErrQuit)
		assert.Equal(t, 90, e.Bankroll().Balance())
		assert.Equal(t, 10, e.Bankroll().CurrentBet())
	})

	t.Run("unknown action aborts", func(t *testing.T) {
		e := NewTestEngine(WithCards("Th 9d 8c 8s"))
		agent := AgentFunc(func(TableView) (Action, error) { return Action(99), nil })

		_, err := e.PlayRound(FixedBet(10), agent)
		assert.ErrorIs(t, err, ErrInvalidAction)
	})
}

func TestEngineRoundIdentity(t *testing.T) {
	t.Parallel()

	mClock := quartz.NewMock(t)
	start := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	mClock.Set(start).MustWait(context.Background())

	e := NewTestEngine(
		WithCards("Th 9d 8c 8s"),
		WithEngineOptions(WithClock(mClock)),
	)
	rec := recordEvents(e)

	first, err := e.PlayRound(FixedBet(10), &ScriptedAgent{})
	require.NoError(t, err)
	second, err := e.PlayRound(FixedBet(10), &ScriptedAgent{})
	require.NoError(t, err)

	assert.NoError(t, roundid.Validate(first.RoundID))
	assert.NotEqual(t, first.RoundID, second.RoundID)
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, 2, second.Number)

	for _, ev := range rec.Events {
		assert.Equal(t, start, ev.Timestamp())
		assert.Contains(t, []string{first.RoundID, second.RoundID}, ev.RoundID())
	}
}

func TestEngineSeededRoundsAreReproducible(t *testing.T) {
	t.Parallel()

	play := func() []*RoundResult {
		e := NewTestEngine(WithEngineOptions(WithRNG(randutil.New(7))))
		var results []*RoundResult
		for i := 0; i < 5; i++ {
			result, err := e.PlayRound(FixedBet(1), &ScriptedAgent{})
			require.NoError(t, err)
			results = append(results, result)
		}
		return results
	}

	a, b := play(), play()
	for i := range a {
		assert.Equal(t, a[i].PlayerCards, b[i].PlayerCards)
		assert.Equal(t, a[i].DealerCards, b[i].DealerCards)
		assert.Equal(t, a[i].Outcome, b[i].Outcome)
	}
}

func TestEngineDeckIsFreshEachRound(t *testing.T) {
	t.Parallel()

	e := NewTestEngine(WithCards("Th 9d 8c 8s"))
	for i := 0; i < 3; i++ {
		result, err := e.PlayRound(FixedBet(10), &ScriptedAgent{})
		require.NoError(t, err, "round %d", i+1)
		assert.Equal(t, PlayerWin, result.Outcome)
	}
	assert.Equal(t, 130, e.Bankroll().Balance())
}
