package session

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/game"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func standAgent() game.Agent {
	return game.AgentFunc(func(game.TableView) (game.Action, error) { return game.Stand, nil })
}

func flatBet(amount int) game.BetSource {
	return game.BetSourceFunc(func(req game.BetRequest) (int, error) {
		return min(amount, req.Balance), nil
	})
}

func alwaysReplay() game.ReplaySource {
	return game.ReplayFunc(func(int) (bool, error) { return true, nil })
}

func TestNewRejectsEmptyBankroll(t *testing.T) {
	t.Parallel()

	_, err := New(Config{StartingBalance: 0}, flatBet(1), standAgent(), alwaysReplay())
	assert.ErrorIs(t, err, ErrNoBalance)
}

func TestRunStopsAtMaxRounds(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.StartingBalance = 1000
	cfg.MaxRounds = 5
	cfg.Seed = 42

	s, err := New(cfg, flatBet(10), standAgent(), alwaysReplay(), WithLogger(quietLogger()))
	require.NoError(t, err)

	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ReasonMaxRounds, summary.Reason)
	assert.Equal(t, 5, summary.Rounds)
	assert.Equal(t, int64(42), summary.Seed)
	assert.Equal(t, summary.FinalBalance-1000, summary.Net)
	assert.Equal(t, s.Bankroll().Balance(), summary.FinalBalance)

	total := 0
	for _, n := range summary.Outcomes {
		total += n
	}
	assert.Equal(t, 5, total)
}

func TestRunEndsWhenBankrupt(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.StartingBalance = 10
	cfg.Seed = 3

	// Always hitting goes bust sooner or later, and every round bets everything
	hitter := game.AgentFunc(func(game.TableView) (game.Action, error) { return game.Hit, nil })
	allIn := game.BetSourceFunc(func(req game.BetRequest) (int, error) { return req.Balance, nil })

	replays := 0
	replay := game.ReplayFunc(func(balance int) (bool, error) {
		assert.Positive(t, balance, "replay is never offered at zero")
		replays++
		return replays < 1000, nil
	})

	s, err := New(cfg, allIn, hitter, replay, WithLogger(quietLogger()))
	require.NoError(t, err)

	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ReasonBankrupt, summary.Reason)
	assert.Equal(t, 0, summary.FinalBalance)
	assert.Equal(t, -10, summary.Net)
	assert.Equal(t, summary.Rounds-1, replays)
}

func TestRunPlayerDeclinesReplay(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Seed = 9
	s, err := New(cfg, flatBet(5), standAgent(),
		game.ReplayFunc(func(int) (bool, error) { return false, nil }),
		WithLogger(quietLogger()))
	require.NoError(t, err)

	summary, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReasonQuit, summary.Reason)
	assert.Equal(t, 1, summary.Rounds)
}

func TestRunQuitDuringRound(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Seed = 9
	quitter := game.BetSourceFunc(func(game.BetRequest) (int, error) { return 0, game.ErrQuit })

	s, err := New(cfg, quitter, standAgent(), alwaysReplay(), WithLogger(quietLogger()))
	require.NoError(t, err)

	summary, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReasonQuit, summary.Reason)
	assert.Equal(t, 0, summary.Rounds)
	assert.Equal(t, 100, summary.FinalBalance)
}

func TestRunQuitAfterBetForfeitsStake(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Seed = 9
	quitter := game.AgentFunc(func(game.TableView) (game.Action, error) { return 0, game.ErrQuit })

	s, err := New(cfg, flatBet(25), quitter, alwaysReplay(), WithLogger(quietLogger()))
	require.NoError(t, err)

	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	// Rounds settled on a natural never reach the agent, so only the round
	// it quits counts as forfeited
	assert.Equal(t, ReasonQuit, summary.Reason)
	assert.Equal(t, 25, summary.Forfeited)
	assert.Equal(t, 25, summary.BiggestLoss)
	assert.Equal(t, s.Bankroll().Balance(), summary.FinalBalance)
	assert.Equal(t, 25, s.Bankroll().CurrentBet(), "stake stays held")
}

func TestRunInputFailureIsReported(t *testing.T) {
	t.Parallel()

	boom := errors.New("stdin closed")
	broken := game.BetSourceFunc(func(game.BetRequest) (int, error) { return 0, boom })

	s, err := New(DefaultConfig(), broken, standAgent(), alwaysReplay(), WithLogger(quietLogger()))
	require.NoError(t, err)

	summary, err := s.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, summary)
	assert.Equal(t, ReasonAborted, summary.Reason)
}

func TestRunCancelledBetweenRounds(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	replay := game.ReplayFunc(func(int) (bool, error) {
		cancel()
		return true, nil
	})

	s, err := New(DefaultConfig(), flatBet(1), standAgent(), replay, WithLogger(quietLogger()))
	require.NoError(t, err)

	summary, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReasonCancelled, summary.Reason)
	assert.Equal(t, 1, summary.Rounds)
}

func TestSeedReplaysTheSameRounds(t *testing.T) {
	t.Parallel()

	play := func(seed int64) []game.RoundEndEvent {
		bus := game.NewEventBus()
		var ends []game.RoundEndEvent
		bus.Subscribe(game.SubscriberFunc(func(e game.GameEvent) {
			if end, ok := e.(game.RoundEndEvent); ok {
				ends = append(ends, end)
			}
		}))

		cfg := DefaultConfig()
		cfg.StartingBalance = 1000
		cfg.MaxRounds = 10
		cfg.Seed = seed

		s, err := New(cfg, flatBet(10), standAgent(), alwaysReplay(),
			WithLogger(quietLogger()), WithEventBus(bus))
		require.NoError(t, err)
		_, err = s.Run(context.Background())
		require.NoError(t, err)
		return ends
	}

	a, b := play(1234), play(1234)
	require.Len(t, a, 10)
	for i := range a {
		assert.Equal(t, a[i].PlayerCards, b[i].PlayerCards, "round %d", i+1)
		assert.Equal(t, a[i].DealerCards, b[i].DealerCards, "round %d", i+1)
	}
}

func TestUnsetSeedIsResolvedFromClock(t *testing.T) {
	t.Parallel()

	mClock := quartz.NewMock(t)
	mClock.Set(time.Unix(0, 987654321)).MustWait(context.Background())

	s, err := New(DefaultConfig(), flatBet(1), standAgent(), alwaysReplay(), WithClock(mClock))
	require.NoError(t, err)
	assert.Equal(t, int64(987654321), s.Seed())
}
