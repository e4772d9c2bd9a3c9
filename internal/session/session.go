// Package session runs consecutive blackjack rounds against one bankroll.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
)

// Reason explains why a session ended
type Reason string

const (
	ReasonBankrupt  Reason = "bankrupt"
	ReasonQuit      Reason = "player quit"
	ReasonCancelled Reason = "cancelled"
	ReasonMaxRounds Reason = "max rounds"
	ReasonAborted   Reason = "round aborted"
)

// ErrNoBalance is returned when a session is configured without money to bet
var ErrNoBalance = errors.New("starting balance must be positive")

// Config holds session settings
type Config struct {
	StartingBalance int
	MinBet          int
	MaxBet          int // 0 = no table maximum
	MaxRounds       int // 0 = unlimited
	DealerStandOn   int // 0 = game.DefaultDealerStandOn
	Seed            int64
}

// DefaultConfig returns the settings used when nothing is configured
func DefaultConfig() Config {
	return Config{
		StartingBalance: 100,
		MinBet:          1,
		DealerStandOn:   game.DefaultDealerStandOn,
	}
}

// Summary describes a finished session
type Summary struct {
	Reason          Reason
	Rounds          int
	StartingBalance int
	FinalBalance    int
	Net             int
	Outcomes        map[game.Outcome]int
	BiggestWin      int
	BiggestLoss     int
	Forfeited       int // stake lost to an abandoned round
	Seed            int64
}

// Session owns the bankroll for its lifetime and plays rounds until the
// player leaves, goes broke or the context is cancelled.
type Session struct {
	cfg      Config
	bankroll *game.Bankroll
	engine   *game.Engine
	seeds    *randutil.Stream
	bets     game.BetSource
	agent    game.Agent
	replay   game.ReplaySource
	logger   *log.Logger
}

// Option configures a Session
type Option func(*options)

type options struct {
	logger *log.Logger
	clock  quartz.Clock
	bus    game.EventBus
}

// WithLogger sets the session logger. The engine logs under the "engine" prefix.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithClock sets the clock used for event timestamps and seed resolution
func WithClock(clock quartz.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithEventBus publishes round events on the given bus
func WithEventBus(bus game.EventBus) Option {
	return func(o *options) { o.bus = bus }
}

// New creates a session. The bet source, agent and replay source are the
// front end: a console, the TUI or a bot.
func New(cfg Config, bets game.BetSource, agent game.Agent, replay game.ReplaySource, opts ...Option) (*Session, error) {
	if cfg.StartingBalance <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrNoBalance, cfg.StartingBalance)
	}

	o := &options{
		logger: log.New(io.Discard),
		clock:  quartz.NewReal(),
		bus:    game.NewEventBus(),
	}
	for _, opt := range opts {
		opt(o)
	}

	seed := randutil.Resolve(cfg.Seed, o.clock.Now())
	cfg.Seed = seed
	seeds := randutil.NewStream(seed)

	logger := o.logger
	bankroll := game.NewBankroll(cfg.StartingBalance)
	engine := game.NewEngine(bankroll,
		game.WithLogger(logger.WithPrefix("engine")),
		game.WithClock(o.clock),
		game.WithEventBus(o.bus),
		game.WithTableLimits(cfg.MinBet, cfg.MaxBet),
		game.WithDealerStandOn(cfg.DealerStandOn),
		game.WithDeckFactory(func(*rand.Rand) *deck.Deck {
			roundSeed := seeds.Next()
			logger.Debug("Shuffling deck", "seed", roundSeed)
			return deck.NewDeck(randutil.New(roundSeed))
		}),
	)

	return &Session{
		cfg:      cfg,
		bankroll: bankroll,
		engine:   engine,
		seeds:    seeds,
		bets:     bets,
		agent:    agent,
		replay:   replay,
		logger:   logger,
	}, nil
}

// Seed returns the master seed. Passing it back in Config.Seed replays the
// same sequence of decks.
func (s *Session) Seed() int64 {
	return s.seeds.Master()
}

// Bankroll returns the session's bankroll
func (s *Session) Bankroll() *game.Bankroll {
	return s.bankroll
}

// Run plays rounds until the session ends. Cancellation is checked between
// rounds; a round in progress runs to completion unless its input sources
// return an error. The summary is always returned, the error only when a
// round failed for a reason other than the player quitting.
func (s *Session) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{
		StartingBalance: s.cfg.StartingBalance,
		Outcomes:        make(map[game.Outcome]int),
		Seed:            s.Seed(),
	}
	s.logger.Info("Session started", "balance", s.cfg.StartingBalance, "seed", summary.Seed)

	reason, err := s.loop(ctx, summary)
	summary.Reason = reason
	summary.FinalBalance = s.bankroll.Balance()
	summary.Net = summary.FinalBalance - summary.StartingBalance

	s.logger.Info("Session ended",
		"reason", reason,
		"rounds", summary.Rounds,
		"balance", summary.FinalBalance,
		"net", summary.Net)

	return summary, err
}

func (s *Session) loop(ctx context.Context, summary *Summary) (Reason, error) {
	for {
		if ctx.Err() != nil {
			return ReasonCancelled, nil
		}
		if s.bankroll.Balance() <= 0 {
			return ReasonBankrupt, nil
		}
		if s.cfg.MaxRounds > 0 && summary.Rounds >= s.cfg.MaxRounds {
			return ReasonMaxRounds, nil
		}

		result, err := s.engine.PlayRound(s.bets, s.agent)
		if err != nil {
			summary.forfeit(s.bankroll.CurrentBet())
			switch {
			case errors.Is(err, game.ErrQuit):
				return ReasonQuit, nil
			case errors.Is(err, context.Canceled), ctx.Err() != nil:
				return ReasonCancelled, nil
			default:
				return ReasonAborted, err
			}
		}
		summary.record(result)

		if s.bankroll.Balance() <= 0 {
			return ReasonBankrupt, nil
		}
		if s.cfg.MaxRounds > 0 && summary.Rounds >= s.cfg.MaxRounds {
			return ReasonMaxRounds, nil
		}

		again, err := s.replay.PlayAgain(s.bankroll.Balance())
		switch {
		case errors.Is(err, game.ErrQuit):
			return ReasonQuit, nil
		case errors.Is(err, context.Canceled):
			return ReasonCancelled, nil
		case err != nil:
			return ReasonAborted, fmt.Errorf("replay input: %w", err)
		case !again:
			return ReasonQuit, nil
		}
	}
}

// forfeit records the stake still held by an aborted round
func (sum *Summary) forfeit(amount int) {
	if amount <= 0 {
		return
	}
	sum.Forfeited += amount
	sum.BiggestLoss = max(sum.BiggestLoss, amount)
}

func (sum *Summary) record(result *game.RoundResult) {
	sum.Rounds++
	sum.Outcomes[result.Outcome]++
	if result.Net > sum.BiggestWin {
		sum.BiggestWin = result.Net
	}
	if -result.Net > sum.BiggestLoss {
		sum.BiggestLoss = -result.Net
	}
}
