// Package simulator plays large numbers of blackjack rounds with automated
// strategies and collects statistics about the results.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjack/internal/bot"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/statistics"
)

// ErrNoRounds is returned when a simulation is asked to play nothing
var ErrNoRounds = errors.New("rounds must be positive")

// Config holds configuration for running simulations
type Config struct {
	Rounds        int
	Strategy      string
	Bet           int
	DealerStandOn int
	Seed          int64
	Workers       int // 0 = GOMAXPROCS
	Logger        *log.Logger
	Clock         quartz.Clock
}

// Result is the outcome of a simulation run
type Result struct {
	Stats    *statistics.Statistics
	Strategy string
	Bet      int
	Seed     int64
	StandOn  int
	Duration time.Duration
}

// Simulator runs blackjack round simulations
type Simulator struct {
	config       Config
	engineLogger *log.Logger
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	if config.Clock == nil {
		config.Clock = quartz.NewReal()
	}
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.Bet <= 0 {
		config.Bet = 1
	}
	if config.DealerStandOn <= 0 {
		config.DealerStandOn = game.DefaultDealerStandOn
	}
	config.Seed = randutil.Resolve(config.Seed, config.Clock.Now())

	// Per-round engine logs only show up at debug level
	engineLogger := config.Logger.WithPrefix("engine")
	if engineLogger.GetLevel() > log.DebugLevel {
		engineLogger.SetLevel(log.WarnLevel)
	}
	return &Simulator{config: config, engineLogger: engineLogger}
}

// Run executes the simulation and returns results. Round n always uses the
// same deck for a given seed, however the rounds are split across workers.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	if s.config.Rounds <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrNoRounds, s.config.Rounds)
	}
	if _, err := bot.New(s.config.Strategy, bot.Config{}); err != nil {
		return nil, err
	}

	workers := min(s.config.Workers, s.config.Rounds)
	start := s.config.Clock.Now()
	seeds := randutil.NewStream(s.config.Seed)

	s.config.Logger.Info("Starting simulation",
		"rounds", s.config.Rounds,
		"strategy", s.config.Strategy,
		"workers", workers,
		"seed", s.config.Seed)

	partials := make([]*statistics.Statistics, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		partials[w] = &statistics.Statistics{}
		g.Go(func() error {
			for n := w + 1; n <= s.config.Rounds; n += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				result, err := s.playRound(seeds.At(n))
				if err != nil {
					return fmt.Errorf("round %d: %w", n, err)
				}
				partials[w].Add(result)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for _, p := range partials {
		stats.Merge(p)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	result := &Result{
		Stats:    stats,
		Strategy: s.config.Strategy,
		Bet:      s.config.Bet,
		Seed:     s.config.Seed,
		StandOn:  s.config.DealerStandOn,
		Duration: s.config.Clock.Since(start),
	}
	s.config.Logger.Info("Simulation complete",
		"rounds", stats.Rounds,
		"mean", stats.Mean(),
		"house_edge", stats.HouseEdge(),
		"duration", result.Duration)
	return result, nil
}

// playRound plays one round with a bankroll that holds exactly the stake
func (s *Simulator) playRound(seed int64) (statistics.RoundResult, error) {
	agent, err := bot.New(s.config.Strategy, bot.Config{
		RNG:     randutil.New(^seed),
		Logger:  s.config.Logger,
		StandOn: s.config.DealerStandOn,
	})
	if err != nil {
		return statistics.RoundResult{}, err
	}

	engine := game.NewEngine(game.NewBankroll(s.config.Bet),
		game.WithLogger(s.engineLogger),
		game.WithClock(s.config.Clock),
		game.WithDealerStandOn(s.config.DealerStandOn),
		game.WithDeckFactory(func(*rand.Rand) *deck.Deck {
			return deck.NewDeck(randutil.New(seed))
		}),
	)

	round, err := engine.PlayRound(bot.FlatBetter{Amount: s.config.Bet}, agent)
	if err != nil {
		return statistics.RoundResult{}, err
	}

	return statistics.RoundResult{
		Outcome: round.Outcome,
		Bet:     round.Bet,
		Net:     round.Net,
		Seed:    seed,
		Cards:   len(round.PlayerCards),
	}, nil
}

// PrintSummary prints a comprehensive summary of simulation results
func PrintSummary(w io.Writer, result *Result) {
	stats := result.Stats
	low, high := stats.ConfidenceInterval95()

	fmt.Fprintf(w, "\n=== FINAL RESULTS: %s strategy ===\n", result.Strategy)
	fmt.Fprintf(w, "Rounds played: %d ($%d flat bet, dealer stands on %d)\n", stats.Rounds, result.Bet, result.StandOn)
	fmt.Fprintf(w, "Seed: %d\n", result.Seed)

	fmt.Fprintf(w, "\n=== STATISTICAL RESULTS ===\n")
	fmt.Fprintf(w, "Mean: %.4f units/round\n", stats.Mean())
	fmt.Fprintf(w, "Median: %.4f units/round\n", stats.Median())
	fmt.Fprintf(w, "Std Dev: %.4f units\n", stats.StdDev())
	fmt.Fprintf(w, "Std Error: %.4f units\n", stats.StdError())
	fmt.Fprintf(w, "95%% CI: [%.4f, %.4f] units/round\n", low, high)
	fmt.Fprintf(w, "House edge: %.2f%%\n", stats.HouseEdge()*100)

	fmt.Fprintf(w, "\n=== OUTCOMES ===\n")
	for _, o := range game.Outcomes {
		fmt.Fprintf(w, "%-17s %8d (%5.2f%%)\n", o, stats.OutcomeCount(o), stats.OutcomeRate(o)*100)
	}
	fmt.Fprintf(w, "Won %.2f%%, lost %.2f%%\n", stats.WinRate()*100, stats.LossRate()*100)
	fmt.Fprintf(w, "Average player hand: %.2f cards (max %d)\n", stats.AverageCards(), stats.MaxCards)
	fmt.Fprintf(w, "\nCompleted in %s\n", result.Duration.Round(time.Millisecond))
}
