package main

import (
	"fmt"
	"os"
	"time"

	"github.com/lox/blackjack/internal/bot"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/simulator"
)

// SimulateCmd plays rounds with an automated strategy and flat bets
type SimulateCmd struct {
	Rounds   int    `short:"n" default:"10000" help:"Number of rounds to play"`
	Strategy string `short:"s" default:"basic" help:"Player strategy (${strategies})"`
	Bet      int    `default:"1" help:"Flat bet per round"`
	StandOn  int    `name:"stand-on" default:"17" help:"Dealer stands on this total or more"`
	Seed     int64  `help:"Deterministic seed (0 picks one from the clock)"`
	Workers  int    `help:"Parallel workers (0 for one per CPU)"`
	Output   string `short:"o" help:"Write a JSON report to this file" type:"path"`
	Debug    bool   `help:"Enable debug logging"`
}

// Validate checks flag values before Run
func (c *SimulateCmd) Validate() error {
	if !bot.IsStrategy(c.Strategy) {
		return fmt.Errorf("unknown strategy %q", c.Strategy)
	}
	if c.Rounds <= 0 {
		return fmt.Errorf("rounds must be positive, got %d", c.Rounds)
	}
	if c.Bet <= 0 {
		return fmt.Errorf("bet must be positive, got %d", c.Bet)
	}
	if c.StandOn < 12 || c.StandOn > game.Blackjack {
		return fmt.Errorf("dealer must stand on a total between 12 and 21, got %d", c.StandOn)
	}
	return nil
}

func (c *SimulateCmd) Run() error {
	logger, err := setupLogger(os.Stderr, "info", c.Debug)
	if err != nil {
		return err
	}
	logger = logger.WithPrefix("simulate")

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	result, err := simulator.New(simulator.Config{
		Rounds:        c.Rounds,
		Strategy:      c.Strategy,
		Bet:           c.Bet,
		DealerStandOn: c.StandOn,
		Seed:          c.Seed,
		Workers:       c.Workers,
		Logger:        logger,
	}).Run(ctx)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	simulator.PrintSummary(os.Stdout, result)

	if c.Output != "" {
		if err := simulator.WriteReport(c.Output, simulator.NewReport(result, time.Now())); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		logger.Info("Report written", "path", c.Output)
	}
	return nil
}
