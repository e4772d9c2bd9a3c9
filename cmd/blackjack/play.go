package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/console"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/session"
	"github.com/lox/blackjack/internal/tui"
)

// PlayCmd runs an interactive session. Flags override the config file.
type PlayCmd struct {
	Config  string `short:"c" default:"${config_file}" help:"HCL config file (missing file means defaults)" type:"path"`
	Mode    string `help:"Front end: console or tui"`
	Balance *int   `help:"Starting balance"`
	MinBet  *int   `name:"min-bet" help:"Table minimum bet"`
	MaxBet  *int   `name:"max-bet" help:"Table maximum bet (0 for none)"`
	Rounds  *int   `help:"Stop after this many rounds (0 for no limit)"`
	StandOn *int   `name:"stand-on" help:"Dealer stands on this total or more"`
	Seed    *int64 `help:"Deterministic deck seed (optional)"`
	NoColor bool   `name:"no-color" help:"Disable colours"`
	LogFile string `name:"log-file" help:"Write logs to this file"`
	Debug   bool   `help:"Enable debug logging"`
}

// loadConfig reads the config file and applies flag overrides
func (c *PlayCmd) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}

	if c.Mode != "" {
		cfg.Display.Mode = c.Mode
	}
	if c.Balance != nil {
		cfg.Session.StartingBalance = *c.Balance
	}
	if c.MinBet != nil {
		cfg.Session.MinBet = *c.MinBet
	}
	if c.MaxBet != nil {
		cfg.Session.MaxBet = *c.MaxBet
	}
	if c.Rounds != nil {
		cfg.Session.MaxRounds = *c.Rounds
	}
	if c.StandOn != nil {
		cfg.Dealer.StandOn = *c.StandOn
	}
	if c.Seed != nil {
		cfg.Session.Seed = *c.Seed
	}
	if c.NoColor {
		noColor := false
		cfg.Display.Color = &noColor
	}
	if c.LogFile != "" {
		cfg.Log.File = c.LogFile
	}
	if c.Debug {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *PlayCmd) Run() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	color := cfg.ColorEnabled()
	if !color {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	logFile, err := openLogFile(cfg.Log.File)
	if err != nil {
		return err
	}
	defer func() {
		if err := logFile.Close(); err != nil {
			log.Error("Failed to close log file", "error", err)
		}
	}()

	logger, err := setupLogger(logFile, cfg.Log.Level, false)
	if err != nil {
		return err
	}
	logger.Info("Starting session",
		"mode", cfg.Display.Mode,
		"balance", cfg.Session.StartingBalance,
		"min_bet", cfg.Session.MinBet,
		"max_bet", cfg.Session.MaxBet,
		"stand_on", cfg.Dealer.StandOn)

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	var summary *session.Summary
	if cfg.Display.Mode == config.ModeTUI {
		summary, err = runTUI(ctx, cfg, logger)
	} else {
		summary, err = runConsole(ctx, cfg, logger)
	}
	if summary != nil {
		fmt.Println(console.FormatSummary(summary, color))
	}
	return err
}

// runConsole plays line by line on stdin and stdout
func runConsole(ctx context.Context, cfg *config.Config, logger *log.Logger) (*session.Summary, error) {
	con := console.New(ctx, os.Stdin, os.Stdout, console.Options{Color: cfg.ColorEnabled()})

	bus := game.NewEventBus()
	bus.Subscribe(con)

	sess, err := session.New(cfg.SessionConfig(), con, con, con,
		session.WithLogger(logger),
		session.WithEventBus(bus))
	if err != nil {
		return nil, err
	}
	logger.Info("Using seed", "seed", sess.Seed())

	con.Banner(cfg.Session.StartingBalance, cfg.Dealer.StandOn)
	return sess.Run(ctx)
}

// runTUI plays in a full-screen program. The session runs in the background
// and the program exits when the session ends or the player presses Ctrl+C.
func runTUI(ctx context.Context, cfg *config.Config, logger *log.Logger) (*session.Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := tui.NewTUIModel(logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	bridge := tui.NewBridge(ctx, program, model, tui.Options{Color: cfg.ColorEnabled()})

	bus := game.NewEventBus()
	bus.Subscribe(bridge)

	sess, err := session.New(cfg.SessionConfig(), bridge, bridge, bridge,
		session.WithLogger(logger),
		session.WithEventBus(bus))
	if err != nil {
		return nil, err
	}
	logger.Info("Using seed", "seed", sess.Seed())

	var (
		summary *session.Summary
		runErr  error
		done    = make(chan struct{})
	)
	go func() {
		defer close(done)
		bridge.SetBalance(cfg.Session.StartingBalance)
		summary, runErr = sess.Run(ctx)
		bridge.Quit()
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		<-done
		return summary, fmt.Errorf("TUI error: %w", err)
	}

	// The window may close before the session notices
	cancel()
	<-done
	return summary, runErr
}
