// Package config loads blackjack settings from an HCL file.
//
// Example:
//
//	session {
//	  starting_balance = 500
//	  min_bet          = 5
//	  max_bet          = 100
//	}
//
//	dealer {
//	  stand_on = 17
//	}
//
//	display {
//	  mode  = "tui"
//	  color = true
//	}
//
//	log {
//	  level = "debug"
//	  file  = "blackjack.log"
//	}
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/session"
)

// DefaultFile is the config file read when none is given
const DefaultFile = "blackjack.hcl"

// Display modes
const (
	ModeConsole = "console"
	ModeTUI     = "tui"
)

// Config represents the complete blackjack configuration
type Config struct {
	Session SessionSettings `hcl:"session,block"`
	Dealer  DealerSettings  `hcl:"dealer,block"`
	Display DisplaySettings `hcl:"display,block"`
	Log     LogSettings     `hcl:"log,block"`
}

// SessionSettings contains bankroll and table settings
type SessionSettings struct {
	StartingBalance int   `hcl:"starting_balance,optional"`
	MinBet          int   `hcl:"min_bet,optional"`
	MaxBet          int   `hcl:"max_bet,optional"`
	MaxRounds       int   `hcl:"max_rounds,optional"`
	Seed            int64 `hcl:"seed,optional"`
}

// DealerSettings contains the dealer's drawing rule
type DealerSettings struct {
	StandOn int `hcl:"stand_on,optional"`
}

// DisplaySettings selects the front end
type DisplaySettings struct {
	Mode  string `hcl:"mode,optional"`
	Color *bool  `hcl:"color,optional"`
}

// LogSettings contains logging configuration
type LogSettings struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

// fileConfig mirrors Config with every block optional
type fileConfig struct {
	Session *SessionSettings `hcl:"session,block"`
	Dealer  *DealerSettings  `hcl:"dealer,block"`
	Display *DisplaySettings `hcl:"display,block"`
	Log     *LogSettings     `hcl:"log,block"`
}

// Default returns default configuration
func Default() *Config {
	color := true
	defaults := session.DefaultConfig()
	return &Config{
		Session: SessionSettings{
			StartingBalance: defaults.StartingBalance,
			MinBet:          defaults.MinBet,
		},
		Dealer: DealerSettings{
			StandOn: defaults.DealerStandOn,
		},
		Display: DisplaySettings{
			Mode:  ModeConsole,
			Color: &color,
		},
		Log: LogSettings{
			Level: "info",
			File:  "blackjack.log",
		},
	}
}

// Load loads configuration from an HCL file. A missing file yields the
// defaults; values absent from the file keep their defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config := Default()
	config.merge(fc)
	return config, nil
}

// merge applies the values set in the file over the defaults
func (c *Config) merge(fc fileConfig) {
	if s := fc.Session; s != nil {
		if s.StartingBalance != 0 {
			c.Session.StartingBalance = s.StartingBalance
		}
		if s.MinBet != 0 {
			c.Session.MinBet = s.MinBet
		}
		c.Session.MaxBet = s.MaxBet
		c.Session.MaxRounds = s.MaxRounds
		c.Session.Seed = s.Seed
	}
	if d := fc.Dealer; d != nil && d.StandOn != 0 {
		c.Dealer.StandOn = d.StandOn
	}
	if d := fc.Display; d != nil {
		if d.Mode != "" {
			c.Display.Mode = d.Mode
		}
		if d.Color != nil {
			c.Display.Color = d.Color
		}
	}
	if l := fc.Log; l != nil {
		if l.Level != "" {
			c.Log.Level = l.Level
		}
		if l.File != "" {
			c.Log.File = l.File
		}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	s := c.Session
	if s.StartingBalance <= 0 {
		return fmt.Errorf("starting balance must be positive, got %d", s.StartingBalance)
	}
	if s.MinBet <= 0 {
		return fmt.Errorf("minimum bet must be positive, got %d", s.MinBet)
	}
	if s.MaxBet < 0 {
		return fmt.Errorf("maximum bet cannot be negative, got %d", s.MaxBet)
	}
	if s.MaxBet > 0 && s.MaxBet < s.MinBet {
		return fmt.Errorf("maximum bet %d is below minimum bet %d", s.MaxBet, s.MinBet)
	}
	if s.MaxRounds < 0 {
		return fmt.Errorf("max rounds cannot be negative, got %d", s.MaxRounds)
	}

	if c.Dealer.StandOn < 12 || c.Dealer.StandOn > game.Blackjack {
		return fmt.Errorf("dealer must stand on a total between 12 and 21, got %d", c.Dealer.StandOn)
	}

	if !slices.Contains([]string{ModeConsole, ModeTUI}, c.Display.Mode) {
		return fmt.Errorf("invalid display mode %q", c.Display.Mode)
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}

	return nil
}

// ColorEnabled reports whether output should be styled
func (c *Config) ColorEnabled() bool {
	return c.Display.Color == nil || *c.Display.Color
}

// SessionConfig converts the settings into a session configuration
func (c *Config) SessionConfig() session.Config {
	return session.Config{
		StartingBalance: c.Session.StartingBalance,
		MinBet:          c.Session.MinBet,
		MaxBet:          c.Session.MaxBet,
		MaxRounds:       c.Session.MaxRounds,
		DealerStandOn:   c.Dealer.StandOn,
		Seed:            c.Session.Seed,
	}
}
