// Package bot provides automated players for simulations and testing.
package bot

import (
	"cmp"
	"fmt"
	rand "math/rand/v2"
	"slices"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/game"
)

// Config is what a strategy is built from. StandOn is the table's dealer
// threshold; 0 means game.DefaultDealerStandOn.
type Config struct {
	RNG     *rand.Rand
	Logger  *log.Logger
	StandOn int
}

// Factory creates a strategy
type Factory func(cfg Config) game.Agent

var strategies = map[string]Factory{
	"basic":  func(cfg Config) game.Agent { return NewBasicBot(cfg.Logger) },
	"dealer": func(cfg Config) game.Agent { return NewThresholdBot(cmp.Or(cfg.StandOn, game.DefaultDealerStandOn), cfg.Logger) },
	"random": func(cfg Config) game.Agent { return NewRandBot(cfg.RNG, cfg.Logger) },
	"stand":  func(Config) game.Agent { return NewStandBot() },
}

// Strategies returns the registered strategy names, sorted
func Strategies() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates the named strategy. Names are case-insensitive.
func New(name string, cfg Config) (game.Agent, error) {
	factory, ok := strategies[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (available: %s)", name, strings.Join(Strategies(), ", "))
	}
	return factory(cfg), nil
}

// IsStrategy reports whether name is a registered strategy
func IsStrategy(name string) bool {
	return slices.Contains(Strategies(), strings.ToLower(name))
}
