package bot

import (
	"io"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/game"
)

func quiet(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard)
	}
	return logger
}

// ThresholdBot hits below a fixed total and stands otherwise. With a
// threshold of 17 it plays exactly like the dealer.
type ThresholdBot struct {
	standOn int
	logger  *log.Logger
}

// NewThresholdBot creates a bot that stands on standOn or more
func NewThresholdBot(standOn int, logger *log.Logger) *ThresholdBot {
	return &ThresholdBot{standOn: standOn, logger: quiet(logger).WithPrefix("threshold-bot")}
}

func (b *ThresholdBot) Decide(view game.TableView) (game.Action, error) {
	action := game.Stand
	if view.PlayerValue < b.standOn {
		action = game.Hit
	}
	b.logger.Debug("Decision", "round", view.RoundID, "total", view.PlayerValue, "action", action)
	return action, nil
}

// StandBot never draws a card
type StandBot struct{}

// NewStandBot creates a bot that always stands
func NewStandBot() *StandBot {
	return &StandBot{}
}

func (b *StandBot) Decide(game.TableView) (game.Action, error) {
	return game.Stand, nil
}

// RandBot hits or stands with equal probability until it reaches 21
type RandBot struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewRandBot creates a new RandBot instance. A nil rng uses the global source.
func NewRandBot(rng *rand.Rand, logger *log.Logger) *RandBot {
	return &RandBot{rng: rng, logger: quiet(logger).WithPrefix("rand-bot")}
}

func (b *RandBot) Decide(view game.TableView) (game.Action, error) {
	if view.PlayerValue >= game.Blackjack {
		return game.Stand, nil
	}
	var coin int
	if b.rng != nil {
		coin = b.rng.IntN(2)
	} else {
		coin = rand.IntN(2)
	}
	action := game.Stand
	if coin == 0 {
		action = game.Hit
	}
	b.logger.Debug("Decision", "round", view.RoundID, "total", view.PlayerValue, "action", action)
	return action, nil
}

// BasicBot plays the hit/stand part of basic strategy for a game that stands
// on soft 17. Doubling and splitting are not available so those cells fall
// back to hitting.
type BasicBot struct {
	logger *log.Logger
}

// NewBasicBot creates a basic strategy bot
func NewBasicBot(logger *log.Logger) *BasicBot {
	return &BasicBot{logger: quiet(logger).WithPrefix("basic-bot")}
}

func (b *BasicBot) Decide(view game.TableView) (game.Action, error) {
	action := basicStrategy(view.PlayerValue, view.PlayerSoft, view.DealerUpCard.Points())
	b.logger.Debug("Decision",
		"round", view.RoundID,
		"total", view.PlayerValue,
		"soft", view.PlayerSoft,
		"upcard", view.DealerUpCard,
		"action", action)
	return action, nil
}

// basicStrategy returns the play for a player total against the dealer's up
// card value (2-11, Ace as 11)
func basicStrategy(total int, soft bool, up int) game.Action {
	if soft {
		switch {
		case total >= 19:
			return game.Stand
		case total == 18 && up <= 8:
			return game.Stand
		default:
			return game.Hit
		}
	}

	switch {
	case total >= 17:
		return game.Stand
	case total >= 13 && up <= 6:
		return game.Stand
	case total == 12 && up >= 4 && up <= 6:
		return game.Stand
	default:
		return game.Hit
	}
}
