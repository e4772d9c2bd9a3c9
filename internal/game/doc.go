// Package game implements the rules of single-player blackjack.
//
// The main type is Engine, which plays one round at a time against a
// Bankroll. Each round builds a fresh shuffled deck and fresh hands, takes a
// bet, deals, checks for naturals, runs the player's turn and then the
// dealer's, and settles the stake.
//
// # Basic Usage
//
//	bankroll := game.NewBankroll(100)
//	engine := game.NewEngine(bankroll, game.WithRNG(randutil.New(42)))
//	result, err := engine.PlayRound(bets, agent)
//
// Bets and decisions come from the BetSource and Agent interfaces, so the
// same engine serves the console, the TUI and the simulator's bots.
//
// # Deterministic Testing
//
// A stacked deck fixes the exact cards dealt. Cards are dealt alternately,
// player first:
//
//	engine := game.NewEngine(bankroll,
//	    game.WithStackedDeck(deck.MustParseCards("Th 9c 6d 7s 9h")...))
//
// # Events
//
// Every step of a round is published on an EventBus. The EventFormatter
// renders events as the text shown to a human player.
package game
