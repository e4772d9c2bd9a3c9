package game

import (
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/roundid"
)

const (
	// DefaultDealerStandOn is the total at which the dealer stops drawing.
	// Soft and hard totals are treated alike.
	DefaultDealerStandOn = 17

	// maxBetAttempts bounds how many rejected stakes a round tolerates before
	// giving up, so a misbehaving bet source cannot spin forever
	maxBetAttempts = 100
)

var (
	// ErrBetBelowMinimum is returned when a stake is under the table minimum
	ErrBetBelowMinimum = errors.New("bet below table minimum")

	// ErrBetAboveMaximum is returned when a stake is over the table maximum
	ErrBetAboveMaximum = errors.New("bet above table maximum")

	// ErrTooManyBetAttempts is returned when the bet source keeps proposing
	// stakes that cannot be placed
	ErrTooManyBetAttempts = errors.New("too many rejected bets")
)

// DeckFactory builds the deck for a new round
type DeckFactory func(rng *rand.Rand) *deck.Deck

// Engine runs blackjack rounds against a session's bankroll. It holds a
// reference to the bankroll and recreates the deck and both hands every round.
type Engine struct {
	bankroll *Bankroll
	logger   *log.Logger
	eventBus EventBus
	clock    quartz.Clock
	rng      *rand.Rand
	newDeck  DeckFactory
	ids      *roundid.Generator

	minBet  int
	maxBet  int
	standOn int

	roundsPlayed int
}

// RoundResult contains the results of a completed round
type RoundResult struct {
	RoundID     string
	Number      int
	Outcome     Outcome
	Bet         int
	Payout      int
	Net         int
	PlayerCards []deck.Card
	DealerCards []deck.Card
	PlayerValue int
	DealerValue int
	Balance     int
	States      []State
}

// round is the per-round state. It is discarded once the round settles.
type round struct {
	id     string
	number int
	deck   *deck.Deck
	player *Hand
	dealer *Hand
	bet    int
	state  State
	states []State
}

func (r *round) enter(s State) {
	r.state = s
	r.states = append(r.states, s)
}

// NewEngine creates a game engine playing against the given bankroll
func NewEngine(bankroll *Bankroll, opts ...EngineOption) *Engine {
	if bankroll == nil {
		panic("bankroll is required")
	}

	e := &Engine{
		bankroll: bankroll,
		logger:   log.New(io.Discard),
		eventBus: NewEventBus(),
		clock:    quartz.NewReal(),
		newDeck:  deck.NewDeck,
		ids:      roundid.NewGenerator(nil),
		minBet:   1,
		standOn:  DefaultDealerStandOn,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Bankroll returns the bankroll the engine settles against
func (e *Engine) Bankroll() *Bankroll {
	return e.bankroll
}

// GetEventBus returns the event bus for subscribing to round events
func (e *Engine) GetEventBus() EventBus {
	return e.eventBus
}

// PlayRound runs one round from the deal to settlement. Errors from the bet
// source or agent, and an exhausted deck, abort the round: no settlement is
// made and a RoundAbortedEvent is published.
func (e *Engine) PlayRound(bets BetSource, agent Agent) (*RoundResult, error) {
	e.roundsPlayed++
	r := &round{
		id:     e.ids.Generate(),
		number: e.roundsPlayed,
	}
	logger := e.logger.With("round", r.id)

	logger.Debug("Starting round", "number", r.number, "balance", e.bankroll.Balance())
	e.eventBus.Publish(RoundStartEvent{
		eventHeader: e.header(r),
		Number:      r.number,
		Balance:     e.bankroll.Balance(),
	})

	// Dealing
	r.enter(Dealing)
	r.deck = e.newDeck(e.rng)
	r.deck.Shuffle()
	r.player = NewHand()
	r.dealer = NewHand()

	if err := e.takeBet(r, bets); err != nil {
		return nil, e.abort(r, err)
	}

	for i := 0; i < 2; i++ {
		if err := e.draw(r, r.player); err != nil {
			return nil, e.abort(r, err)
		}
		if err := e.draw(r, r.dealer); err != nil {
			return nil, e.abort(r, err)
		}
	}

	upCard, _ := r.dealer.UpCard()
	e.eventBus.Publish(InitialDealEvent{
		eventHeader:  e.header(r),
		PlayerCards:  r.player.Cards(),
		PlayerValue:  r.player.Value(),
		DealerUpCard: upCard,
		DealerShown:  r.dealer.Show(false),
	})
	logger.Debug("Initial deal", "player", r.player, "dealer", r.dealer.Show(false))

	// Naturals
	r.enter(CheckNaturals)
	if outcome, ok := NaturalOutcome(r.player, r.dealer); ok {
		if outcome != PlayerBlackjack {
			e.revealDealer(r)
		}
		return e.settle(r, outcome)
	}

	// Player
	r.enter(PlayerTurn)
	if err := e.playerTurn(r, agent); err != nil {
		return nil, e.abort(r, err)
	}

	// Dealer, skipped when the player has already lost
	if !r.player.IsBust() {
		r.enter(DealerTurn)
		if err := e.dealerTurn(r); err != nil {
			return nil, e.abort(r, err)
		}
	}

	r.enter(Settlement)
	return e.settle(r, DetermineOutcome(r.player.Value(), r.dealer.Value()))
}

// takeBet asks the bet source for a stake until one can be placed
func (e *Engine) takeBet(r *round, bets BetSource) error {
	var lastErr error
	for attempt := 0; attempt < maxBetAttempts; attempt++ {
		amount, err := bets.NextBet(BetRequest{
			RoundID:   r.id,
			Balance:   e.bankroll.Balance(),
			MinBet:    e.effectiveMinBet(),
			MaxBet:    e.maxBet,
			LastError: lastErr,
		})
		if err != nil {
			return fmt.Errorf("bet input: %w", err)
		}

		if err := e.placeBet(amount); err != nil {
			if errors.Is(err, ErrBetActive) {
				return err
			}
			e.logger.Debug("Bet rejected", "round", r.id, "amount", amount, "error", err)
			e.eventBus.Publish(BetRejectedEvent{eventHeader: e.header(r), Amount: amount, Err: err})
			lastErr = err
			continue
		}

		r.bet = amount
		e.logger.Info("Bet placed", "round", r.id, "amount", amount, "balance", e.bankroll.Balance())
		e.eventBus.Publish(BetPlacedEvent{eventHeader: e.header(r), Amount: amount, Balance: e.bankroll.Balance()})
		return nil
	}
	return fmt.Errorf("%w: last error: %w", ErrTooManyBetAttempts, lastErr)
}

// placeBet applies the table limits and then the bankroll's own contract
func (e *Engine) placeBet(amount int) error {
	if amount > 0 && amount <= e.bankroll.Balance() {
		if minBet := e.effectiveMinBet(); amount < minBet {
			return fmt.Errorf("%w: minimum is %d, got %d", ErrBetBelowMinimum, minBet, amount)
		}
		if e.maxBet > 0 && amount > e.maxBet {
			return fmt.Errorf("%w: maximum is %d, got %d", ErrBetAboveMaximum, e.maxBet, amount)
		}
	}
	return e.bankroll.PlaceBet(amount)
}

// effectiveMinBet lets a short-stacked player bet whatever they have left
func (e *Engine) effectiveMinBet() int {
	if balance := e.bankroll.Balance(); balance > 0 && balance < e.minBet {
		return balance
	}
	return e.minBet
}

func (e *Engine) draw(r *round, hand *Hand) error {
	card, err := r.deck.Deal()
	if err != nil {
		return fmt.Errorf("dealing card: %w", err)
	}
	hand.AddCard(card)
	e.logger.Debug("Dealt card", "round", r.id, "card", card, "remaining", r.deck.CardsRemaining())
	return nil
}

func (e *Engine) playerTurn(r *round, agent Agent) error {
	upCard, _ := r.dealer.UpCard()
	for {
		action, err := agent.Decide(TableView{
			RoundID:      r.id,
			PlayerCards:  r.player.Cards(),
			PlayerValue:  r.player.Value(),
			PlayerSoft:   r.player.IsSoft(),
			DealerUpCard: upCard,
			Bet:          r.bet,
			Balance:      e.bankroll.Balance(),
		})
		if err != nil {
			return fmt.Errorf("decision input: %w", err)
		}

		switch action {
		case Hit:
			if err := e.draw(r, r.player); err != nil {
				return err
			}
			cards := r.player.Cards()
			drawn := cards[len(cards)-1]
			bust := r.player.IsBust()
			e.logger.Debug("Player hits", "round", r.id, "card", drawn, "value", r.player.Value(), "bust", bust)
			e.eventBus.Publish(PlayerActionEvent{
				eventHeader: e.header(r),
				Action:      Hit,
				Card:        &drawn,
				Cards:       cards,
				Value:       r.player.Value(),
				Bust:        bust,
			})
			if bust {
				return nil
			}
		case Stand:
			e.logger.Debug("Player stands", "round", r.id, "value", r.player.Value())
			e.eventBus.Publish(PlayerActionEvent{
				eventHeader: e.header(r),
				Action:      Stand,
				Cards:       r.player.Cards(),
				Value:       r.player.Value(),
			})
			return nil
		default:
			return fmt.Errorf("%w: %d", ErrInvalidAction, int(action))
		}
	}
}

func (e *Engine) dealerTurn(r *round) error {
	e.revealDealer(r)

	for r.dealer.Value() < e.standOn {
		if err := e.draw(r, r.dealer); err != nil {
			return err
		}
		cards := r.dealer.Cards()
		drawn := cards[len(cards)-1]
		e.logger.Debug("Dealer hits", "round", r.id, "card", drawn, "value", r.dealer.Value())
		e.eventBus.Publish(DealerActionEvent{
			eventHeader: e.header(r),
			Action:      Hit,
			Card:        &drawn,
			Cards:       cards,
			Value:       r.dealer.Value(),
			Bust:        r.dealer.IsBust(),
		})
	}

	e.eventBus.Publish(DealerActionEvent{
		eventHeader: e.header(r),
		Action:      Stand,
		Cards:       r.dealer.Cards(),
		Value:       r.dealer.Value(),
		Bust:        r.dealer.IsBust(),
	})
	return nil
}

func (e *Engine) revealDealer(r *round) {
	e.eventBus.Publish(DealerRevealEvent{
		eventHeader: e.header(r),
		Cards:       r.dealer.Cards(),
		Value:       r.dealer.Value(),
	})
}

func (e *Engine) settle(r *round, outcome Outcome) (*RoundResult, error) {
	payout, err := outcome.Settle(e.bankroll)
	if err != nil {
		return nil, e.abort(r, fmt.Errorf("settling %s: %w", outcome, err))
	}
	r.enter(Settled)

	result := &RoundResult{
		RoundID:     r.id,
		Number:      r.number,
		Outcome:     outcome,
		Bet:         r.bet,
		Payout:      payout,
		Net:         payout - r.bet,
		PlayerCards: r.player.Cards(),
		DealerCards: r.dealer.Cards(),
		PlayerValue: r.player.Value(),
		DealerValue: r.dealer.Value(),
		Balance:     e.bankroll.Balance(),
		States:      r.states,
	}

	e.logger.Info("Round settled",
		"round", r.id,
		"outcome", outcome,
		"bet", r.bet,
		"payout", payout,
		"player", result.PlayerValue,
		"dealer", result.DealerValue,
		"balance", result.Balance)

	e.eventBus.Publish(RoundEndEvent{
		eventHeader: e.header(r),
		Outcome:     outcome,
		Bet:         r.bet,
		Payout:      payout,
		Net:         result.Net,
		PlayerCards: result.PlayerCards,
		DealerCards: result.DealerCards,
		PlayerValue: result.PlayerValue,
		DealerValue: result.DealerValue,
		Balance:     result.Balance,
	})

	return result, nil
}

// abort stops the round where it is. The bankroll is left as it stands, so a
// stake that was already placed stays out of the balance.
func (e *Engine) abort(r *round, err error) error {
	failedIn := r.state
	r.enter(Aborted)

	if errors.Is(err, ErrQuit) {
		e.logger.Info("Round abandoned", "round", r.id, "state", failedIn)
	} else {
		e.logger.Error("Round aborted", "round", r.id, "state", failedIn, "error", err)
	}
	if e.bankroll.HasActiveBet() {
		e.logger.Warn("Stake forfeited", "round", r.id, "amount", e.bankroll.CurrentBet())
	}

	e.eventBus.Publish(RoundAbortedEvent{
		eventHeader: e.header(r),
		State:       failedIn,
		Err:         err,
		BetHeld:     e.bankroll.CurrentBet(),
		Balance:     e.bankroll.Balance(),
	})

	return fmt.Errorf("round %d aborted in %s: %w", r.number, failedIn, err)
}

func (e *Engine) header(r *round) eventHeader {
	return eventHeader{roundID: r.id, timestamp: e.clock.Now()}
}
