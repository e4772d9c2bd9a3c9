package game

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/blackjack/internal/deck"
)

func TestEventFormatter_FormatPlayerAction(t *testing.T) {
	drawn := deck.NewCard(deck.Hearts, deck.King)

	tests := []struct {
		name     string
		opts     FormattingOptions
		event    PlayerActionEvent
		expected string
	}{
		{
			name: "stand",
			event: PlayerActionEvent{
				Action: Stand,
				Cards:  deck.MustParseCards("Th 7c"),
				Value:  17,
			},
			expected: "You: stands on 17",
		},
		{
			name: "hit",
			event: PlayerActionEvent{
				Action: Hit,
				Card:   &drawn,
				Cards:  deck.MustParseCards("2h 7c Kh"),
				Value:  19,
			},
			expected: "You: hits and draws K♥ -> [2♥ 7♣ K♥] (19)",
		},
		{
			name: "hit and bust with a player name",
			opts: FormattingOptions{PlayerName: "Alice"},
			event: PlayerActionEvent{
				Action: Hit,
				Card:   &drawn,
				Cards:  deck.MustParseCards("9h 7c Kh"),
				Value:  26,
				Bust:   true,
			},
			expected: "Alice: hits and draws K♥ -> [9♥ 7♣ K♥] (26) BUST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := NewEventFormatter(tt.opts)
			assert.Equal(t, tt.expected, formatter.FormatPlayerAction(tt.event))
		})
	}
}

func TestEventFormatter_FormatInitialDeal(t *testing.T) {
	formatter := NewEventFormatter(FormattingOptions{})
	got := formatter.FormatInitialDeal(InitialDealEvent{
		PlayerCards:  deck.MustParseCards("Ah 7c"),
		PlayerValue:  18,
		DealerUpCard: deck.NewCard(deck.Spades, deck.Nine),
	})

	assert.Equal(t, "Dealt to You: [A♥ 7♣] (18)\nDealer shows: 9♠ [hidden]", got)
}

func TestEventFormatter_FormatDealerAction(t *testing.T) {
	formatter := NewEventFormatter(FormattingOptions{})
	drawn := deck.NewCard(deck.Clubs, deck.Five)

	assert.Equal(t, "Dealer: hits and draws 5♣ -> [T♠ 6♦ 5♣] (21)", formatter.FormatDealerAction(DealerActionEvent{
		Action: Hit,
		Card:   &drawn,
		Cards:  deck.MustParseCards("Ts 6d 5c"),
		Value:  21,
	}))
	assert.Equal(t, "Dealer: stands on 21", formatter.FormatDealerAction(DealerActionEvent{Action: Stand, Value: 21}))
	assert.Equal(t, "Dealer: BUSTS with 24", formatter.FormatDealerAction(DealerActionEvent{Action: Stand, Value: 24, Bust: true}))
}

func TestEventFormatter_FormatRoundEnd(t *testing.T) {
	formatter := NewEventFormatter(FormattingOptions{})

	tests := []struct {
		outcome Outcome
		net     int
		want    string
	}{
		{PlayerBlackjack, 15, "Blackjack! You win $15"},
		{DealerBust, 10, "Dealer bust (+$10)"},
		{Push, 0, "Push, stake returned"},
		{PlayerBust, -10, "Player bust (-$10)"},
	}

	for _, tt := range tests {
		got := formatter.FormatRoundEnd(RoundEndEvent{
			Outcome:     tt.outcome,
			Net:         tt.net,
			PlayerCards: deck.MustParseCards("Ah Kd"),
			DealerCards: deck.MustParseCards("9c 7s"),
			PlayerValue: 21,
			DealerValue: 16,
			Balance:     115,
		})

		lines := strings.Split(got, "\n")
		assert.Equal(t, "*** SETTLEMENT ***", lines[0])
		assert.Equal(t, "You: [A♥ K♦] (21)", lines[1])
		assert.Equal(t, "Dealer: [9♣ 7♠] (16)", lines[2])
		assert.Equal(t, tt.want, lines[3], tt.outcome.String())
		assert.Equal(t, "Balance: $115", lines[4])
	}
}

func TestEventFormatter_FormatRoundAborted(t *testing.T) {
	formatter := NewEventFormatter(FormattingOptions{})

	assert.Equal(t,
		"Round aborted during player-turn: player left the table ($10 stake not returned)",
		formatter.FormatRoundAborted(RoundAbortedEvent{State: PlayerTurn, Err: ErrQuit, BetHeld: 10}))
	assert.Equal(t,
		"Round aborted during dealing: deck is empty",
		formatter.FormatRoundAborted(RoundAbortedEvent{State: Dealing, Err: deck.ErrEmptyDeck}))
}

func TestEventFormatter_Format(t *testing.T) {
	formatter := NewEventFormatter(FormattingOptions{ShowRoundID: true})

	start := RoundStartEvent{eventHeader: eventHeader{roundID: "abc"}, Number: 3, Balance: 80}
	assert.Equal(t, "*** ROUND 3 (abc) ***\nBalance: $80", formatter.Format(start))
	assert.Equal(t, "Bet placed: $10 (balance $70)", formatter.Format(BetPlacedEvent{Amount: 10, Balance: 70}))
	assert.Equal(t, "Bet of $0 rejected: nope", formatter.Format(BetRejectedEvent{Err: errors.New("nope")}))
	assert.Equal(t, "Dealer reveals: [A♠ 6♦] (17)", formatter.Format(DealerRevealEvent{Cards: deck.MustParseCards("As 6d"), Value: 17}))
}

func TestEventFormatter_ColorDisabledIsPlain(t *testing.T) {
	plain := NewEventFormatter(FormattingOptions{})
	assert.Equal(t, "A♥", plain.FormatCard(deck.NewCard(deck.Hearts, deck.Ace)))
}

func TestEventBus(t *testing.T) {
	bus := NewEventBus()
	first := &EventRecorder{}
	second := &EventRecorder{}
	var funcEvents []GameEvent

	bus.Subscribe(first)
	bus.Subscribe(second)
	bus.Subscribe(SubscriberFunc(func(e GameEvent) { funcEvents = append(funcEvents, e) }))

	bus.Publish(RoundStartEvent{Number: 1})
	bus.Unsubscribe(first)
	bus.Unsubscribe(SubscriberFunc(func(GameEvent) {}))
	bus.Publish(RoundStartEvent{Number: 2})

	assert.Len(t, first.Events, 1)
	assert.Len(t, second.Events, 2)
	assert.Len(t, funcEvents, 2)
}
