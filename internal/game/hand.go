package game

import (
	"strings"

	"github.com/lox/blackjack/internal/deck"
)

const (
	// Blackjack is the best possible hand value
	Blackjack = 21

	// aceReduction is the difference between a soft (11) and hard (1) ace
	aceReduction = 10
)

// hiddenCard is shown in place of cards that are not revealed yet
const hiddenCard = "[hidden]"

// Hand is the ordered set of cards held by the player or the dealer for one
// round. Dealing order only matters for display; values are order-independent.
type Hand struct {
	cards []deck.Card
}

// NewHand creates a hand holding the given cards
func NewHand(cards ...deck.Card) *Hand {
	h := &Hand{cards: make([]deck.Card, 0, max(len(cards), 4))}
	h.cards = append(h.cards, cards...)
	return h
}

// AddCard appends a card to the hand
func (h *Hand) AddCard(card deck.Card) {
	h.cards = append(h.cards, card)
}

// Cards returns a copy of the cards in dealing order
func (h *Hand) Cards() []deck.Card {
	out := make([]deck.Card, len(h.cards))
	copy(out, h.cards)
	return out
}

// Value returns the point total of the hand. Aces start at 11 and are
// revalued to 1, one at a time, while the total exceeds 21. The result can
// still exceed 21, which is a bust.
func (h *Hand) Value() int {
	total, _ := h.value()
	return total
}

// IsSoft reports whether an Ace is still being counted as 11
func (h *Hand) IsSoft() bool {
	_, softAces := h.value()
	return softAces > 0
}

func (h *Hand) value() (total, softAces int) {
	for _, card := range h.cards {
		total += card.Points()
		if card.IsAce() {
			softAces++
		}
	}

	for total > Blackjack && softAces > 0 {
		total -= aceReduction
		softAces--
	}

	return total, softAces
}

// IsBust reports whether the hand is over 21
func (h *Hand) IsBust() bool {
	return h.Value() > Blackjack
}

// IsNatural reports whether the hand is a two card 21
func (h *Hand) IsNatural() bool {
	return len(h.cards) == 2 && h.Value() == Blackjack
}

// UpCard returns the first card dealt, which is the one shown while the rest
// of the hand is hidden
func (h *Hand) UpCard() (deck.Card, bool) {
	if len(h.cards) == 0 {
		return deck.Card{}, false
	}
	return h.cards[0], true
}

// Show renders the hand for display. With revealAll false only the first card
// is shown and every later card is masked.
func (h *Hand) Show(revealAll bool) string {
	parts := make([]string, len(h.cards))
	for i, card := range h.cards {
		if i > 0 && !revealAll {
			parts[i] = hiddenCard
			continue
		}
		parts[i] = card.String()
	}
	return strings.Join(parts, " ")
}

// String renders every card in the hand
func (h *Hand) String() string {
	return h.Show(true)
}
