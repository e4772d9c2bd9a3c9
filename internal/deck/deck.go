package deck

import (
	"errors"
	rand "math/rand/v2"
)

// Size is the number of cards in a full deck
const Size = 52

// ErrEmptyDeck is returned when dealing from a deck with no cards left
var ErrEmptyDeck = errors.New("deck is empty")

// Deck represents an ordered pile of playing cards. Cards are dealt from the
// front of the slice.
type Deck struct {
	cards   []Card
	rng     *rand.Rand
	stacked bool
}

// NewDeck creates a standard 52-card deck in suit-major order. The deck is not
// shuffled; call Shuffle before dealing. rng may be nil, in which case the
// global generator is used.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{
		cards: make([]Card, 0, Size),
		rng:   rng,
	}

	for _, suit := range Suits {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(suit, rank))
		}
	}

	return d
}

// NewStackedDeck creates a deck that deals the given cards in order.
// Shuffling a stacked deck is a no-op unless an RNG is attached with WithRNG.
func NewStackedDeck(cards ...Card) *Deck {
	stacked := make([]Card, len(cards))
	copy(stacked, cards)
	return &Deck{cards: stacked, stacked: true}
}

// WithRNG attaches a random source used by Shuffle
func (d *Deck) WithRNG(rng *rand.Rand) *Deck {
	d.rng = rng
	return d
}

// Shuffle randomizes the order of the remaining cards (Fisher-Yates)
func (d *Deck) Shuffle() {
	if d.rng == nil && d.stacked {
		return
	}
	for i := len(d.cards) - 1; i > 0; i-- {
		var j int
		if d.rng != nil {
			j = d.rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes and returns the top card from the deck
func (d *Deck) Deal() (Card, error) {
	if d.IsEmpty() {
		return Card{}, ErrEmptyDeck
	}

	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, nil
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return len(d.cards)
}

// IsEmpty returns true if the deck has no cards left
func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}

// Cards returns a copy of the remaining cards, top first
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}

