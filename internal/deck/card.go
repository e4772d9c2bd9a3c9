package deck

import (
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// Suits lists every suit in deck construction order
var Suits = [...]Suit{Spades, Hearts, Diamonds, Clubs}

// String returns the symbol for a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// Name returns the lowercase word for a suit (e.g. "hearts")
func (s Suit) Name() string {
	switch s {
	case Spades:
		return "spades"
	case Hearts:
		return "hearts"
	case Diamonds:
		return "diamonds"
	case Clubs:
		return "clubs"
	default:
		return "unknown"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// rankInfo is the value table for each rank. Aces carry their soft value;
// hands revalue them to 1 as needed.
var rankInfo = map[Rank]struct {
	short  string
	name   string
	points int
}{
	Two:   {"2", "2", 2},
	Three: {"3", "3", 3},
	Four:  {"4", "4", 4},
	Five:  {"5", "5", 5},
	Six:   {"6", "6", 6},
	Seven: {"7", "7", 7},
	Eight: {"8", "8", 8},
	Nine:  {"9", "9", 9},
	Ten:   {"T", "10", 10},
	Jack:  {"J", "Jack", 10},
	Queen: {"Q", "Queen", 10},
	King:  {"K", "King", 10},
	Ace:   {"A", "Ace", 11},
}

// String returns the short form of a rank ("T" for ten)
func (r Rank) String() string {
	if info, ok := rankInfo[r]; ok {
		return info.short
	}
	return "?"
}

// Name returns the long form of a rank ("10", "Queen", "Ace")
func (r Rank) Name() string {
	if info, ok := rankInfo[r]; ok {
		return info.name
	}
	return "Unknown"
}

// Points returns the blackjack value of a rank, counting an Ace as 11
func (r Rank) Points() int {
	return rankInfo[r].points
}

// Card represents a playing card
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// String returns the short representation of a card (e.g., "A♠")
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Name returns the long representation of a card (e.g., "Ace of hearts")
func (c Card) Name() string {
	return fmt.Sprintf("%s of %s", c.Rank.Name(), c.Suit.Name())
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// IsAce returns true if the card is an Ace
func (c Card) IsAce() bool {
	return c.Rank == Ace
}

// Points returns the blackjack value of the card with an Ace counted as 11
func (c Card) Points() int {
	return c.Rank.Points()
}

// ParseCard parses a two character card such as "Ah", "Td" or "9s".
// Rank and suit letters are case-insensitive.
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("invalid card %q: want rank and suit", s)
	}

	var rank Rank
	switch strings.ToUpper(s[:1]) {
	case "2":
		rank = Two
	case "3":
		rank = Three
	case "4":
		rank = Four
	case "5":
		rank = Five
	case "6":
		rank = Six
	case "7":
		rank = Seven
	case "8":
		rank = Eight
	case "9":
		rank = Nine
	case "T":
		rank = Ten
	case "J":
		rank = Jack
	case "Q":
		rank = Queen
	case "K":
		rank = King
	case "A":
		rank = Ace
	default:
		return Card{}, fmt.Errorf("invalid rank in card %q", s)
	}

	var suit Suit
	switch strings.ToLower(s[1:]) {
	case "s":
		suit = Spades
	case "h":
		suit = Hearts
	case "d":
		suit = Diamonds
	case "c":
		suit = Clubs
	default:
		return Card{}, fmt.Errorf("invalid suit in card %q", s)
	}

	return NewCard(suit, rank), nil
}

// ParseCards parses a run of cards such as "AhKd9s". Whitespace between cards
// is ignored, so "Ah Kd 9s" is equivalent.
func ParseCards(s string) ([]Card, error) {
	s = strings.Join(strings.Fields(s), "")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("invalid card string %q: odd length", s)
	}

	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		card, err := ParseCard(s[i : i+2])
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// MustParseCards is like ParseCards but panics on error. Intended for tests.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}
