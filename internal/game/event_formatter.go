package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/blackjack/internal/deck"
)

// FormattingOptions controls how events are formatted for different contexts
type FormattingOptions struct {
	Color       bool   // Render cards and outcomes with lipgloss styles
	ShowRoundID bool   // Prefix round start lines with the round ID
	PlayerName  string // Name used for the player, "You" when empty
}

var (
	redCardStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	blackCardStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")).Bold(true)
	hiddenStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	winStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#96CEB4")).Bold(true)
	loseStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	pushStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFEAA7")).Bold(true)
	headerStyle    = lipgloss.NewStyle().Bold(true)
)

// EventFormatter provides centralized formatting for all round events
type EventFormatter struct {
	opts FormattingOptions
}

// NewEventFormatter creates a new event formatter with the given options
func NewEventFormatter(opts FormattingOptions) *EventFormatter {
	if opts.PlayerName == "" {
		opts.PlayerName = "You"
	}
	return &EventFormatter{opts: opts}
}

// Format renders any event as display text. Events with nothing to show
// return an empty string.
func (ef *EventFormatter) Format(event GameEvent) string {
	switch e := event.(type) {
	case RoundStartEvent:
		return ef.FormatRoundStart(e)
	case BetPlacedEvent:
		return fmt.Sprintf("Bet placed: $%d (balance $%d)", e.Amount, e.Balance)
	case BetRejectedEvent:
		return fmt.Sprintf("Bet of $%d rejected: %v", e.Amount, e.Err)
	case InitialDealEvent:
		return ef.FormatInitialDeal(e)
	case PlayerActionEvent:
		return ef.FormatPlayerAction(e)
	case DealerRevealEvent:
		return fmt.Sprintf("Dealer reveals: %s (%d)", ef.FormatCards(e.Cards), e.Value)
	case DealerActionEvent:
		return ef.FormatDealerAction(e)
	case RoundEndEvent:
		return ef.FormatRoundEnd(e)
	case RoundAbortedEvent:
		return ef.FormatRoundAborted(e)
	default:
		return ""
	}
}

// FormatRoundStart formats a round start event
func (ef *EventFormatter) FormatRoundStart(e RoundStartEvent) string {
	title := fmt.Sprintf("*** ROUND %d ***", e.Number)
	if ef.opts.ShowRoundID && e.RoundID() != "" {
		title = fmt.Sprintf("*** ROUND %d (%s) ***", e.Number, e.RoundID())
	}
	return fmt.Sprintf("%s\nBalance: $%d", ef.header(title), e.Balance)
}

// FormatInitialDeal formats the opening deal with the dealer's hole card hidden
func (ef *EventFormatter) FormatInitialDeal(e InitialDealEvent) string {
	return fmt.Sprintf("Dealt to %s: %s (%d)\nDealer shows: %s %s",
		ef.opts.PlayerName, ef.FormatCards(e.PlayerCards), e.PlayerValue,
		ef.FormatCard(e.DealerUpCard), ef.hidden())
}

// FormatPlayerAction formats a player hit or stand
func (ef *EventFormatter) FormatPlayerAction(e PlayerActionEvent) string {
	name := ef.opts.PlayerName
	if e.Action == Stand {
		return fmt.Sprintf("%s: stands on %d", name, e.Value)
	}

	line := fmt.Sprintf("%s: hits", name)
	if e.Card != nil {
		line = fmt.Sprintf("%s: hits and draws %s", name, ef.FormatCard(*e.Card))
	}
	line += fmt.Sprintf(" -> %s (%d)", ef.FormatCards(e.Cards), e.Value)
	if e.Bust {
		line += " " + ef.style(loseStyle, "BUST")
	}
	return line
}

// FormatDealerAction formats a dealer hit, stand or bust
func (ef *EventFormatter) FormatDealerAction(e DealerActionEvent) string {
	switch {
	case e.Action == Hit && e.Card != nil:
		return fmt.Sprintf("Dealer: hits and draws %s -> %s (%d)",
			ef.FormatCard(*e.Card), ef.FormatCards(e.Cards), e.Value)
	case e.Bust:
		return fmt.Sprintf("Dealer: %s with %d", ef.style(winStyle, "BUSTS"), e.Value)
	default:
		return fmt.Sprintf("Dealer: stands on %d", e.Value)
	}
}

// FormatRoundEnd formats the settlement line and the new balance
func (ef *EventFormatter) FormatRoundEnd(e RoundEndEvent) string {
	var b strings.Builder
	b.WriteString(ef.header("*** SETTLEMENT ***"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s: %s (%d)\n", ef.opts.PlayerName, ef.FormatCards(e.PlayerCards), e.PlayerValue)
	fmt.Fprintf(&b, "Dealer: %s (%d)\n", ef.FormatCards(e.DealerCards), e.DealerValue)
	fmt.Fprintf(&b, "%s", ef.outcomeText(e.Outcome, e.Net))
	fmt.Fprintf(&b, "\nBalance: $%d", e.Balance)
	return b.String()
}

// FormatRoundAborted formats an aborted round
func (ef *EventFormatter) FormatRoundAborted(e RoundAbortedEvent) string {
	reason := "round aborted"
	if e.Err != nil {
		reason = e.Err.Error()
	}
	if errors.Is(e.Err, ErrQuit) {
		reason = "player left the table"
	}
	line := fmt.Sprintf("Round aborted during %s: %s", e.State, reason)
	if e.BetHeld > 0 {
		line += fmt.Sprintf(" ($%d stake not returned)", e.BetHeld)
	}
	return line
}

// FormatCards formats a slice of cards in dealing order
func (ef *EventFormatter) FormatCards(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, card := range cards {
		parts[i] = ef.FormatCard(card)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// FormatCard formats a single card, coloured by suit when enabled
func (ef *EventFormatter) FormatCard(card deck.Card) string {
	if card.IsRed() {
		return ef.style(redCardStyle, card.String())
	}
	return ef.style(blackCardStyle, card.String())
}

func (ef *EventFormatter) outcomeText(o Outcome, net int) string {
	switch {
	case o == PlayerBlackjack:
		return ef.style(winStyle, fmt.Sprintf("Blackjack! %s win $%d", ef.opts.PlayerName, net))
	case o.PlayerWins():
		return ef.style(winStyle, fmt.Sprintf("%s (+$%d)", capitalize(o.String()), net))
	case o == Push:
		return ef.style(pushStyle, "Push, stake returned")
	default:
		return ef.style(loseStyle, fmt.Sprintf("%s (-$%d)", capitalize(o.String()), -net))
	}
}

func (ef *EventFormatter) hidden() string {
	return ef.style(hiddenStyle, hiddenCard)
}

func (ef *EventFormatter) header(s string) string {
	return ef.style(headerStyle, s)
}

func (ef *EventFormatter) style(st lipgloss.Style, s string) string {
	if !ef.opts.Color {
		return s
	}
	return st.Render(s)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
