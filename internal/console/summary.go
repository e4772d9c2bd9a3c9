package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/session"
)

var summaryBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#7D56F4")).
	Padding(0, 1)

// FormatSummary renders the end of session report
func FormatSummary(sum *session.Summary, color bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session over: %s\n", sum.Reason)
	fmt.Fprintf(&b, "Rounds played: %d\n", sum.Rounds)
	fmt.Fprintf(&b, "Balance: $%d -> $%d (%s)\n", sum.StartingBalance, sum.FinalBalance, signed(sum.Net))

	if sum.Rounds > 0 {
		b.WriteString("Outcomes:")
		for _, outcome := range game.Outcomes {
			if n := sum.Outcomes[outcome]; n > 0 {
				fmt.Fprintf(&b, "\n  %-17s %d", outcome, n)
			}
		}
		b.WriteString("\n")
	}
	if sum.Forfeited > 0 {
		fmt.Fprintf(&b, "Stake forfeited: $%d (round abandoned)\n", sum.Forfeited)
	}
	if sum.BiggestWin > 0 {
		fmt.Fprintf(&b, "Biggest win: $%d\n", sum.BiggestWin)
	}
	if sum.BiggestLoss > 0 {
		fmt.Fprintf(&b, "Biggest loss: $%d\n", sum.BiggestLoss)
	}
	fmt.Fprintf(&b, "Seed: %d", sum.Seed)

	if !color {
		return b.String()
	}
	return summaryBox.Render(b.String())
}

func signed(n int) string {
	if n < 0 {
		return fmt.Sprintf("-$%d", -n)
	}
	return fmt.Sprintf("+$%d", n)
}
