package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lox/blackjack/internal/game"
)

// Sender delivers messages to a running model. *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// Options configures a Bridge
type Options struct {
	Color      bool
	PlayerName string
}

// Bridge connects the engine to a TUI model. It implements game.BetSource,
// game.Agent, game.ReplaySource and game.EventSubscriber: events become log
// entries and sidebar updates, and every request blocks on the player's next
// line of input.
type Bridge struct {
	ctx       context.Context
	tui       *TUIModel
	send      func(tea.Msg)
	formatter *game.EventFormatter
	status    Status
	lastBet   int
}

// NewBridge creates a new bridge between the engine and the TUI. With a nil
// program messages are applied to the model directly, which is only safe
// while the model is not running under a tea.Program.
func NewBridge(ctx context.Context, program Sender, tui *TUIModel, opts Options) *Bridge {
	b := &Bridge{
		ctx: ctx,
		tui: tui,
		formatter: game.NewEventFormatter(game.FormattingOptions{
			Color:      opts.Color,
			PlayerName: opts.PlayerName,
		}),
	}
	if program != nil {
		b.send = program.Send
	} else {
		b.send = func(msg tea.Msg) { tui.Update(msg) }
	}
	return b
}

// SetBalance shows the balance before the first round starts
func (b *Bridge) SetBalance(balance int) {
	b.status.Balance = balance
	b.pushStatus()
}

// Log appends lines to the game log
func (b *Bridge) Log(text string) {
	b.send(LogMsg{Entries: strings.Split(text, "\n")})
}

// Quit asks the program to exit
func (b *Bridge) Quit() {
	b.send(QuitMsg{})
}

// NextBet asks for a stake. "bet 25", "25" and "$25" are accepted and an
// empty line repeats the last accepted bet while the balance covers it.
func (b *Bridge) NextBet(req game.BetRequest) (int, error) {
	if req.LastError != nil {
		b.Log(ErrorStyle.Render(fmt.Sprintf("Invalid bet: %v", req.LastError)))
	}
	b.status.Balance = req.Balance
	b.pushStatus()

	limits := fmt.Sprintf("min $%d", req.MinBet)
	if req.MaxBet > 0 {
		limits += fmt.Sprintf(", max $%d", req.MaxBet)
	}
	repeat := b.lastBet > 0 && b.lastBet <= req.Balance
	placeholder := "Enter your bet"
	if repeat {
		placeholder = fmt.Sprintf("Enter to bet $%d again", b.lastBet)
	}

	for {
		b.setPrompt(fmt.Sprintf("Place your bet (%s, balance $%d)", limits, req.Balance), placeholder)
		result, err := b.wait()
		if err != nil {
			return 0, err
		}

		input := result.Action
		if input == "bet" && len(result.Args) > 0 {
			input = result.Args[0]
		}
		if input == "" && repeat {
			return b.lastBet, nil
		}

		amount, err := strconv.Atoi(strings.TrimPrefix(input, "$"))
		if err != nil {
			b.Log(ErrorStyle.Render("Please enter a whole number of dollars"))
			continue
		}
		return amount, nil
	}
}

// Decide asks for hit or stand until the input is one of them
func (b *Bridge) Decide(view game.TableView) (game.Action, error) {
	total := strconv.Itoa(view.PlayerValue)
	if view.PlayerSoft {
		total = "soft " + total
	}
	prompt := fmt.Sprintf("You have %s against the dealer's %s", total, view.DealerUpCard)

	for {
		b.setPrompt(prompt, "hit or stand")
		result, err := b.wait()
		if err != nil {
			return 0, err
		}
		action, err := game.ParseAction(result.Action)
		if err != nil {
			b.Log(ErrorStyle.Render("Please enter hit or stand"))
			continue
		}
		return action, nil
	}
}

// PlayAgain asks whether to deal another round. An empty line means yes.
func (b *Bridge) PlayAgain(balance int) (bool, error) {
	for {
		b.setPrompt("Play another round?", "Enter to deal, n to leave")
		result, err := b.wait()
		if err != nil {
			return false, err
		}
		switch result.Action {
		case "", "y", "yes", "deal":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			b.Log(ErrorStyle.Render("Please enter y or n"))
		}
	}
}

// OnEvent logs the event and keeps the sidebar in step with the round
func (b *Bridge) OnEvent(event game.GameEvent) {
	switch e := event.(type) {
	case game.RoundStartEvent:
		b.status.Round = e.Number
		b.status.Balance = e.Balance
		b.status.Bet = 0
		b.status.Player = ""
		b.status.Dealer = ""
	case game.BetPlacedEvent:
		b.lastBet = e.Amount
		b.status.Bet = e.Amount
		b.status.Balance = e.Balance
	case game.BetRejectedEvent:
		// Reported by the next bet prompt
		return
	case game.InitialDealEvent:
		b.status.Player = fmt.Sprintf("%s (%d)", b.formatter.FormatCards(e.PlayerCards), e.PlayerValue)
		b.status.Dealer = e.DealerShown
	case game.PlayerActionEvent:
		b.status.Player = fmt.Sprintf("%s (%d)", b.formatter.FormatCards(e.Cards), e.Value)
	case game.DealerRevealEvent:
		b.status.Dealer = fmt.Sprintf("%s (%d)", b.formatter.FormatCards(e.Cards), e.Value)
	case game.DealerActionEvent:
		b.status.Dealer = fmt.Sprintf("%s (%d)", b.formatter.FormatCards(e.Cards), e.Value)
	case game.RoundEndEvent:
		b.status.Bet = 0
		b.status.Balance = e.Balance
		switch {
		case e.Outcome.PlayerWins():
			b.status.Wins++
		case e.Outcome.PlayerLoses():
			b.status.Losses++
		default:
			b.status.Pushes++
		}
	case game.RoundAbortedEvent:
		b.status.Balance = e.Balance
	}

	b.pushStatus()
	if text := b.formatter.Format(event); text != "" {
		b.Log(text)
		if event.EventType() == game.EventTypeRoundEnd {
			b.Log("")
		}
	}
}

// wait blocks for the answer to the current prompt, then clears it. Ctrl+C
// and "q"/"quit"/"exit" are reported as game.ErrQuit.
func (b *Bridge) wait() (ActionResult, error) {
	select {
	case <-b.ctx.Done():
		return ActionResult{}, b.ctx.Err()
	case result := <-b.tui.actionResult:
		b.setPrompt("", "")
		if result.Error != nil {
			return ActionResult{}, result.Error
		}
		switch result.Action {
		case "q", "quit", "exit":
			return ActionResult{}, game.ErrQuit
		}
		if !result.Continue {
			return ActionResult{}, game.ErrQuit
		}
		return result, nil
	}
}

func (b *Bridge) setPrompt(prompt, placeholder string) {
	b.send(PromptMsg{Prompt: prompt, Placeholder: placeholder})
}

func (b *Bridge) pushStatus() {
	b.send(StatusMsg{Status: b.status})
}
