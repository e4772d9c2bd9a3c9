// Package console implements a line-based blackjack front end. It prompts for
// bets, hit/stand decisions and replays, and prints round events as text.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/blackjack/internal/game"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	titleStyle  = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1)
)

// Options configures a Console
type Options struct {
	Color      bool
	PlayerName string
}

type lineResult struct {
	text string
	err  error
}

// Console reads player input line by line and writes game output. It
// implements game.BetSource, game.Agent, game.ReplaySource and
// game.EventSubscriber.
type Console struct {
	ctx       context.Context
	out       io.Writer
	lines     chan lineResult
	formatter *game.EventFormatter
	color     bool
	lastBet   int
}

// New creates a console reading from in and writing to out. Reads stop
// blocking when ctx is cancelled.
func New(ctx context.Context, in io.Reader, out io.Writer, opts Options) *Console {
	c := &Console{
		ctx:   ctx,
		out:   out,
		lines: make(chan lineResult),
		formatter: game.NewEventFormatter(game.FormattingOptions{
			Color:      opts.Color,
			PlayerName: opts.PlayerName,
		}),
		color: opts.Color,
	}
	go c.readLines(in)
	return c
}

func (c *Console) readLines(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case c.lines <- lineResult{text: scanner.Text()}:
		case <-c.ctx.Done():
			return
		}
	}
	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	select {
	case c.lines <- lineResult{err: err}:
	case <-c.ctx.Done():
	}
	close(c.lines)
}

// readLine prints the prompt and waits for the next line of input. End of
// input and "q"/"quit" are reported as game.ErrQuit.
func (c *Console) readLine(prompt string) (string, error) {
	fmt.Fprint(c.out, c.style(promptStyle, prompt))

	select {
	case <-c.ctx.Done():
		fmt.Fprintln(c.out)
		return "", c.ctx.Err()
	case line, ok := <-c.lines:
		if !ok || errors.Is(line.err, io.EOF) {
			fmt.Fprintln(c.out)
			return "", game.ErrQuit
		}
		if line.err != nil {
			return "", fmt.Errorf("reading input: %w", line.err)
		}
		text := strings.TrimSpace(line.text)
		switch strings.ToLower(text) {
		case "q", "quit", "exit":
			return "", game.ErrQuit
		}
		return text, nil
	}
}

// Banner prints the title line
func (c *Console) Banner(balance, standOn int) {
	fmt.Fprintln(c.out, c.style(titleStyle, "BLACKJACK"))
	fmt.Fprintln(c.out, c.style(infoStyle, fmt.Sprintf("Starting balance $%d. Dealer stands on %d. Blackjack pays 3:2. Type q to quit.", balance, standOn)))
	fmt.Fprintln(c.out)
}

// NextBet prompts for a stake. Unparseable input is re-prompted here; amounts
// the engine rejects come back with req.LastError set. An empty line repeats
// the last accepted bet while the balance still covers it.
func (c *Console) NextBet(req game.BetRequest) (int, error) {
	if req.LastError != nil {
		c.errorf("Invalid bet: %v", req.LastError)
	}

	limits := fmt.Sprintf("min $%d", req.MinBet)
	if req.MaxBet > 0 {
		limits += fmt.Sprintf(", max $%d", req.MaxBet)
	}
	prompt := fmt.Sprintf("Place your bet (%s, balance $%d): ", limits, req.Balance)
	repeat := c.lastBet > 0 && c.lastBet <= req.Balance
	if repeat {
		prompt = fmt.Sprintf("Place your bet (%s, balance $%d) [$%d]: ", limits, req.Balance, c.lastBet)
	}

	for {
		text, err := c.readLine(prompt)
		if err != nil {
			return 0, err
		}
		if text == "" && repeat {
			return c.lastBet, nil
		}

		amount, err := parseAmount(text)
		if err != nil {
			c.errorf("Please enter a whole number of dollars")
			continue
		}
		return amount, nil
	}
}

// Decide prompts for hit or stand until the input is one of them
func (c *Console) Decide(view game.TableView) (game.Action, error) {
	prompt := fmt.Sprintf("You have %d. (h)it or (s)tand? ", view.PlayerValue)
	if view.PlayerSoft {
		prompt = fmt.Sprintf("You have soft %d. (h)it or (s)tand? ", view.PlayerValue)
	}

	for {
		text, err := c.readLine(prompt)
		if err != nil {
			return 0, err
		}
		action, err := game.ParseAction(text)
		if err != nil {
			c.errorf("Please enter h or s")
			continue
		}
		return action, nil
	}
}

// PlayAgain asks whether to deal another round. An empty line means yes.
func (c *Console) PlayAgain(balance int) (bool, error) {
	for {
		text, err := c.readLine("Play another round? [Y/n] ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(text) {
		case "", "y", "yes":
			fmt.Fprintln(c.out)
			return true, nil
		case "n", "no":
			return false, nil
		default:
			c.errorf("Please enter y or n")
		}
	}
}

// OnEvent prints every round event that has something to show
func (c *Console) OnEvent(event game.GameEvent) {
	switch e := event.(type) {
	case game.BetPlacedEvent:
		c.lastBet = e.Amount
		return
	case game.BetRejectedEvent:
		// Reported by the next bet prompt
		return
	}
	if text := c.formatter.Format(event); text != "" {
		fmt.Fprintln(c.out, text)
	}
}

func (c *Console) errorf(format string, args ...any) {
	fmt.Fprintln(c.out, c.style(errorStyle, fmt.Sprintf(format, args...)))
}

func (c *Console) style(st lipgloss.Style, s string) string {
	if !c.color {
		return s
	}
	return st.Render(s)
}

// parseAmount accepts "25" or "$25"
func parseAmount(s string) (int, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	return strconv.Atoi(s)
}
