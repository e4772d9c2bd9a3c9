// Package tui implements a full-screen blackjack front end on Bubble Tea. The
// model owns the screen; a Bridge feeds it round events and turns the player's
// typed input into bets, decisions and replay answers for the engine.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	logPane   = 0
	inputPane = 1
)

// TUIModel represents the Bubble Tea model for the blackjack table
type TUIModel struct {
	logger *log.Logger

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	gameLog      []string
	actionResult chan ActionResult
	quitting     bool
	focusedPane  int
	status       Status
	prompt       string
	awaiting     bool

	// Dimensions
	width       int
	height      int
	initialized bool

	// Test mode
	testMode    bool
	capturedLog []string
}

// ActionResult represents the result of a user action
type ActionResult struct {
	Action   string
	Args     []string
	Continue bool
	Error    error
}

// Status is what the sidebar shows
type Status struct {
	Round   int
	Balance int
	Bet     int
	Player  string
	Dealer  string
	Wins    int
	Losses  int
	Pushes  int
}

// LogMsg appends entries to the game log
type LogMsg struct {
	Entries []string
}

// StatusMsg replaces the sidebar status
type StatusMsg struct {
	Status Status
}

// PromptMsg sets the question shown above the input line
type PromptMsg struct {
	Prompt      string
	Placeholder string
}

// QuitMsg is a custom message to signal quit
type QuitMsg struct{}

// NewTUIModel creates a new TUI model
func NewTUIModel(logger *log.Logger) *TUIModel {
	return NewTUIModelWithOptions(logger, false)
}

// NewTUIModelWithOptions creates a new TUI model with test mode option
func NewTUIModelWithOptions(logger *log.Logger, testMode bool) *TUIModel {
	// Sized properly when the first WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "Enter your bet"
	ti.Focus()
	ti.CharLimit = 32
	ti.Width = 40
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &TUIModel{
		logger:       logger.WithPrefix("tui"),
		logViewport:  vp,
		actionInput:  ti,
		gameLog:      []string{},
		actionResult: make(chan ActionResult, 1),
		focusedPane:  inputPane,
		testMode:     testMode,
		capturedLog:  []string{},
	}
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case QuitMsg:
		m.quitting = true
		return m, tea.Sequence(tea.ClearScreen, tea.Quit)

	case LogMsg:
		for _, entry := range msg.Entries {
			m.AddLogEntry(entry)
		}
		return m, nil

	case StatusMsg:
		m.status = msg.Status
		return m, nil

	case PromptMsg:
		m.prompt = msg.Prompt
		m.actionInput.Placeholder = msg.Placeholder
		m.awaiting = msg.Prompt != ""
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			m.sendResult(ActionResult{Action: "quit", Continue: false})
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			if m.focusedPane == logPane {
				m.focusedPane = inputPane
				m.actionInput.Focus()
			} else {
				m.focusedPane = logPane
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == inputPane {
				m.processAction(strings.TrimSpace(m.actionInput.Value()))
				m.actionInput.SetValue("")
			}
		case "up", "k":
			if m.focusedPane == logPane {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == logPane {
				m.logViewport.ScrollDown(1)
			}
		case "pgup":
			if m.focusedPane == logPane {
				m.logViewport.HalfPageUp()
			}
		case "pgdown":
			if m.focusedPane == logPane {
				m.logViewport.HalfPageDown()
			}
		case "home", "g":
			if m.focusedPane == logPane {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == logPane {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == inputPane {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	// Action pane (bottom, full width)
	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.borderColor(inputPane)).
		Width(max(m.width-2, 1)).
		Render(actionContent)

	// Sidebar (right of the log, same height)
	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 24)
	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	// Log pane (top left, fills the rest)
	m.logViewport.SetContent(m.renderLogPane())
	m.logViewport.Width = max(m.width-sidebarWidth-4, 1)
	m.logViewport.Height = paneHeight

	if !m.initialized && m.logViewport.Width > 1 && m.logViewport.Height > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.borderColor(logPane)).
		Width(m.logViewport.Width).
		Height(paneHeight).
		Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logBox, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

func (m *TUIModel) borderColor(pane int) lipgloss.Color {
	if m.focusedPane == pane {
		return lipgloss.Color("#04B575")
	}
	return lipgloss.Color("#626262")
}

// renderLogPane renders the game log pane content
func (m *TUIModel) renderLogPane() string {
	return strings.Join(m.gameLog, "\n")
}

// renderSidebarPane creates the sidebar content
func (m *TUIModel) renderSidebarPane() string {
	s := m.status
	var content strings.Builder

	content.WriteString(HeaderStyle.Render("BLACKJACK"))
	content.WriteString("\n\n")
	if s.Round > 0 {
		fmt.Fprintf(&content, "Round: %d\n", s.Round)
	}
	content.WriteString(WarningStyle.Render(fmt.Sprintf("Balance: $%d", s.Balance)))
	content.WriteString("\n")
	if s.Bet > 0 {
		content.WriteString(WarningStyle.Render(fmt.Sprintf("Bet: $%d", s.Bet)))
		content.WriteString("\n")
	}
	content.WriteString("\n")

	if s.Player != "" {
		content.WriteString(HandInfoStyle.Render("You: " + s.Player))
		content.WriteString("\n")
	}
	if s.Dealer != "" {
		content.WriteString(HandInfoStyle.Render("Dealer: " + s.Dealer))
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(InfoStyle.Render(fmt.Sprintf("W %d  L %d  P %d", s.Wins, s.Losses, s.Pushes)))
	return content.String()
}

// renderActionPane renders the prompt and input line
func (m *TUIModel) renderActionPane() string {
	var content strings.Builder

	if m.prompt != "" {
		content.WriteString(PromptStyle.Render(m.prompt))
	} else {
		content.WriteString(HandInfoStyle.Render("Waiting..."))
	}
	content.WriteString("\n")
	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	if m.focusedPane == logPane {
		content.WriteString(helpStyle.Render("Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"))
	} else {
		content.WriteString(helpStyle.Render("Tab to scroll log • Enter to submit • q or Ctrl+C to quit"))
	}
	return content.String()
}

// AddLogEntry adds an entry to the game log
func (m *TUIModel) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)

	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return
	}

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// processAction splits the input line into an action and its arguments
func (m *TUIModel) processAction(input string) {
	parts := strings.Fields(strings.ToLower(input))

	result := ActionResult{Args: []string{}, Continue: true}
	if len(parts) > 0 {
		result.Action = parts[0]
		result.Args = parts[1:]
	}
	m.sendResult(result)
}

// sendResult delivers input without blocking the UI. Lines entered while no
// prompt is showing are dropped, so each prompt takes exactly one answer.
func (m *TUIModel) sendResult(result ActionResult) {
	if result.Continue && !m.awaiting {
		m.logger.Debug("Dropping input, no prompt showing", "action", result.Action)
		return
	}
	m.awaiting = false

	select {
	case m.actionResult <- result:
	default:
		m.logger.Debug("Dropping input, none pending", "action", result.Action)
	}
}
