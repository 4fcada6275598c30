// ============================================================================
// nic - Chat-Kommando-Framework
// ============================================================================
//
// Package:     console
// Description: Bubbletea REPL dispatching typed lines as chat messages
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package console

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/msto63/nic/pkg/core/version"
	"github.com/msto63/nic/pkg/nic/command"
	"github.com/msto63/nic/pkg/nic/scanner"
)

// Dispatcher executes chat messages
type Dispatcher interface {
	Dispatch(ctx context.Context, msg command.Message) ([]*command.Result, error)
}

// Config holds console configuration
type Config struct {
	Dispatcher Dispatcher
	Parsing    scanner.Options // Used for the token view
	Author     string
	Channel    string
	ShowTokens bool
	Timeout    time.Duration // Per line (default: 30s)
}

// Model is the Bubbletea model of the console
type Model struct {
	width   int
	height  int
	ready   bool
	busy    bool
	tokens  bool
	cfg     Config
	entries []Entry

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	history      []string
	historyIndex int // -1 while editing a new line
	draft        string
}

// New creates the console model
func New(cfg Config) Model {
	if cfg.Author == "" {
		cfg.Author = "console"
	}
	if cfg.Channel == "" {
		cfg.Channel = "console"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if len(cfg.Parsing.Prefixes) == 0 {
		cfg.Parsing = scanner.DefaultOptions()
	}

	ti := textinput.New()
	ti.Placeholder = "Nachricht eingeben, z.B. " + cfg.Parsing.Prefixes[0] + "help"
	ti.Prompt = "› "
	ti.PromptStyle = InputLineStyle
	ti.CharLimit = command.DefaultMaxMessageLength
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		cfg:          cfg,
		tokens:       cfg.ShowTokens,
		input:        ti,
		spinner:      sp,
		historyIndex: -1,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Entries returns the console history
func (m Model) Entries() []Entry {
	return m.entries
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 2
		footerHeight := 6
		viewportHeight := max(msg.Height-headerHeight-footerHeight, 3)

		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, viewportHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = viewportHeight
		}
		m.input.Width = msg.Width - 8
		m.updateViewportContent()

	case spinner.TickMsg:
		if m.busy {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case dispatchedMsg:
		m.busy = false
		m.appendOutcome(msg)
		m.updateViewportContent()
		m.viewport.GotoBottom()
	}

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyCtrlL:
		m.entries = nil
		m.updateViewportContent()
		return m, nil

	case tea.KeyCtrlT:
		m.tokens = !m.tokens
		return m, nil

	case tea.KeyUp:
		m.browseHistory(1)
		return m, nil

	case tea.KeyDown:
		m.browseHistory(-1)
		return m, nil

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.KeyEnter:
		line := m.input.Value()
		if m.busy || strings.TrimSpace(line) == "" {
			return m, nil
		}

		m.input.Reset()
		m.history = append(m.history, line)
		m.historyIndex = -1
		m.draft = ""

		m.entries = append(m.entries, Entry{Kind: EntryInput, Text: line, Timestamp: time.Now()})
		m.busy = true
		m.updateViewportContent()
		m.viewport.GotoBottom()

		return m, tea.Batch(m.dispatch(line), m.spinner.Tick)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// browseHistory moves through earlier lines, step 1 is older, -1 newer
func (m *Model) browseHistory(step int) {
	if len(m.history) == 0 {
		return
	}
	if m.historyIndex == -1 {
		if step < 0 {
			return
		}
		m.draft = m.input.Value()
	}

	next := m.historyIndex + step
	switch {
	case next < 0:
		m.historyIndex = -1
		m.input.SetValue(m.draft)
		return
	case next >= len(m.history):
		next = len(m.history) - 1
	}

	m.historyIndex = next
	m.input.SetValue(m.history[len(m.history)-1-next])
	m.input.CursorEnd()
}

// dispatch runs the line through the dispatcher off the UI goroutine
func (m Model) dispatch(line string) tea.Cmd {
	cfg := m.cfg
	showTokens := m.tokens

	return func() tea.Msg {
		out := dispatchedMsg{}
		if showTokens {
			out.tokens, _ = scanner.Scan(line, cfg.Parsing)
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()

		out.results, out.err = cfg.Dispatcher.Dispatch(ctx, command.Message{
			Content: line,
			Author:  cfg.Author,
			Channel: cfg.Channel,
		})
		return out
	}
}

func (m *Model) appendOutcome(msg dispatchedMsg) {
	now := time.Now()

	if len(msg.tokens) > 0 {
		parts := make([]string, len(msg.tokens))
		for i, tok := range msg.tokens {
			parts[i] = tok.String()
		}
		m.entries = append(m.entries, Entry{Kind: EntryTokens, Text: strings.Join(parts, " "), Timestamp: now})
	}

	switch {
	case msg.err == nil:
		for _, r := range msg.results {
			m.entries = append(m.entries, Entry{
				Kind:      EntryOutput,
				Text:      r.Output,
				Command:   r.Invocation.Command.Name,
				Duration:  r.Duration,
				Timestamp: now,
			})
		}

	case command.IsIgnorable(msg.err):
		m.entries = append(m.entries, Entry{
			Kind:      EntryIgnored,
			Text:      "Kein Kommando erkannt",
			Code:      command.Code(msg.err),
			Timestamp: now,
		})

	default:
		m.entries = append(m.entries, Entry{
			Kind:      EntryError,
			Text:      msg.err.Error(),
			Code:      command.Code(msg.err),
			Timestamp: now,
		})
	}
}

// View renders the console
func (m Model) View() string {
	if !m.ready {
		return "Lade Konsole..."
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render("nic") + " " + SubtitleStyle.Render("Kommando-Konsole v"+version.Console))
	b.WriteString("\n")
	b.WriteString(HistoryPanelStyle.Width(m.width - 2).Render(m.viewport.View()))
	b.WriteString("\n")

	input := m.input.View()
	if m.busy {
		input = m.spinner.View() + HelpDescStyle.Render(" Führe aus...")
	}
	b.WriteString(InputPanelStyle.Width(m.width - 2).Render(input))
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	return b.String()
}

func (m Model) renderStatusBar() string {
	tokenHint := "Tokens an"
	if m.tokens {
		tokenHint = "Tokens aus"
	}

	hints := []string{
		RenderKeyHint("Enter", "senden"),
		RenderKeyHint("↑/↓", "Historie"),
		RenderKeyHint("Ctrl+T", tokenHint),
		RenderKeyHint("Ctrl+L", "leeren"),
		RenderKeyHint("Esc", "beenden"),
	}
	left := strings.Join(hints, "  ")
	right := HelpDescStyle.Render(fmt.Sprintf("%s @ %s", m.cfg.Author, m.cfg.Channel))

	padding := max(m.width-lipgloss.Width(left)-lipgloss.Width(right)-4, 2)
	return StatusBarStyle.Render(left + strings.Repeat(" ", padding) + right)
}

// renderEntry renders one history entry
func renderEntry(e Entry) string {
	ts := TimeStyle.Render(e.Timestamp.Format("15:04:05"))

	switch e.Kind {
	case EntryInput:
		return ts + " " + InputLineStyle.Render(e.Text)
	case EntryTokens:
		return TokenStyle.Render(e.Text)
	case EntryOutput:
		label := CommandLabelStyle.Render(e.Command)
		if e.Duration > 0 {
			label += HelpDescStyle.Render(fmt.Sprintf(" (%s)", e.Duration.Round(time.Microsecond)))
		}
		return OutputStyle.Render(label + "\n" + e.Text)
	case EntryIgnored:
		return IgnoredStyle.Render(e.Text + " [" + e.Code + "]")
	case EntryError:
		return ErrorStyle.Render(ErrorCodeStyle.Render(e.Code) + " " + e.Text)
	}
	return e.Text
}

func (m *Model) updateViewportContent() {
	if !m.ready {
		return
	}

	blocks := make([]string, len(m.entries))
	for i, e := range m.entries {
		blocks[i] = renderEntry(e)
	}
	m.viewport.SetContent(strings.Join(blocks, "\n"))
}

// Run starts the console
func Run(cfg Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
