// Package tui implements the interactive chat screen.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/thrift/internal/llm"
	"github.com/Veraticus/thrift/internal/tui/themes"
)

// Model holds the chat screen state.
type Model struct {
	ctx      context.Context
	chat     ChatFunc
	theme    themes.Theme
	keymap   KeyMap
	help     help.Model
	input    textinput.Model
	spinner  spinner.Model
	userName string
	history  []llm.Message
	entries  []entry
	width    int
	height   int
	scroll   int
	waiting  bool
	quitting bool
}

// NewModel creates a chat model that answers through chat.
func NewModel(ctx context.Context, chat ChatFunc, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	input := textinput.New()
	input.Placeholder = "Ask about your budget or a savings goal"
	input.Prompt = "› "
	input.CharLimit = 500
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = sp.Style.Foreground(cfg.Theme.Primary)

	m := Model{
		ctx:      ctx,
		chat:     chat,
		theme:    cfg.Theme,
		keymap:   DefaultKeyMap(),
		help:     help.New(),
		input:    input,
		spinner:  sp,
		userName: cfg.UserName,
		width:    cfg.Width,
		height:   cfg.Height,
	}
	m.handleResize()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		return m, nil

	case replyMsg:
		m.waiting = false
		m.scroll = 0
		if msg.err != nil {
			// Drop the unanswered turn so the next question starts clean.
			m.history = m.history[:len(m.history)-1]
			m.entries = append(m.entries, entry{role: speakerError, text: msg.err.Error()})
			return m, nil
		}
		m.history = append(m.history, llm.Message{Role: llm.RoleAssistant, Content: msg.reply.Text})
		e := entry{role: speakerAssistant, text: msg.reply.Text}
		for _, g := range msg.reply.Goals {
			e.goals = append(e.goals, goalLine(g.Title, g.SavedAmount, g.TargetAmount))
		}
		m.entries = append(m.entries, e)
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.ClearScreen):
		return m, tea.ClearScreen
	case key.Matches(msg, m.keymap.ScrollUp):
		m.scroll += m.transcriptHeight() / 2
		return m, nil
	case key.Matches(msg, m.keymap.ScrollDown):
		m.scroll = max(0, m.scroll-m.transcriptHeight()/2)
		return m, nil
	case key.Matches(msg, m.keymap.Send):
		return m.send()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send submits the input line as the next user turn.
func (m Model) send() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.waiting {
		return m, nil
	}

	m.input.Reset()
	m.waiting = true
	m.scroll = 0
	m.history = append(m.history, llm.Message{Role: llm.RoleUser, Content: text})
	m.entries = append(m.entries, entry{role: speakerUser, text: text})

	history := make([]llm.Message, len(m.history))
	copy(history, m.history)
	return m, tea.Batch(m.spinner.Tick, m.ask(history))
}

// ask runs the chat function off the UI loop.
func (m Model) ask(history []llm.Message) tea.Cmd {
	return func() tea.Msg {
		reply, err := m.chat(m.ctx, history)
		return replyMsg{reply: reply, err: err}
	}
}

// handleResize adjusts component sizes when terminal resizes.
func (m *Model) handleResize() {
	m.input.Width = max(10, m.width-8)
	m.help.Width = m.width
}

// History returns the conversation so far.
func (m Model) History() []llm.Message {
	return m.history
}
