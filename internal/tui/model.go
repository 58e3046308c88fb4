// Package tui is the terminal chat client built on Bubble Tea.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/L4Y3R/ai-agent-work-sample/internal/model/chat"
	chatService "github.com/L4Y3R/ai-agent-work-sample/internal/service/chat"
)

const (
	inputHeight  = 3
	headerHeight = 2
	footerHeight = 1
	markdownWrap = 76
)

type keyMap struct {
	Send  key.Binding
	Clear key.Binding
	Quit  key.Binding
}

var keys = keyMap{
	Send:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
	Clear: key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
	Quit:  key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
}

// eventMsg carries one session event into the update loop.
type eventMsg chat.Event

// closedMsg means the session's event stream ended.
type closedMsg struct{}

// Model is the chat screen.
type Model struct {
	session *chatService.Session
	events  <-chan chat.Event
	cancel  func()
	logger  *zap.Logger

	input    textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	styles   Styles

	messages []chat.Message
	pending  bool
	notice   string
	width    int
	height   int
}

// New subscribes to session and returns the initial model.
func New(session *chatService.Session, logger *zap.Logger) Model {
	styles := DefaultStyles()
	if md, err := NewMarkdown(markdownWrap); err == nil {
		styles.Markdown = md
	} else {
		logger.Warn("markdown renderer unavailable, showing plain text", zap.Error(err))
	}

	ta := textarea.New()
	ta.Placeholder = "Ask a question about your data..."
	ta.Prompt = "│ "
	ta.CharLimit = 4096
	ta.ShowLineNumbers = false
	ta.SetHeight(inputHeight)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	vp := viewport.New(80, 20)
	vp.KeyMap = viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
	}

	events, cancel := session.Subscribe()
	snapshot := session.Snapshot()

	m := Model{
		session:  session,
		events:   events,
		cancel:   cancel,
		logger:   logger,
		input:    ta,
		viewport: vp,
		spinner:  sp,
		styles:   styles,
		messages: snapshot.Messages,
		pending:  snapshot.Pending,
		width:    80,
	}
	m.refresh()
	return m
}

// Init starts listening for session events.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, waitForEvent(m.events))
}

func waitForEvent(events <-chan chat.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(event)
	}
}

// Update handles keys, resizes and session events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.cancel()
			return m, tea.Quit
		case key.Matches(msg, keys.Clear):
			m.session.Clear()
			m.notice = ""
			return m, nil
		case key.Matches(msg, keys.Send):
			return m, m.send()
		}

	case eventMsg:
		m.sync()
		cmds = append(cmds, waitForEvent(m.events))
		if m.pending {
			cmds = append(cmds, m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case closedMsg:
		m.notice = "Session closed."
		return m, tea.Quit

	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// send submits the typed question. Input is kept while a request is pending.
func (m *Model) send() tea.Cmd {
	if m.pending {
		m.notice = "Still answering the previous question."
		return nil
	}
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		return nil
	}

	if _, err := m.session.Submit(context.Background(), query); err != nil {
		switch {
		case errors.Is(err, chatService.ErrBusy):
			m.notice = "Still answering the previous question."
		case errors.Is(err, chatService.ErrSessionClosed):
			m.notice = "Session closed."
		default:
			m.logger.Warn("submit failed", zap.Error(err))
		}
		return nil
	}

	m.input.Reset()
	m.notice = ""
	m.sync()
	return m.spinner.Tick
}

func (m *Model) sync() {
	snapshot := m.session.Snapshot()
	m.messages = snapshot.Messages
	m.pending = snapshot.Pending
	m.refresh()
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(width)
	vpHeight := height - headerHeight - footerHeight - inputHeight - 1
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(RenderTranscript(m.styles, m.messages, m.width))
	m.viewport.GotoBottom()
}

// View draws the header, the transcript, the status line and the input.
func (m Model) View() string {
	header := m.styles.Header.Render("AI Agent Work Sample") + "  " +
		m.styles.Hint.Render(keys.Send.Help().Key+" send · "+keys.Clear.Help().Key+" clear · "+keys.Quit.Help().Key+" quit")

	status := m.notice
	if m.pending {
		status = strings.TrimSpace(m.spinner.View() + " Thinking...  " + m.notice)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		m.viewport.View(),
		m.styles.Hint.Render(status),
		m.input.View(),
	)
}

// Messages returns the transcript as last seen by the model.
func (m Model) Messages() []chat.Message {
	return m.messages
}

// Pending reports whether the model shows a request in flight.
func (m Model) Pending() bool {
	return m.pending
}
