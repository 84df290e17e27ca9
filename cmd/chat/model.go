package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	session "github.com/rulewise/chat-core/core"
	"github.com/rulewise/chat-core/core/capabilities"
	"github.com/rulewise/chat-core/core/chat"
	"github.com/rulewise/chat-core/core/events"
)

// capabilityDescriptions labels running tool calls with what the capability
// does, keyed by tool name from the engine's catalog.
var capabilityDescriptions = func() map[string]string {
	descriptions := map[string]string{}
	for _, capability := range capabilities.Catalog() {
		descriptions[capability.Name] = capability.Description
	}
	return descriptions
}()

var (
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	toolStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	citationStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	errorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	statusStyle    = lipgloss.NewStyle().Faint(true)
)

type sessionEventMsg struct {
	event events.Event
}

func waitForSessionEvent(ch <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return sessionEventMsg{event: event}
	}
}

type model struct {
	session       *session.Session
	sessionEvents <-chan events.Event

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	width int
}

func newModel(s *session.Session, sessionEvents <-chan events.Event) model {
	input := textinput.New()
	input.Placeholder = "Ask about the rules…"
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

	vp := viewport.New(80, 20)

	return model{
		session:       s,
		sessionEvents: sessionEvents,
		viewport:      vp,
		input:         input,
		spinner:       sp,
		width:         80,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForSessionEvent(m.sessionEvents))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 4
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			prompt := m.input.Value()
			if err := m.session.Send(prompt); err != nil && !errors.Is(err, session.ErrBlankPrompt) {
				return m, tea.Quit
			}
			m.input.Reset()
			m.refresh()
			return m, nil
		case tea.KeyEsc:
			if m.session.Snapshot().Err != nil {
				m.session.DismissError()
			} else {
				m.session.CancelTurn()
			}
			m.refresh()
			return m, nil
		case tea.KeyCtrlL:
			m.session.Clear()
			m.refresh()
			return m, nil
		}

	case sessionEventMsg:
		m.refresh()
		return m, waitForSessionEvent(m.sessionEvents)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) refresh() {
	m.viewport.SetContent(renderTranscript(m.session.Snapshot(), m.width))
	m.viewport.GotoBottom()
}

func (m model) View() string {
	snapshot := m.session.Snapshot()

	status := statusStyle.Render("enter: send · esc: cancel/dismiss · ctrl+l: clear · ctrl+c: quit")
	switch snapshot.Phase {
	case session.PhaseStreaming:
		status = m.spinner.View() + " thinking…"
	case session.PhaseFailed:
		status = errorStyle.Render(fmt.Sprintf("error: %v (esc to dismiss)", snapshot.Err))
	}

	return strings.Join([]string{
		m.viewport.View(),
		status,
		m.input.View(),
	}, "\n")
}

func renderTranscript(snapshot session.Snapshot, width int) string {
	var b strings.Builder

	for _, message := range snapshot.History {
		renderMessage(&b, message, width)
	}

	if snapshot.Phase == session.PhaseStreaming {
		for _, record := range snapshot.PendingToolCalls {
			renderToolCall(&b, record)
		}
		if snapshot.PendingContent != "" {
			b.WriteString(assistantStyle.Render(wordwrap.String(snapshot.PendingContent, width)))
			b.WriteString("\n")
		}
		for _, citation := range snapshot.PendingCitations {
			renderCitation(&b, citation)
		}
	}

	return b.String()
}

func renderMessage(b *strings.Builder, message chat.Message, width int) {
	switch message.Role {
	case chat.MessageRoleUser:
		b.WriteString(userStyle.Render("You: "))
		b.WriteString(wordwrap.String(message.Content, width))
	case chat.MessageRoleAssistant:
		for _, record := range message.ToolCalls {
			renderToolCall(b, record)
		}
		b.WriteString(assistantStyle.Render(wordwrap.String(message.Content, width)))
		b.WriteString("\n")
		for _, citation := range message.Citations {
			renderCitation(b, citation)
		}
		for _, image := range message.Images {
			b.WriteString(citationStyle.Render(fmt.Sprintf("  [image] %s", image.URL)))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
}

func renderToolCall(b *strings.Builder, record chat.ToolCallRecord) {
	line := fmt.Sprintf("  [%s] %s", record.Status, record.Name)
	switch record.Status {
	case chat.ToolCallStatusRunning:
		if description, ok := capabilityDescriptions[record.Name]; ok {
			line = fmt.Sprintf("%s: %s", line, description)
		}
	case chat.ToolCallStatusCompleted:
		line = fmt.Sprintf("%s (%s)", line, record.Duration.Round(time.Millisecond))
	}
	b.WriteString(toolStyle.Render(line))
	b.WriteString("\n")
}

func renderCitation(b *strings.Builder, citation chat.Citation) {
	location := citation.ResourceName
	if citation.PageNumber != nil {
		location = fmt.Sprintf("%s, p.%d", location, *citation.PageNumber)
	}
	if citation.Section != "" {
		location = fmt.Sprintf("%s (%s)", location, citation.Section)
	}
	b.WriteString(citationStyle.Render(fmt.Sprintf("  [%s] %s", citation.Relevance, location)))
	b.WriteString("\n")
}
