// Package tui renders a widget.Controller in the terminal with Bubble Tea.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"deathbydinner-backend/internal/models"
	"deathbydinner-backend/internal/widget"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	subHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("27")).Padding(0, 1)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")).Padding(0, 1)
	thinkingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("246")).Italic(true)
	buttonStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Background(lipgloss.Color("27")).Padding(0, 1)
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const (
	defaultWidth  = 60
	defaultHeight = 20
	chromeLines   = 6
)

type replyMsg struct {
	reply string
	err   error
}

// Model is the Bubble Tea model of the chat widget.
type Model struct {
	ctx    context.Context
	ctrl   *widget.Controller
	sender widget.Sender
	info   models.PersonaInfo

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	width    int
}

func New(ctx context.Context, ctrl *widget.Controller, sender widget.Sender, info models.PersonaInfo) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = "> "
	ti.CharLimit = 2000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = thinkingStyle

	m := Model{
		ctx:      ctx,
		ctrl:     ctrl,
		sender:   sender,
		info:     info,
		input:    ti,
		viewport: viewport.New(defaultWidth, defaultHeight-chromeLines),
		spinner:  sp,
		width:    defaultWidth,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeLines, 3)
		m.input.Width = max(msg.Width-4, 10)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+o":
			if m.ctrl.Toggle() == widget.StateClosed {
				m.input.Blur()
			} else {
				m.input.Focus()
			}
			m.refresh()
			return m, nil
		case "enter":
			history, ok := m.ctrl.Begin(m.input.Value())
			if !ok {
				return m, nil
			}
			m.input.SetValue("")
			m.refresh()
			return m, tea.Batch(m.send(history), m.spinner.Tick)
		}

		if !m.ctrl.IsOpen() {
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case replyMsg:
		m.ctrl.Resolve(msg.reply, msg.err)
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.ctrl.IsAwaiting() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ctrl.IsOpen() {
		return buttonStyle.Render(Initials(m.info.Name)) + " " +
			helpStyle.Render("ctrl+o: chat with "+m.info.Name+" • esc: quit") + "\n"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(m.info.Name))
	if m.info.Subtitle != "" {
		b.WriteString("\n" + subHeaderStyle.Render(m.info.Subtitle))
	}
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: send • ctrl+o: close • esc: quit"))
	return b.String()
}

func (m Model) send(history []models.Turn) tea.Cmd {
	return func() tea.Msg {
		reply, err := m.sender.Send(m.ctx, history)
		return replyMsg{reply: reply, err: err}
	}
}

func (m *Model) refresh() {
	content := RenderTranscript(m.ctrl.History(), m.width)
	if m.ctrl.IsAwaiting() {
		content += "\n" + m.spinner.View() + " " + thinkingStyle.Render(m.info.Name+" is thinking...")
	}
	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}

// RenderTranscript lays out turns as chat bubbles: user turns on the right,
// assistant turns on the left.
func RenderTranscript(history []models.Turn, width int) string {
	bubbleWidth := max(width*4/5, 10)

	lines := make([]string, 0, len(history))
	for _, turn := range history {
		if turn.Role == models.RoleUser {
			bubble := renderBubble(userStyle, turn.Content, bubbleWidth)
			lines = append(lines, lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble))
			continue
		}
		lines = append(lines, renderBubble(assistantStyle, turn.Content, bubbleWidth))
	}
	return strings.Join(lines, "\n\n")
}

// renderBubble word-wraps content inside a bubble no wider than maxWidth.
// Short messages keep a bubble that fits the text.
func renderBubble(style lipgloss.Style, content string, maxWidth int) string {
	w := min(lipgloss.Width(content)+style.GetHorizontalFrameSize(), maxWidth)
	return style.Width(w).Render(content)
}

// Initials returns up to two upper-case initials of name.
func Initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		b.WriteString(strings.ToUpper(string([]rune(word)[0])))
	}
	out := []rune(b.String())
	if len(out) > 2 {
		out = out[:2]
	}
	return string(out)
}
