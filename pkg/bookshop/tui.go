package bookshop

import (
	"context"
	"fmt"
	"strings"

	bspinner "github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/go-go-golems/bookworm/pkg/conversation"
	"github.com/go-go-golems/bookworm/pkg/widget"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	routeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	tableHead      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	userMsgStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("118")).Bold(true)
	panelStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	toggleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	errorTextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

const chatPanelWidth = 56

type chatMessage struct {
	role conversation.Role
	text string
}

type submitDoneMsg struct{}

// Model is the demo host: a two-route bookshop shell with the assistant
// widget riding along, all in one bubbletea program.
type Model struct {
	shell   *Shell
	w       *widget.Widget
	surface *TeaSurface

	input    textinput.Model
	spin     bspinner.Model
	renderer *glamour.TermRenderer

	messages      []chatMessage
	busy          bool
	toggleVisible bool
	toggleWaiting bool
	panelOpen     bool

	width  int
	height int
}

func NewModel(shell *Shell, w *widget.Widget, surface *TeaSurface) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask anything about the books..."
	ti.CharLimit = 256
	ti.Width = chatPanelWidth - 6

	sp := bspinner.New()
	sp.Spinner = bspinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)

	// Assistant replies are markdown; render failures fall back to raw text.
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(chatPanelWidth-6),
	)
	if err != nil {
		renderer = nil
	}

	return Model{
		shell:    shell,
		w:        w,
		surface:  surface,
		input:    ti,
		spin:     sp,
		renderer: renderer,
	}
}

func waitForSurfaceEvent(ch <-chan SurfaceEvent) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return e
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, textinput.Blink, waitForSurfaceEvent(m.surface.Events()))
}

func (m Model) submitCmd(text string) tea.Cmd {
	w := m.w
	return func() tea.Msg {
		w.Submit(context.Background(), text)
		return submitDoneMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case SurfaceEvent:
		m = m.applySurfaceEvent(msg)
		return m, waitForSurfaceEvent(m.surface.Events())

	case submitDoneMsg:
		return m, nil

	case bspinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) applySurfaceEvent(e SurfaceEvent) Model {
	switch e := e.(type) {
	case MessageEvent:
		m.messages = append(m.messages, chatMessage{role: e.Role, text: e.Text})
	case BusyEvent:
		m.busy = e.Busy
	case ToggleVisibleEvent:
		m.toggleVisible = e.Visible
		if !e.Visible {
			m.panelOpen = false
		}
	case ToggleWaitingEvent:
		m.toggleWaiting = e.Waiting
	case PanelCloseEvent:
		m.panelOpen = false
	}
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.panelOpen {
		switch msg.Type {
		case tea.KeyEsc:
			m.panelOpen = false
			m.input.Blur()
			return m, nil
		case tea.KeyEnter:
			text := m.input.Value()
			m.input.SetValue("")
			if m.busy {
				return m, nil
			}
			return m, m.submitCmd(text)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "b":
		m.shell.Navigate(BooksRoute)
	case "h":
		m.shell.Navigate(HomeRoute)
	case "c":
		if m.toggleVisible {
			m.panelOpen = true
			m.input.Focus()
			return m, textinput.Blink
		}
	}
	return m, nil
}

func (m Model) View() string {
	left := m.viewMain()
	if !m.panelOpen {
		return left
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, m.viewPanel())
}

func (m Model) viewMain() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Bookworm"))
	b.WriteString(routeStyle.Render(fmt.Sprintf("  route: %s", m.shell.CurrentRoute())))
	b.WriteString("\n\n")

	switch m.shell.CurrentRoute() {
	case BooksRoute:
		b.WriteString(m.viewBooks())
	default:
		b.WriteString(dimStyle.Render("Welcome. Press 'b' to browse books, 'q' to quit."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.toggleVisible && m.toggleWaiting:
		b.WriteString(toggleStyle.Render("[chat warming up...]"))
	case m.toggleVisible:
		b.WriteString(toggleStyle.Render("[c] chat with the assistant"))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("b: books  h: home  q: quit"))
	return b.String()
}

func (m Model) viewBooks() string {
	view := m.shell.View()
	if view == nil {
		return dimStyle.Render("Loading book list...")
	}
	rows := view.Binding.VisibleRows()
	if len(rows) == 0 {
		return dimStyle.Render("No books match the current filter.")
	}

	var b strings.Builder
	b.WriteString(tableHead.Render(fmt.Sprintf("%-40s %-24s %-16s %5s", "Title", "Author", "Genre", "Stock")))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("%-40s %-24s %-16s %5d\n", truncate(row.Title, 40), truncate(row.Author, 24), truncate(row.Genre, 16), row.Stock))
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d book(s) shown", len(rows))))
	return b.String()
}

func (m Model) viewPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Assistant"))
	b.WriteString("\n")
	for _, msg := range m.messages {
		if msg.role == conversation.RoleUser {
			b.WriteString(userMsgStyle.Render("you> "))
			b.WriteString(msg.text)
			b.WriteString("\n")
			continue
		}
		b.WriteString(m.renderAssistant(msg.text))
		b.WriteString("\n")
	}
	if m.busy {
		b.WriteString(m.spin.View())
		b.WriteString(dimStyle.Render(" Working..."))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter: send  esc: close"))
	return panelStyle.Width(chatPanelWidth).Render(b.String())
}

func (m Model) renderAssistant(text string) string {
	if m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return errorTextStyle.Render(text)
	}
	return strings.TrimRight(out, "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
