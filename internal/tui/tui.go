// Package tui is an interactive table view over the same connection rows the
// plain renderer prints: filter with /, refresh with r, quit with q.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"

	"github.com/openports/openports/pkg/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")). // White
			Background(lipgloss.Color("#7D56F4")). // Purple
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676")) // Dimmed Gray

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F")). // Soft red
			Bold(true)
)

const footerHelp = "↑/↓ move · / filter · r refresh · q quit"

// Refresher re-lists and re-resolves connections; it returns the rows and the
// number of listing lines that could not be parsed.
type Refresher func() ([]model.Connection, int, error)

type refreshMsg struct {
	conns   []model.Connection
	skipped int
}

type refreshErrMsg struct {
	err error
}

type Model struct {
	table     table.Model
	input     textinput.Model
	conns     []model.Connection
	refresh   Refresher
	status    string
	filtering bool
	width     int
	height    int
	quitting  bool
}

func New(conns []model.Connection, refresh Refresher) Model {
	columns := []table.Column{
		{Title: "User", Width: 10},
		{Title: "Type", Width: 5},
		{Title: "Proto", Width: 6},
		{Title: "Local Address", Width: 24},
		{Title: "Port", Width: 6},
		{Title: "Service", Width: 16},
		{Title: "Process", Width: 20},
		{Title: "PID", Width: 7},
		{Title: "Remote Address", Width: 24},
		{Title: "Port", Width: 6},
		{Title: "State", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(20),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		Bold(true).
		Foreground(lipgloss.Color("#5F5FD7")). // Purple/Blue
		BorderForeground(lipgloss.Color("#585858"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFAF")). // Light Yellow
		Background(lipgloss.Color("#5F00D7")). // Purple
		Bold(false)
	t.SetStyles(s)

	input := textinput.New()
	input.Placeholder = "filter by process, port, or service"
	input.CharLimit = 64

	m := Model{
		table:   t,
		input:   input,
		conns:   conns,
		refresh: refresh,
	}
	m.applyFilter()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(msg.Height - 6)
		return m, nil

	case refreshMsg:
		m.conns = msg.conns
		m.status = fmt.Sprintf("%d connections", len(msg.conns))
		if msg.skipped > 0 {
			m.status += fmt.Sprintf(" (%d lines skipped)", msg.skipped)
		}
		m.applyFilter()
		return m, nil

	case refreshErrMsg:
		m.status = errorStyle.Render(msg.err.Error())
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			switch msg.String() {
			case "esc", "enter":
				m.filtering = false
				m.input.Blur()
			default:
				var cmd tea.Cmd
				m.input, cmd = m.input.Update(msg)
				m.applyFilter()
				return m, cmd
			}
			return m, nil
		}

		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "/":
			m.filtering = true
			m.input.Focus()
			return m, textinput.Blink
		case "r":
			return m, m.doRefresh()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	title := titleStyle.Render("openports")
	status := m.status
	if status == "" {
		status = fmt.Sprintf("%d connections", len(m.conns))
	}

	footer := footerHelp
	if m.filtering {
		footer = "typing filter · Esc/Enter to stop"
	}
	width := m.width
	if width <= 0 {
		width = 100
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title+" "+status,
		m.input.View(),
		m.table.View(),
		footerStyle.Render(wrap.String(footer, width)),
	)
}

func (m Model) doRefresh() tea.Cmd {
	if m.refresh == nil {
		return nil
	}
	return func() tea.Msg {
		conns, skipped, err := m.refresh()
		if err != nil {
			return refreshErrMsg{err: err}
		}
		return refreshMsg{conns: conns, skipped: skipped}
	}
}

func (m *Model) applyFilter() {
	filter := strings.ToLower(strings.TrimSpace(m.input.Value()))
	var rows []table.Row
	for _, c := range m.conns {
		if filter != "" && !matches(c, filter) {
			continue
		}
		rows = append(rows, table.Row{
			c.User,
			c.NetworkType,
			c.Protocol,
			c.LocalAddr,
			strconv.Itoa(c.LocalPort),
			c.Service,
			c.Process,
			c.PID,
			c.RemoteAddr,
			strconv.Itoa(c.RemotePort),
			c.State,
		})
	}
	m.table.SetRows(rows)
}

func matches(c model.Connection, filter string) bool {
	return strings.Contains(strings.ToLower(c.Process), filter) ||
		strings.Contains(strings.ToLower(c.Service), filter) ||
		strings.Contains(c.PID, filter) ||
		strings.Contains(strconv.Itoa(c.LocalPort), filter)
}

// Run blocks until the user quits.
func Run(conns []model.Connection, refresh Refresher) error {
	_, err := tea.NewProgram(New(conns, refresh), tea.WithAltScreen()).Run()
	return err
}
