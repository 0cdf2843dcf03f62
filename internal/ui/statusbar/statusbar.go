package statusbar

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	appmsg "github.com/sadopc/bqlab/internal/msg"
	"github.com/sadopc/bqlab/internal/theme"
)

// clearAfter is how long a status message stays before the hints return.
var clearAfter = 5 * time.Second

// ClearStatusMsg reverts the status bar to key hints. Gen ties it to the
// message that scheduled it so a stale timer cannot clear a newer message.
type ClearStatusMsg struct {
	Gen int
}

// Model is the status bar component.
type Model struct {
	width    int
	endpoint string
	table    string
	editors  int
	message  string
	isError  bool
	gen      int
	line     int
	col      int
}

// New creates a status bar for the catalog at endpoint.
func New(endpoint string) Model {
	return Model{endpoint: endpoint}
}

// Init returns no initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case appmsg.StatusMsg:
		m.message = msg.Text
		m.isError = msg.IsError
		m.gen++
		gen := m.gen
		return m, tea.Tick(clearAfter, func(time.Time) tea.Msg {
			return ClearStatusMsg{Gen: gen}
		})

	case ClearStatusMsg:
		if msg.Gen == m.gen {
			m.message = ""
			m.isError = false
		}
	}
	return m, nil
}

// View renders the status bar.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	th := theme.Current

	left := th.StatusBarKey.Render(" " + hostOf(m.endpoint) + " ")

	var center string
	switch {
	case m.message != "" && m.isError:
		center = th.StatusBarError.Render(" " + truncate(m.message, m.width/2) + " ")
	case m.message != "":
		center = th.StatusBarSuccess.Render(" " + truncate(m.message, m.width/2) + " ")
	default:
		key, sep := th.StatusBarValue, th.StatusBar
		center = key.Render("Tab") + sep.Render(" Pane ") +
			key.Render("Ctrl+T") + sep.Render(" New ") +
			key.Render("Ctrl+R") + sep.Render(" Reload ") +
			key.Render("F1") + sep.Render(" Help ") +
			key.Render("Ctrl+Q") + sep.Render(" Quit ")
	}

	table := m.table
	if table == "" {
		table = "no table"
	}
	right := th.StatusBarKey.Render(" " + table + " ")
	if m.editors > 1 {
		right += th.StatusBarValue.Render(fmt.Sprintf(" %d editors ", m.editors))
	}
	if m.line > 0 {
		right += th.StatusBarValue.Render(fmt.Sprintf(" %d:%d ", m.line, m.col))
	}

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(center)-lipgloss.Width(right), 0)
	leftGap := gap / 2

	bar := left +
		th.StatusBar.Render(strings.Repeat(" ", leftGap)) +
		center +
		th.StatusBar.Render(strings.Repeat(" ", gap-leftGap)) +
		right

	return th.StatusBar.Width(m.width).Render(bar)
}

// SetSize sets the status bar width.
func (m *Model) SetSize(width int) {
	m.width = width
}

// SetTable sets the selected table label. Empty means none is selected.
func (m *Model) SetTable(name string) {
	m.table = name
}

// SetEditors sets the number of open query editors.
func (m *Model) SetEditors(n int) {
	m.editors = n
}

// SetCursor updates the cursor position display.
func (m *Model) SetCursor(line, col int) {
	m.line = line
	m.col = col
}

// Message returns the status text currently shown.
func (m Model) Message() string {
	return m.message
}

// hostOf shortens a catalog URL to its host for display.
func hostOf(endpoint string) string {
	if endpoint == "" {
		return "offline"
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint
	}
	return u.Host
}

func truncate(s string, maxLen int) string {
	if maxLen <= 3 {
		return s
	}
	r := []rune(s)
	if len(r) > maxLen {
		return string(r[:maxLen-3]) + "..."
	}
	return s
}
