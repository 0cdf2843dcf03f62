// Package alerts renders the store's pending alerts as a stack of banners,
// newest on top.
package alerts

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/bqlab/internal/msg"
	"github.com/sadopc/bqlab/internal/theme"
)

// DefaultMaxShown is how many banners fit before the rest are summarised.
const DefaultMaxShown = 3

// Model is the alert stack.
type Model struct {
	alerts   []msg.Alert
	width    int
	maxShown int
}

// New creates an empty alert stack.
func New() Model {
	return Model{maxShown: DefaultMaxShown}
}

// SetAlerts replaces the alerts, given oldest first as the store keeps them.
func (m *Model) SetAlerts(alerts []msg.Alert) {
	m.alerts = append(m.alerts[:0], alerts...)
}

// SetWidth sets the rendered width.
func (m *Model) SetWidth(w int) {
	m.width = w
}

// Len returns the number of pending alerts.
func (m Model) Len() int {
	return len(m.alerts)
}

// Newest returns the most recent alert.
func (m Model) Newest() (msg.Alert, bool) {
	if len(m.alerts) == 0 {
		return msg.Alert{}, false
	}
	return m.alerts[len(m.alerts)-1], true
}

// Expired returns the ids of alerts older than ttl at now. Danger alerts
// never expire; they stay until dismissed.
func (m Model) Expired(now time.Time, ttl time.Duration) []int {
	var ids []int
	for _, a := range m.alerts {
		if a.BsStyle != msg.AlertDanger && now.Sub(a.At) >= ttl {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// Height returns the number of lines View renders.
func (m Model) Height() int {
	if len(m.alerts) == 0 {
		return 0
	}
	return lipgloss.Height(m.View())
}

// View renders the banners, newest first.
func (m Model) View() string {
	if len(m.alerts) == 0 || m.width == 0 {
		return ""
	}
	th := theme.Current

	var rows []string
	shown := 0
	for i := len(m.alerts) - 1; i >= 0 && shown < m.maxShown; i-- {
		a := m.alerts[i]
		text := a.Msg
		if shown == 0 {
			text += "  (ctrl+x to dismiss)"
		}
		rows = append(rows, th.Alert(a.BsStyle).Width(m.width).Render(text))
		shown++
	}
	if rest := len(m.alerts) - shown; rest > 0 {
		rows = append(rows, th.MutedText.Render(" "+plural(rest)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func plural(n int) string {
	if n == 1 {
		return "+1 more alert"
	}
	return fmt.Sprintf("+%d more alerts", n)
}
