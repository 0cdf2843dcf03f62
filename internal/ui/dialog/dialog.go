// Package dialog renders a modal prompt centered over the main view.
package dialog

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/sadopc/bqlab/internal/theme"
)

const defaultMaxWidth = 60

// Button is one dialog choice. Pressing it hides the dialog and emits Msg;
// a nil Msg only dismisses.
type Button struct {
	Label string
	Msg   tea.Msg
}

// Model is a modal dialog.
type Model struct {
	title   string
	body    string
	buttons []Button
	// initial is the button selected when the dialog is shown.
	initial  int
	active   int
	visible  bool
	width    int
	height   int
	maxWidth int
}

// New creates a hidden dialog.
func New(title, body string, buttons ...Button) Model {
	return Model{
		title:    title,
		body:     body,
		buttons:  buttons,
		maxWidth: defaultMaxWidth,
	}
}

// Confirm creates a two-button dialog: confirmLabel emits onConfirm, Cancel
// dismisses. Cancel is selected initially.
func Confirm(title, body, confirmLabel string, onConfirm tea.Msg) Model {
	m := New(title, body,
		Button{Label: confirmLabel, Msg: onConfirm},
		Button{Label: "Cancel"},
	)
	m.initial = 1
	return m
}

// Update handles keys while the dialog is visible.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch k.String() {
	case "left", "h", "shift+tab":
		if m.active > 0 {
			m.active--
		}
	case "right", "l", "tab":
		if m.active < len(m.buttons)-1 {
			m.active++
		}
	case "y":
		return m.press(0)
	case "n", "esc":
		m.visible = false
	case "enter", " ":
		return m.press(m.active)
	}
	return m, nil
}

func (m Model) press(i int) (Model, tea.Cmd) {
	m.visible = false
	if i < 0 || i >= len(m.buttons) || m.buttons[i].Msg == nil {
		return m, nil
	}
	out := m.buttons[i].Msg
	return m, func() tea.Msg { return out }
}

// View renders the dialog box, or "" when hidden.
func (m Model) View() string {
	if !m.visible {
		return ""
	}
	th := theme.Current
	inner := max(m.maxWidth-6, 10)

	btns := make([]string, 0, len(m.buttons)*2)
	for i, b := range m.buttons {
		style := th.DialogButton
		if i == m.active {
			style = th.DialogButtonActive
		}
		if i > 0 {
			btns = append(btns, "  ")
		}
		btns = append(btns, style.Render(" "+b.Label+" "))
	}
	row := lipgloss.NewStyle().Width(inner).Align(lipgloss.Center).
		Render(lipgloss.JoinHorizontal(lipgloss.Center, btns...))

	content := lipgloss.JoinVertical(lipgloss.Left,
		th.DialogTitle.Render(m.title),
		"",
		lipgloss.NewStyle().Width(inner).Render(m.body),
		"",
		row,
	)
	return th.DialogBorder.Render(content)
}

// Show makes the dialog visible with the initial button selected.
func (m *Model) Show() {
	m.visible = true
	m.active = m.initial
}

// Hide makes the dialog invisible.
func (m *Model) Hide() { m.visible = false }

// Visible reports whether the dialog is shown.
func (m Model) Visible() bool { return m.visible }

// Active returns the label of the selected button.
func (m Model) Active() string {
	if m.active < 0 || m.active >= len(m.buttons) {
		return ""
	}
	return m.buttons[m.active].Label
}

// SetSize sets the area the dialog is centered in.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.maxWidth = min(defaultMaxWidth, max(width-4, 20))
}

// Overlay draws the dialog centered over background.
func (m Model) Overlay(background string) string {
	if !m.visible {
		return background
	}

	box := strings.Split(m.View(), "\n")
	bg := strings.Split(background, "\n")
	boxW := lipgloss.Width(m.View())

	startY := max((len(bg)-len(box))/2, 0)
	startX := max((m.width-boxW)/2, 0)

	for i, line := range box {
		y := startY + i
		if y >= len(bg) {
			break
		}
		row := bg[y]
		prefix := ansi.Truncate(row, startX, "")
		if w := ansi.StringWidth(prefix); w < startX {
			prefix += strings.Repeat(" ", startX-w)
		}
		suffix := ansi.TruncateLeft(row, startX+ansi.StringWidth(line), "")
		bg[y] = prefix + line + suffix
	}
	return strings.Join(bg, "\n")
}
