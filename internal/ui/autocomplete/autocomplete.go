// Package autocomplete is the suggestion dropdown shown under the SQL editor.
package autocomplete

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/bqlab/internal/completion"
	"github.com/sadopc/bqlab/internal/theme"
)

const (
	maxVisible   = 5
	defaultWidth = 48
)

// SelectedMsg is sent when an item is chosen. Word is the text being typed
// that Text replaces.
type SelectedMsg struct {
	Word string
	Text string
}

// Model is the autocomplete dropdown.
type Model struct {
	engine   *completion.Engine
	items    []completion.Item
	selected int
	visible  bool
	word     string
	width    int
}

// New creates a hidden dropdown backed by engine.
func New(engine *completion.Engine) Model {
	return Model{engine: engine, width: defaultWidth}
}

// Update handles navigation while visible.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch k.String() {
	case "up", "ctrl+p":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "ctrl+n":
		if m.selected < len(m.items)-1 {
			m.selected++
		}
	case "enter", "tab":
		if m.selected < len(m.items) {
			sel := SelectedMsg{Word: m.word, Text: m.items[m.selected].Insert}
			m.visible = false
			return m, func() tea.Msg { return sel }
		}
	case "esc":
		m.visible = false
	}
	return m, nil
}

// Handles reports whether k is a key the open dropdown consumes.
func (m Model) Handles(k tea.KeyMsg) bool {
	if !m.visible {
		return false
	}
	switch k.String() {
	case "up", "down", "ctrl+p", "ctrl+n", "enter", "tab", "esc":
		return true
	}
	return false
}

// Trigger computes suggestions for the text before the cursor and shows the
// dropdown when there are any.
func (m *Model) Trigger(before string) {
	if m.engine == nil {
		m.visible = false
		return
	}
	m.items = m.engine.Complete(before)
	m.selected = 0
	m.word = completion.Prefix(before)
	m.visible = len(m.items) > 0
}

// Dismiss hides the dropdown.
func (m *Model) Dismiss() { m.visible = false }

// Visible reports whether the dropdown is shown.
func (m Model) Visible() bool { return m.visible }

// Selected returns the highlighted item.
func (m Model) Selected() (completion.Item, bool) {
	if !m.visible || m.selected >= len(m.items) {
		return completion.Item{}, false
	}
	return m.items[m.selected], true
}

// SetWidth sets the outer width.
func (m *Model) SetWidth(w int) {
	if w > 0 {
		m.width = min(w, defaultWidth)
	}
}

// View renders the dropdown, scrolled to keep the selection visible.
func (m Model) View() string {
	if !m.visible || len(m.items) == 0 {
		return ""
	}
	th := theme.Current
	inner := max(m.width-2, 8)

	offset := 0
	if m.selected >= maxVisible {
		offset = m.selected - maxVisible + 1
	}
	end := min(offset+maxVisible, len(m.items))

	lines := make([]string, 0, end-offset)
	for i := offset; i < end; i++ {
		item := m.items[i]
		label := kindIcon(item.Kind) + " " + item.Label
		if item.Detail != "" {
			label += "  " + item.Detail
		}
		label = fit(label, inner)

		style := th.AutocompleteItem
		if i == m.selected {
			style = th.AutocompleteSelected
		}
		lines = append(lines, style.Render(label))
	}
	return th.AutocompleteBorder.Render(strings.Join(lines, "\n"))
}

// fit truncates or pads s to exactly n runes.
func fit(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		if n <= 3 {
			return string(r[:n])
		}
		return string(r[:n-3]) + "..."
	}
	return s + strings.Repeat(" ", n-len(r))
}

func kindIcon(k completion.Kind) string {
	switch k {
	case completion.KindTable:
		return "T"
	case completion.KindKeyword:
		return "K"
	case completion.KindFunction:
		return "F"
	default:
		return " "
	}
}
