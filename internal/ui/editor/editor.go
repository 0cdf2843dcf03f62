package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/bqlab/internal/completion"
	"github.com/sadopc/bqlab/internal/msg"
	"github.com/sadopc/bqlab/internal/theme"
)

const placeholder = "Write a query against the selected table..."

// Model wraps a textarea bound to one query editor. Focused, the textarea
// handles editing; blurred, the SQL is rendered highlighted with line
// numbers.
type Model struct {
	textarea    textarea.Model
	highlighter *Highlighter
	editorID    string
	width       int
	height      int
	focused     bool
	modified    bool
}

// New creates an unbound editor.
func New() Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = true
	ta.CharLimit = 0

	th := theme.Current
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Prompt = th.EditorLineNumber
	ta.FocusedStyle.Text = lipgloss.NewStyle()
	ta.BlurredStyle.Prompt = th.EditorLineNumber
	ta.BlurredStyle.Text = lipgloss.NewStyle()
	ta.Blur()

	return Model{
		textarea:    ta,
		highlighter: NewHighlighter(),
	}
}

// Init returns the cursor blink command.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update forwards input to the textarea while focused.
func (m Model) Update(message tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	prev := m.textarea.Value()
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(message)
	if m.textarea.Value() != prev {
		m.modified = true
	}
	return m, cmd
}

// Bind loads qe into the editor. Rebinding the same editor keeps the text
// being typed; switching editors replaces it and clears the modified flag.
func (m *Model) Bind(qe msg.QueryEditor) {
	if qe.ID == m.editorID {
		return
	}
	m.editorID = qe.ID
	m.textarea.SetValue(qe.SQL)
	m.modified = false
}

// EditorID returns the id of the bound query editor.
func (m Model) EditorID() string {
	return m.editorID
}

// View renders the editor inside a border.
func (m Model) View() string {
	th := theme.Current

	border := th.UnfocusedBorder
	if m.focused {
		border = th.FocusedBorder
	}

	innerW := max(m.width-2, 1)
	innerH := max(m.height-2, 1)

	var content string
	if m.focused {
		m.textarea.SetWidth(innerW)
		m.textarea.SetHeight(innerH)
		content = m.textarea.View()
	} else {
		content = m.renderHighlighted(th, innerH)
	}

	return border.
		Width(innerW).
		Height(innerH).
		Render(content)
}

func (m Model) renderHighlighted(th *theme.Theme, height int) string {
	raw := m.textarea.Value()
	if raw == "" {
		return th.MutedText.Render(m.textarea.Placeholder)
	}

	lines := strings.Split(m.highlighter.Highlight(raw, th), "\n")
	if len(lines) > height {
		lines = lines[:height]
	}

	gutter := max(len(fmt.Sprint(strings.Count(raw, "\n")+1)), 2)
	for i, line := range lines {
		lines[i] = th.EditorLineNumber.Render(fmt.Sprintf("%*d ", gutter, i+1)) + line
	}
	return strings.Join(lines, "\n")
}

// Value returns the editor text.
func (m Model) Value() string {
	return m.textarea.Value()
}

// SetValue replaces the editor text.
func (m *Model) SetValue(s string) {
	m.textarea.SetValue(s)
}

// SetSize sets the outer dimensions including the border.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.textarea.SetWidth(max(w-2, 1))
	m.textarea.SetHeight(max(h-2, 1))
}

// Focus gives input focus to the editor.
func (m *Model) Focus() {
	m.focused = true
	m.textarea.Focus()
}

// Blur removes input focus.
func (m *Model) Blur() {
	m.focused = false
	m.textarea.Blur()
}

// Focused reports whether the editor has input focus.
func (m Model) Focused() bool {
	return m.focused
}

// Modified reports whether the text changed since it was bound or last
// marked saved.
func (m Model) Modified() bool {
	return m.modified
}

// ResetModified marks the text as saved.
func (m *Model) ResetModified() {
	m.modified = false
}

// InsertTable appends a backtick-quoted table reference, separated from the
// existing text by a space.
func (m *Model) InsertTable(name string) {
	ref := completion.QuoteTable(name)
	current := m.textarea.Value()
	if current != "" && !strings.ContainsAny(current[len(current)-1:], " \n\t") {
		ref = " " + ref
	}
	m.textarea.SetValue(current + ref)
	m.modified = true
}

// ReplaceWord swaps the word being typed at the end of the text for
// replacement. The cursor is taken to be at the end of the text.
func (m *Model) ReplaceWord(word, replacement string) {
	current := m.textarea.Value()
	m.textarea.SetValue(strings.TrimSuffix(current, word) + replacement)
	m.modified = true
}
