// Package leftbar renders the table picker bound to the active query editor
// and the developer reset control.
package leftbar

import (
	"encoding/json"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/bqlab/internal/api"
	"github.com/sadopc/bqlab/internal/msg"
	"github.com/sadopc/bqlab/internal/theme"
	"github.com/sadopc/bqlab/internal/ui/asyncselect"
)

// ResetLocation is the exact location query string that shows the reset
// button.
const ResetLocation = "?reset=1"

// NoAccessMessage is the alert raised when the catalog returns no tables.
const NoAccessMessage = "It seems you don't have access to any database"

const (
	placeholder = "Select a table"
	resetLabel  = "⟲ Reset State"
)

// Actions are the store operations the left bar dispatches.
type Actions interface {
	QueryEditorSetDb(qe msg.QueryEditor, dbID string)
	SetDatabases(records []api.Database)
	AddAlert(alert msg.Alert)
	ResetState()
}

// NopActions ignores every action.
type NopActions struct{}

func (NopActions) QueryEditorSetDb(msg.QueryEditor, string) {}
func (NopActions) SetDatabases([]api.Database)              {}
func (NopActions) AddAlert(msg.Alert)                       {}
func (NopActions) ResetState()                              {}

type focusTarget int

const (
	focusSelector focusTarget = iota
	focusReset
)

// Config holds the inputs of a left bar.
type Config struct {
	QueryEditor msg.QueryEditor
	Tables      []msg.Table
	Actions     Actions
	// Location is the location query string, e.g. "?reset=1".
	Location string
	Fetcher  asyncselect.Fetcher
	Timeout  time.Duration
}

// Model is the left bar.
type Model struct {
	queryEditor msg.QueryEditor
	tables      []msg.Table
	actions     Actions
	location    string

	// tableName is the label of the last selected table.
	tableName string

	selector asyncselect.Model
	focus    focusTarget
	focused  bool
	scroll   int
	width    int
	height   int
}

// New creates a left bar.
func New(cfg Config) Model {
	m := Model{
		queryEditor: cfg.QueryEditor,
		tables:      cfg.Tables,
		actions:     cfg.Actions,
		location:    cfg.Location,
	}
	if m.actions == nil {
		m.actions = NopActions{}
	}
	if m.tables == nil {
		m.tables = []msg.Table{}
	}
	m.selector = asyncselect.New(asyncselect.Config{
		Endpoint:      api.ReadPath,
		Fetcher:       cfg.Fetcher,
		Mutator:       m.mutator(),
		ValueRenderer: func(o asyncselect.Option) string { return "Table: " + o.Label },
		Placeholder:   placeholder,
		Value:         cfg.QueryEditor.DbID,
		Timeout:       cfg.Timeout,
	})
	return m
}

// Fetch (re)loads the table options.
func (m *Model) Fetch() tea.Cmd {
	return m.selector.Fetch()
}

// mutator decodes a read response and hands it to TransformFetchResult. It
// captures the current actions, so it is rebuilt whenever they change.
func (m Model) mutator() asyncselect.Mutator {
	return func(raw json.RawMessage) ([]asyncselect.Option, error) {
		payload, err := api.DecodeRead(raw)
		if err != nil {
			return nil, err
		}
		return m.TransformFetchResult(payload), nil
	}
}

// HandleSelectionChange binds the selected table to the query editor. A nil
// option is ignored.
func (m *Model) HandleSelectionChange(option *asyncselect.Option) {
	if option == nil {
		return
	}
	m.actions.QueryEditorSetDb(m.queryEditor, option.Value)
	m.tableName = option.Label
}

// TransformFetchResult maps catalog records to selector options, publishes
// the records to the store and raises an alert when there are none.
func (m Model) TransformFetchResult(payload api.ReadResponse) []asyncselect.Option {
	options := make([]asyncselect.Option, 0, len(payload.Result))
	for _, db := range payload.Result {
		options = append(options, asyncselect.Option{Value: db.ID.String(), Label: db.Name})
	}

	m.actions.SetDatabases(payload.Result)
	if len(payload.Result) == 0 {
		m.actions.AddAlert(msg.Alert{
			BsStyle: msg.AlertDanger,
			Msg:     NoAccessMessage,
		})
	}
	return options
}

// ResetState asks the store to drop all state.
func (m Model) ResetState() {
	m.actions.ResetState()
}

// ShowReset reports whether the reset button is rendered.
func (m Model) ShowReset() bool {
	return m.location == ResetLocation
}

// Update handles selector results and keys while focused.
func (m Model) Update(message tea.Msg) (Model, tea.Cmd) {
	switch message := message.(type) {
	case asyncselect.ChangeMsg:
		if message.ID != m.selector.ID() {
			return m, nil
		}
		if message.Option == nil {
			// Clearing the selector leaves the editor's database as is.
			return m, nil
		}
		m.HandleSelectionChange(message.Option)
		return m, stateChanged

	case msg.RefetchMsg:
		cmd := m.Fetch()
		return m, cmd

	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		return m.updateKeys(message)
	}

	var cmd tea.Cmd
	m.selector, cmd = m.selector.Update(message)
	return m, cmd
}

func (m Model) updateKeys(k tea.KeyMsg) (Model, tea.Cmd) {
	if m.focus == focusReset {
		switch k.String() {
		case "enter", " ":
			m.ResetState()
			return m, stateChanged
		case "up", "ctrl+k", "esc":
			m.setFocus(focusSelector)
		}
		return m, nil
	}

	if !m.selector.IsOpen() && m.ShowReset() {
		switch k.String() {
		case "down", "ctrl+j":
			m.setFocus(focusReset)
			return m, nil
		}
	}
	if !m.selector.IsOpen() {
		switch k.String() {
		case "pgdown":
			m.scroll++
			return m, nil
		case "pgup":
			if m.scroll > 0 {
				m.scroll--
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.selector, cmd = m.selector.Update(k)
	return m, cmd
}

func stateChanged() tea.Msg { return msg.StateChangedMsg{} }

func (m *Model) setFocus(f focusTarget) {
	if f == focusReset && !m.ShowReset() {
		f = focusSelector
	}
	m.focus = f
	if m.focused && f == focusSelector {
		m.selector.Focus()
	} else {
		m.selector.Blur()
	}
}

// SetQueryEditor replaces the bound query editor and syncs the selector.
func (m *Model) SetQueryEditor(qe msg.QueryEditor) {
	if qe.ID != m.queryEditor.ID {
		m.tableName = ""
	}
	m.queryEditor = qe
	m.selector.SetValue(qe.DbID)
}

// SetTables replaces the table descriptors shown under the selector.
func (m *Model) SetTables(tables []msg.Table) {
	if tables == nil {
		tables = []msg.Table{}
	}
	m.tables = tables
}

// SetActions replaces the action dispatcher. Nil means NopActions.
func (m *Model) SetActions(a Actions) {
	if a == nil {
		a = NopActions{}
	}
	m.actions = a
	m.selector.SetMutator(m.mutator())
}

// SetLocation replaces the location query string.
func (m *Model) SetLocation(loc string) {
	m.location = loc
	if !m.ShowReset() && m.focus == focusReset {
		m.setFocus(focusSelector)
	}
}

// QueryEditor returns the bound query editor.
func (m Model) QueryEditor() msg.QueryEditor { return m.queryEditor }

// TableName returns the label of the last selected table.
func (m Model) TableName() string { return m.tableName }

// Selector exposes the embedded selector.
func (m Model) Selector() asyncselect.Model { return m.selector }

// ResetFocused reports whether the reset button has keyboard focus.
func (m Model) ResetFocused() bool { return m.focused && m.focus == focusReset }

// Focus gives the left bar keyboard focus.
func (m *Model) Focus() {
	m.focused = true
	m.setFocus(m.focus)
}

// Blur removes keyboard focus.
func (m *Model) Blur() {
	m.focused = false
	m.selector.Blur()
}

// Focused reports whether the left bar has keyboard focus.
func (m Model) Focused() bool { return m.focused }

// SetSize sets the outer dimensions including the border.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.selector.SetWidth(w - 4)
}

// View renders the left bar.
func (m Model) View() string {
	th := theme.Current

	innerW := max(m.width-2, 10)
	innerH := max(m.height-2, 3)

	var lines []string
	lines = append(lines, th.LeftBarTitle.Render("Tables"))
	lines = append(lines, strings.Split(m.selector.View(), "\n")...)

	if len(m.tables) > 0 {
		lines = append(lines, "", th.LeftBarSection.Render("Opened"))
		for _, t := range m.tables {
			lines = append(lines, th.LeftBarTable.Render("  ▪ "+truncate(t.Name, innerW-4)))
		}
	}

	if m.ShowReset() {
		style := th.ButtonDanger
		if m.ResetFocused() {
			style = th.ButtonDangerFocus
		}
		lines = append(lines, "")
		lines = append(lines, strings.Split(style.Render(resetLabel), "\n")...)
	}

	// Scroll the container when the content is taller than the pane.
	maxScroll := max(len(lines)-innerH, 0)
	scroll := min(m.scroll, maxScroll)
	lines = lines[scroll:]
	if len(lines) > innerH {
		lines = lines[:innerH]
	}

	border := th.UnfocusedBorder
	if m.focused {
		border = th.FocusedBorder
	}
	return border.
		Width(innerW).
		Height(innerH).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
