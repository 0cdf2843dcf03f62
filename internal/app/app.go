// Package app is the root Bubble Tea model. It lays out the left bar, the
// editor tabs, alerts and status bar, and keeps them in sync with the store.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/bqlab/internal/completion"
	"github.com/sadopc/bqlab/internal/config"
	appmsg "github.com/sadopc/bqlab/internal/msg"
	"github.com/sadopc/bqlab/internal/store"
	"github.com/sadopc/bqlab/internal/theme"
	"github.com/sadopc/bqlab/internal/ui/alerts"
	"github.com/sadopc/bqlab/internal/ui/asyncselect"
	"github.com/sadopc/bqlab/internal/ui/autocomplete"
	"github.com/sadopc/bqlab/internal/ui/dialog"
	"github.com/sadopc/bqlab/internal/ui/editor"
	"github.com/sadopc/bqlab/internal/ui/leftbar"
	"github.com/sadopc/bqlab/internal/ui/statusbar"
	"github.com/sadopc/bqlab/internal/ui/tabs"
)

const (
	defaultLeftBarWidth = 36
	// alertTTL is how long non-danger alerts stay before they expire.
	alertTTL = 8 * time.Second
)

// alertTickMsg drives alert expiry.
type alertTickMsg time.Time

// Options configures the root model.
type Options struct {
	Config *config.Config
	Store  *store.Store
	// Fetcher loads the table options; nil leaves the picker empty.
	Fetcher asyncselect.Fetcher
	// Location is the location query string ("?reset=1" shows the reset
	// button).
	Location string
	Logger   *slog.Logger
}

// Model is the root application model.
type Model struct {
	// Layout
	width        int
	height       int
	leftBarWidth int
	showLeftBar  bool

	focusedPane appmsg.Pane

	// Components
	leftbar   leftbar.Model
	tabs      tabs.Model
	editor    editor.Model
	alerts    alerts.Model
	statusbar statusbar.Model
	help      help.Model
	confirm   dialog.Model
	autocomp  autocomplete.Model

	completer *completion.Engine

	store  *store.Store
	logger *slog.Logger
	keyMap KeyMap
	now    func() time.Time

	showHelp bool
	quitting bool
}

// New creates the root model. Options.Store is required.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if t := theme.Get(cfg.Theme); t != nil {
		theme.Current = t
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	qe := opts.Store.ActiveEditor()
	engine := completion.NewEngine()
	h := help.New()
	h.ShowAll = true

	m := Model{
		leftBarWidth: defaultLeftBarWidth,
		showLeftBar:  true,
		focusedPane:  appmsg.PaneLeftBar,

		leftbar: leftbar.New(leftbar.Config{
			QueryEditor: qe,
			Tables:      opts.Store.Tables(qe.ID),
			Actions:     opts.Store,
			Location:    opts.Location,
			Fetcher:     opts.Fetcher,
			Timeout:     cfg.Timeout(),
		}),
		tabs:      tabs.New(),
		editor:    editor.New(),
		alerts:    alerts.New(),
		statusbar: statusbar.New(cfg.Endpoint),
		help:      h,
		autocomp:  autocomplete.New(engine),

		completer: engine,
		store:     opts.Store,
		logger:    logger,
		keyMap:    DefaultKeyMap(),
		now:       time.Now,
	}
	m.leftbar.Focus()
	m.sync()
	return m
}

// Init starts the first table fetch, the cursor blink and alert expiry.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return appmsg.RefetchMsg{} },
		m.editor.Init(),
		alertTick(),
	)
}

func alertTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return alertTickMsg(t) })
}

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		if m.confirm.Visible() && !key.Matches(msg, m.keyMap.Quit) {
			var cmd tea.Cmd
			m.confirm, cmd = m.confirm.Update(msg)
			return m, cmd
		}
		if m.showHelp {
			if key.Matches(msg, m.keyMap.Help) || msg.String() == "esc" || msg.String() == "q" {
				m.showHelp = false
			}
			return m, nil
		}
		if m.focusedPane == appmsg.PaneEditor && m.autocomp.Handles(msg) {
			var cmd tea.Cmd
			m.autocomp, cmd = m.autocomp.Update(msg)
			return m, cmd
		}
		if cmd, handled := m.handleGlobalKeys(msg); handled {
			return m, cmd
		}
		return m, m.handleFocusedPaneKey(msg)

	case appmsg.StateChangedMsg:
		m.sync()
		return m, nil

	case appmsg.NewEditorMsg:
		m.saveEditor()
		qe := m.store.AddQueryEditor(msg.SQL)
		m.logger.Debug("editor added", "editor", qe.ID)
		m.sync()
		m.setFocus(appmsg.PaneEditor)
		return m, nil

	case appmsg.CloseEditorMsg:
		m.autocomp.Dismiss()
		if err := m.store.RemoveQueryEditor(msg.ID); err != nil {
			return m, m.status(err.Error(), !errors.Is(err, store.ErrLastEditor))
		}
		m.sync()
		return m, nil

	case appmsg.SwitchEditorMsg:
		m.autocomp.Dismiss()
		m.saveEditor()
		if err := m.store.SetActive(msg.ID); err != nil {
			m.logger.Warn("switch editor", "editor", msg.ID, "error", err)
		}
		m.sync()
		return m, nil

	case autocomplete.SelectedMsg:
		m.editor.ReplaceWord(msg.Word, msg.Text)
		m.tabs.SetModified(m.editor.EditorID(), m.editor.Modified())
		return m, nil

	case appmsg.StatusMsg, statusbar.ClearStatusMsg:
		var cmd tea.Cmd
		m.statusbar, cmd = m.statusbar.Update(msg)
		return m, cmd

	case alertTickMsg:
		expired := m.alerts.Expired(time.Time(msg), alertTTL)
		for _, id := range expired {
			m.store.RemoveAlert(id)
		}
		if len(expired) > 0 {
			m.sync()
		}
		return m, alertTick()

	case asyncselect.LoadedMsg, asyncselect.LoadErrMsg:
		var cmd tea.Cmd
		m.leftbar, cmd = m.leftbar.Update(msg)
		// The fetch result may have published databases and alerts.
		m.sync()
		cmds = append(cmds, cmd)
		if err := m.leftbar.Selector().Err(); err != nil {
			m.logger.Error("load tables", "endpoint", m.leftbar.Selector().Endpoint(), "error", err)
			cmds = append(cmds, m.status("Could not load tables: "+err.Error(), true))
		}
		return m, tea.Batch(cmds...)
	}

	// Everything else (spinner ticks, selector changes, refetches, cursor
	// blinks) goes to both panes; each ignores what is not its own.
	var cmd tea.Cmd
	m.leftbar, cmd = m.leftbar.Update(msg)
	cmds = append(cmds, cmd)
	m.editor, cmd = m.editor.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// handleGlobalKeys runs application shortcuts. handled is false when the key
// belongs to the focused pane.
func (m *Model) handleGlobalKeys(msg tea.KeyMsg) (cmd tea.Cmd, handled bool) {
	// An open dropdown owns navigation and selection keys.
	selecting := m.focusedPane == appmsg.PaneLeftBar && m.leftbar.Selector().IsOpen()

	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.saveEditor()
		m.quitting = true
		return tea.Quit, true

	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = true
		return nil, true

	case key.Matches(msg, m.keyMap.FocusNext) && !selecting:
		m.cycleFocus(1)
		return nil, true

	case key.Matches(msg, m.keyMap.FocusPrev) && !selecting:
		m.cycleFocus(-1)
		return nil, true

	case key.Matches(msg, m.keyMap.FocusLeftBar):
		if !m.showLeftBar {
			m.showLeftBar = true
			m.updateLayout()
		}
		m.setFocus(appmsg.PaneLeftBar)
		return nil, true

	case key.Matches(msg, m.keyMap.FocusEditor):
		m.setFocus(appmsg.PaneEditor)
		return nil, true

	case key.Matches(msg, m.keyMap.ToggleLeftBar):
		m.showLeftBar = !m.showLeftBar
		if !m.showLeftBar && m.focusedPane == appmsg.PaneLeftBar {
			m.setFocus(appmsg.PaneEditor)
		}
		m.updateLayout()
		return nil, true

	case key.Matches(msg, m.keyMap.Refetch):
		return func() tea.Msg { return appmsg.RefetchMsg{} }, true

	case key.Matches(msg, m.keyMap.NewEditor):
		return func() tea.Msg { return appmsg.NewEditorMsg{} }, true

	case key.Matches(msg, m.keyMap.CloseEditor):
		return m.closeEditor(), true

	case key.Matches(msg, m.keyMap.NextEditor) && !selecting:
		return m.tabs.NextTab(), true

	case key.Matches(msg, m.keyMap.PrevEditor) && !selecting:
		return m.tabs.PrevTab(), true

	case key.Matches(msg, m.keyMap.DismissAlert):
		if a, ok := m.alerts.Newest(); ok {
			m.store.RemoveAlert(a.ID)
			m.sync()
		}
		return nil, true

	case key.Matches(msg, m.keyMap.InsertTable) && m.focusedPane == appmsg.PaneEditor:
		name := m.activeTableName()
		if name == "" {
			return m.status("Select a table first", false), true
		}
		m.editor.InsertTable(name)
		return nil, true
	}
	return nil, false
}

// closeEditor closes the active editor, asking first when it holds SQL.
func (m *Model) closeEditor() tea.Cmd {
	m.saveEditor()
	qe := m.store.ActiveEditor()
	closeMsg := appmsg.CloseEditorMsg{ID: qe.ID}
	if strings.TrimSpace(qe.SQL) == "" || len(m.store.Editors()) < 2 {
		return func() tea.Msg { return closeMsg }
	}
	m.confirm = dialog.Confirm("Close query editor",
		fmt.Sprintf("Close %q? Its SQL will be discarded.", qe.Title), "Close", closeMsg)
	m.confirm.SetSize(m.width, m.height)
	m.confirm.Show()
	return nil
}

func (m *Model) handleFocusedPaneKey(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focusedPane {
	case appmsg.PaneLeftBar:
		m.leftbar, cmd = m.leftbar.Update(msg)
	case appmsg.PaneEditor:
		if key.Matches(msg, m.keyMap.Complete) {
			m.autocomp.Trigger(m.editor.Value())
			return nil
		}
		m.editor, cmd = m.editor.Update(msg)
		m.tabs.SetModified(m.editor.EditorID(), m.editor.Modified())
		// An open dropdown follows the typing; a backtick opens it.
		if m.autocomp.Visible() || msg.String() == "`" {
			m.autocomp.Trigger(m.editor.Value())
		}
	}
	return cmd
}

// sync re-reads the store into every component.
func (m *Model) sync() {
	qe := m.store.ActiveEditor()

	labels := map[string]string{}
	for _, db := range m.store.Databases() {
		labels[db.ID.String()] = db.Name
	}

	names := make([]string, 0, len(labels))
	for _, name := range labels {
		names = append(names, name)
	}
	m.completer.SetTables(names)

	m.leftbar.SetQueryEditor(qe)
	m.leftbar.SetTables(m.store.Tables(qe.ID))

	editors := m.store.Editors()
	m.tabs.SetEditors(editors, qe.ID, labels)
	m.editor.Bind(qe)
	m.tabs.SetModified(qe.ID, m.editor.Modified())
	m.alerts.SetAlerts(m.store.Alerts())

	m.statusbar.SetTable(m.activeTableName())
	m.statusbar.SetEditors(len(editors))
	m.updateLayout()
}

// activeTableName is the label of the active editor's table, falling back to
// the last selection when the catalog has not been loaded.
func (m Model) activeTableName() string {
	qe := m.store.ActiveEditor()
	if db, ok := m.store.Database(qe.DbID); ok {
		return db.Name
	}
	if qe.HasDB() {
		return m.leftbar.TableName()
	}
	return ""
}

// saveEditor writes the editor text back to the store if it changed.
func (m *Model) saveEditor() {
	if !m.editor.Modified() || m.editor.EditorID() == "" {
		return
	}
	if err := m.store.QueryEditorSetSQL(m.editor.EditorID(), m.editor.Value()); err != nil {
		m.logger.Warn("save editor", "editor", m.editor.EditorID(), "error", err)
		return
	}
	m.editor.ResetModified()
}

func (m *Model) status(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return appmsg.StatusMsg{Text: text, IsError: isError} }
}

func (m *Model) cycleFocus(direction int) {
	panes := []appmsg.Pane{appmsg.PaneEditor}
	if m.showLeftBar {
		panes = []appmsg.Pane{appmsg.PaneLeftBar, appmsg.PaneEditor}
	}

	current := 0
	for i, p := range panes {
		if p == m.focusedPane {
			current = i
			break
		}
	}
	m.setFocus(panes[(current+direction+len(panes))%len(panes)])
}

func (m *Model) setFocus(pane appmsg.Pane) {
	switch m.focusedPane {
	case appmsg.PaneLeftBar:
		m.leftbar.Blur()
	case appmsg.PaneEditor:
		m.saveEditor()
		m.editor.Blur()
	}

	m.autocomp.Dismiss()
	m.focusedPane = pane
	m.logger.Debug("focus", "pane", pane.String())

	switch pane {
	case appmsg.PaneLeftBar:
		m.leftbar.Focus()
	case appmsg.PaneEditor:
		m.editor.Focus()
	}
}

func (m *Model) updateLayout() {
	m.tabs.SetSize(m.width)
	m.statusbar.SetSize(m.width)
	m.alerts.SetWidth(m.width)

	mainHeight := max(m.height-lipgloss.Height(m.tabs.View())-m.alerts.Height()-1, 3)
	mainWidth := m.width
	if m.showLeftBar {
		mainWidth -= m.leftBarWidth
		m.leftbar.SetSize(m.leftBarWidth, mainHeight)
	}
	m.editor.SetSize(mainWidth, mainHeight)
	m.autocomp.SetWidth(mainWidth - 2)
	m.confirm.SetSize(m.width, m.height)
}

// View renders the entire application.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	th := theme.Current

	if m.showHelp {
		title := th.LeftBarTitle.Render("bqlab keyboard shortcuts")
		body := lipgloss.JoinVertical(lipgloss.Left, title, "", m.help.View(m.keyMap), "",
			th.MutedText.Render("Press f1 / esc to close"))
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, th.DialogBorder.Render(body))
	}

	content := m.editorView()
	if m.showLeftBar {
		content = lipgloss.JoinHorizontal(lipgloss.Top, m.leftbar.View(), content)
	}

	rows := []string{m.tabs.View()}
	if v := m.alerts.View(); v != "" {
		rows = append(rows, v)
	}
	rows = append(rows, content, m.statusbar.View())
	return m.confirm.Overlay(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// editorView draws the autocomplete dropdown over the bottom of the editor.
func (m Model) editorView() string {
	view := m.editor.View()
	if !m.autocomp.Visible() {
		return view
	}
	drop := strings.Split(m.autocomp.View(), "\n")
	lines := strings.Split(view, "\n")
	// Keep the editor's bottom border line.
	if len(lines) < len(drop)+2 {
		return view
	}
	at := len(lines) - 1 - len(drop)
	for i, l := range drop {
		lines[at+i] = l
	}
	return strings.Join(lines, "\n")
}

// FocusedPane returns the pane with keyboard focus.
func (m Model) FocusedPane() appmsg.Pane {
	return m.focusedPane
}
