package tabs

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	appmsg "github.com/sadopc/bqlab/internal/msg"
	"github.com/sadopc/bqlab/internal/theme"
)

// Tab represents a single query editor tab.
type Tab struct {
	ID    string
	Title string
	// DB is the selected table label; empty when none is selected.
	DB       string
	Modified bool
}

// Model is the tab bar component. The tab list mirrors the store's editors
// and is replaced wholesale with SetEditors.
type Model struct {
	tabs   []Tab
	active int
	width  int
}

// New creates an empty tab bar.
func New() Model {
	return Model{}
}

// Init returns no initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles tab bar messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case appmsg.SwitchEditorMsg:
		if idx := m.indexByID(msg.ID); idx >= 0 {
			m.active = idx
		}
	}
	return m, nil
}

// SetEditors replaces the tabs with one per editor. labels maps an editor's
// database id to the table label shown next to its title.
func (m *Model) SetEditors(editors []appmsg.QueryEditor, activeID string, labels map[string]string) {
	prev := make(map[string]bool, len(m.tabs))
	for _, t := range m.tabs {
		prev[t.ID] = t.Modified
	}

	m.tabs = make([]Tab, 0, len(editors))
	m.active = 0
	for i, e := range editors {
		m.tabs = append(m.tabs, Tab{
			ID:       e.ID,
			Title:    e.Title,
			DB:       labels[e.DbID],
			Modified: prev[e.ID],
		})
		if e.ID == activeID {
			m.active = i
		}
	}
}

// View renders the tab bar.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	th := theme.Current

	var tabs []string
	for i, tab := range m.tabs {
		title := tab.Title
		if tab.DB != "" {
			title += " · " + tab.DB
		}
		if tab.Modified {
			title += " *"
		}

		style := th.TabInactive
		if i == m.active {
			style = th.TabActive
		}
		tabs = append(tabs, style.Render(title))
	}

	tabs = append(tabs, th.TabInactive.Render(" + "))

	bar := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
	return th.TabBar.Width(m.width).Render(bar)
}

// SetSize sets the tab bar width.
func (m *Model) SetSize(width int) {
	m.width = width
}

// ActiveTab returns the active tab.
func (m Model) ActiveTab() Tab {
	if m.active < len(m.tabs) {
		return m.tabs[m.active]
	}
	return Tab{}
}

// ActiveID returns the active tab ID.
func (m Model) ActiveID() string {
	return m.ActiveTab().ID
}

// SetModified marks a tab as modified.
func (m *Model) SetModified(id string, modified bool) {
	if idx := m.indexByID(id); idx >= 0 {
		m.tabs[idx].Modified = modified
	}
}

// NextTab switches to the next tab.
func (m *Model) NextTab() tea.Cmd {
	if len(m.tabs) == 0 {
		return nil
	}
	m.active = (m.active + 1) % len(m.tabs)
	return switchTo(m.tabs[m.active].ID)
}

// PrevTab switches to the previous tab.
func (m *Model) PrevTab() tea.Cmd {
	if len(m.tabs) == 0 {
		return nil
	}
	m.active--
	if m.active < 0 {
		m.active = len(m.tabs) - 1
	}
	return switchTo(m.tabs[m.active].ID)
}

// Tabs returns all tabs.
func (m Model) Tabs() []Tab {
	return m.tabs
}

// Count returns the number of tabs.
func (m Model) Count() int {
	return len(m.tabs)
}

func switchTo(id string) tea.Cmd {
	return func() tea.Msg { return appmsg.SwitchEditorMsg{ID: id} }
}

func (m Model) indexByID(id string) int {
	for i, t := range m.tabs {
		if t.ID == id {
			return i
		}
	}
	return -1
}
