// Package asyncselect is a dropdown selector whose options are loaded from a
// remote JSON endpoint.
package asyncselect

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/sadopc/bqlab/internal/theme"
)

const maxVisible = 8

// Option is one selectable entry.
type Option struct {
	Value string
	Label string
}

// Fetcher performs the GET request for the options endpoint.
type Fetcher interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
}

// Mutator turns a raw endpoint response into options. It runs on the UI
// goroutine, once per completed fetch.
type Mutator func(raw json.RawMessage) ([]Option, error)

// ValueRenderer renders the selected option in the closed selector.
type ValueRenderer func(Option) string

// LoadedMsg carries a completed fetch.
type LoadedMsg struct {
	ID  int
	Gen int
	Raw json.RawMessage
}

// LoadErrMsg carries a failed fetch.
type LoadErrMsg struct {
	ID  int
	Gen int
	Err error
}

// ChangeMsg is sent when the user selects an option or clears the value.
// Option is nil on clear.
type ChangeMsg struct {
	ID     int
	Option *Option
}

// Config configures a selector.
type Config struct {
	Endpoint      string
	Fetcher       Fetcher
	Mutator       Mutator
	ValueRenderer ValueRenderer
	Placeholder   string
	Value         string
	// Timeout bounds a single fetch. Zero means no extra deadline.
	Timeout time.Duration
}

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// Model is the selector.
type Model struct {
	id          int
	endpoint    string
	fetcher     Fetcher
	mutator     Mutator
	render      ValueRenderer
	placeholder string
	timeout     time.Duration

	value   string
	options []Option

	filter   textinput.Model
	filtered []fuzzy.Match
	cursor   int
	offset   int
	open     bool
	focused  bool

	loading bool
	gen     int
	err     error
	spinner spinner.Model

	width int
}

// New creates a selector. Nothing is fetched until Fetch is called.
func New(cfg Config) Model {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.Prompt = "> "

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	render := cfg.ValueRenderer
	if render == nil {
		render = func(o Option) string { return o.Label }
	}

	return Model{
		id:          nextID(),
		endpoint:    cfg.Endpoint,
		fetcher:     cfg.Fetcher,
		mutator:     cfg.Mutator,
		render:      render,
		placeholder: cfg.Placeholder,
		timeout:     cfg.Timeout,
		value:       cfg.Value,
		filter:      ti,
		spinner:     sp,
		width:       30,
	}
}

// ID identifies this selector in the messages it produces.
func (m Model) ID() int { return m.id }

// Fetch starts loading the options. Results of any earlier fetch still in
// flight are discarded when they arrive.
func (m *Model) Fetch() tea.Cmd {
	m.gen++
	m.err = nil
	if m.fetcher == nil {
		m.loading = false
		return nil
	}
	m.loading = true

	id, gen := m.id, m.gen
	fetcher, endpoint, timeout := m.fetcher, m.endpoint, m.timeout
	load := func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		raw, err := fetcher.Get(ctx, endpoint)
		if err != nil {
			return LoadErrMsg{ID: id, Gen: gen, Err: err}
		}
		return LoadedMsg{ID: id, Gen: gen, Raw: raw}
	}
	return tea.Batch(load, m.spinner.Tick)
}

// Update handles load results, spinner ticks and keys while focused.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.ID != m.id || msg.Gen != m.gen {
			return m, nil
		}
		m.loading = false
		var opts []Option
		var err error
		if m.mutator != nil {
			opts, err = m.mutator(msg.Raw)
		} else {
			err = json.Unmarshal(msg.Raw, &opts)
		}
		if err != nil {
			m.err = err
			return m, nil
		}
		m.options = opts
		m.applyFilter()
		return m, nil

	case LoadErrMsg:
		if msg.ID != m.id || msg.Gen != m.gen {
			return m, nil
		}
		m.loading = false
		m.err = msg.Err
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		if m.open {
			return m.updateOpen(msg)
		}
		return m.updateClosed(msg)
	}

	return m, nil
}

func (m Model) updateClosed(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter", " ", "down":
		var cmd tea.Cmd
		if m.err != nil && !m.loading {
			cmd = m.Fetch()
		} else {
			cmd = m.Open()
		}
		return m, cmd

	case "backspace", "delete":
		if m.value == "" {
			return m, nil
		}
		m.value = ""
		id := m.id
		return m, func() tea.Msg { return ChangeMsg{ID: id} }
	}
	return m, nil
}

func (m Model) updateOpen(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Close()
		return m, nil

	case "up", "ctrl+p":
		if m.cursor > 0 {
			m.cursor--
			m.ensureVisible()
		}
		return m, nil

	case "down", "ctrl+n":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
			m.ensureVisible()
		}
		return m, nil

	case "enter", "tab":
		if m.cursor >= len(m.filtered) {
			return m, nil
		}
		opt := m.options[m.filtered[m.cursor].Index]
		m.value = opt.Value
		m.Close()
		id := m.id
		return m, func() tea.Msg { return ChangeMsg{ID: id, Option: &opt} }
	}

	prev := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != prev {
		m.applyFilter()
	}
	return m, cmd
}

// Open shows the dropdown with an empty filter.
func (m *Model) Open() tea.Cmd {
	m.open = true
	m.filter.SetValue("")
	m.applyFilter()
	m.cursor = 0
	for i, f := range m.filtered {
		if m.options[f.Index].Value == m.value {
			m.cursor = i
			break
		}
	}
	m.ensureVisible()
	return m.filter.Focus()
}

// Close hides the dropdown.
func (m *Model) Close() {
	m.open = false
	m.filter.Blur()
}

// IsOpen reports whether the dropdown is shown.
func (m Model) IsOpen() bool { return m.open }

// Focus gives the selector keyboard focus.
func (m *Model) Focus() { m.focused = true }

// Blur removes keyboard focus and closes the dropdown.
func (m *Model) Blur() {
	m.focused = false
	m.Close()
}

// Focused reports whether the selector has keyboard focus.
func (m Model) Focused() bool { return m.focused }

// Value returns the selected option value.
func (m Model) Value() string { return m.value }

// SetValue sets the selected value without emitting a ChangeMsg.
func (m *Model) SetValue(v string) { m.value = v }

// SetMutator replaces the result mutator used for subsequent loads.
func (m *Model) SetMutator(fn Mutator) { m.mutator = fn }

// SetWidth sets the rendered width.
func (m *Model) SetWidth(w int) {
	if w > 4 {
		m.width = w
	}
}

// Selected returns the option matching the current value, if loaded.
func (m Model) Selected() (Option, bool) {
	if m.value == "" {
		return Option{}, false
	}
	for _, o := range m.options {
		if o.Value == m.value {
			return o, true
		}
	}
	return Option{}, false
}

// Options returns the loaded options.
func (m Model) Options() []Option { return m.options }

// Loading reports whether a fetch is in flight.
func (m Model) Loading() bool { return m.loading }

// Err returns the last load error.
func (m Model) Err() error { return m.err }

// Endpoint returns the configured endpoint path.
func (m Model) Endpoint() string { return m.endpoint }

// View renders the selector and, when open, the dropdown.
func (m Model) View() string {
	th := theme.Current
	inner := max(m.width-2, 1)

	var line string
	switch opt, ok := m.Selected(); {
	case ok:
		line = th.SelectValue.Render(truncate(m.render(opt), inner-2))
	case m.value != "":
		line = th.SelectValue.Render(truncate(m.render(Option{Value: m.value, Label: m.value}), inner-2))
	default:
		line = th.MutedText.Render(truncate(m.placeholder, inner-2))
	}
	arrow := "▾"
	if m.open {
		arrow = "▴"
	}
	pad := inner - lipgloss.Width(line) - 1
	if pad < 1 {
		pad = 1
	}
	line += strings.Repeat(" ", pad) + arrow

	border := th.UnfocusedBorder
	if m.focused {
		border = th.FocusedBorder
	}
	lines := []string{border.Width(inner).Render(line)}

	if m.loading {
		lines = append(lines, m.spinner.View()+th.MutedText.Render(" Loading..."))
	}
	if m.err != nil {
		lines = append(lines, th.ErrorText.Render(truncate("⚠ "+m.err.Error(), inner)))
		lines = append(lines, th.MutedText.Render("enter to retry"))
	}

	if m.open {
		lines = append(lines, m.viewDropdown(inner))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewDropdown(inner int) string {
	th := theme.Current

	m.filter.Width = max(inner-4, 1)
	rows := []string{m.filter.View()}

	if len(m.filtered) == 0 {
		msg := "No options"
		if m.loading {
			msg = "Loading..."
		}
		rows = append(rows, th.MutedText.Render(msg))
		return th.DialogBorder.Padding(0, 1).Width(inner).Render(strings.Join(rows, "\n"))
	}

	end := min(m.offset+maxVisible, len(m.filtered))
	for i := m.offset; i < end; i++ {
		match := m.filtered[i]
		label := highlight(truncate(m.options[match.Index].Label, inner-4), match.MatchedIndexes, th.SelectMatch)
		style := th.SelectOption
		if i == m.cursor {
			style = th.SelectActive
		}
		rows = append(rows, style.Render(label))
	}
	if len(m.filtered) > maxVisible {
		rows = append(rows, th.MutedText.Render(
			fmt.Sprintf(" %d/%d", m.cursor+1, len(m.filtered))))
	}
	return th.DialogBorder.Padding(0, 1).Width(inner).Render(strings.Join(rows, "\n"))
}

// applyFilter re-ranks options against the filter text. An empty filter
// keeps every option in load order.
func (m *Model) applyFilter() {
	pattern := strings.TrimSpace(m.filter.Value())
	if pattern == "" {
		m.filtered = make([]fuzzy.Match, len(m.options))
		for i, o := range m.options {
			m.filtered[i] = fuzzy.Match{Str: o.Label, Index: i}
		}
	} else {
		labels := make([]string, len(m.options))
		for i, o := range m.options {
			labels[i] = o.Label
		}
		m.filtered = fuzzy.Find(pattern, labels)
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = max(len(m.filtered)-1, 0)
	}
	m.ensureVisible()
}

func (m *Model) ensureVisible() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+maxVisible {
		m.offset = m.cursor - maxVisible + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// highlight styles the runes at the matched byte offsets.
func highlight(s string, matched []int, style lipgloss.Style) string {
	if len(matched) == 0 {
		return s
	}
	set := make(map[int]bool, len(matched))
	for _, i := range matched {
		set[i] = true
	}
	var b strings.Builder
	for i, r := range s {
		if set[i] {
			b.WriteString(style.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
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
