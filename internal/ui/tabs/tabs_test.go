package tabs

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	appmsg "github.com/sadopc/bqlab/internal/msg"
	"github.com/sadopc/bqlab/internal/theme"
)

func init() {
	theme.Current = theme.Default()
}

func threeEditors() []appmsg.QueryEditor {
	return []appmsg.QueryEditor{
		{ID: "a", Title: "Untitled Query 1", DbID: "1"},
		{ID: "b", Title: "Untitled Query 2"},
		{ID: "c", Title: "Untitled Query 3"},
	}
}

func newThree(active string) Model {
	m := New()
	m.SetEditors(threeEditors(), active, map[string]string{"1": "sales.orders"})
	return m
}

func TestNewIsEmpty(t *testing.T) {
	m := New()
	if m.Count() != 0 {
		t.Fatalf("expected 0 tabs, got %d", m.Count())
	}
	if m.ActiveID() != "" {
		t.Fatalf("expected empty active id, got %q", m.ActiveID())
	}
	if m.NextTab() != nil || m.PrevTab() != nil {
		t.Fatal("expected nil cmds on an empty tab bar")
	}
}

func TestSetEditors(t *testing.T) {
	m := newThree("b")

	if m.Count() != 3 {
		t.Fatalf("expected 3 tabs, got %d", m.Count())
	}
	if m.ActiveID() != "b" {
		t.Fatalf("expected active b, got %q", m.ActiveID())
	}
	tabs := m.Tabs()
	if tabs[0].DB != "sales.orders" {
		t.Fatalf("expected first tab DB label, got %q", tabs[0].DB)
	}
	if tabs[1].DB != "" {
		t.Fatalf("expected no DB label on second tab, got %q", tabs[1].DB)
	}
}

func TestSetEditors_UnknownActiveFallsBackToFirst(t *testing.T) {
	m := newThree("zzz")
	if m.ActiveID() != "a" {
		t.Fatalf("expected active a, got %q", m.ActiveID())
	}
}

func TestSetEditors_KeepsModified(t *testing.T) {
	m := newThree("a")
	m.SetModified("b", true)

	editors := threeEditors()[1:]
	m.SetEditors(editors, "b", nil)

	if !m.ActiveTab().Modified {
		t.Fatal("expected Modified to survive SetEditors")
	}
}

func TestSwitchEditor(t *testing.T) {
	m := newThree("c")

	m, _ = m.Update(appmsg.SwitchEditorMsg{ID: "a"})
	if m.ActiveID() != "a" {
		t.Fatalf("expected active a after switch, got %q", m.ActiveID())
	}

	// Switch to a non-existent tab: active should not change.
	m, _ = m.Update(appmsg.SwitchEditorMsg{ID: "missing"})
	if m.ActiveID() != "a" {
		t.Fatalf("expected active a unchanged, got %q", m.ActiveID())
	}
}

func TestNextTab(t *testing.T) {
	m := newThree("a")

	cmd := m.NextTab()
	if m.ActiveID() != "b" {
		t.Fatalf("expected b after NextTab, got %q", m.ActiveID())
	}
	if cmd == nil {
		t.Fatal("expected cmd from NextTab")
	}
	sw, ok := cmd().(appmsg.SwitchEditorMsg)
	if !ok {
		t.Fatalf("expected SwitchEditorMsg, got %T", cmd())
	}
	if sw.ID != "b" {
		t.Fatalf("expected ID=b, got %q", sw.ID)
	}

	m.NextTab()
	m.NextTab()
	if m.ActiveID() != "a" {
		t.Fatalf("expected wrap to a, got %q", m.ActiveID())
	}
}

func TestPrevTab(t *testing.T) {
	m := newThree("a")

	cmd := m.PrevTab()
	if m.ActiveID() != "c" {
		t.Fatalf("expected wrap to c, got %q", m.ActiveID())
	}
	if cmd == nil {
		t.Fatal("expected cmd from PrevTab")
	}

	m.PrevTab()
	if m.ActiveID() != "b" {
		t.Fatalf("expected b after PrevTab, got %q", m.ActiveID())
	}
}

func TestSetModified(t *testing.T) {
	m := newThree("a")

	if m.ActiveTab().Modified {
		t.Fatal("expected Modified=false initially")
	}
	m.SetModified("a", true)
	if !m.ActiveTab().Modified {
		t.Fatal("expected Modified=true")
	}
	m.SetModified("a", false)
	if m.ActiveTab().Modified {
		t.Fatal("expected Modified=false")
	}

	// SetModified on non-existent tab should not panic.
	m.SetModified("missing", true)
}

func TestView_ZeroWidth(t *testing.T) {
	m := newThree("a")
	if view := m.View(); view != "" {
		t.Fatalf("expected empty view when width=0, got %q", view)
	}
}

func TestView(t *testing.T) {
	m := newThree("a")
	m.SetSize(200)
	m.SetModified("b", true)

	view := m.View()
	for _, want := range []string{"Untitled Query 1 · sales.orders", "Untitled Query 2 *", "+"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestInit(t *testing.T) {
	if cmd := New().Init(); cmd != nil {
		t.Fatal("expected nil cmd from Init")
	}
}

func TestUpdate_UnknownMsg(t *testing.T) {
	m := newThree("a")
	m, cmd := m.Update(tea.KeyMsg{})
	if cmd != nil {
		t.Fatal("expected nil cmd for unknown msg type")
	}
	if m.Count() != 3 {
		t.Fatalf("expected 3 tabs, got %d", m.Count())
	}
}
