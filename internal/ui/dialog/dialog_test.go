package dialog

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/bqlab/internal/theme"
)

func init() {
	theme.Current = theme.Default()
}

type closeMsg struct{ id string }

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func shown() Model {
	d := Confirm("Close query editor", "Discard it?", "Close", closeMsg{id: "qe-1"})
	d.SetSize(100, 30)
	d.Show()
	return d
}

func TestConfirm_DefaultsToCancel(t *testing.T) {
	d := shown()
	if !d.Visible() {
		t.Fatal("expected visible after Show()")
	}
	if d.Active() != "Cancel" {
		t.Fatalf("expected Cancel selected, got %q", d.Active())
	}

	d, cmd := d.Update(key("enter"))
	if cmd != nil {
		t.Fatal("Cancel should not emit a message")
	}
	if d.Visible() {
		t.Fatal("expected hidden after Cancel")
	}
}

func TestConfirm_Navigate(t *testing.T) {
	d := shown()

	d, _ = d.Update(key("left"))
	if d.Active() != "Close" {
		t.Fatalf("expected Close after left, got %q", d.Active())
	}
	d, _ = d.Update(key("left"))
	if d.Active() != "Close" {
		t.Fatal("left at the first button should stay put")
	}
	d, _ = d.Update(key("tab"))
	if d.Active() != "Cancel" {
		t.Fatalf("expected Cancel after tab, got %q", d.Active())
	}
	d, _ = d.Update(key("right"))
	if d.Active() != "Cancel" {
		t.Fatal("right at the last button should stay put")
	}
}

func TestConfirm_Press(t *testing.T) {
	t.Run("enter on confirm", func(t *testing.T) {
		d := shown()
		d, _ = d.Update(key("left"))
		d, cmd := d.Update(key("enter"))
		if cmd == nil {
			t.Fatal("expected a command")
		}
		if got, ok := cmd().(closeMsg); !ok || got.id != "qe-1" {
			t.Fatalf("expected closeMsg{qe-1}, got %#v", cmd())
		}
		if d.Visible() {
			t.Fatal("expected hidden after press")
		}
	})

	t.Run("y shortcut", func(t *testing.T) {
		d := shown()
		_, cmd := d.Update(key("y"))
		if cmd == nil {
			t.Fatal("expected y to confirm")
		}
	})

	t.Run("esc and n dismiss", func(t *testing.T) {
		for _, k := range []string{"esc", "n"} {
			d := shown()
			d, cmd := d.Update(key(k))
			if cmd != nil || d.Visible() {
				t.Fatalf("%s: expected a silent dismiss", k)
			}
		}
	})
}

func TestUpdate_Hidden(t *testing.T) {
	d := Confirm("t", "b", "OK", closeMsg{})
	d, cmd := d.Update(key("y"))
	if cmd != nil || d.Visible() {
		t.Fatal("hidden dialog must ignore keys")
	}
}

func TestView(t *testing.T) {
	d := Confirm("Close query editor", "Discard it?", "Close", closeMsg{})
	if d.View() != "" {
		t.Fatal("hidden dialog renders nothing")
	}
	d.Show()
	v := d.View()
	for _, want := range []string{"Close query editor", "Discard it?", "Close", "Cancel"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q:\n%s", want, v)
		}
	}
}

func TestOverlay(t *testing.T) {
	bg := strings.TrimRight(strings.Repeat(strings.Repeat(".", 100)+"\n", 30), "\n")

	d := Confirm("Close query editor", "Discard it?", "Close", closeMsg{})
	d.SetSize(100, 30)
	if d.Overlay(bg) != bg {
		t.Fatal("hidden dialog must leave the background untouched")
	}

	d.Show()
	out := d.Overlay(bg)
	lines := strings.Split(out, "\n")
	if len(lines) != 30 {
		t.Fatalf("expected 30 lines, got %d", len(lines))
	}
	if !strings.Contains(out, "Close query editor") {
		t.Fatal("overlay should contain the dialog title")
	}
	if lines[0] != strings.Repeat(".", 100) {
		t.Fatal("first line should be untouched background")
	}
	for i, l := range lines {
		if w := len([]rune(l)); w != 100 {
			t.Fatalf("line %d width %d, want 100", i, w)
		}
	}
}

func TestSetSize_Narrow(t *testing.T) {
	d := New("t", "b")
	d.SetSize(30, 10)
	if d.maxWidth != 26 {
		t.Fatalf("expected maxWidth 26, got %d", d.maxWidth)
	}
	d.SetSize(200, 50)
	if d.maxWidth != defaultMaxWidth {
		t.Fatalf("expected maxWidth %d, got %d", defaultMaxWidth, d.maxWidth)
	}
}
