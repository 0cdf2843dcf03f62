package app

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// containsKey checks whether the binding's keys contain the given key string.
func containsKey(b key.Binding, target string) bool {
	for _, k := range b.Keys() {
		if k == target {
			return true
		}
	}
	return false
}

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name string
		b    key.Binding
		key  string
	}{
		{"Quit", km.Quit, "ctrl+q"},
		{"FocusNext", km.FocusNext, "tab"},
		{"FocusPrev", km.FocusPrev, "shift+tab"},
		{"FocusLeftBar", km.FocusLeftBar, "alt+1"},
		{"FocusEditor", km.FocusEditor, "alt+2"},
		{"NewEditor", km.NewEditor, "ctrl+t"},
		{"CloseEditor", km.CloseEditor, "ctrl+w"},
		{"NextEditor", km.NextEditor, "ctrl+]"},
		{"PrevEditor", km.PrevEditor, "ctrl+pgup"},
		{"ToggleLeftBar", km.ToggleLeftBar, "ctrl+b"},
		{"Refetch", km.Refetch, "ctrl+r"},
		{"DismissAlert", km.DismissAlert, "ctrl+x"},
		{"InsertTable", km.InsertTable, "ctrl+o"},
		{"Complete", km.Complete, "ctrl+@"},
		{"Help", km.Help, "f1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !containsKey(tt.b, tt.key) {
				t.Errorf("%s keys = %v, want to contain %q", tt.name, tt.b.Keys(), tt.key)
			}
			if tt.b.Help().Key == "" || tt.b.Help().Desc == "" {
				t.Errorf("%s has no help text", tt.name)
			}
		})
	}
}

func TestKeyMapMatches(t *testing.T) {
	km := DefaultKeyMap()

	if !key.Matches(tea.KeyMsg{Type: tea.KeyCtrlT}, km.NewEditor) {
		t.Error("ctrl+t should match NewEditor")
	}
	if !key.Matches(tea.KeyMsg{Type: tea.KeyShiftTab}, km.FocusPrev) {
		t.Error("shift+tab should match FocusPrev")
	}
	if !key.Matches(tea.KeyMsg{Type: tea.KeyCtrlAt}, km.Complete) {
		t.Error("ctrl+space should match Complete")
	}
	for _, k := range []tea.KeyType{tea.KeyCtrlPgUp, tea.KeyCtrlBackslash} {
		if !key.Matches(tea.KeyMsg{Type: k}, km.PrevEditor) {
			t.Errorf("%s should match PrevEditor", tea.KeyMsg{Type: k})
		}
	}
	for _, k := range []tea.KeyType{tea.KeyCtrlPgDown, tea.KeyCtrlCloseBracket} {
		if !key.Matches(tea.KeyMsg{Type: k}, km.NextEditor) {
			t.Errorf("%s should match NextEditor", tea.KeyMsg{Type: k})
		}
	}
	if key.Matches(tea.KeyMsg{Type: tea.KeyEsc}, km.PrevEditor) {
		t.Error("esc must not switch editors")
	}
	if key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")}, km.NewEditor) {
		t.Error("plain t should not match NewEditor")
	}
}

func TestHelpGroups(t *testing.T) {
	km := DefaultKeyMap()

	if len(km.ShortHelp()) == 0 {
		t.Fatal("ShortHelp is empty")
	}

	seen := map[string]bool{}
	for _, group := range km.FullHelp() {
		for _, b := range group {
			h := b.Help().Key
			if seen[h] {
				t.Errorf("duplicate binding %q in FullHelp", h)
			}
			seen[h] = true
		}
	}
	if len(seen) != 15 {
		t.Errorf("FullHelp lists %d bindings, want 15", len(seen))
	}
}
