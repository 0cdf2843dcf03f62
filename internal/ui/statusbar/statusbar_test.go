package statusbar

import (
	"strings"
	"testing"
	"time"

	appmsg "github.com/sadopc/bqlab/internal/msg"
	"github.com/sadopc/bqlab/internal/theme"
)

func init() {
	theme.Current = theme.Default()
	clearAfter = time.Millisecond
}

func TestNew(t *testing.T) {
	m := New("http://localhost:8088")

	if m.message != "" {
		t.Fatalf("expected empty message, got %q", m.message)
	}
	if m.endpoint != "http://localhost:8088" {
		t.Fatalf("unexpected endpoint %q", m.endpoint)
	}
	if cmd := m.Init(); cmd != nil {
		t.Fatal("expected nil cmd from Init")
	}
}

func TestUpdate_StatusMsg(t *testing.T) {
	m := New("")

	m, cmd := m.Update(appmsg.StatusMsg{Text: "Tables reloaded"})
	if m.Message() != "Tables reloaded" {
		t.Fatalf("expected message, got %q", m.Message())
	}
	if m.isError {
		t.Fatal("expected isError=false")
	}
	if cmd == nil {
		t.Fatal("expected clear timer command")
	}
}

func TestUpdate_StatusMsg_Error(t *testing.T) {
	m := New("")

	m, _ = m.Update(appmsg.StatusMsg{Text: "boom", IsError: true})
	if !m.isError {
		t.Fatal("expected isError=true")
	}
}

func TestUpdate_ClearStatusMsg_StaleIgnored(t *testing.T) {
	m := New("")

	m, cmd1 := m.Update(appmsg.StatusMsg{Text: "first"})
	clear1, ok := cmd1().(ClearStatusMsg)
	if !ok {
		t.Fatal("expected ClearStatusMsg from first timer")
	}

	m, cmd2 := m.Update(appmsg.StatusMsg{Text: "second"})
	clear2, ok := cmd2().(ClearStatusMsg)
	if !ok {
		t.Fatal("expected ClearStatusMsg from second timer")
	}
	if clear1.Gen == clear2.Gen {
		t.Fatalf("expected different generations, got %d and %d", clear1.Gen, clear2.Gen)
	}

	m, _ = m.Update(clear1)
	if m.message != "second" {
		t.Fatalf("stale timer cleared newer message: got %q", m.message)
	}

	m, _ = m.Update(clear2)
	if m.message != "" {
		t.Fatalf("fresh timer should clear message, got %q", m.message)
	}
}

func TestHostOf(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "offline"},
		{"http://localhost:8088", "localhost:8088"},
		{"https://superset.example.com/", "superset.example.com"},
		{"not a url", "not a url"},
	}
	for _, tt := range tests {
		if got := hostOf(tt.in); got != tt.want {
			t.Errorf("hostOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("a very long message", 10); got != "a very ..." {
		t.Errorf("truncate long = %q", got)
	}
	if got := truncate("abcdef", 3); got != "abcdef" {
		t.Errorf("truncate tiny limit = %q", got)
	}
}

func TestView_ZeroWidth(t *testing.T) {
	if view := New("").View(); view != "" {
		t.Fatalf("expected empty view when width=0, got %q", view)
	}
}

func TestView_Hints(t *testing.T) {
	m := New("http://localhost:8088")
	m.SetSize(160)

	view := m.View()
	for _, want := range []string{"localhost:8088", "Ctrl+Q", "no table"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestView_TableEditorsAndCursor(t *testing.T) {
	m := New("")
	m.SetSize(160)
	m.SetTable("proj:sales.orders")
	m.SetEditors(3)
	m.SetCursor(5, 10)

	view := m.View()
	for _, want := range []string{"offline", "proj:sales.orders", "3 editors", "5:10"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestView_Message(t *testing.T) {
	m := New("")
	m.SetSize(160)
	m, _ = m.Update(appmsg.StatusMsg{Text: "Tables reloaded"})

	view := m.View()
	if !strings.Contains(view, "Tables reloaded") {
		t.Errorf("view missing message:\n%s", view)
	}
	if strings.Contains(view, "Ctrl+Q") {
		t.Errorf("hints should be hidden while a message shows:\n%s", view)
	}
}
