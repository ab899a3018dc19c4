package prompt

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/martinsuchenak/thingprobe/internal/model"
)

func TestTarget_Lines(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		current    model.Target
		want       model.Target
		wantPrompt string
	}{
		{"Both missing", "127.0.0.1\n8080\n", model.Target{}, model.Target{Host: "127.0.0.1", Port: "8080"}, hostLabel + portLabel},
		{"Host known", "8080\n", model.Target{Host: "lamp.local"}, model.Target{Host: "lamp.local", Port: "8080"}, portLabel},
		{"Port known", "10.0.0.5\r\n", model.Target{Port: "80"}, model.Target{Host: "10.0.0.5", Port: "80"}, hostLabel},
		{"No trailing newline", "127.0.0.1\nhttp", model.Target{}, model.Target{Host: "127.0.0.1", Port: "http"}, hostLabel + portLabel},
		{"Empty host accepted", "\n8080\n", model.Target{}, model.Target{Host: "", Port: "8080"}, hostLabel + portLabel},
		{"Nothing to ask", "", model.Target{Host: "h", Port: "1"}, model.Target{Host: "h", Port: "1"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := Target(strings.NewReader(tt.input), &out, tt.current)
			if err != nil {
				t.Fatalf("Target() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Target() = %+v, want %+v", got, tt.want)
			}
			if out.String() != tt.wantPrompt {
				t.Errorf("Prompt output = %q, want %q", out.String(), tt.wantPrompt)
			}
		})
	}
}

func TestTarget_EOF(t *testing.T) {
	_, err := Target(strings.NewReader("127.0.0.1\n"), &bytes.Buffer{}, model.Target{})
	if !errors.Is(err, ErrNoInput) {
		t.Errorf("Expected ErrNoInput when port is never entered, got %v", err)
	}
}

func typeText(t *testing.T, f *targetForm, text string) *targetForm {
	t.Helper()
	m, _ := f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m.(*targetForm)
}

func press(t *testing.T, f *targetForm, key tea.KeyType) (*targetForm, tea.Cmd) {
	t.Helper()
	m, cmd := f.Update(tea.KeyMsg{Type: key})
	return m.(*targetForm), cmd
}

func TestTargetForm_BothFields(t *testing.T) {
	f := newTargetForm(model.Target{})
	if len(f.fields) != 2 {
		t.Fatalf("Expected 2 fields, got %d", len(f.fields))
	}

	f = typeText(t, f, "192.168.1.50")
	f, cmd := press(t, f, tea.KeyEnter)
	if f.done {
		t.Fatal("Form finished after first field")
	}
	_ = cmd

	f = typeText(t, f, "8080")
	f, cmd = press(t, f, tea.KeyEnter)
	if !f.done {
		t.Fatal("Expected form to be done after second field")
	}
	if cmd == nil {
		t.Error("Expected quit command")
	}

	want := model.Target{Host: "192.168.1.50", Port: "8080"}
	if got := f.result(); got != want {
		t.Errorf("result() = %+v, want %+v", got, want)
	}
}

func TestTargetForm_OnlyPort(t *testing.T) {
	f := newTargetForm(model.Target{Host: "lamp.local"})
	if len(f.fields) != 1 || f.fields[0].key != "port" {
		t.Fatalf("Expected only the port field, got %+v", f.fields)
	}

	f = typeText(t, f, "80")
	f, _ = press(t, f, tea.KeyEnter)

	if got := f.result(); got != (model.Target{Host: "lamp.local", Port: "80"}) {
		t.Errorf("result() = %+v", got)
	}
}

func TestTargetForm_Cancel(t *testing.T) {
	f := newTargetForm(model.Target{})
	f = typeText(t, f, "10.0.0.1")
	f, cmd := press(t, f, tea.KeyEsc)

	if !f.cancelled {
		t.Error("Expected form to be cancelled")
	}
	if cmd == nil {
		t.Error("Expected quit command")
	}
	if f.View() != "" {
		t.Errorf("Expected empty view after cancel, got %q", f.View())
	}
}

func TestTargetForm_View(t *testing.T) {
	f := newTargetForm(model.Target{})
	view := f.View()

	if !strings.Contains(view, "Enter the device IP") {
		t.Errorf("Expected host label in view, got %q", view)
	}
	if strings.Contains(view, "Enter port") {
		t.Errorf("Port label shown before host was confirmed: %q", view)
	}
}
