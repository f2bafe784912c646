package diagnostics

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

type panickyStringer struct{}

func (panickyStringer) String() string { panic("boom") }

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		items []any
		want  string
	}{
		{"single", []any{"No method found"}, ">> No method found"},
		{"two", []any{"Unknown invocable:", 42}, ">> Unknown invocable: 42"},
		{"three", []any{"Unsupported operand types:", true, 3}, ">> Unsupported operand types: true 3"},
		{"nil item", []any{"value", nil}, ">> value nil"},
		{"error item", []any{"Error when invoking:", errors.New("bad")}, ">> Error when invoking: bad"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.items...); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat_PanickingStringer(t *testing.T) {
	got := Format("value", panickyStringer{})
	if !strings.HasPrefix(got, ">> value ") || !strings.Contains(got, "PANIC=boom") {
		t.Errorf("unexpected line %q", got)
	}
}

func TestConsole_WritesLines(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.Print("first")
	c.Print("second", 2)

	want := ">> first\n>> second 2\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestConsole_Color(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.SetColor(true)
	c.Print("x")

	out := buf.String()
	if !strings.Contains(out, colorPrefix) || !strings.HasSuffix(out, colorReset+"x\n") {
		t.Errorf("expected coloured prefix, got %q", out)
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.Print("a", "b")
	r.Print("c")

	lines := r.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != ">> a b" {
		t.Errorf("lines[0] = %q", lines[0])
	}
	if !r.Contains("c") {
		t.Error("expected Contains(c)")
	}
	r.Reset()
	if len(r.Lines()) != 0 {
		t.Error("expected no lines after Reset")
	}
}

func TestDiscard(t *testing.T) {
	Discard.Print("ignored")
}
