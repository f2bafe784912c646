// Package diagnostics writes the one-line messages emitted on every degraded
// path of the runtime (unresolvable dispatch, unsupported operands, host faults).
//
// Components never print to a process-wide stream; they are handed a Sink.
package diagnostics

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/funvibe/dynrt/internal/config"
	"github.com/mattn/go-isatty"
)

// Sink receives diagnostic items. Implementations must not fail or panic.
type Sink interface {
	Print(items ...any)
}

// Format renders items as a single diagnostic line without the trailing newline.
func Format(items ...any) string {
	var sb strings.Builder
	sb.WriteString(config.DiagnosticPrefix)
	for i, item := range items {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(itemString(item))
	}
	return sb.String()
}

func itemString(item any) (s string) {
	defer func() {
		// A broken String method must not take the caller down with it.
		if r := recover(); r != nil {
			s = fmt.Sprintf("%%!v(PANIC=%v)", r)
		}
	}()
	switch v := item.(type) {
	case nil:
		return "nil"
	case string:
		return v
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

const (
	colorPrefix = "\033[33m"
	colorReset  = "\033[0m"
)

// Console writes diagnostic lines to an io.Writer.
type Console struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// NewConsole returns a Console writing to w. The prefix is coloured when w is a terminal.
func NewConsole(w io.Writer) *Console {
	c := &Console{w: w}
	if f, ok := w.(*os.File); ok {
		fd := f.Fd()
		c.color = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
	return c
}

// Stdout returns a Console on the process standard output.
func Stdout() *Console {
	return NewConsole(os.Stdout)
}

// SetColor forces colouring on or off.
func (c *Console) SetColor(on bool) {
	c.mu.Lock()
	c.color = on
	c.mu.Unlock()
}

func (c *Console) Print(items ...any) {
	line := Format(items...)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.color {
		line = colorPrefix + config.DiagnosticPrefix + colorReset + strings.TrimPrefix(line, config.DiagnosticPrefix)
	}
	// Write errors are dropped: diagnostics never fail the caller.
	_, _ = io.WriteString(c.w, line+"\n")
}

// Recorder keeps every line in memory.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Print(items ...any) {
	line := Format(items...)
	r.mu.Lock()
	r.lines = append(r.lines, line)
	r.mu.Unlock()
}

// Lines returns a copy of the recorded lines.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// Contains reports whether any recorded line contains substr.
func (r *Recorder) Contains(substr string) bool {
	for _, line := range r.Lines() {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

// Reset drops the recorded lines.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.lines = nil
	r.mu.Unlock()
}

type discard struct{}

func (discard) Print(...any) {}

// Discard drops every diagnostic.
var Discard Sink = discard{}
