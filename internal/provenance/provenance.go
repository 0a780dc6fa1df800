package provenance

import (
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// StackEntry is one resolved frame.
type StackEntry struct {
	Function string
	File     string
	Line     int
}

// Stack is a captured call stack, innermost frame first.
type Stack interface {
	Entries() []StackEntry
}

// Entries is an already-resolved Stack.
type Entries []StackEntry

// Entries implements Stack.
func (e Entries) Entries() []StackEntry { return e }

// Record is a lazily formatted provenance blob. It implements ir.Source.
type Record struct {
	stack Stack

	once    sync.Once
	done    atomic.Bool
	entries []StackEntry
	text    string
	file    string
	line    int
	ok      bool
}

// NewRecord wraps a captured stack without resolving it.
func NewRecord(stack Stack) *Record {
	return &Record{stack: stack}
}

func (r *Record) materialize() {
	r.once.Do(func() {
		if r.stack != nil {
			r.entries = r.stack.Entries()
		}
		var sb strings.Builder
		for _, e := range r.entries {
			if e.File == "" {
				continue
			}
			sb.WriteString(e.File)
			sb.WriteString("(")
			sb.WriteString(strconv.Itoa(e.Line))
			sb.WriteString("): ")
			sb.WriteString(e.Function)
			sb.WriteString("\n")
			if !r.ok {
				r.file, r.line, r.ok = e.File, e.Line, true
			}
		}
		r.text = sb.String()
		r.stack = nil
		r.done.Store(true)
	})
}

// Materialized reports whether the text was already built.
func (r *Record) Materialized() bool {
	return r.done.Load()
}

// Entries returns the resolved frames.
func (r *Record) Entries() []StackEntry {
	r.materialize()
	return r.entries
}

// Text returns the multi-line stack trace.
func (r *Record) Text() string {
	r.materialize()
	return r.text
}

// Location returns the first frame that has a file.
func (r *Record) Location() (string, int, bool) {
	r.materialize()
	return r.file, r.line, r.ok
}

// pcStack holds raw program counters and resolves them on demand.
type pcStack struct {
	pcs  []uintptr
	skip []string
}

// Entries implements Stack.
func (s *pcStack) Entries() []StackEntry {
	frames := runtime.CallersFrames(s.pcs)
	out := make([]StackEntry, 0, len(s.pcs))
	for {
		f, more := frames.Next()
		if f.Function != "" && !s.hidden(f) {
			out = append(out, StackEntry{Function: f.Function, File: f.File, Line: f.Line})
		}
		if !more {
			break
		}
	}
	return out
}

func (s *pcStack) hidden(f runtime.Frame) bool {
	if strings.HasSuffix(f.File, "_test.go") {
		return false
	}
	for _, prefix := range s.skip {
		if strings.HasPrefix(f.Function, prefix) {
			return true
		}
	}
	return false
}

// GoCapturer captures native Go call stacks.
type GoCapturer struct {
	// Depth bounds the number of captured frames.
	Depth int
	// Skip lists function-name prefixes whose frames are dropped on
	// resolution (frames in _test.go files are always kept).
	Skip []string
}

// Capture records the caller's stack as program counters only.
func (c GoCapturer) Capture() Stack {
	depth := c.Depth
	if depth <= 0 {
		depth = 32
	}
	pcs := make([]uintptr, depth)
	// Skip runtime.Callers and Capture itself.
	n := runtime.Callers(2, pcs)
	return &pcStack{pcs: pcs[:n], skip: c.Skip}
}
