// Package id provides identifier helpers for the tracer.
//
// This package offers:
//   - Prefixed ULIDs for trace sessions and jobs (lexicographically sortable,
//     readable in logs)
//   - Goroutine identity, used to scope the active tracing session to the
//     goroutine that installed it
package id

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ============================================================================
// Type-Safe ID Wrappers
// ============================================================================

// TraceID identifies one tracing session
type TraceID string

// JobID identifies one trace job run by the CLI
type JobID string

// ============================================================================
// ID Prefixes
// ============================================================================

const (
	TracePrefix = "trace"
	JobPrefix   = "job"
)

// ============================================================================
// ULID Generator
// ============================================================================

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex // Protects entropy reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewTraceID generates a new trace session ID
func NewTraceID() TraceID {
	return TraceID(Default().GenerateWithPrefix(TracePrefix))
}

// NewJobID generates a new job ID
func NewJobID() JobID {
	return JobID(Default().GenerateWithPrefix(JobPrefix))
}

func (id TraceID) String() string { return string(id) }
func (id JobID) String() string   { return string(id) }

// ============================================================================
// Goroutine Identity
// ============================================================================

var goroutinePrefix = []byte("goroutine ")

// Goroutine returns the runtime ID of the calling goroutine.
//
// The ID is parsed from the first line of the goroutine's stack header
// ("goroutine 42 [running]:"). Returns 0 if the header cannot be parsed.
func Goroutine() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := bytes.TrimPrefix(buf[:n], goroutinePrefix)
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	gid, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return gid
}
