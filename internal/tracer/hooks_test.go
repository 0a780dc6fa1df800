package tracer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/tracer/internal/ir"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/provenance"
)

func TestSetWarnReturnsPrevious(t *testing.T) {
	var got []string
	first := WarnFunc(func(reason string) { got = append(got, "first:"+reason) })
	second := WarnFunc(func(reason string) { got = append(got, "second:"+reason) })

	orig := SetWarn(first)
	defer SetWarn(orig)

	prev := SetWarn(second)
	require.NotNil(t, prev)
	assert.True(t, Warn("a"))

	SetWarn(prev)
	assert.True(t, Warn("b"))
	assert.Equal(t, []string{"second:a", "first:b"}, got)

	SetWarn(nil)
	assert.False(t, Warn("dropped"))
}

func TestDefaultRecordSourceLocation(t *testing.T) {
	orig := SetCallstack(func() provenance.Stack {
		return provenance.Entries{{Function: "forward", File: "model.js", Line: 7}}
	})
	defer SetCallstack(orig)

	g := ir.New()
	n := g.Create(ir.KindNeg, nil, ir.Float)
	RecordSourceLocation(n)

	require.True(t, n.SourceRange().Known())
	file, line, ok := n.SourceRange().Location()
	assert.True(t, ok)
	assert.Equal(t, "model.js", file)
	assert.Equal(t, 7, line)
	assert.Equal(t, "model.js(7): forward\n", n.SourceRange().Text())
}

func TestNoCallstackLeavesSourceUnknown(t *testing.T) {
	orig := SetCallstack(nil)
	defer SetCallstack(orig)

	n := ir.New().Create(ir.KindNeg, nil, ir.Float)
	RecordSourceLocation(n)
	assert.False(t, n.SourceRange().Known())
}

func TestCustomRecordSourceLocation(t *testing.T) {
	var seen *ir.Node
	orig := SetRecordSourceLocation(func(n *ir.Node) { seen = n })
	defer SetRecordSourceLocation(orig)

	n := ir.New().Create(ir.KindNeg, nil, ir.Float)
	RecordSourceLocation(n)
	assert.Same(t, n, seen)
}

func TestGoCallstackSkipsTracerFrames(t *testing.T) {
	stack := captureThroughTracer(GoCallstack(16))
	entries := stack.Entries()
	require.NotEmpty(t, entries)

	// Frames defined in this test file are kept even though they live in
	// the tracer package.
	assert.True(t, strings.HasSuffix(entries[0].File, "hooks_test.go"), "top frame: %+v", entries[0])
	for _, e := range entries {
		assert.NotContains(t, e.Function, "provenance.GoCapturer")
	}
}

func captureThroughTracer(fn CallstackFunc) provenance.Stack {
	return fn()
}
