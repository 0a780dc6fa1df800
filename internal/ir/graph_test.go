package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSource struct {
	text string
	file string
	line int
}

func (s fixedSource) Text() string { return s.text }
func (s fixedSource) Location() (string, int, bool) {
	return s.file, s.line, s.file != ""
}

func TestAddInputOrderAndNames(t *testing.T) {
	g := New()

	x := g.AddInput("x", TensorType{})
	y := g.AddInput("x", TensorType{Shape: []int{2}})
	z := g.AddInput("", Float)

	require.Len(t, g.Inputs(), 3)
	assert.Equal(t, []*Value{x, y, z}, g.Inputs())
	assert.Equal(t, "x", x.DebugName())
	assert.Equal(t, "x.1", y.DebugName(), "duplicate names are uniquified")
	assert.False(t, z.HasDebugName())
	assert.Equal(t, 2, z.Offset())
	assert.True(t, z.IsInput())
}

func TestSetDebugNameReleasesOldName(t *testing.T) {
	g := New()
	a := g.AddInput("a", Float)
	a.SetDebugName("renamed")

	b := g.AddInput("a", Float)
	assert.Equal(t, "a", b.DebugName())
	assert.Equal(t, "%renamed", a.String())
}

func TestCreateInsertAndLint(t *testing.T) {
	g := New()
	x := g.AddInput("x", TensorType{})

	one, err := g.Insert(g.CreateConstant(1.0, Float))
	require.NoError(t, err)
	add, err := g.Insert(g.Create(KindAdd, []*Value{x, one.Output()}, TensorType{}))
	require.NoError(t, err)
	g.RegisterOutput(add.Output())

	assert.Len(t, g.Nodes(), 2)
	assert.NoError(t, g.Lint())
	assert.True(t, g.Owns(add.Output()))
}

func TestLintDetectsUninsertedProducer(t *testing.T) {
	g := New()
	x := g.AddInput("x", TensorType{})
	orphan := g.Create(KindNeg, []*Value{x}, TensorType{})

	g.RegisterOutput(orphan.Output())
	assert.ErrorIs(t, g.Lint(), ErrDanglingValue)
}

func TestLintDetectsForeignGraphValue(t *testing.T) {
	g := New()
	other := New()
	foreign := other.AddInput("x", TensorType{})

	_, err := g.Insert(g.Create(KindRelu, []*Value{foreign}, TensorType{}))
	require.NoError(t, err)
	assert.ErrorIs(t, g.Lint(), ErrDanglingValue)

	_, err = g.Insert(other.Create(KindRelu, nil, TensorType{}))
	assert.ErrorIs(t, err, ErrDanglingValue)
}

func TestScopes(t *testing.T) {
	g := New()
	x := g.AddInput("x", TensorType{})

	assert.True(t, g.CurrentScope().IsRoot())
	assert.Equal(t, "", g.CurrentScope().String())

	g.PushScope("A")
	g.PushScope("B")
	nx, _ := g.Insert(g.Create(KindNeg, []*Value{x}, TensorType{}))
	require.NoError(t, g.PopScope())
	ny, _ := g.Insert(g.Create(KindRelu, []*Value{x}, TensorType{}))
	require.NoError(t, g.PopScope())

	assert.Equal(t, "A/B", nx.Scope().String())
	assert.Equal(t, "B", nx.Scope().Name())
	assert.Equal(t, "A", ny.Scope().String())
	assert.Equal(t, 0, g.ScopeDepth())
	assert.ErrorIs(t, g.PopScope(), ErrScopeUnderflow)
}

func TestForeignCallNode(t *testing.T) {
	g := New()
	x := g.AddInput("x", TensorType{})

	n := g.CreateForeignCall(ForeignCall{Name: "scale", ArgTypes: "dc", Scalars: []any{2.0}})
	n.AddInput(x)
	n.AddOutput(TensorType{})
	_, err := g.Insert(n)
	require.NoError(t, err)

	require.NotNil(t, n.Foreign())
	assert.Equal(t, KindForeignCall, n.Kind())
	assert.Equal(t, "dc", n.Foreign().ArgTypes)
	assert.Equal(t, []any{2.0}, n.Foreign().Scalars)
	name, ok := n.Attr("name")
	require.True(t, ok)
	assert.Equal(t, "scale", name)
}

func TestGraphString(t *testing.T) {
	g := New()
	x := g.AddInput("x", TensorType{})
	one, _ := g.Insert(g.CreateConstant(1.0, Float))
	g.PushScope("layer")
	add := g.Create(KindAdd, []*Value{x, one.Output()}, TensorType{})
	add.SetInplace(true)
	add.SetSourceRange(NewSourceRange(fixedSource{text: "model.js(3): f", file: "model.js", line: 3}))
	_, _ = g.Insert(add)
	require.NoError(t, g.PopScope())
	g.RegisterOutput(add.Output())

	want := "graph(%x : Tensor()):\n" +
		"  %1 : float = prim::Constant[value=1]()\n" +
		"  %2 : Tensor() = aten::add_(%x, %1), scope: layer # model.js:3\n" +
		"  return (%2)\n"
	assert.Equal(t, want, g.String())
}

func TestSourceRangeUnknown(t *testing.T) {
	var r SourceRange
	assert.False(t, r.Known())
	assert.Equal(t, "", r.Text())
	assert.Equal(t, "<unknown>", r.String())
}

func TestKinds(t *testing.T) {
	for _, k := range Kinds() {
		assert.True(t, k.Valid())
		assert.NotContains(t, k.String(), "Kind(")
	}
	assert.False(t, Kind(200).Valid())
	assert.True(t, KindAdd.IsPrimitive())
	assert.False(t, KindForeignCall.IsPrimitive())
	assert.True(t, KindMul.SupportsInplace())
	assert.False(t, KindMatMul.SupportsInplace())
}

func TestTypeStrings(t *testing.T) {
	assert.Equal(t, "Tensor(2, 3)", TensorType{Shape: []int{2, 3}}.String())
	assert.Equal(t, "(Tensor(), float)", TupleType{Elems: []Type{TensorType{}, Float}}.String())
	assert.Equal(t, "Dict(str, Tensor(1))", DictType{Value: TensorType{Shape: []int{1}}}.String())
	assert.True(t, SameType(TensorType{Shape: []int{2}}, TensorType{Shape: []int{2}}))
	assert.False(t, SameType(Float, Int))
}
