package ir

import (
	"errors"
	"fmt"
)

var (
	// ErrScopeUnderflow is returned when popping the root scope.
	ErrScopeUnderflow = errors.New("ir: pop_scope called on the root scope")
	// ErrDanglingValue is returned when a value is not owned by the graph
	// that uses it.
	ErrDanglingValue = errors.New("ir: value is not produced inside this graph")
)

// Graph is an arena of nodes and values.
type Graph struct {
	inputs  []*Value
	outputs []*Value
	nodes   []*Node
	nextID  int
	names   map[string]*Value
	root    *Scope
	current *Scope
	depth   int
}

// New creates an empty graph positioned at its root scope.
func New() *Graph {
	root := &Scope{}
	return &Graph{
		names:   make(map[string]*Value),
		root:    root,
		current: root,
	}
}

func (g *Graph) newValue(t Type) *Value {
	v := &Value{id: g.nextID, typ: t, graph: g}
	g.nextID++
	return v
}

// AddInput declares a new graph input.
func (g *Graph) AddInput(name string, t Type) *Value {
	v := g.newValue(t)
	v.offset = len(g.inputs)
	g.inputs = append(g.inputs, v)
	if name != "" {
		v.SetDebugName(name)
	}
	return v
}

// Inputs returns the declared graph inputs in order.
func (g *Graph) Inputs() []*Value { return g.inputs }

// Outputs returns the registered graph outputs in order.
func (g *Graph) Outputs() []*Value { return g.outputs }

// Nodes returns the inserted nodes in insertion order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Create allocates a node in the current scope without inserting it.
func (g *Graph) Create(kind Kind, inputs []*Value, outputs ...Type) *Node {
	n := &Node{
		kind:   kind,
		graph:  g,
		scope:  g.current,
		inputs: append([]*Value(nil), inputs...),
	}
	for _, t := range outputs {
		n.AddOutput(t)
	}
	return n
}

// CreateConstant allocates a constant node holding value.
func (g *Graph) CreateConstant(value any, t Type) *Node {
	n := g.Create(KindConstant, nil, t)
	n.SetAttr("value", value)
	return n
}

// CreateForeignCall allocates a foreign-call node with the given payload and
// no inputs or outputs; callers add edges before inserting it.
func (g *Graph) CreateForeignCall(fc ForeignCall) *Node {
	n := g.Create(KindForeignCall, nil)
	payload := fc
	n.foreign = &payload
	n.SetAttr("name", fc.Name)
	n.SetAttr("arg_types", fc.ArgTypes)
	return n
}

// Insert appends n to the node list. Nodes of another graph are rejected.
func (g *Graph) Insert(n *Node) (*Node, error) {
	if n.graph != g {
		return nil, fmt.Errorf("insert %s: %w", n.Name(), ErrDanglingValue)
	}
	if n.inserted {
		return n, nil
	}
	n.inserted = true
	g.nodes = append(g.nodes, n)
	return n, nil
}

// RegisterOutput appends v to the graph outputs and returns its index.
func (g *Graph) RegisterOutput(v *Value) int {
	g.outputs = append(g.outputs, v)
	return len(g.outputs) - 1
}

// PushScope enters a child scope of the current one.
func (g *Graph) PushScope(name string) *Scope {
	g.current = g.current.child(name)
	g.depth++
	return g.current
}

// PopScope returns to the parent scope.
func (g *Graph) PopScope() error {
	if g.current.IsRoot() {
		return ErrScopeUnderflow
	}
	g.current = g.current.parent
	g.depth--
	return nil
}

// CurrentScope returns the innermost scope (the root when none was pushed).
func (g *Graph) CurrentScope() *Scope { return g.current }

// RootScope returns the implicit root scope.
func (g *Graph) RootScope() *Scope { return g.root }

// ScopeDepth returns how many scopes are currently pushed.
func (g *Graph) ScopeDepth() int { return g.depth }

// Owns reports whether v is a graph input or an output of an inserted node
// of g.
func (g *Graph) Owns(v *Value) bool {
	if v == nil || v.graph != g {
		return false
	}
	if v.IsInput() {
		return true
	}
	return v.node.graph == g && v.node.inserted
}

// Lint checks that every node input and every graph output is owned by g.
func (g *Graph) Lint() error {
	for _, n := range g.nodes {
		for i, in := range n.inputs {
			if !g.Owns(in) {
				return fmt.Errorf("input %d of %s: %w", i, n.Name(), ErrDanglingValue)
			}
		}
	}
	for i, out := range g.outputs {
		if !g.Owns(out) {
			return fmt.Errorf("graph output %d: %w", i, ErrDanglingValue)
		}
	}
	return nil
}
