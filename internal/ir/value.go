package ir

import "strconv"

// Value is an edge of the dataflow graph: a graph input or one output of a
// node.
type Value struct {
	id     int
	name   string
	typ    Type
	node   *Node
	offset int
	graph  *Graph
}

// ID returns the graph-unique numeric id.
func (v *Value) ID() int { return v.id }

// DebugName returns the human-readable name, "" when unnamed.
func (v *Value) DebugName() string { return v.name }

// HasDebugName reports whether a debug name was assigned.
func (v *Value) HasDebugName() bool { return v.name != "" }

// SetDebugName assigns a graph-unique debug name. Taken names get a numeric
// suffix ("x", "x.1", "x.2", ...). An empty name clears the current one.
func (v *Value) SetDebugName(name string) {
	if v.name != "" {
		delete(v.graph.names, v.name)
	}
	if name == "" {
		v.name = ""
		return
	}
	unique := name
	for i := 1; ; i++ {
		if _, taken := v.graph.names[unique]; !taken {
			break
		}
		unique = name + "." + strconv.Itoa(i)
	}
	v.graph.names[unique] = v
	v.name = unique
}

// Type returns the static type of the value.
func (v *Value) Type() Type { return v.typ }

// SetType replaces the static type of the value.
func (v *Value) SetType(t Type) { v.typ = t }

// Node returns the producing node, nil for graph inputs.
func (v *Value) Node() *Node { return v.node }

// Offset returns the index of v among its producer's outputs (or among the
// graph inputs).
func (v *Value) Offset() int { return v.offset }

// IsInput reports whether v is a graph input.
func (v *Value) IsInput() bool { return v.node == nil }

// Graph returns the owning graph.
func (v *Value) Graph() *Graph { return v.graph }

// String returns the printed reference, e.g. "%x" or "%7".
func (v *Value) String() string {
	if v.name != "" {
		return "%" + v.name
	}
	return "%" + strconv.Itoa(v.id)
}
