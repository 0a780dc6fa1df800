package ir

// ForeignCall is the payload of a KindForeignCall node: enough to re-invoke
// an operation the tracer could not decompose.
type ForeignCall struct {
	// Name is a display name for the callable.
	Name string
	// ArgTypes holds one tag per argument in call order: 'd' for a traced
	// value (an input edge), 'c' for a captured scalar.
	ArgTypes string
	// Scalars are the captured non-traced arguments in call order.
	Scalars []any
	// Target is the resolved routine that reproduces the call at runtime.
	Target any
}

// Node is one operation in the graph.
type Node struct {
	kind     Kind
	graph    *Graph
	inputs   []*Value
	outputs  []*Value
	scope    *Scope
	source   SourceRange
	attrs    map[string]any
	attrKeys []string
	inplace  bool
	foreign  *ForeignCall
	inserted bool
}

// Kind returns the node kind.
func (n *Node) Kind() Kind { return n.kind }

// Graph returns the owning graph.
func (n *Node) Graph() *Graph { return n.graph }

// Inputs returns the input edges in order.
func (n *Node) Inputs() []*Value { return n.inputs }

// Outputs returns the produced values in order.
func (n *Node) Outputs() []*Value { return n.outputs }

// Output returns the primary (first) output, nil if the node has none.
func (n *Node) Output() *Value {
	if len(n.outputs) == 0 {
		return nil
	}
	return n.outputs[0]
}

// AddInput appends an input edge.
func (n *Node) AddInput(v *Value) {
	n.inputs = append(n.inputs, v)
}

// AddOutput appends a new output value of the given type.
func (n *Node) AddOutput(t Type) *Value {
	v := n.graph.newValue(t)
	v.node = n
	v.offset = len(n.outputs)
	n.outputs = append(n.outputs, v)
	return v
}

// Scope returns the scope the node was created in.
func (n *Node) Scope() *Scope { return n.scope }

// SetScope moves the node to another scope.
func (n *Node) SetScope(s *Scope) { n.scope = s }

// SourceRange returns the attached provenance.
func (n *Node) SourceRange() SourceRange { return n.source }

// SetSourceRange attaches provenance.
func (n *Node) SetSourceRange(r SourceRange) { n.source = r }

// Attr returns a named attribute.
func (n *Node) Attr(name string) (any, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// SetAttr sets a named attribute, keeping first-set order for printing.
func (n *Node) SetAttr(name string, value any) {
	if n.attrs == nil {
		n.attrs = make(map[string]any)
	}
	if _, ok := n.attrs[name]; !ok {
		n.attrKeys = append(n.attrKeys, name)
	}
	n.attrs[name] = value
}

// Inplace reports whether the node mutates its first input.
func (n *Node) Inplace() bool { return n.inplace }

// SetInplace marks the node as mutating its first input.
func (n *Node) SetInplace(inplace bool) { n.inplace = inplace }

// Foreign returns the foreign-call payload, nil for other kinds.
func (n *Node) Foreign() *ForeignCall { return n.foreign }

// Inserted reports whether the node is part of the graph's node list.
func (n *Node) Inserted() bool { return n.inserted }

// Name returns the printed operator name; in-place nodes get a trailing "_".
func (n *Node) Name() string {
	if n.inplace {
		return n.kind.String() + "_"
	}
	return n.kind.String()
}
