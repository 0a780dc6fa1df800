package ir

import (
	"fmt"
	"strings"
)

// String renders the graph in a compact textual form:
//
//	graph(%x : Tensor()):
//	  %1 : float = prim::Constant[value=1]()
//	  %2 : Tensor() = aten::add(%x, %1)
//	  return (%2)
func (g *Graph) String() string {
	var sb strings.Builder

	sb.WriteString("graph(")
	for i, in := range g.inputs {
		if i > 0 {
			sb.WriteString(",\n      ")
		}
		fmt.Fprintf(&sb, "%s : %s", in, typeString(in.typ))
	}
	sb.WriteString("):\n")

	for _, n := range g.nodes {
		sb.WriteString("  ")
		writeNode(&sb, n)
		sb.WriteString("\n")
	}

	sb.WriteString("  return (")
	sb.WriteString(joinValues(g.outputs))
	sb.WriteString(")\n")
	return sb.String()
}

func writeNode(sb *strings.Builder, n *Node) {
	for i, out := range n.outputs {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "%s : %s", out, typeString(out.typ))
	}
	if len(n.outputs) > 0 {
		sb.WriteString(" = ")
	}
	sb.WriteString(n.Name())
	if len(n.attrKeys) > 0 {
		sb.WriteString("[")
		for i, k := range n.attrKeys {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "%s=%s", k, formatAttr(n.attrs[k]))
		}
		sb.WriteString("]")
	}
	sb.WriteString("(")
	sb.WriteString(joinValues(n.inputs))
	sb.WriteString(")")
	if !n.scope.IsRoot() {
		sb.WriteString(", scope: ")
		sb.WriteString(n.scope.String())
	}
	if n.source.Known() {
		if file, line, ok := n.source.Location(); ok {
			fmt.Fprintf(sb, " # %s:%d", file, line)
		}
	}
}

func joinValues(vs []*Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}

func typeString(t Type) string {
	if t == nil {
		return "Any"
	}
	return t.String()
}

func formatAttr(v any) string {
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("%q", x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}
