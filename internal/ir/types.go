package ir

import (
	"strconv"
	"strings"
)

// Type describes the static type of a Value.
type Type interface {
	String() string
	isType()
}

// TensorType is a dense float tensor with a known shape. An empty shape is a
// zero-dimensional (scalar) tensor.
type TensorType struct {
	Shape []int
}

// ScalarType is one of the non-tensor primitive types.
type ScalarType string

const (
	Float  ScalarType = "float"
	Int    ScalarType = "int"
	Bool   ScalarType = "bool"
	String ScalarType = "str"
	None   ScalarType = "NoneType"
)

// TupleType is a fixed-size heterogeneous tuple.
type TupleType struct {
	Elems []Type
}

// DictType is a string-keyed dictionary with a uniform value type.
type DictType struct {
	Value Type
}

// ModuleType is the type of a traced module instance.
type ModuleType struct {
	Name string
}

func (TensorType) isType() {}
func (ScalarType) isType() {}
func (TupleType) isType()  {}
func (DictType) isType()   {}
func (ModuleType) isType() {}

func (t TensorType) String() string {
	dims := make([]string, len(t.Shape))
	for i, d := range t.Shape {
		dims[i] = strconv.Itoa(d)
	}
	return "Tensor(" + strings.Join(dims, ", ") + ")"
}

func (t ScalarType) String() string { return string(t) }

func (t TupleType) String() string {
	elems := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		elems[i] = e.String()
	}
	return "(" + strings.Join(elems, ", ") + ")"
}

func (t DictType) String() string {
	return "Dict(str, " + t.Value.String() + ")"
}

func (t ModuleType) String() string {
	return "__module__." + t.Name
}

// SameType reports whether two types are structurally equal.
func SameType(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.String() == b.String()
}
