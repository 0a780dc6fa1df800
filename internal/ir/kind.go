package ir

import "fmt"

// Kind identifies what a node computes. The set is closed: new behavior that
// cannot be expressed with these kinds is recorded as KindForeignCall.
type Kind uint8

const (
	KindConstant Kind = iota
	KindAdd
	KindSub
	KindMul
	KindDiv
	KindNeg
	KindMatMul
	KindRelu
	KindSum
	KindTranspose
	KindTupleConstruct
	KindTupleUnpack
	KindDictConstruct
	KindGetAttr
	KindForeignCall

	kindCount
)

var kindNames = [kindCount]string{
	KindConstant:       "prim::Constant",
	KindAdd:            "aten::add",
	KindSub:            "aten::sub",
	KindMul:            "aten::mul",
	KindDiv:            "aten::div",
	KindNeg:            "aten::neg",
	KindMatMul:         "aten::matmul",
	KindRelu:           "aten::relu",
	KindSum:            "aten::sum",
	KindTranspose:      "aten::t",
	KindTupleConstruct: "prim::TupleConstruct",
	KindTupleUnpack:    "prim::TupleUnpack",
	KindDictConstruct:  "prim::DictConstruct",
	KindGetAttr:        "prim::GetAttr",
	KindForeignCall:    "prim::ForeignCall",
}

// String returns the qualified name of the kind.
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k is a member of the closed kind set.
func (k Kind) Valid() bool {
	return k < kindCount
}

// IsPrimitive reports whether k is a native numeric op (aten namespace).
func (k Kind) IsPrimitive() bool {
	switch k {
	case KindAdd, KindSub, KindMul, KindDiv, KindNeg, KindMatMul, KindRelu, KindSum, KindTranspose:
		return true
	}
	return false
}

// SupportsInplace reports whether k has an in-place variant.
func (k Kind) SupportsInplace() bool {
	switch k {
	case KindAdd, KindSub, KindMul, KindDiv, KindNeg, KindRelu:
		return true
	}
	return false
}

// Kinds returns every valid kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}
