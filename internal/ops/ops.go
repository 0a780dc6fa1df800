package ops

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/AgentOS/tracer/internal/ir"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/tensor"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/tracer"
)

// ErrNilOperand is returned when an op receives a nil tensor.
var ErrNilOperand = errors.New("ops: nil tensor operand")

func operands(ts ...*tensor.Tensor) error {
	for i, t := range ts {
		if t == nil {
			return fmt.Errorf("%w: argument %d", ErrNilOperand, i)
		}
	}
	return nil
}

func record(kind ir.Kind, out *tensor.Tensor, args ...any) (*tensor.Tensor, error) {
	if s := tracer.Tracing(args...); s != nil {
		if _, err := s.Record(kind, args, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func binary(kind ir.Kind, fn func(a, b *tensor.Tensor) (*tensor.Tensor, error), a, b *tensor.Tensor) (*tensor.Tensor, error) {
	if err := operands(a, b); err != nil {
		return nil, err
	}
	out, err := fn(a, b)
	if err != nil {
		return nil, err
	}
	return record(kind, out, a, b)
}

// Add returns a + b.
func Add(a, b *tensor.Tensor) (*tensor.Tensor, error) { return binary(ir.KindAdd, tensor.Add, a, b) }

// Sub returns a - b.
func Sub(a, b *tensor.Tensor) (*tensor.Tensor, error) { return binary(ir.KindSub, tensor.Sub, a, b) }

// Mul returns a * b.
func Mul(a, b *tensor.Tensor) (*tensor.Tensor, error) { return binary(ir.KindMul, tensor.Mul, a, b) }

// Div returns a / b.
func Div(a, b *tensor.Tensor) (*tensor.Tensor, error) { return binary(ir.KindDiv, tensor.Div, a, b) }

// MatMul returns the matrix product of two 2-D tensors.
func MatMul(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	return binary(ir.KindMatMul, tensor.MatMul, a, b)
}

// AddScalar returns a + c. The scalar is recorded as a constant operand.
func AddScalar(a *tensor.Tensor, c float64) (*tensor.Tensor, error) {
	if err := operands(a); err != nil {
		return nil, err
	}
	out, err := tensor.Add(a, tensor.Scalar(c))
	if err != nil {
		return nil, err
	}
	return record(ir.KindAdd, out, a, c)
}

// MulScalar returns a * c. The scalar is recorded as a constant operand.
func MulScalar(a *tensor.Tensor, c float64) (*tensor.Tensor, error) {
	if err := operands(a); err != nil {
		return nil, err
	}
	out, err := tensor.Mul(a, tensor.Scalar(c))
	if err != nil {
		return nil, err
	}
	return record(ir.KindMul, out, a, c)
}

// Neg returns -a.
func Neg(a *tensor.Tensor) (*tensor.Tensor, error) {
	if err := operands(a); err != nil {
		return nil, err
	}
	return record(ir.KindNeg, tensor.Neg(a), a)
}

// Relu returns max(a, 0).
func Relu(a *tensor.Tensor) (*tensor.Tensor, error) {
	if err := operands(a); err != nil {
		return nil, err
	}
	return record(ir.KindRelu, tensor.Relu(a), a)
}

// Sum reduces a to a zero-dimensional tensor.
func Sum(a *tensor.Tensor) (*tensor.Tensor, error) {
	if err := operands(a); err != nil {
		return nil, err
	}
	return record(ir.KindSum, tensor.Sum(a), a)
}

// Transpose swaps the dimensions of a 2-D tensor.
func Transpose(a *tensor.Tensor) (*tensor.Tensor, error) {
	if err := operands(a); err != nil {
		return nil, err
	}
	out, err := tensor.Transpose(a)
	if err != nil {
		return nil, err
	}
	return record(ir.KindTranspose, out, a)
}
