package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// broadcast returns the result shape of an elementwise op and expanded
// operand data. Operands must have the same shape or one must hold a single
// element.
func broadcast(a, b *Tensor) ([]int, []float64, []float64, error) {
	switch {
	case sameShape(a.shape, b.shape):
		return a.shape, a.data, b.data, nil
	case len(b.data) == 1:
		return a.shape, a.data, fill(len(a.data), b.data[0]), nil
	case len(a.data) == 1:
		return b.shape, fill(len(b.data), a.data[0]), b.data, nil
	}
	return nil, nil, nil, fmt.Errorf("%w: %v and %v", ErrShapeMismatch, a.shape, b.shape)
}

func fill(n int, v float64) []float64 {
	out := make([]float64, n)
	if v != 0 {
		floats.AddConst(v, out)
	}
	return out
}

type binaryFunc func(dst, s, t []float64) []float64

func elementwise(a, b *Tensor, fn binaryFunc) (*Tensor, error) {
	shape, x, y, err := broadcast(a, b)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	fn(out, x, y)
	return &Tensor{shape: append([]int{}, shape...), data: out}, nil
}

// Add returns a + b elementwise.
func Add(a, b *Tensor) (*Tensor, error) { return elementwise(a, b, floats.AddTo) }

// Sub returns a - b elementwise.
func Sub(a, b *Tensor) (*Tensor, error) { return elementwise(a, b, floats.SubTo) }

// Mul returns a * b elementwise.
func Mul(a, b *Tensor) (*Tensor, error) { return elementwise(a, b, floats.MulTo) }

// Div returns a / b elementwise.
func Div(a, b *Tensor) (*Tensor, error) { return elementwise(a, b, floats.DivTo) }

// Neg returns -t.
func Neg(t *Tensor) *Tensor {
	out := t.Clone()
	floats.Scale(-1, out.data)
	return out
}

// Relu returns max(t, 0) elementwise.
func Relu(t *Tensor) *Tensor {
	out := t.Clone()
	relu(out.data)
	return out
}

func relu(data []float64) {
	for i, v := range data {
		if v < 0 {
			data[i] = 0
		}
	}
}

// Sum returns the sum of all elements as a zero-dimensional tensor.
func Sum(t *Tensor) *Tensor {
	return Scalar(floats.Sum(t.data))
}

// MatMul multiplies two 2-D tensors.
func MatMul(a, b *Tensor) (*Tensor, error) {
	if a.Dims() != 2 || b.Dims() != 2 || a.shape[1] != b.shape[0] {
		return nil, fmt.Errorf("%w: matmul %v x %v", ErrShapeMismatch, a.shape, b.shape)
	}
	if a.Len() == 0 || b.Len() == 0 {
		return &Tensor{shape: []int{a.shape[0], b.shape[1]}, data: make([]float64, a.shape[0]*b.shape[1])}, nil
	}
	var out mat.Dense
	out.Mul(asDense(a), asDense(b))
	r, c := out.Dims()
	return &Tensor{shape: []int{r, c}, data: out.RawMatrix().Data}, nil
}

// Transpose swaps the two dimensions of a 2-D tensor. 0-D and 1-D tensors
// are returned as copies.
func Transpose(t *Tensor) (*Tensor, error) {
	switch t.Dims() {
	case 0, 1:
		return t.Clone(), nil
	case 2:
		if t.Len() == 0 {
			return &Tensor{shape: []int{t.shape[1], t.shape[0]}, data: []float64{}}, nil
		}
		out := mat.DenseCopyOf(asDense(t).T())
		r, c := out.Dims()
		return &Tensor{shape: []int{r, c}, data: out.RawMatrix().Data}, nil
	}
	return nil, fmt.Errorf("%w: transpose of %d-D tensor", ErrShapeMismatch, t.Dims())
}

// asDense requires both dimensions to be non-zero.
func asDense(t *Tensor) *mat.Dense {
	return mat.NewDense(t.shape[0], t.shape[1], append([]float64(nil), t.data...))
}

// AddInPlace adds b into t and returns t.
func (t *Tensor) AddInPlace(b *Tensor) (*Tensor, error) {
	return t.inplace(b, floats.Add)
}

// SubInPlace subtracts b from t and returns t.
func (t *Tensor) SubInPlace(b *Tensor) (*Tensor, error) {
	return t.inplace(b, floats.Sub)
}

// MulInPlace multiplies t by b and returns t.
func (t *Tensor) MulInPlace(b *Tensor) (*Tensor, error) {
	return t.inplace(b, floats.Mul)
}

// DivInPlace divides t by b and returns t.
func (t *Tensor) DivInPlace(b *Tensor) (*Tensor, error) {
	return t.inplace(b, floats.Div)
}

// NegInPlace negates t and returns it.
func (t *Tensor) NegInPlace() *Tensor {
	floats.Scale(-1, t.data)
	return t
}

// ReluInPlace clamps negative elements of t to zero and returns it.
func (t *Tensor) ReluInPlace() *Tensor {
	relu(t.data)
	return t
}

// CheckInPlace reports whether src can be applied elementwise into dst
// without changing dst's shape.
func CheckInPlace(dst, src *Tensor) error {
	if sameShape(dst.shape, src.shape) || len(src.data) == 1 {
		return nil
	}
	return fmt.Errorf("%w: in-place %v with %v", ErrShapeMismatch, dst.shape, src.shape)
}

func (t *Tensor) inplace(b *Tensor, fn func(dst, s []float64)) (*Tensor, error) {
	if err := CheckInPlace(t, b); err != nil {
		return nil, err
	}
	src := b.data
	if !sameShape(t.shape, b.shape) {
		src = fill(len(t.data), b.data[0])
	}
	fn(t.data, src)
	return t, nil
}
