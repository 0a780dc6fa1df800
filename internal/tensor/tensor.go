package tensor

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrShapeMismatch is returned when operand shapes are incompatible.
	ErrShapeMismatch = errors.New("tensor: shape mismatch")
	// ErrNotScalar is returned when a single element was required.
	ErrNotScalar = errors.New("tensor: expected exactly one element")
	// ErrInvalidShape is returned when data does not fill the shape.
	ErrInvalidShape = errors.New("tensor: invalid shape")
)

// Tensor is a dense, row-major float64 array.
type Tensor struct {
	shape []int
	data  []float64
}

// New creates a tensor from data. Without dims the tensor is 1-D with
// len(data) elements.
func New(data []float64, dims ...int) (*Tensor, error) {
	shape := dims
	if len(shape) == 0 {
		shape = []int{len(data)}
	}
	if err := checkDims(shape); err != nil {
		return nil, err
	}
	if n := numel(shape); n != len(data) {
		return nil, fmt.Errorf("%w: %d elements for shape %v (%d)", ErrInvalidShape, len(data), shape, n)
	}
	return &Tensor{
		shape: append([]int(nil), shape...),
		data:  append([]float64(nil), data...),
	}, nil
}

// MustNew is New that panics on error. Intended for literals in tests and
// examples.
func MustNew(data []float64, dims ...int) *Tensor {
	t, err := New(data, dims...)
	if err != nil {
		panic(err)
	}
	return t
}

// Scalar creates a zero-dimensional tensor.
func Scalar(v float64) *Tensor {
	return &Tensor{shape: []int{}, data: []float64{v}}
}

// Zeros creates a zero-filled tensor of the given shape.
func Zeros(dims ...int) (*Tensor, error) {
	if err := checkDims(dims); err != nil {
		return nil, err
	}
	return &Tensor{
		shape: append([]int{}, dims...),
		data:  make([]float64, numel(dims)),
	}, nil
}

// MustZeros is Zeros that panics on error.
func MustZeros(dims ...int) *Tensor {
	t, err := Zeros(dims...)
	if err != nil {
		panic(err)
	}
	return t
}

func checkDims(dims []int) error {
	for _, d := range dims {
		if d < 0 {
			return fmt.Errorf("%w: negative dimension in %v", ErrInvalidShape, dims)
		}
	}
	return nil
}

// Shape returns a copy of the tensor shape.
func (t *Tensor) Shape() []int {
	return append([]int{}, t.shape...)
}

// Dims returns the number of dimensions.
func (t *Tensor) Dims() int { return len(t.shape) }

// Len returns the number of elements.
func (t *Tensor) Len() int { return len(t.data) }

// Data returns a copy of the elements in row-major order.
func (t *Tensor) Data() []float64 {
	return append([]float64(nil), t.data...)
}

// Item returns the only element of a single-element tensor.
func (t *Tensor) Item() (float64, error) {
	if len(t.data) != 1 {
		return 0, fmt.Errorf("%w: tensor has %d elements", ErrNotScalar, len(t.data))
	}
	return t.data[0], nil
}

// Clone returns a deep copy with a new identity.
func (t *Tensor) Clone() *Tensor {
	return &Tensor{shape: t.Shape(), data: t.Data()}
}

// Equal reports whether two tensors have the same shape and elements.
func (t *Tensor) Equal(o *Tensor) bool {
	if !sameShape(t.shape, o.shape) || len(t.data) != len(o.data) {
		return false
	}
	for i := range t.data {
		if t.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

func (t *Tensor) String() string {
	var sb strings.Builder
	sb.WriteString("tensor(")
	fmt.Fprintf(&sb, "%v", t.data)
	if len(t.shape) != 1 {
		fmt.Fprintf(&sb, ", shape=%v", t.shape)
	}
	sb.WriteString(")")
	return sb.String()
}

func numel(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
