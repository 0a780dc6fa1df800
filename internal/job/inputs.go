package job

import (
	"fmt"

	"github.com/GriffinCanCode/AgentOS/tracer/internal/tensor"
)

// ConvertInput turns a decoded input into a trace input: maps with "data"
// become tensors, lists become tuples, numbers are normalized to float64 or
// int, bools and strings pass through.
func ConvertInput(raw any) (any, error) {
	switch x := raw.(type) {
	case map[string]any:
		return convertTensor(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			v, err := ConvertInput(e)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = v
		}
		return out, nil
	case float64, bool, string:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case uint64:
		return int(x), nil
	case nil:
		return nil, fmt.Errorf("%w: empty input", ErrInvalid)
	}
	return nil, fmt.Errorf("%w: unsupported input %T", ErrInvalid, raw)
}

func convertTensor(raw any) (*tensor.Tensor, error) {
	fields, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: tensor must be a map with data and shape, got %T", ErrInvalid, raw)
	}

	data, err := floats(fields["data"])
	if err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}
	dims := []int{len(data)}
	if shape, ok := fields["shape"]; ok {
		if dims, err = ints(shape); err != nil {
			return nil, fmt.Errorf("shape: %w", err)
		}
	}
	return newTensor(data, dims)
}

// newTensor is tensor.New with an empty shape meaning zero-dimensional.
func newTensor(data []float64, dims []int) (*tensor.Tensor, error) {
	if len(dims) == 0 {
		if len(data) != 1 {
			return nil, fmt.Errorf("%w: %d elements for a zero-dimensional tensor", tensor.ErrInvalidShape, len(data))
		}
		return tensor.Scalar(data[0]), nil
	}
	return tensor.New(data, dims...)
}

func floats(raw any) ([]float64, error) {
	list, ok := raw.([]any)
	if !ok {
		if n, ok := number(raw); ok {
			return []float64{n}, nil
		}
		return nil, fmt.Errorf("%w: expected a list of numbers, got %T", ErrInvalid, raw)
	}
	out := make([]float64, len(list))
	for i, e := range list {
		n, ok := number(e)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is %T", ErrInvalid, i, e)
		}
		out[i] = n
	}
	return out, nil
}

func ints(raw any) ([]int, error) {
	fs, err := floats(raw)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(fs))
	for i, f := range fs {
		if f != float64(int(f)) {
			return nil, fmt.Errorf("%w: dimension %v is not an integer", ErrInvalid, f)
		}
		out[i] = int(f)
	}
	return out, nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
