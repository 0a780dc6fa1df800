package ops

import (
	"github.com/GriffinCanCode/AgentOS/tracer/internal/tensor"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/tracer"
)

// Item reads the only element of a into Go.
func Item(a *tensor.Tensor) (float64, error) {
	if err := operands(a); err != nil {
		return 0, err
	}
	if s := tracer.Tracing(a); s != nil {
		s.NoteDataDependence(a, "float64")
	}
	return a.Item()
}

// Bool reports whether the only element of a is non-zero. Branching on it
// while tracing fixes the branch taken into the graph.
func Bool(a *tensor.Tensor) (bool, error) {
	if err := operands(a); err != nil {
		return false, err
	}
	if s := tracer.Tracing(a); s != nil {
		s.NoteDataDependence(a, "bool")
	}
	v, err := a.Item()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// Data copies the elements of a into Go.
func Data(a *tensor.Tensor) ([]float64, error) {
	if err := operands(a); err != nil {
		return nil, err
	}
	if s := tracer.Tracing(a); s != nil {
		s.NoteDataDependence(a, "[]float64")
	}
	return a.Data(), nil
}
