package ops

import (
	"github.com/GriffinCanCode/AgentOS/tracer/internal/ir"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/tensor"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/tracer"
)

// recordInplace records a mutation of self before it happens. Operands are
// validated first so a failing op leaves no node behind.
func recordInplace(kind ir.Kind, self *tensor.Tensor, other *tensor.Tensor) error {
	if err := operands(self); err != nil {
		return err
	}
	args := []any{self}
	if other != nil {
		if err := tensor.CheckInPlace(self, other); err != nil {
			return err
		}
		args = append(args, other)
	}
	s := tracer.Tracing(args...)
	if s == nil {
		return nil
	}
	_, err := s.RecordInplace(kind, self, args[1:]...)
	return err
}

// AddInPlace adds other into self and returns self.
func AddInPlace(self, other *tensor.Tensor) (*tensor.Tensor, error) {
	if err := operands(self, other); err != nil {
		return nil, err
	}
	if err := recordInplace(ir.KindAdd, self, other); err != nil {
		return nil, err
	}
	return self.AddInPlace(other)
}

// SubInPlace subtracts other from self and returns self.
func SubInPlace(self, other *tensor.Tensor) (*tensor.Tensor, error) {
	if err := operands(self, other); err != nil {
		return nil, err
	}
	if err := recordInplace(ir.KindSub, self, other); err != nil {
		return nil, err
	}
	return self.SubInPlace(other)
}

// MulInPlace multiplies self by other and returns self.
func MulInPlace(self, other *tensor.Tensor) (*tensor.Tensor, error) {
	if err := operands(self, other); err != nil {
		return nil, err
	}
	if err := recordInplace(ir.KindMul, self, other); err != nil {
		return nil, err
	}
	return self.MulInPlace(other)
}

// DivInPlace divides self by other and returns self.
func DivInPlace(self, other *tensor.Tensor) (*tensor.Tensor, error) {
	if err := operands(self, other); err != nil {
		return nil, err
	}
	if err := recordInplace(ir.KindDiv, self, other); err != nil {
		return nil, err
	}
	return self.DivInPlace(other)
}

// NegInPlace negates self and returns it.
func NegInPlace(self *tensor.Tensor) (*tensor.Tensor, error) {
	if err := recordInplace(ir.KindNeg, self, nil); err != nil {
		return nil, err
	}
	return self.NegInPlace(), nil
}

// ReluInPlace clamps self at zero and returns it.
func ReluInPlace(self *tensor.Tensor) (*tensor.Tensor, error) {
	if err := recordInplace(ir.KindRelu, self, nil); err != nil {
		return nil, err
	}
	return self.ReluInPlace(), nil
}
