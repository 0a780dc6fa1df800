package tracer

import (
	"github.com/GriffinCanCode/AgentOS/tracer/internal/ir"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/tensor"
)

// NamedTensor is a module parameter or buffer.
type NamedTensor struct {
	Name   string
	Tensor *tensor.Tensor
}

// Module is an object whose tensors are traced as attributes of a leading
// "self" graph input rather than as separate inputs.
type Module interface {
	ModuleName() string
	NamedParameters() []NamedTensor
}

// bindModule declares the self input and one GetAttr node per parameter.
func (s *State) bindModule(m Module) error {
	self := s.graph.AddInput("self", ir.ModuleType{Name: m.ModuleName()})
	for _, p := range m.NamedParameters() {
		n := s.graph.Create(ir.KindGetAttr, []*ir.Value{self}, tensorType(p.Tensor))
		n.SetAttr("name", p.Name)
		if _, err := s.insert(n); err != nil {
			return err
		}
		n.Output().SetDebugName(p.Name)
		s.SetValue(p.Tensor, n.Output())
	}
	return nil
}
