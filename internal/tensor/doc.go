// Package tensor provides the runtime values the tracer observes.
//
// A Tensor is a dense float64 array with a shape. Its identity (the pointer)
// is what the tracer keys its value table on, so kernels never return one of
// their arguments: every out-of-place operation allocates a fresh Tensor and
// in-place operations mutate and return the receiver.
//
// Kernels are pure numeric routines built on gonum; recording them into a
// graph is the job of package ops.
package tensor
