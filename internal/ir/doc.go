// Package ir is the static dataflow representation built by the tracer.
//
// A Graph owns every Node and Value created through it. Values are either
// graph inputs or outputs of exactly one node. Nodes carry a Kind from a
// closed set (native ops, structural prim nodes and ForeignCall), the scope
// that was current when they were created and a SourceRange whose text is
// produced lazily.
//
// The package knows nothing about runtime values or tracing sessions; the
// tracer drives it through AddInput, Create, Insert and RegisterOutput.
package ir
