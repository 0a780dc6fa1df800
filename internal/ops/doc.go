// Package ops is the primitive operation surface seen by traced code.
//
// Every function computes its result eagerly with package tensor. When the
// calling goroutine has an active tracing session and at least one operand
// is traced, the op is also recorded into the session's graph and its result
// bound in the value table, so the same code runs traced or untraced:
//
//	y, err := ops.AddScalar(x, 1) // recorded as aten::add(%x, 1) while tracing
//
// In-place variants mutate their first operand and rebind it to the new node;
// Item and Bool read traced data back into Go and are where strict sessions
// report data-dependent control flow.
package ops
