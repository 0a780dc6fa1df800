// Package job loads trace job descriptions.
//
// A job names a JavaScript file, the entry function to trace and the
// inputs to trace it with. Jobs are written in YAML, TOML or JSON:
//
//	name: add-one
//	script: model.js
//	entry: forward
//	argument_names: [x]
//	inputs:
//	  - {data: [3], shape: []}
//
// Tensor inputs are maps with a "data" list and an optional "shape"
// (a vector when omitted); lists are tuples; anything else is a scalar.
package job
