// Package cli implements the tracer command line.
//
//	tracer trace JOB...    trace script entry points described by job files
//	tracer run SCRIPT      run a script untraced
//	tracer version
//
// Configuration comes from the environment (see package config); flags
// override it per invocation.
package cli
