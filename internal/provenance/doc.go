// Package provenance captures call stacks and turns them into node source
// locations.
//
// Capturing happens on every recorded operation, so it is kept cheap: a
// Stack may hold only program counters, and a Record defers both frame
// resolution and text formatting until a location is actually inspected
// (printing a graph, reporting a warning). The formatted text lists one
// frame per line as "file(line): function"; the first frame with a file is
// the primary location.
package provenance
