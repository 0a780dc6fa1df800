package ir

import "strconv"

// Source is the text behind a SourceRange. Implementations may defer
// building the text until it is first requested.
type Source interface {
	Text() string
	// Location returns the primary file and line, if any frame had one.
	Location() (file string, line int, ok bool)
}

// SourceRange attaches provenance to a node. The zero value is the unknown
// location.
type SourceRange struct {
	src Source
}

// NewSourceRange wraps a Source.
func NewSourceRange(src Source) SourceRange {
	return SourceRange{src: src}
}

// Known reports whether any provenance was attached.
func (r SourceRange) Known() bool {
	return r.src != nil
}

// Source returns the underlying source, or nil.
func (r SourceRange) Source() Source {
	return r.src
}

// Text returns the full provenance text ("" when unknown).
func (r SourceRange) Text() string {
	if r.src == nil {
		return ""
	}
	return r.src.Text()
}

// Location returns the primary file and line.
func (r SourceRange) Location() (string, int, bool) {
	if r.src == nil {
		return "", 0, false
	}
	return r.src.Location()
}

func (r SourceRange) String() string {
	file, line, ok := r.Location()
	if !ok {
		return "<unknown>"
	}
	return file + ":" + strconv.Itoa(line)
}
