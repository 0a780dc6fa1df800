package ir

import "strings"

// Scope is a named region of the graph. Scopes form a tree rooted at the
// graph's unnamed root scope.
type Scope struct {
	name   string
	parent *Scope
}

// Name returns the unqualified scope name ("" for the root).
func (s *Scope) Name() string {
	return s.name
}

// Parent returns the enclosing scope, nil for the root.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// IsRoot reports whether s is the root scope.
func (s *Scope) IsRoot() bool {
	return s.parent == nil
}

// String returns the qualified name, e.g. "A/B". The root is "".
func (s *Scope) String() string {
	if s.IsRoot() {
		return ""
	}
	parts := []string{}
	for cur := s; !cur.IsRoot(); cur = cur.parent {
		parts = append(parts, cur.name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

func (s *Scope) child(name string) *Scope {
	return &Scope{name: name, parent: s}
}
