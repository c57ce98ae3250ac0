package semantics

// SymTab is one lexical scope's names. A child scope reads its parents but
// never changes them.
type SymTab struct {
	parent *SymTab
	names  []string
}

func NewGlobalSymTab() *SymTab {
	return &SymTab{}
}

// NewSymTab opens a scope under parent, seeded with names (function
// parameters, for example).
func NewSymTab(parent *SymTab, names []string) *SymTab {
	return &SymTab{
		parent: parent,
		names:  append([]string(nil), names...),
	}
}

// AddName appends name to this scope and returns its slot. Shadowing is
// allowed here; callers that forbid it check first.
func (s *SymTab) AddName(name string) int {
	s.names = append(s.names, name)
	return len(s.names) - 1
}

// GetName finds name in this scope or an ancestor. depth counts the scope hops
// from s to the scope that owns the slot.
func (s *SymTab) GetName(name string) (index, depth int, ok bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if i, found := scope.local(name); found {
			return i, depth, true
		}
		depth++
	}
	return 0, 0, false
}

// Declared reports whether name is bound in this scope itself.
func (s *SymTab) Declared(name string) bool {
	_, ok := s.local(name)
	return ok
}

// local searches from the end so that the newest binding shadows older ones.
func (s *SymTab) local(name string) (int, bool) {
	for i := len(s.names) - 1; i >= 0; i-- {
		if s.names[i] == name {
			return i, true
		}
	}
	return 0, false
}

func (s *SymTab) Names() []string {
	return s.names
}

func (s *SymTab) Len() int {
	return len(s.names)
}

// Visible lists every distinct name reachable from s, innermost first.
func (s *SymTab) Visible() []string {
	seen := map[string]bool{}
	var out []string
	for scope := s; scope != nil; scope = scope.parent {
		for i := len(scope.names) - 1; i >= 0; i-- {
			name := scope.names[i]
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}
