package semantics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alecthomas/repr"

	"github.com/pontaoski/van/ast"
	"github.com/pontaoski/van/errors"
)

// TypeTab parallels a SymTab: slot i of a scope holds the type of that scope's
// i-th name. Each scope also owns a table of type aliases.
type TypeTab struct {
	parent  *TypeTab
	types   []ast.Type
	aliases map[string]ast.Type
}

func NewGlobalTypeTab() *TypeTab {
	return &TypeTab{aliases: map[string]ast.Type{}}
}

func NewTypeTab(parent *TypeTab, types []ast.Type) *TypeTab {
	return &TypeTab{
		parent:  parent,
		types:   append([]ast.Type(nil), types...),
		aliases: map[string]ast.Type{},
	}
}

// Root is the outermost scope.
func (t *TypeTab) Root() *TypeTab {
	for t.parent != nil {
		t = t.parent
	}
	return t
}

// hop walks depth scopes outward.
func (t *TypeTab) hop(depth int) (*TypeTab, bool) {
	for ; depth > 0; depth-- {
		if t.parent == nil {
			return nil, false
		}
		t = t.parent
	}
	return t, true
}

// GetType reads slot index of the scope depth hops out. A bad index or depth
// means the tables went out of step with their SymTab.
func (t *TypeTab) GetType(index, depth int) (ast.Type, error) {
	scope, ok := t.hop(depth)
	if !ok {
		return nil, errors.Errorf(nil, "invalid type env index: %d", depth)
	}
	if index < 0 || index >= len(scope.types) {
		return nil, errors.Errorf(nil, "invalid type index: %d", index)
	}
	return scope.types[index], nil
}

func (t *TypeTab) SetType(index, depth int, typ ast.Type) error {
	scope, ok := t.hop(depth)
	if !ok {
		return errors.Errorf(nil, "invalid type env index: %d", depth)
	}
	if index < 0 || index >= len(scope.types) {
		return errors.Errorf(nil, "invalid type index: %d", index)
	}
	scope.types[index] = typ
	return nil
}

// Grow appends an Undefined slot; call it whenever the SymTab gains a name.
func (t *TypeTab) Grow() {
	t.types = append(t.types, ast.UndefinedType{})
}

func (t *TypeTab) Size() int {
	return len(t.types)
}

func (t *TypeTab) SetAlias(name string, typ ast.Type) {
	t.aliases[name] = typ
}

// GetAlias looks name up in this scope, then in each enclosing one.
func (t *TypeTab) GetAlias(name string) (ast.Type, bool) {
	for scope := t; scope != nil; scope = scope.parent {
		if typ, ok := scope.aliases[name]; ok {
			return typ, true
		}
	}
	return nil, false
}

// Aliases lists every alias name reachable from t.
func (t *TypeTab) Aliases() []string {
	seen := map[string]bool{}
	var out []string
	for scope := t; scope != nil; scope = scope.parent {
		for name := range scope.aliases {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Dump renders the slots of t and its first depth ancestors, outermost first,
// one "(index : depth) = type" line per slot.
func (t *TypeTab) Dump(depth int) string {
	var b strings.Builder
	t.dump(&b, depth, 0)
	return b.String()
}

func (t *TypeTab) dump(b *strings.Builder, depth, level int) {
	if depth > 0 && t.parent != nil {
		t.parent.dump(b, depth-1, level+1)
		b.WriteString("------------------------------\n")
	}
	for i, typ := range t.types {
		fmt.Fprintf(b, "(%d : %d) = %s\n", i, level, repr.String(typ))
	}
}
