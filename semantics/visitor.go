// Package semantics type-checks parsed van programs.
//
// A Visitor walks statements with a SymTab/TypeTab pair per lexical scope.
// Checking is fail-fast: the first problem found is returned.
package semantics

import (
	"fmt"
	"sort"

	"github.com/coreos/pkg/capnslog"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/pontaoski/van/ast"
	"github.com/pontaoski/van/errors"
	"github.com/pontaoski/van/invariant"
	"github.com/pontaoski/van/types"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/van", "semantics")

// program is the state every scope of one check shares.
type program struct {
	methods    map[string]map[string]method
	interfaces map[string][]ast.TypeDefinition
	warnings   []errors.Warning
}

type Visitor struct {
	symtab  *SymTab
	typetab *TypeTab
	program *program

	// self is the struct an implement block is adding methods to.
	self ast.Type
}

// New returns a visitor over a fresh global scope holding the builtins.
func New() *Visitor {
	symtab, typetab := NewGlobalSymTab(), NewGlobalTypeTab()
	addBuiltinAliases(typetab)
	addBuiltins(symtab, typetab)
	return From(symtab, typetab)
}

// From returns a visitor over existing tables.
func From(symtab *SymTab, typetab *TypeTab) *Visitor {
	invariant.Precondition(symtab.Len() == typetab.Size(), "symtab has %d names but typetab has %d slots", symtab.Len(), typetab.Size())

	return &Visitor{
		symtab:  symtab,
		typetab: typetab,
		program: &program{
			methods:    map[string]map[string]method{},
			interfaces: map[string][]ast.TypeDefinition{},
		},
	}
}

// child opens a nested scope seeded with the given bindings.
func (v *Visitor) child(names []string, typs []ast.Type) *Visitor {
	invariant.Precondition(len(names) == len(typs), "%d names for %d types", len(names), len(typs))

	return &Visitor{
		symtab:  NewSymTab(v.symtab, names),
		typetab: NewTypeTab(v.typetab, typs),
		program: v.program,
		self:    v.self,
	}
}

func (v *Visitor) SymTab() *SymTab {
	return v.symtab
}

func (v *Visitor) TypeTab() *TypeTab {
	return v.typetab
}

// Warnings returns every warning raised so far, in order.
func (v *Visitor) Warnings() []errors.Warning {
	return v.program.warnings
}

// Visit checks a whole program.
func (v *Visitor) Visit(stmts []ast.Statement) error {
	for _, stmt := range stmts {
		if err := v.VisitStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Globals maps each name bound in this scope to its type. Later bindings of
// a name replace earlier ones.
func (v *Visitor) Globals() map[string]ast.Type {
	out := map[string]ast.Type{}
	for i, name := range v.symtab.Names() {
		typ, err := v.typetab.GetType(i, 0)
		invariant.ExpectNoError(err, "reading global "+name)
		out[name] = typ
	}
	return out
}

func (v *Visitor) warn(pos *types.Position, format string, args ...interface{}) {
	var loc *errors.Location
	if pos != nil {
		loc = errors.Locate(*pos, 1)
	}
	w := errors.Warning{Location: loc, Message: fmt.Sprintf(format, args...)}
	plog.Warning(w.String())
	v.program.warnings = append(v.program.warnings, w)
}

// bind adds name to the current scope with type typ.
func (v *Visitor) bind(name string, typ ast.Type) int {
	index := v.symtab.AddName(name)
	if index >= v.typetab.Size() {
		v.typetab.Grow()
	}
	invariant.ExpectNoError(v.typetab.SetType(index, 0, typ), "binding "+name)
	return index
}

// lookup returns the type bound to name, if any.
func (v *Visitor) lookup(name string) (ast.Type, bool) {
	index, depth, ok := v.symtab.GetName(name)
	if !ok {
		return nil, false
	}
	typ, err := v.typetab.GetType(index, depth)
	invariant.ExpectNoError(err, "symtab and typetab disagree about "+name)
	return typ, true
}

// resolve replaces alias names with what they stand for, keeping Mut layers.
func (v *Visitor) resolve(t ast.Type) ast.Type {
	seen := map[string]bool{}
	for {
		switch x := t.(type) {
		case ast.MutType:
			if x.Inner == nil {
				return x
			}
			return ast.MutType{Inner: v.resolve(x.Inner)}
		case ast.IdentType:
			if seen[x.Name] {
				return t
			}
			seen[x.Name] = true
			alias, ok := v.typetab.GetAlias(x.Name)
			if !ok {
				return t
			}
			t = alias
		default:
			return t
		}
	}
}

// base is t with aliases resolved and Mut stripped.
func (v *Visitor) base(t ast.Type) ast.Type {
	return ast.StripMut(v.resolve(t))
}

func (v *Visitor) equivalent(a, b ast.Type) bool {
	return ast.Equivalent(a, b, v.resolve)
}

func (v *Visitor) isUndefined(t ast.Type) bool {
	switch v.base(t).(type) {
	case nil, ast.UndefinedType:
		return true
	}
	return false
}

// knownType fails if t names a type that was never declared.
func (v *Visitor) knownType(t ast.Type, pos types.Position) error {
	switch x := t.(type) {
	case ast.IdentType:
		if _, ok := v.typetab.GetAlias(x.Name); ok {
			return nil
		}
		if _, ok := v.program.interfaces[x.Name]; ok {
			return nil
		}
		if x.Name == "self" && v.self != nil {
			return nil
		}
		candidates := append(v.typetab.Aliases(), interfaceNames(v.program)...)
		return errors.Errorf(errors.Locate(pos, len(x.Name)), "undefined type: %s%s", x.Name, hint(x.Name, candidates))
	case ast.MutType:
		if x.Inner == nil {
			return nil
		}
		return v.knownType(x.Inner, pos)
	case ast.ArrayType:
		return v.knownType(x.Elem, pos)
	case ast.FunType:
		for _, p := range x.Params {
			if err := v.knownType(p, pos); err != nil {
				return err
			}
		}
		if x.Return != nil {
			return v.knownType(x.Return, pos)
		}
	case ast.StructType:
		for _, name := range x.FieldNames() {
			if err := v.knownType(x.Fields[name], pos); err != nil {
				return err
			}
		}
	}
	return nil
}

func interfaceNames(p *program) []string {
	out := make([]string, 0, len(p.interfaces))
	for name := range p.interfaces {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// hint suggests the candidate closest to name, formatted for appending to an
// error message.
func hint(name string, candidates []string) string {
	if match := closest(name, candidates); match != "" {
		return ` (did you mean "` + match + `"?)`
	}
	return ""
}

func closest(name string, candidates []string) string {
	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	best, bestDistance := "", len(name)/3+1
	for _, c := range candidates {
		if d := fuzzy.LevenshteinDistance(name, c); d <= bestDistance && (best == "" || d < bestDistance) {
			best, bestDistance = c, d
		}
	}
	return best
}

func identLocation(id ast.Identifier) *errors.Location {
	return errors.Locate(id.Pos, len(id.Name))
}

func exprLocation(e ast.Expression) *errors.Location {
	if id, ok := e.(ast.Identifier); ok {
		return identLocation(id)
	}
	if pos, ok := ast.PosOf(e); ok {
		return errors.Locate(pos, 1)
	}
	return nil
}

// locate is exprLocation for operands that may be literals, which carry no
// position; those point at the enclosing node instead.
func locate(e ast.Expression, enclosing types.Position) *errors.Location {
	if loc := exprLocation(e); loc != nil {
		return loc
	}
	return errors.Locate(enclosing, 1)
}
