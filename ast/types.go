package ast

import (
	"fmt"
	"sort"
	"strings"
)

type NumberType struct{}

type StrType struct{}

type BoolType struct{}

type NilType struct{}

type CharType struct{}

// UndefinedType is the inference placeholder. It unifies with every type.
type UndefinedType struct{}

// MutType marks a mutable binding. A nil Inner means "mutable, type not yet known".
type MutType struct {
	Inner Type
}

// ArrayType has a nil Len when the length is not known at compile time.
type ArrayType struct {
	Elem Type
	Len  Expression
}

// FunType has a nil Return for functions that produce nothing.
type FunType struct {
	Params []Type
	Return Type
}

// IdentType is a nominal reference, resolved through the alias table.
type IdentType struct {
	Name string
}

type StructType struct {
	Fields map[string]Type
}

func (t NumberType) String() string    { return TypeString(t) }
func (t StrType) String() string       { return TypeString(t) }
func (t BoolType) String() string      { return TypeString(t) }
func (t NilType) String() string       { return TypeString(t) }
func (t CharType) String() string      { return TypeString(t) }
func (t UndefinedType) String() string { return TypeString(t) }
func (t MutType) String() string       { return TypeString(t) }
func (t ArrayType) String() string     { return TypeString(t) }
func (t FunType) String() string       { return TypeString(t) }
func (t IdentType) String() string     { return TypeString(t) }
func (t StructType) String() string    { return TypeString(t) }

// TypeString renders t the way it is written in source.
func TypeString(t Type) string {
	if t == nil {
		return "_"
	}

	switch v := t.(type) {
	case NumberType:
		return "number"
	case StrType:
		return "string"
	case BoolType:
		return "bool"
	case NilType:
		return "nil"
	case CharType:
		return "char"
	case UndefinedType:
		return "undefined"
	case MutType:
		return "mut " + TypeString(v.Inner)
	case ArrayType:
		if n, ok := v.Len.(Number); ok {
			return fmt.Sprintf("[%s; %v]", TypeString(v.Elem), float64(n))
		}
		if v.Len != nil {
			return fmt.Sprintf("[%s; _]", TypeString(v.Elem))
		}
		return fmt.Sprintf("[%s]", TypeString(v.Elem))
	case FunType:
		var b strings.Builder
		b.WriteString("fun")
		for _, p := range v.Params {
			b.WriteString(" ")
			b.WriteString(TypeString(p))
		}
		if v.Return != nil {
			b.WriteString(" -> ")
			b.WriteString(TypeString(v.Return))
		}
		return b.String()
	case IdentType:
		return v.Name
	case StructType:
		names := v.FieldNames()
		parts := make([]string, len(names))
		for i, name := range names {
			parts[i] = name + ": " + TypeString(v.Fields[name])
		}
		return "struct { " + strings.Join(parts, " ") + " }"
	}

	return fmt.Sprintf("%T", t)
}

// FieldNames returns the field names in sorted order.
func (t StructType) FieldNames() []string {
	names := make([]string, 0, len(t.Fields))
	for name := range t.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StripMut removes every Mut layer. The placeholder Mut(None) strips to nil.
func StripMut(t Type) Type {
	for {
		m, ok := t.(MutType)
		if !ok {
			return t
		}
		t = m.Inner
	}
}

func IsMut(t Type) bool {
	_, ok := t.(MutType)
	return ok
}

// Resolver maps a nominal type to its definition, returning other types unchanged.
type Resolver func(Type) Type

// Equivalent is the language's type equality: Mut wrappers are transparent on
// either side, an array of unknown length matches any length, and Undefined
// matches anything. resolve, when set, is applied to identifiers that do not
// already match by name.
func Equivalent(a, b Type, resolve Resolver) bool {
	a, b = StripMut(a), StripMut(b)
	if wildcard(a) || wildcard(b) {
		return true
	}

	if ai, ok := a.(IdentType); ok {
		if bi, ok := b.(IdentType); ok && ai.Name == bi.Name {
			return true
		}
	}

	if resolve != nil {
		a, b = StripMut(resolve(a)), StripMut(resolve(b))
		if wildcard(a) || wildcard(b) {
			return true
		}
	}

	switch av := a.(type) {
	case NumberType:
		_, ok := b.(NumberType)
		return ok
	case StrType:
		_, ok := b.(StrType)
		return ok
	case BoolType:
		_, ok := b.(BoolType)
		return ok
	case NilType:
		_, ok := b.(NilType)
		return ok
	case CharType:
		_, ok := b.(CharType)
		return ok
	case ArrayType:
		bv, ok := b.(ArrayType)
		return ok && Equivalent(av.Elem, bv.Elem, resolve) && lengthsAgree(av.Len, bv.Len)
	case FunType:
		bv, ok := b.(FunType)
		if !ok || len(av.Params) != len(bv.Params) {
			return false
		}
		for i := range av.Params {
			if !Equivalent(av.Params[i], bv.Params[i], resolve) {
				return false
			}
		}
		return Equivalent(ReturnOf(av), ReturnOf(bv), resolve)
	case IdentType:
		bv, ok := b.(IdentType)
		return ok && av.Name == bv.Name
	case StructType:
		bv, ok := b.(StructType)
		if !ok || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for name, at := range av.Fields {
			bt, ok := bv.Fields[name]
			if !ok || !Equivalent(at, bt, resolve) {
				return false
			}
		}
		return true
	}

	return false
}

// ReturnOf is f's result type, Nil when none is declared.
func ReturnOf(f FunType) Type {
	if f.Return == nil {
		return NilType{}
	}
	return f.Return
}

func wildcard(t Type) bool {
	if t == nil {
		return true
	}
	_, ok := t.(UndefinedType)
	return ok
}

func lengthsAgree(a, b Expression) bool {
	if a == nil || b == nil {
		return true
	}
	an, aok := a.(Number)
	bn, bok := b.(Number)
	if aok && bok {
		return an == bn
	}
	return true
}
