package semantics

import (
	"github.com/pontaoski/van/ast"
	"github.com/pontaoski/van/errors"
	"github.com/pontaoski/van/invariant"
)

// method is a function implemented for a struct. self is set when its first
// parameter is the receiver.
type method struct {
	typ  ast.FunType
	self bool
}

// withoutSelf is the method's type as seen through a value: the receiver is
// already supplied.
func (m method) withoutSelf() ast.FunType {
	if !m.self {
		return m.typ
	}
	return ast.FunType{Params: m.typ.Params[1:], Return: m.typ.Return}
}

func nameOf(e ast.Expression) string {
	switch x := e.(type) {
	case nil:
		return "<anonymous>"
	case ast.Identifier:
		return x.Name
	case ast.Index:
		return nameOf(x.ID) + "." + nameOf(x.Index)
	}
	return "_"
}

// declareFunction binds a named function in the current scope before its
// body is checked, so the body may call it. check calls record with the
// signature known so far, then with the final one.
func (v *Visitor) declareFunction(name ast.Expression, kind string, check func(record func(ast.FunType)) (ast.Type, error)) error {
	id, ok := name.(ast.Identifier)
	if !ok {
		pos, _ := ast.PosOf(name)
		v.warn(&pos, "potential unsafe %s", kind)
		_, err := check(nil)
		return err
	}

	if v.symtab.Declared(id.Name) {
		return errors.Errorf(identLocation(id), "name already in use: %s", id.Name)
	}
	index := v.bind(id.Name, ast.UndefinedType{})

	_, err := check(func(t ast.FunType) {
		invariant.ExpectNoError(v.typetab.SetType(index, 0, t), "recording type of "+id.Name)
	})
	return err
}

// signature reads the parameter list of f. A bare self parameter takes the
// type of the struct being implemented.
func (v *Visitor) signature(f ast.Fun) (names []string, sig ast.FunType, err error) {
	for _, p := range f.Params {
		t := p.Type
		if t == nil {
			if p.Name != "self" || v.self == nil {
				return nil, sig, errors.Errorf(errors.Locate(p.Pos, len(p.Name)), "parameter %s needs a type", p.Name)
			}
			t = v.self
		}
		if err := v.knownType(t, p.Pos); err != nil {
			return nil, sig, err
		}
		names = append(names, p.Name)
		sig.Params = append(sig.Params, t)
	}

	if f.Return != nil {
		if err := v.knownType(f.Return, f.Pos); err != nil {
			return nil, sig, err
		}
	}
	sig.Return = f.Return
	return names, sig, nil
}

// funType checks a fun and returns its type. The return type, when not
// declared, is that of the body.
func (v *Visitor) funType(f ast.Fun, record func(ast.FunType)) (ast.Type, error) {
	names, sig, err := v.signature(f)
	if err != nil {
		return nil, err
	}

	if record != nil {
		pending := sig
		if pending.Return == nil {
			pending.Return = ast.UndefinedType{}
		}
		record(pending)
	}

	body, err := v.child(names, sig.Params).typeBlock(f.Body)
	if err != nil {
		return nil, err
	}

	if f.Return != nil {
		if !v.equivalent(f.Return, body) {
			return nil, errors.Errorf(
				errors.Locate(f.Pos, 3),
				"mismatching return types of fun %s: expected %s, found %s",
				nameOf(f.Name), ast.TypeString(f.Return), ast.TypeString(body),
			)
		}
	} else {
		sig.Return = body
	}

	if record != nil {
		record(sig)
	}
	return sig, nil
}

// patternType is the type of the first non-binding pattern among arms.
func (v *Visitor) patternType(arms []ast.MatchArm) (ast.Type, error) {
	for _, arm := range arms {
		if _, ok := arm.Param.(ast.Identifier); ok {
			continue
		}
		return v.TypeExpression(arm.Param)
	}
	return ast.UndefinedType{}, nil
}

// functionMatchType checks a match function: one parameter, whose type comes
// from its patterns, and a result every arm agrees on.
func (v *Visitor) functionMatchType(f ast.FunctionMatch, record func(ast.FunType)) (ast.Type, error) {
	if f.Return != nil {
		if err := v.knownType(f.Return, f.Pos); err != nil {
			return nil, err
		}
	}

	param, err := v.patternType(f.Arms)
	if err != nil {
		return nil, err
	}

	sig := ast.FunType{Params: []ast.Type{param}, Return: f.Return}
	if record != nil {
		pending := sig
		if pending.Return == nil {
			pending.Return = ast.UndefinedType{}
		}
		record(pending)
	}

	body, err := v.typeArms(f.Arms, param)
	if err != nil {
		return nil, err
	}

	if f.Return != nil {
		if !v.equivalent(f.Return, body) {
			return nil, errors.Errorf(
				errors.Locate(f.Pos, 8),
				"mismatching return types of function %s: expected %s, found %s",
				nameOf(f.Name), ast.TypeString(f.Return), ast.TypeString(body),
			)
		}
	} else {
		sig.Return = body
	}

	if record != nil {
		record(sig)
	}
	return sig, nil
}
