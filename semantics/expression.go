package semantics

import (
	"github.com/pontaoski/van/ast"
	"github.com/pontaoski/van/errors"
	"github.com/pontaoski/van/invariant"
	"github.com/pontaoski/van/types"
)

// VisitExpression checks e without reporting its type.
func (v *Visitor) VisitExpression(e ast.Expression) error {
	_, err := v.TypeExpression(e)
	return err
}

// TypeExpression checks e and computes its type. Expressions that open a
// scope (blocks, branches, arms, function literals) are checked in a fresh
// child scope each time.
func (v *Visitor) TypeExpression(e ast.Expression) (ast.Type, error) {
	switch x := e.(type) {
	case ast.Number:
		return Number, nil
	case ast.Str:
		return Str, nil
	case ast.Bool:
		return Bool, nil
	case ast.Char:
		return Char, nil
	case ast.Identifier:
		typ, ok := v.lookup(x.Name)
		if !ok {
			return nil, errors.Errorf(identLocation(x), "unexpected use of: %s%s", x.Name, hint(x.Name, v.symtab.Visible()))
		}
		return typ, nil
	case ast.Unary:
		return v.typeUnary(x)
	case ast.BinaryOp:
		return v.typeBinary(x)
	case ast.Block:
		return v.child(nil, nil).typeBlock(x)
	case ast.Call:
		return v.typeCall(x)
	case ast.Index:
		return v.typeIndex(x)
	case ast.Array:
		return v.typeArray(x)
	case ast.If:
		return v.typeIf(x)
	case ast.Unless:
		return v.typeIf(x.Base)
	case ast.MatchPattern:
		return v.typeMatch(x)
	case ast.StructExpr:
		return v.typeStruct(x.Fields, x.Pos)
	case ast.Initialization:
		return v.typeInitialization(x)
	case ast.Fun:
		return v.funType(x, nil)
	case ast.FunctionMatch:
		return v.functionMatchType(x, nil)
	case ast.Extern:
		return v.typeExtern(x)
	case ast.EOF:
		invariant.Unreachable("end-of-input sentinel reached the checker")
	}

	invariant.Unreachable("unhandled expression %T", e)
	return nil, nil
}

// typeBlock checks stmts in the current scope. The block's type is that of
// its final expression, if, unless or match, or of its return statements;
// all of these must agree. A block with neither is Nil.
func (v *Visitor) typeBlock(stmts []ast.Statement) (ast.Type, error) {
	var result ast.Type
	var resultPos *types.Position

	agree := func(t ast.Type, pos *types.Position) error {
		if result == nil {
			result, resultPos = t, pos
			return nil
		}
		if !v.equivalent(result, t) {
			var loc *errors.Location
			if pos != nil {
				loc = errors.Locate(*pos, 1)
			}
			err := errors.Errorf(loc, "mismatching return types of block: %s and %s", ast.TypeString(result), ast.TypeString(t))
			if resultPos != nil {
				return errors.Group{err, errors.Notef(errors.Locate(*resultPos, 1), "first returned %s here", ast.TypeString(result))}
			}
			return err
		}
		return nil
	}

	for i, stmt := range stmts {
		if ret, ok := stmt.(ast.Return); ok {
			t := ast.Type(Nil)
			if ret.Value != nil {
				var err error
				if t, err = v.TypeExpression(ret.Value); err != nil {
					return nil, err
				}
			}
			pos := ret.Pos
			if err := agree(t, &pos); err != nil {
				return nil, err
			}
			continue
		}

		if i == len(stmts)-1 {
			if value, ok := valueOf(stmt); ok {
				t, err := v.TypeExpression(value)
				if err != nil {
					return nil, err
				}
				var pos *types.Position
				if p, ok := ast.PosOf(value); ok {
					pos = &p
				}
				if err := agree(t, pos); err != nil {
					return nil, err
				}
				continue
			}
		}

		if err := v.VisitStatement(stmt); err != nil {
			return nil, err
		}
	}

	if result == nil {
		return Nil, nil
	}
	return result, nil
}

// valueOf returns the expression a block-final statement yields.
func valueOf(stmt ast.Statement) (ast.Expression, bool) {
	switch s := stmt.(type) {
	case ast.ExpressionStatement:
		return s.Expr, true
	case ast.If:
		return s, true
	case ast.Unless:
		return s, true
	case ast.MatchPattern:
		return s, true
	}
	return nil, false
}

func (v *Visitor) typeUnary(u ast.Unary) (ast.Type, error) {
	t, err := v.TypeExpression(u.Expr)
	if err != nil {
		return nil, err
	}

	want := ast.Type(Number)
	if u.Op == ast.Not {
		want = Bool
	}
	if !v.equivalent(want, t) {
		return nil, errors.Errorf(errors.Locate(u.Pos, 1), "invalid operand of %s: expected %s, found %s", u.Op, ast.TypeString(want), ast.TypeString(t))
	}
	return want, nil
}

func (v *Visitor) typeBinary(b ast.BinaryOp) (ast.Type, error) {
	lt, err := v.TypeExpression(b.Left)
	if err != nil {
		return nil, err
	}
	rt, err := v.TypeExpression(b.Right)
	if err != nil {
		return nil, err
	}

	left, right := v.base(lt), v.base(rt)
	mismatch := func() (ast.Type, error) {
		return nil, errors.Errorf(
			errors.Locate(b.Pos, len(b.Op.String())),
			"mismatched operands of %s: %s and %s", b.Op, ast.TypeString(lt), ast.TypeString(rt),
		)
	}
	is := func(t, want ast.Type) bool {
		return v.isUndefined(t) || v.equivalent(t, want)
	}

	switch b.Op {
	case types.Add, types.Sub, types.Mul, types.Div, types.Mod, types.Pow:
		if is(left, Number) && is(right, Number) {
			return Number, nil
		}
	case types.XOR:
		if is(left, Bool) && is(right, Bool) {
			return Bool, nil
		}
		if is(left, Number) && is(right, Number) {
			return Number, nil
		}
	case types.Equal, types.NEqual, types.Lt, types.Gt, types.LtEqual, types.GtEqual:
		_, leftNil := left.(ast.NilType)
		_, rightNil := right.(ast.NilType)
		if !leftNil && !rightNil {
			return Bool, nil
		}
	case types.Concat:
		if is(left, Str) {
			return Str, nil
		}
		if is(left, Number) && is(right, Str) {
			return Str, nil
		}
	case types.PipeRight:
		return v.apply(b, right, left, rt, lt)
	case types.PipeLeft:
		return v.apply(b, left, right, lt, rt)
	default:
		invariant.Unreachable("binary operator %s has no typing rule", b.Op)
	}

	return mismatch()
}

// apply types a pipe: fn must take exactly one parameter matching arg.
func (v *Visitor) apply(b ast.BinaryOp, fn, arg, fnType, argType ast.Type) (ast.Type, error) {
	if v.isUndefined(fn) {
		return ast.UndefinedType{}, nil
	}

	loc := errors.Locate(b.Pos, len(b.Op.String()))
	f, ok := fn.(ast.FunType)
	if !ok {
		return nil, errors.Errorf(loc, "%s needs a function, found %s", b.Op, ast.TypeString(fnType))
	}
	if len(f.Params) != 1 {
		return nil, errors.Errorf(loc, "%s needs a function of one parameter, found %s", b.Op, ast.TypeString(fnType))
	}
	if !v.equivalent(f.Params[0], arg) {
		return nil, errors.Errorf(loc, "mismatched types, expected: %s, found: %s", ast.TypeString(f.Params[0]), ast.TypeString(argType))
	}
	return ast.ReturnOf(f), nil
}

func (v *Visitor) typeCall(c ast.Call) (ast.Type, error) {
	ct, err := v.TypeExpression(c.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]ast.Type, len(c.Args))
	for i, arg := range c.Args {
		if args[i], err = v.TypeExpression(arg); err != nil {
			return nil, err
		}
	}

	callee := v.base(ct)
	if v.isUndefined(callee) {
		return ast.UndefinedType{}, nil
	}

	loc := exprLocation(c.Callee)
	f, ok := callee.(ast.FunType)
	if !ok {
		return nil, errors.Errorf(loc, "cannot call a value of type %s", ast.TypeString(ct))
	}
	if len(f.Params) != len(args) {
		return nil, errors.Errorf(loc, "wrong number of arguments: expected %d, found %d", len(f.Params), len(args))
	}
	for i, param := range f.Params {
		if !v.equivalent(param, args[i]) {
			return nil, errors.Errorf(locate(c.Args[i], c.Pos), "mismatched argument %d: expected %s, found %s", i+1, ast.TypeString(param), ast.TypeString(args[i]))
		}
	}
	return ast.ReturnOf(f), nil
}

// typeIndex types a[i] and a.field. Which one is meant depends on the type of
// a: an identifier index into a struct names a field, into an array it names
// a variable.
func (v *Visitor) typeIndex(ix ast.Index) (ast.Type, error) {
	ot, err := v.TypeExpression(ix.ID)
	if err != nil {
		return nil, err
	}

	loc := locate(ix.Index, ix.Pos)
	switch object := v.base(ot).(type) {
	case nil, ast.UndefinedType:
		return ast.UndefinedType{}, nil
	case ast.StructType:
		field, ok := ix.Index.(ast.Identifier)
		if !ok {
			return nil, errors.Errorf(loc, "struct fields are accessed by name, not by %s", ast.TypeString(ot))
		}
		if ft, ok := object.Fields[field.Name]; ok {
			return ft, nil
		}
		if m, ok := v.method(ot, field.Name); ok {
			return m, nil
		}
		candidates := append(object.FieldNames(), v.methodNames(ot)...)
		return nil, errors.Errorf(loc, "unknown field %q of %s%s", field.Name, ast.TypeString(ot), hint(field.Name, candidates))
	case ast.ArrayType:
		if err := v.numericIndex(ix.Index, ix.Pos); err != nil {
			return nil, err
		}
		return object.Elem, nil
	case ast.StrType:
		if err := v.numericIndex(ix.Index, ix.Pos); err != nil {
			return nil, err
		}
		return Char, nil
	}

	return nil, errors.Errorf(exprLocation(ix.ID), "cannot index into a value of type %s", ast.TypeString(ot))
}

func (v *Visitor) numericIndex(index ast.Expression, pos types.Position) error {
	it, err := v.TypeExpression(index)
	if err != nil {
		return err
	}
	if !v.equivalent(Number, it) {
		return errors.Errorf(locate(index, pos), "index must be a number, found %s", ast.TypeString(it))
	}
	return nil
}

// method finds name among the methods implemented for the struct named by t.
// The self parameter is dropped from the result.
func (v *Visitor) method(t ast.Type, name string) (ast.FunType, bool) {
	id, ok := ast.StripMut(t).(ast.IdentType)
	if !ok {
		return ast.FunType{}, false
	}
	m, ok := v.program.methods[id.Name][name]
	if !ok {
		return ast.FunType{}, false
	}
	return m.withoutSelf(), true
}

func (v *Visitor) methodNames(t ast.Type) []string {
	id, ok := ast.StripMut(t).(ast.IdentType)
	if !ok {
		return nil
	}
	var out []string
	for name := range v.program.methods[id.Name] {
		out = append(out, name)
	}
	return out
}

func (v *Visitor) typeArray(a ast.Array) (ast.Type, error) {
	length := ast.Number(len(a.Elements))
	if len(a.Elements) == 0 {
		return ast.ArrayType{Elem: ast.UndefinedType{}, Len: length}, nil
	}

	first, err := v.TypeExpression(a.Elements[0])
	if err != nil {
		return nil, err
	}
	for i, elem := range a.Elements[1:] {
		t, err := v.TypeExpression(elem)
		if err != nil {
			return nil, err
		}
		if !v.equivalent(first, t) {
			return nil, errors.Errorf(locate(elem, a.Pos), "mismatched array element %d: expected %s, found %s", i+2, ast.TypeString(first), ast.TypeString(t))
		}
	}
	return ast.ArrayType{Elem: first, Len: length}, nil
}

func (v *Visitor) condition(e ast.Expression, what string, pos types.Position) error {
	t, err := v.TypeExpression(e)
	if err != nil {
		return err
	}
	if !v.equivalent(Bool, t) {
		return errors.Errorf(locate(e, pos), "%s condition must be bool, found %s", what, ast.TypeString(t))
	}
	return nil
}

// typeIf types if and unless. Without a final else the value is Nil;
// otherwise every branch must agree.
func (v *Visitor) typeIf(i ast.If) (ast.Type, error) {
	if err := v.condition(i.Condition, "if", i.Pos); err != nil {
		return nil, err
	}
	t, err := v.child(nil, nil).typeBlock(i.Body)
	if err != nil {
		return nil, err
	}

	exhaustive := false
	branches := []ast.Type{t}
	for _, clause := range i.Elses {
		if clause.Condition == nil {
			exhaustive = true
		} else if err := v.condition(clause.Condition, "elif", clause.Pos); err != nil {
			return nil, err
		}
		ct, err := v.child(nil, nil).typeBlock(clause.Body)
		if err != nil {
			return nil, err
		}
		if !v.equivalent(t, ct) {
			return nil, errors.Errorf(errors.Locate(clause.Pos, 1), "mismatching branches of if: %s and %s", ast.TypeString(t), ast.TypeString(ct))
		}
		branches = append(branches, ct)
	}

	if !exhaustive {
		return Nil, nil
	}
	return settle(branches), nil
}

// settle picks the most specific of several agreeing types.
func settle(ts []ast.Type) ast.Type {
	for _, t := range ts {
		switch ast.StripMut(t).(type) {
		case nil, ast.UndefinedType:
			continue
		}
		return t
	}
	if len(ts) == 0 {
		return Nil
	}
	return ts[0]
}

func (v *Visitor) typeMatch(m ast.MatchPattern) (ast.Type, error) {
	subject, err := v.TypeExpression(m.Matching)
	if err != nil {
		return nil, err
	}

	return v.typeArms(m.Arms, subject)
}

// typeArms checks each arm in its own scope and returns the type they agree
// on. An identifier pattern binds the subject; any other pattern must have
// the subject's type.
func (v *Visitor) typeArms(arms []ast.MatchArm, subject ast.Type) (ast.Type, error) {
	var bodies []ast.Type
	for _, arm := range arms {
		scope := v.child(nil, nil)
		if id, ok := arm.Param.(ast.Identifier); ok {
			scope.bind(id.Name, subject)
		} else {
			pt, err := v.TypeExpression(arm.Param)
			if err != nil {
				return nil, err
			}
			if !v.equivalent(subject, pt) {
				return nil, errors.Errorf(locate(arm.Param, arm.Pos), "mismatched pattern: expected %s, found %s", ast.TypeString(subject), ast.TypeString(pt))
			}
		}

		bt, err := scope.TypeExpression(arm.Body)
		if err != nil {
			return nil, err
		}
		if len(bodies) > 0 && !v.equivalent(bodies[0], bt) {
			return nil, errors.Errorf(errors.Locate(arm.Pos, 1), "mismatching arms of match: %s and %s", ast.TypeString(bodies[0]), ast.TypeString(bt))
		}
		bodies = append(bodies, bt)
	}
	return settle(bodies), nil
}

func (v *Visitor) typeStruct(fields []ast.TypeDefinition, pos types.Position) (ast.Type, error) {
	out := ast.StructType{Fields: map[string]ast.Type{}}
	for _, field := range fields {
		if _, dup := out.Fields[field.Name]; dup {
			return nil, errors.Errorf(errors.Locate(field.Pos, len(field.Name)), "duplicate field %q", field.Name)
		}
		if err := v.knownType(field.Type, field.Pos); err != nil {
			return nil, err
		}
		out.Fields[field.Name] = field.Type
	}
	return out, nil
}

// typeInitialization checks new S { f = v ... }: every field of S must be
// given exactly once, with a value of the field's type.
func (v *Visitor) typeInitialization(in ast.Initialization) (ast.Type, error) {
	st, err := v.TypeExpression(in.ID)
	if err != nil {
		return nil, err
	}
	object, ok := v.base(st).(ast.StructType)
	if !ok {
		return nil, errors.Errorf(exprLocation(in.ID), "cannot initialize %s: not a struct", ast.TypeString(st))
	}

	given := map[string]bool{}
	for _, value := range in.Values {
		field, ok := value.Left.(ast.Identifier)
		invariant.Invariant(ok, "initializer key is a %T", value.Left)

		ft, ok := object.Fields[field.Name]
		if !ok {
			return nil, errors.Errorf(identLocation(field), "unknown field %q of %s%s", field.Name, ast.TypeString(st), hint(field.Name, object.FieldNames()))
		}
		if given[field.Name] {
			return nil, errors.Errorf(identLocation(field), "field %q given twice", field.Name)
		}
		given[field.Name] = true

		vt, err := v.TypeExpression(value.Right)
		if err != nil {
			return nil, err
		}
		if !v.equivalent(ft, vt) {
			return nil, errors.Errorf(locate(value.Right, value.Pos), "mismatched type of field %q: expected %s, found %s", field.Name, ast.TypeString(ft), ast.TypeString(vt))
		}
	}

	for _, name := range object.FieldNames() {
		if !given[name] {
			return nil, errors.Errorf(errors.Locate(in.Pos, 3), "missing field %q in initialization of %s", name, ast.TypeString(st))
		}
	}
	return st, nil
}

// typeExtern checks the arguments of an external call; the callee itself is
// not bound in van, so its result is Undefined.
func (v *Visitor) typeExtern(x ast.Extern) (ast.Type, error) {
	if c, ok := x.Expr.(ast.Call); ok {
		for _, arg := range c.Args {
			if err := v.VisitExpression(arg); err != nil {
				return nil, err
			}
		}
	}
	return ast.UndefinedType{}, nil
}
