package semantics

import (
	"github.com/pontaoski/van/ast"
	"github.com/pontaoski/van/errors"
	"github.com/pontaoski/van/invariant"
)

// VisitStatement checks s, binding whatever it declares in the current scope.
func (v *Visitor) VisitStatement(s ast.Statement) error {
	switch x := s.(type) {
	case ast.ExpressionStatement:
		return v.VisitExpression(x.Expr)
	case ast.Definition:
		return v.visitDefinition(x)
	case ast.Assignment:
		return v.visitAssignment(x)
	case ast.Fun:
		return v.declareFunction(x.Name, "function", func(record func(ast.FunType)) (ast.Type, error) {
			return v.funType(x, record)
		})
	case ast.FunctionMatch:
		return v.declareFunction(x.Name, "match function", func(record func(ast.FunType)) (ast.Type, error) {
			return v.functionMatchType(x, record)
		})
	case ast.If:
		return v.VisitExpression(x)
	case ast.Unless:
		return v.VisitExpression(x)
	case ast.MatchPattern:
		return v.VisitExpression(x)
	case ast.Struct:
		return v.visitStruct(x)
	case ast.Interface:
		return v.visitInterface(x)
	case ast.Implementation:
		return v.visitImplementation(x)
	case ast.Return:
		if x.Value == nil {
			return nil
		}
		return v.VisitExpression(x.Value)
	case ast.Import:
		return v.visitImport(x)
	case ast.ExternStatement:
		return v.visitExtern(x)
	case ast.While:
		if err := v.condition(x.Condition, "while", x.Pos); err != nil {
			return err
		}
		_, err := v.child(nil, nil).typeBlock(x.Body)
		return err
	}

	invariant.Unreachable("unhandled statement %T", s)
	return nil
}

// visitDefinition binds a new name. The value is typed before the name is
// added, so a definition cannot refer to itself.
func (v *Visitor) visitDefinition(d ast.Definition) error {
	invariant.Precondition(d.Type != nil || d.Right != nil, "definition with neither type nor value")

	if d.Type != nil {
		if err := v.knownType(d.Type, d.Pos); err != nil {
			return err
		}
	}

	typ := d.Type
	if d.Right != nil {
		rt, err := v.TypeExpression(d.Right)
		if err != nil {
			return err
		}

		switch {
		case typ == nil:
			typ = ast.StripMut(rt)
		case ast.StripMut(typ) == nil:
			typ = ast.MutType{Inner: ast.StripMut(rt)}
		case !v.equivalent(typ, rt):
			return errors.Errorf(exprLocation(d.Name), "mismatched types, expected: %s, found: %s", ast.TypeString(typ), ast.TypeString(rt))
		}
	} else if ast.StripMut(typ) == nil {
		return errors.Errorf(exprLocation(d.Name), "cannot infer the type of %s", nameOf(d.Name))
	}

	id, ok := d.Name.(ast.Identifier)
	if !ok {
		v.warn(&d.Pos, "potential unsafe definition")
		return nil
	}
	v.bind(id.Name, typ)
	return nil
}

func (v *Visitor) visitAssignment(a ast.Assignment) error {
	switch left := a.Left.(type) {
	case ast.Identifier:
		t, ok := v.lookup(left.Name)
		if !ok {
			return errors.Errorf(identLocation(left), "unexpected use of: %s%s", left.Name, hint(left.Name, v.symtab.Visible()))
		}
		if !ast.IsMut(t) {
			return errors.Errorf(identLocation(left), "reassignment of immutable: %s", left.Name)
		}
		return v.assignable(a, t)
	case ast.Index:
		v.warn(&a.Pos, "potential unsafe assignment")

		root := rootOf(left)
		if id, ok := root.(ast.Identifier); ok {
			t, ok := v.lookup(id.Name)
			if !ok {
				return errors.Errorf(identLocation(id), "unexpected use of: %s%s", id.Name, hint(id.Name, v.symtab.Visible()))
			}
			if !ast.IsMut(t) {
				return errors.Errorf(identLocation(id), "reassignment of immutable: %s", id.Name)
			}
		}

		if err := v.fieldExists(left); err != nil {
			return err
		}
		t, err := v.TypeExpression(left)
		if err != nil {
			return err
		}
		return v.assignable(a, t)
	}

	v.warn(&a.Pos, "potential unsafe assignment")
	return v.VisitExpression(a.Right)
}

// assignable checks that the value of a fits a target of type t.
func (v *Visitor) assignable(a ast.Assignment, t ast.Type) error {
	rt, err := v.TypeExpression(a.Right)
	if err != nil {
		return err
	}
	if !v.equivalent(t, rt) {
		return errors.Errorf(exprLocation(a.Left), "mismatched types, expected: %s, found: %s", ast.TypeString(t), ast.TypeString(rt))
	}
	return nil
}

// fieldExists rejects assignments to a struct's methods: only fields are
// storage.
func (v *Visitor) fieldExists(ix ast.Index) error {
	field, ok := ix.Index.(ast.Identifier)
	if !ok {
		return nil
	}
	ot, err := v.TypeExpression(ix.ID)
	if err != nil {
		return err
	}
	object, ok := v.base(ot).(ast.StructType)
	if !ok {
		return nil
	}
	if _, ok := object.Fields[field.Name]; !ok {
		return errors.Errorf(identLocation(field), "unknown field %q of %s%s", field.Name, ast.TypeString(ot), hint(field.Name, object.FieldNames()))
	}
	return nil
}

func rootOf(e ast.Expression) ast.Expression {
	for {
		ix, ok := e.(ast.Index)
		if !ok {
			return e
		}
		e = ix.ID
	}
}

// visitStruct registers a struct program-wide: its name becomes a type alias
// for the field map, and a value naming the type for use with new.
func (v *Visitor) visitStruct(s ast.Struct) error {
	loc := errors.Locate(s.Pos, len("struct"))
	if _, ok := v.typetab.GetAlias(s.Name); ok {
		return errors.Errorf(loc, "type %s already declared", s.Name)
	}

	root := v.typetab.Root()
	// fields may refer to the struct itself
	root.SetAlias(s.Name, ast.StructType{})
	st, err := v.typeStruct(s.Fields, s.Pos)
	if err != nil {
		delete(root.aliases, s.Name)
		return err
	}
	root.SetAlias(s.Name, st)

	v.bind(s.Name, ast.IdentType{Name: s.Name})
	plog.Debugf("declared struct %s = %s", s.Name, ast.TypeString(st))
	return nil
}

func (v *Visitor) visitInterface(i ast.Interface) error {
	if _, ok := v.program.interfaces[i.Name]; ok {
		return errors.Errorf(errors.Locate(i.Pos, len("interface")), "interface %s already declared", i.Name)
	}

	scope := v.child(nil, nil)
	scope.self = ast.IdentType{Name: "self"}

	seen := map[string]bool{}
	for _, m := range i.Methods {
		if seen[m.Name] {
			return errors.Errorf(errors.Locate(m.Pos, len(m.Name)), "method %s declared twice in interface %s", m.Name, i.Name)
		}
		seen[m.Name] = true
		if err := scope.knownType(m.Type, m.Pos); err != nil {
			return err
		}
	}

	v.program.interfaces[i.Name] = i.Methods
	return nil
}

// visitImplementation checks the methods of an implement block. Every
// signature is registered before any body is checked, so methods may call
// each other through self.
func (v *Visitor) visitImplementation(impl ast.Implementation) error {
	loc := errors.Locate(impl.Pos, len("implement"))
	st, ok := v.typetab.GetAlias(impl.Structure)
	if _, isStruct := v.base(st).(ast.StructType); !ok || !isStruct {
		return errors.Errorf(loc, "cannot implement %s: not a struct%s", impl.Structure, hint(impl.Structure, v.typetab.Aliases()))
	}

	selfType := ast.IdentType{Name: impl.Structure}
	scope := v.child(nil, nil)
	scope.self = selfType

	methods := v.program.methods[impl.Structure]
	if methods == nil {
		methods = map[string]method{}
		v.program.methods[impl.Structure] = methods
	}

	var names []string
	for _, stmt := range impl.Body {
		name, m, err := scope.predeclare(stmt)
		if err != nil {
			return err
		}
		if _, dup := methods[name]; dup {
			return errors.Errorf(loc, "method %s of %s already declared", name, impl.Structure)
		}
		methods[name] = m
		names = append(names, name)
	}

	for i, stmt := range impl.Body {
		if err := scope.VisitStatement(stmt); err != nil {
			return err
		}
		t, ok := scope.lookup(names[i])
		if !ok {
			// an unsafe name was warned about and never bound
			delete(methods, names[i])
			continue
		}
		typ, ok := t.(ast.FunType)
		invariant.Invariant(ok, "method %s has type %s", names[i], ast.TypeString(t))
		methods[names[i]] = method{typ: typ, self: methods[names[i]].self}
	}

	if impl.Interface == "" {
		return nil
	}
	return v.satisfies(impl, methods, selfType)
}

// predeclare reads a method's name and provisional signature.
func (v *Visitor) predeclare(stmt ast.Statement) (string, method, error) {
	switch x := stmt.(type) {
	case ast.Fun:
		_, sig, err := v.signature(x)
		if err != nil {
			return "", method{}, err
		}
		if sig.Return == nil {
			sig.Return = ast.UndefinedType{}
		}
		self := len(x.Params) > 0 && x.Params[0].Name == "self"
		return nameOf(x.Name), method{typ: sig, self: self}, nil
	case ast.FunctionMatch:
		ret := x.Return
		if ret == nil {
			ret = ast.UndefinedType{}
		}
		return nameOf(x.Name), method{typ: ast.FunType{Params: []ast.Type{ast.UndefinedType{}}, Return: ret}}, nil
	}

	invariant.Unreachable("implement block holds a %T", stmt)
	return "", method{}, nil
}

// satisfies checks that methods cover the interface impl claims, with
// matching types once self is read as the implementing struct.
func (v *Visitor) satisfies(impl ast.Implementation, methods map[string]method, selfType ast.Type) error {
	loc := errors.Locate(impl.Pos, len("implement"))
	wanted, ok := v.program.interfaces[impl.Interface]
	if !ok {
		return errors.Errorf(loc, "unknown interface %s%s", impl.Interface, hint(impl.Interface, interfaceNames(v.program)))
	}

	for _, want := range wanted {
		m, ok := methods[want.Name]
		if !ok {
			return errors.Group{
				errors.Errorf(loc, "%s does not implement %s", impl.Structure, impl.Interface),
				errors.Notef(errors.Locate(want.Pos, len(want.Name)), "missing method %s", want.Name),
			}
		}

		sig := replaceSelf(want.Type, selfType).(ast.FunType)
		if !v.equivalent(sig, m.typ) {
			return errors.Group{
				errors.Errorf(loc, "method %s does not match interface %s: expected %s, found %s",
					want.Name, impl.Interface, ast.TypeString(sig), ast.TypeString(m.typ)),
				errors.Notef(errors.Locate(want.Pos, len(want.Name)), "%s is declared here", want.Name),
			}
		}
	}
	return nil
}

// replaceSelf substitutes self in an interface method type.
func replaceSelf(t ast.Type, self ast.Type) ast.Type {
	switch x := t.(type) {
	case ast.IdentType:
		if x.Name == "self" {
			return self
		}
	case ast.MutType:
		if x.Inner != nil {
			return ast.MutType{Inner: replaceSelf(x.Inner, self)}
		}
	case ast.ArrayType:
		return ast.ArrayType{Elem: replaceSelf(x.Elem, self), Len: x.Len}
	case ast.FunType:
		out := ast.FunType{Params: make([]ast.Type, len(x.Params))}
		for i, p := range x.Params {
			out.Params[i] = replaceSelf(p, self)
		}
		if x.Return != nil {
			out.Return = replaceSelf(x.Return, self)
		}
		return out
	}
	return t
}

// visitImport binds what an import exposes. Imported modules are not read,
// so their names are Undefined.
func (v *Visitor) visitImport(i ast.Import) error {
	path := nameOf(i.From)
	switch i.Expose.Mode {
	case ast.ExposeNothing:
		v.bind(nameOf(lastOf(i.From)), ast.UndefinedType{})
	case ast.ExposeSpecifically:
		for _, name := range i.Expose.Names {
			v.bind(name, ast.UndefinedType{})
		}
	case ast.ExposeEverything:
		v.warn(&i.Pos, "names exposed by %s cannot be checked", path)
	}
	plog.Debugf("import %s", path)
	return nil
}

func lastOf(e ast.Expression) ast.Expression {
	if ix, ok := e.(ast.Index); ok {
		return ix.Index
	}
	return e
}

func (v *Visitor) visitExtern(x ast.ExternStatement) error {
	switch inner := x.Statement.(type) {
	case ast.ExpressionStatement:
		_, err := v.typeExtern(ast.Extern{Expr: inner.Expr, Pos: x.Pos})
		return err
	case ast.Definition:
		if inner.Type == nil {
			inner.Type = ast.UndefinedType{}
		}
		return v.visitDefinition(inner)
	}
	return v.VisitStatement(x.Statement)
}
